// Package onboarding отслеживает, видел ли пользователь вводную карусель.
//
// Локальный кэш пишется первым и считается источником истины для устройства,
// запись в удалённый профиль выполняется по возможности и никогда не откатывает
// локальное значение: показанный однажды онбординг больше не появляется.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/metrics"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// Status состояние флага онбординга.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusChecking Status = "checking"
	StatusSeen     Status = "seen"
	StatusUnseen   Status = "unseen"
)

// LocalCache быстрое локальное key-value хранилище.
type LocalCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Repository удалённые профиль и питомцы пользователя.
type Repository interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertOnboardingSeen(ctx context.Context, userID string, seen bool) error
	UpsertProfileName(ctx context.Context, userID, name string) error
	CountPets(ctx context.Context, ownerID string) (int, error)
}

// CacheKey ключ локального флага для пользователя.
func CacheKey(userID string) string {
	return "onboarding_seen:" + userID
}

// Ёмкость и время жизни статусов в памяти по умолчанию.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 24 * time.Hour
)

// Service реализует проверку и завершение онбординга.
type Service struct {
	repo    Repository
	cache   LocalCache
	log     *slog.Logger
	metrics *metrics.Metrics

	// вытесненный статус восстанавливается из локального кэша при следующей проверке
	mu       sync.Mutex
	statuses *expirable.LRU[string, Status]
}

type options struct {
	size int
	ttl  time.Duration
}

// Option настраивает Service.
type Option func(*options)

// WithCapacity ограничивает число статусов в памяти и их время жизни.
func WithCapacity(size int, ttl time.Duration) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache LocalCache, log *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	o := options{size: DefaultCapacity, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		log:      log,
		metrics:  m,
		statuses: expirable.NewLRU[string, Status](o.size, nil, o.ttl),
	}
}

// Status возвращает текущее состояние из памяти.
func (s *Service) Status(userID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses.Peek(userID)
	if !ok {
		return StatusUnknown
	}
	return st
}

// Check определяет, видел ли пользователь онбординг.
//
// Сначала читается локальный кэш; true завершает проверку без запроса к базе.
// Иначе читается удалённый профиль. Если профиля нет, пользователь с хотя бы
// одним питомцем считается видевшим онбординг, и флаг дописывается локально и удалённо.
// Ошибка чтения профиля трактуется как seen, чтобы не блокировать приложение.
func (s *Service) Check(ctx context.Context, userID string) Status {
	const op = "onboarding.Check"
	log := s.log.With(slog.String("op", op), sl.UserID(userID))

	s.mu.Lock()
	if st, _ := s.statuses.Peek(userID); st == StatusSeen {
		s.mu.Unlock()
		return StatusSeen
	}
	s.statuses.Add(userID, StatusChecking)
	s.mu.Unlock()

	if s.readLocal(ctx, userID, log) {
		return s.settle(userID, StatusSeen)
	}

	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case err == nil:
		if profile.HasSeenOnboarding {
			s.writeLocal(ctx, userID, log)
			return s.settle(userID, StatusSeen)
		}
		return s.settle(userID, StatusUnseen)
	case errors.Is(err, repository.ErrNotFound):
		return s.checkFirstTime(ctx, userID, log)
	default:
		log.Error("failed to read profile, assuming onboarding seen", sl.Err(err))
		return s.settle(userID, StatusSeen)
	}
}

func (s *Service) checkFirstTime(ctx context.Context, userID string, log *slog.Logger) Status {
	pets, err := s.repo.CountPets(ctx, userID)
	if err != nil {
		log.Error("failed to count pets, assuming onboarding seen", sl.Err(err))
		return s.settle(userID, StatusSeen)
	}
	if pets == 0 {
		return s.settle(userID, StatusUnseen)
	}

	log.Info("existing pets without profile, back-filling onboarding flag", slog.Int("pets", pets))
	s.writeLocal(ctx, userID, log)
	st := s.settle(userID, StatusSeen)
	s.writeRemote(ctx, userID, log)
	return st
}

// Complete отмечает онбординг пройденным. Локальный кэш и память обновляются
// до сетевого запроса; ошибка удалённой записи только логируется.
// Возвращает true, если удалённый профиль тоже обновлён.
func (s *Service) Complete(ctx context.Context, userID string) bool {
	const op = "onboarding.Complete"
	log := s.log.With(slog.String("op", op), sl.UserID(userID))

	s.writeLocal(ctx, userID, log)
	s.settle(userID, StatusSeen)
	return s.writeRemote(ctx, userID, log)
}

// ErrEmptyName имя профиля пустое после обрезки пробелов.
var ErrEmptyName = errors.New("profile name is empty")

// SetName сохраняет имя пользователя в удалённом профиле. Флаг онбординга не меняется.
func (s *Service) SetName(ctx context.Context, userID, name string) (*models.Profile, error) {
	const op = "onboarding.SetName"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyName)
	}
	if err := s.repo.UpsertProfileName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.Profile{UserID: userID, Name: name, HasSeenOnboarding: s.Status(userID) == StatusSeen}, nil
}

// settle фиксирует итог проверки. Seen не откатывается в unseen.
func (s *Service) settle(userID string, st Status) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, _ := s.statuses.Peek(userID); cur == StatusSeen {
		return StatusSeen
	}
	s.statuses.Add(userID, st)
	return st
}

func (s *Service) readLocal(ctx context.Context, userID string, log *slog.Logger) bool {
	var seen bool
	found, err := s.cache.Get(ctx, CacheKey(userID), &seen)
	if err != nil {
		log.Debug("local onboarding cache read failed", sl.Err(err))
		return false
	}
	return found && seen
}

func (s *Service) writeLocal(ctx context.Context, userID string, log *slog.Logger) {
	if err := s.cache.Set(ctx, CacheKey(userID), true, 0); err != nil {
		log.Debug("local onboarding cache write failed", sl.Err(err))
	}
}

func (s *Service) writeRemote(ctx context.Context, userID string, log *slog.Logger) bool {
	if err := s.repo.UpsertOnboardingSeen(ctx, userID, true); err != nil {
		log.Warn("failed to persist onboarding flag remotely", sl.Err(err))
		s.metrics.OnboardingWrite("error")
		return false
	}
	s.metrics.OnboardingWrite("ok")
	return true
}
