// Package entitlement вычисляет тарифный план пользователя по удалённой записи
// подписки и держит последнее известное состояние в памяти.
package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/metrics"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// Источники обновления состояния.
const (
	TriggerIdentity   = "identity"
	TriggerForeground = "foreground"
	TriggerBroker     = "broker"
	TriggerManual     = "manual"
)

// Repository читает запись подписки.
type Repository interface {
	GetEntitlement(ctx context.Context, userID string) (*models.EntitlementRecord, error)
}

// State вычисленное состояние подписки пользователя.
type State struct {
	PlanType              models.PlanType `json:"plan_type"`
	IsPremium             bool            `json:"is_premium"`
	IsTrialExpired        bool            `json:"is_trial_expired"`
	TrialEndsAt           *time.Time      `json:"trial_ends_at,omitempty"`
	CurrentPeriodEnd      *time.Time      `json:"current_period_end,omitempty"`
	DaysUntilTrialExpires int             `json:"days_until_trial_expires"`
	Loading               bool            `json:"loading"`
	RefreshedAt           time.Time       `json:"refreshed_at"`
}

// Free состояние по умолчанию.
func Free() State {
	return State{PlanType: models.PlanFree}
}

// Derive вычисляет состояние по записи подписки на момент now.
// Отсутствие записи означает бесплатный план.
func Derive(rec *models.EntitlementRecord, now time.Time) State {
	if rec == nil {
		return Free()
	}
	st := State{
		TrialEndsAt:      rec.TrialEndsAt,
		CurrentPeriodEnd: rec.CurrentPeriodEnd,
	}

	trialing := rec.SubscriptionStatus == models.StatusTrialing || rec.PlanType == models.PlanTrial
	switch {
	case trialing:
		active := rec.TrialEndsAt != nil && now.Before(*rec.TrialEndsAt)
		switch {
		case active:
			st.PlanType = models.PlanTrial
			st.DaysUntilTrialExpires = int(math.Ceil(rec.TrialEndsAt.Sub(now).Hours() / 24))
		case rec.PlanType == models.PlanPremium:
			// покупка важнее истёкшего пробного периода
			st.PlanType = models.PlanPremium
			st.IsTrialExpired = true
		default:
			st.PlanType = models.PlanFree
			st.IsTrialExpired = true
		}
	case rec.PlanType == models.PlanPremium:
		st.PlanType = models.PlanPremium
	default:
		st.PlanType = models.PlanFree
	}

	st.IsPremium = st.PlanType == models.PlanPremium ||
		(st.PlanType == models.PlanTrial && !st.IsTrialExpired)
	return st
}

// Значения по умолчанию для хранилища состояний.
const (
	DefaultCapacity = 10000
	DefaultTTL      = 24 * time.Hour
)

// entry хранит запись подписки, а не вычисленное состояние:
// признак истечения пробного периода зависит от момента чтения.
type entry struct {
	rec         *models.EntitlementRecord
	loading     bool
	refreshedAt time.Time
}

// Service держит записи подписки по идентификаторам пользователей.
// Записи вытесняются по TTL и при превышении ёмкости; следующее чтение загрузит их заново.
type Service struct {
	repo    Repository
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	capacity int
	ttl      time.Duration

	mu     sync.RWMutex
	states *expirable.LRU[string, *entry]
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics подключает счётчики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCapacity ограничивает число пользователей в памяти и время жизни их записей.
func WithCapacity(size int, ttl time.Duration) Option {
	return func(s *Service) {
		if size > 0 {
			s.capacity = size
		}
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		log:      log,
		now:      time.Now,
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.states = expirable.NewLRU[string, *entry](s.capacity, nil, s.ttl)
	return s
}

// view вычисляет состояние записи на текущий момент. Вызывается под s.mu.
func (s *Service) view(e *entry) State {
	st := Derive(e.rec, s.now())
	st.Loading = e.loading
	st.RefreshedAt = e.refreshedAt
	return st
}

// Refresh перечитывает запись подписки и пересчитывает состояние.
//
// Неаутентифицированный пользователь получает бесплатный план без обращения к базе.
// При ошибке чтения предыдущая запись сохраняется, сбрасывается только Loading;
// ошибка возвращается вместе с состоянием по этой записи. Повторов нет.
func (s *Service) Refresh(ctx context.Context, userID, trigger string) (State, error) {
	const op = "entitlement.Refresh"
	if userID == "" {
		return Free(), nil
	}
	log := s.log.With(slog.String("op", op), sl.UserID(userID), slog.String("trigger", trigger))

	s.mu.Lock()
	e, ok := s.states.Get(userID)
	if !ok {
		e = &entry{}
		s.states.Add(userID, e)
	}
	e.loading = true
	s.mu.Unlock()

	rec, err := s.repo.GetEntitlement(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error("failed to fetch subscription record", sl.Err(err))
		s.metrics.EntitlementRefresh(trigger, "error")

		s.mu.Lock()
		defer s.mu.Unlock()
		e.loading = false
		return s.view(e), fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.states.Peek(userID); !ok || cur != e {
		// пользователь вышел, пока шёл запрос; поздний ответ игнорируется
		log.Debug("dropping late entitlement response")
		return s.view(&entry{rec: rec, refreshedAt: s.now()}), nil
	}
	e.rec = rec
	e.loading = false
	e.refreshedAt = s.now()
	// продлевает TTL записи
	s.states.Add(userID, e)
	next := s.view(e)
	s.metrics.EntitlementRefresh(trigger, "ok")
	log.Debug("entitlement refreshed", slog.String("plan", string(next.PlanType)), slog.Bool("premium", next.IsPremium))
	return next, nil
}

// Get возвращает известное состояние, а при его отсутствии загружает его.
func (s *Service) Get(ctx context.Context, userID string) (State, error) {
	if st, ok := s.Current(userID); ok {
		return st, nil
	}
	return s.Refresh(ctx, userID, TriggerIdentity)
}

// Current возвращает состояние по записи из памяти без обращения к базе.
// Истечение пробного периода проверяется на момент вызова.
func (s *Service) Current(userID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.states.Peek(userID)
	if !ok {
		return State{}, false
	}
	return s.view(e), true
}

// Forget удаляет состояние пользователя, например при выходе из аккаунта.
func (s *Service) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states.Remove(userID)
}

// Len число пользователей, состояние которых хранится в памяти.
func (s *Service) Len() int {
	return s.states.Len()
}

// HandleSubscriptionUpdated обрабатывает событие брокера об изменении подписки.
// Обновляются только пользователи, состояние которых уже есть в памяти.
// Ошибка чтения только логируется, сообщение подтверждается.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		const op = "entitlement.HandleSubscriptionUpdated"
		var msg models.SubscriptionUpdated
		if err := json.Unmarshal(body, &msg); err != nil {
			// повторная доставка не исправит битое сообщение
			s.log.Warn("dropping malformed subscription event", slog.String("op", op), sl.Err(err))
			return nil
		}
		if _, ok := s.Current(msg.UserID); !ok {
			return nil
		}
		if _, err := s.Refresh(ctx, msg.UserID, TriggerBroker); err != nil {
			// сообщение подтверждается, следующий выход на передний план повторит запрос
			s.log.Warn("subscription event refresh failed",
				slog.String("op", op), sl.UserID(msg.UserID), sl.Err(err))
		}
		return nil
	}
}

// IsPremium признак премиум-доступа. Ошибка чтения трактуется как бесплатный план
// либо последнее известное состояние.
func (s *Service) IsPremium(ctx context.Context, userID string) bool {
	st, _ := s.Get(ctx, userID)
	return st.IsPremium
}
