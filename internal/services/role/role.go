// Package role определяет, владелец питомца пользователь или ветеринар.
package role

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

const keyPrefix = "role:"

// CacheKey ключ локального кэша роли пользователя.
func CacheKey(userID string) string {
	return keyPrefix + userID
}

// LocalCache локальное key-value хранилище.
type LocalCache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) (int, error)
}

// Repository читает удалённую запись роли.
type Repository interface {
	GetRole(ctx context.Context, userID string) (models.Role, error)
}

// Resolver отдаёт роль из кэша сразу и перепроверяет её в фоне.
type Resolver struct {
	repo           Repository
	cache          LocalCache
	log            *slog.Logger
	recheckTimeout time.Duration

	// epoch растёт при каждом выходе, фоновые проверки старой эпохи не пишут в кэш
	epoch    atomic.Uint64
	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// NewResolver создает Resolver.
func NewResolver(repo Repository, cache LocalCache, log *slog.Logger) *Resolver {
	return &Resolver{
		repo:           repo,
		cache:          cache,
		log:            log,
		recheckTimeout: 5 * time.Second,
		inflight:       make(map[string]struct{}),
	}
}

// Resolve возвращает роль пользователя. Пустой userID означает отсутствие роли.
//
// Закэшированная роль возвращается немедленно, а удалённая проверка идёт в фоне
// и обновляет кэш, если роль изменилась. Без кэша роль читается синхронно;
// отсутствие записи и ошибки дают tutor.
func (r *Resolver) Resolve(ctx context.Context, userID string) models.Role {
	if userID == "" {
		return ""
	}
	log := r.log.With(slog.String("op", "role.Resolve"), sl.UserID(userID))

	var cached models.Role
	found, err := r.cache.Get(ctx, CacheKey(userID), &cached)
	if err != nil {
		log.Debug("local role cache read failed", sl.Err(err))
	}
	if found && cached.Valid() {
		r.recheckInBackground(userID)
		return cached
	}

	role, err := r.Refresh(ctx, userID)
	if err != nil {
		log.Error("failed to resolve role, defaulting to tutor", sl.Err(err))
	}
	return role
}

// Refresh читает роль из базы и обновляет кэш. При ошибке возвращает tutor
// вместе с ошибкой, кэш при этом не трогается.
func (r *Resolver) Refresh(ctx context.Context, userID string) (models.Role, error) {
	const op = "role.Refresh"
	epoch := r.epoch.Load()

	role, err := r.repo.GetRole(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		role = models.RoleTutor
	default:
		return models.RoleTutor, fmt.Errorf("%s: %w", op, err)
	}

	if r.epoch.Load() != epoch {
		return role, nil
	}
	if err := r.cache.Set(ctx, CacheKey(userID), role, 0); err != nil {
		r.log.Debug("local role cache write failed", slog.String("op", op), sl.Err(err))
		return role, nil
	}
	// Clear мог пройти между проверкой эпохи и записью
	if r.epoch.Load() != epoch {
		if err := r.cache.Invalidate(ctx, CacheKey(userID)); err != nil {
			r.log.Error("failed to drop role written after sign-out", slog.String("op", op), sl.Err(err))
		}
	}
	return role, nil
}

func (r *Resolver) recheckInBackground(userID string) {
	r.mu.Lock()
	if _, busy := r.inflight[userID]; busy {
		r.mu.Unlock()
		return
	}
	r.inflight[userID] = struct{}{}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, userID)
			r.mu.Unlock()
			r.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.recheckTimeout)
		defer cancel()
		if _, err := r.Refresh(ctx, userID); err != nil {
			r.log.Warn("background role re-check failed", sl.UserID(userID), sl.Err(err))
		}
	}()
}

// Clear удаляет закэшированные роли всех пользователей.
// Вызывается при выходе, чтобы роль не досталась другому аккаунту на том же устройстве.
func (r *Resolver) Clear(ctx context.Context) error {
	const op = "role.Clear"
	// эпоха растёт до очистки, чтобы параллельный Refresh увидел её после своей записи
	r.epoch.Add(1)
	removed, err := r.cache.InvalidatePrefix(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	r.log.Debug("cleared cached roles", slog.String("op", op), slog.Int("removed", removed))
	return nil
}

// Close дожидается завершения фоновых проверок.
func (r *Resolver) Close() {
	r.wg.Wait()
}
