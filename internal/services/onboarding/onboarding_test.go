package onboarding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *RepoMock) UpsertOnboardingSeen(ctx context.Context, userID string, seen bool) error {
	return m.Called(ctx, userID, seen).Error(0)
}

func (m *RepoMock) UpsertProfileName(ctx context.Context, userID, name string) error {
	return m.Called(ctx, userID, name).Error(0)
}

func (m *RepoMock) CountPets(ctx context.Context, ownerID string) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

// memCache локальный кэш в памяти, переживающий пересоздание Service.
type memCache struct {
	mu      sync.Mutex
	data    map[string]bool
	failGet bool
	failSet bool
}

func newMemCache() *memCache { return &memCache{data: map[string]bool{}} }

func (c *memCache) Get(_ context.Context, key string, result any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return false, errors.New("quota exceeded")
	}
	v, ok := c.data[key]
	if ok {
		*(result.(*bool)) = v
	}
	return ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("quota exceeded")
	}
	c.data[key] = value.(bool)
	return nil
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_Check(t *testing.T) {
	tests := []struct {
		name       string
		cached     bool
		failGet    bool
		setup      func(r *RepoMock)
		want       Status
		wantCached bool
	}{
		{
			name:       "cached flag skips remote",
			cached:     true,
			setup:      func(_ *RepoMock) {},
			want:       StatusSeen,
			wantCached: true,
		},
		{
			name: "profile seen is mirrored locally",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").
					Return(&models.Profile{UserID: "u1", HasSeenOnboarding: true}, nil).Once()
			},
			want:       StatusSeen,
			wantCached: true,
		},
		{
			name: "profile unseen",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").
					Return(&models.Profile{UserID: "u1"}, nil).Once()
			},
			want: StatusUnseen,
		},
		{
			name: "no profile and no pets is unseen",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
				r.On("CountPets", mock.Anything, "u1").Return(0, nil).Once()
			},
			want: StatusUnseen,
		},
		{
			name: "no profile with existing pet back-fills both flags",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
				r.On("CountPets", mock.Anything, "u1").Return(1, nil).Once()
				r.On("UpsertOnboardingSeen", mock.Anything, "u1", true).Return(nil).Once()
			},
			want:       StatusSeen,
			wantCached: true,
		},
		{
			name: "profile read error assumes seen",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").Return(nil, errors.New("network")).Once()
			},
			want: StatusSeen,
		},
		{
			name: "pet count error assumes seen",
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
				r.On("CountPets", mock.Anything, "u1").Return(0, errors.New("network")).Once()
			},
			want: StatusSeen,
		},
		{
			name:    "local read failure falls through to remote",
			failGet: true,
			setup: func(r *RepoMock) {
				r.On("GetProfile", mock.Anything, "u1").
					Return(&models.Profile{UserID: "u1"}, nil).Once()
			},
			want: StatusUnseen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			cache := newMemCache()
			if tt.cached {
				cache.data[CacheKey("u1")] = true
			}
			cache.failGet = tt.failGet

			svc := NewService(repo, cache, newNoopLogger(), nil)
			assert.Equal(t, StatusUnknown, svc.Status("u1"))

			got := svc.Check(context.Background(), "u1")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, svc.Status("u1"))
			if tt.wantCached {
				assert.True(t, cache.data[CacheKey("u1")])
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Complete_SurvivesRemoteFailure(t *testing.T) {
	cache := newMemCache()

	repo := new(RepoMock)
	repo.On("UpsertOnboardingSeen", mock.Anything, "u1", true).Return(errors.New("offline")).Once()

	svc := NewService(repo, cache, newNoopLogger(), nil)
	synced := svc.Complete(context.Background(), "u1")
	assert.False(t, synced)
	assert.Equal(t, StatusSeen, svc.Status("u1"))
	repo.AssertExpectations(t)

	// новая сессия: удалённый профиль не изменился, но локальный флаг есть
	freshRepo := new(RepoMock)
	fresh := NewService(freshRepo, cache, newNoopLogger(), nil)
	assert.Equal(t, StatusSeen, fresh.Check(context.Background(), "u1"))
	freshRepo.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestService_Complete_LocalFailureStillSeen(t *testing.T) {
	cache := newMemCache()
	cache.failSet = true

	repo := new(RepoMock)
	repo.On("UpsertOnboardingSeen", mock.Anything, "u1", true).Return(nil).Once()

	svc := NewService(repo, cache, newNoopLogger(), nil)
	assert.True(t, svc.Complete(context.Background(), "u1"))
	assert.Equal(t, StatusSeen, svc.Status("u1"))
}

func TestService_Check_DoesNotRevertSeen(t *testing.T) {
	repo := new(RepoMock)
	repo.On("UpsertOnboardingSeen", mock.Anything, "u1", true).Return(errors.New("offline")).Once()

	svc := NewService(repo, newMemCache(), newNoopLogger(), nil)
	svc.Complete(context.Background(), "u1")

	// удалённый профиль всё ещё говорит unseen, но память не откатывается
	assert.Equal(t, StatusSeen, svc.Check(context.Background(), "u1"))
	repo.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestService_Check_LateUnseenDoesNotOverrideComplete(t *testing.T) {
	repo := new(RepoMock)
	svc := NewService(repo, newMemCache(), newNoopLogger(), nil)

	repo.On("UpsertOnboardingSeen", mock.Anything, "u1", true).Return(nil).Once()
	repo.On("GetProfile", mock.Anything, "u1").
		Run(func(_ mock.Arguments) {
			svc.Complete(context.Background(), "u1")
		}).
		Return(&models.Profile{UserID: "u1"}, nil).Once()

	assert.Equal(t, StatusSeen, svc.Check(context.Background(), "u1"))
	assert.Equal(t, StatusSeen, svc.Status("u1"))
}

func TestService_StatusEvictionFallsBackToLocalFlag(t *testing.T) {
	cache := newMemCache()
	repo := new(RepoMock)
	repo.On("UpsertOnboardingSeen", mock.Anything, mock.Anything, true).Return(nil)

	svc := NewService(repo, cache, newNoopLogger(), nil, WithCapacity(1, time.Hour))
	svc.Complete(context.Background(), "u1")
	svc.Complete(context.Background(), "u2")

	assert.Equal(t, StatusUnknown, svc.Status("u1"))
	assert.Equal(t, StatusSeen, svc.Check(context.Background(), "u1"))
	repo.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestService_SetName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		setup    func(*RepoMock)
		wantErr  error
		wantName string
	}{
		{
			name:  "trimmed name saved",
			input: "  Anna ",
			setup: func(r *RepoMock) {
				r.On("UpsertProfileName", mock.Anything, "u1", "Anna").Return(nil).Once()
			},
			wantName: "Anna",
		},
		{
			name:    "blank name rejected",
			input:   "   ",
			setup:   func(_ *RepoMock) {},
			wantErr: ErrEmptyName,
		},
		{
			name:  "storage failure",
			input: "Anna",
			setup: func(r *RepoMock) {
				r.On("UpsertProfileName", mock.Anything, "u1", "Anna").Return(errors.New("db down")).Once()
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)
			svc := NewService(repo, newMemCache(), newNoopLogger(), nil)

			p, err := svc.SetName(context.Background(), "u1", tt.input)
			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())
				assert.Nil(t, p)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantName, p.Name)
			}
			repo.AssertExpectations(t)
		})
	}
}
