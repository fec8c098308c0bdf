package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreatePet(ctx context.Context, pet models.Pet) error {
	return m.Called(ctx, pet).Error(0)
}

func (m *RepoMock) CreatePetWithinLimit(ctx context.Context, pet models.Pet, limit int) error {
	return m.Called(ctx, pet, limit).Error(0)
}

func (m *RepoMock) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Pet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) ListPets(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	args := m.Called(ctx, ownerID)
	if p := args.Get(0); p != nil {
		return p.([]*models.Pet), args.Error(1)
	}
	return nil, args.Error(1)
}

type GateMock struct{ mock.Mock }

func (m *GateMock) Require(ctx context.Context, userID string, f featuregate.Feature) error {
	return m.Called(ctx, userID, f).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTestService(repo *RepoMock, gate *GateMock) *Service {
	s := NewService(repo, gate, newNoopLogger())
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       models.DummyPet
		setup     func(*RepoMock, *GateMock)
		wantErr   error
		wantBirth string
	}{
		{
			name: "first pet is free",
			req:  models.DummyPet{Name: " Rex ", Breed: "beagle", BirthDate: "2020-03-15", DailyCalorieTarget: 900},
			setup: func(r *RepoMock, _ *GateMock) {
				r.On("CreatePetWithinLimit", mock.Anything, mock.MatchedBy(func(p models.Pet) bool {
					return p.Name == "Rex" && p.OwnerID == "u1" && p.DailyCalorieTarget == 900
				}), 1).Return(nil)
			},
			wantBirth: "2020-03-15",
		},
		{
			name: "second pet with premium",
			req:  models.DummyPet{Name: "Bim"},
			setup: func(r *RepoMock, g *GateMock) {
				r.On("CreatePetWithinLimit", mock.Anything, mock.Anything, 1).
					Return(fmt.Errorf("storage.CreatePetWithinLimit: %w", repository.ErrLimitReached))
				g.On("Require", mock.Anything, "u1", featuregate.MultiPet).Return(nil)
				r.On("CreatePet", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name: "second pet without premium is locked",
			req:  models.DummyPet{Name: "Bim"},
			setup: func(r *RepoMock, g *GateMock) {
				r.On("CreatePetWithinLimit", mock.Anything, mock.Anything, 1).
					Return(fmt.Errorf("storage.CreatePetWithinLimit: %w", repository.ErrLimitReached))
				g.On("Require", mock.Anything, "u1", featuregate.MultiPet).
					Return(&featuregate.LockedError{Feature: featuregate.MultiPet})
			},
			wantErr: featuregate.ErrLocked,
		},
		{
			name:    "malformed birth date",
			req:     models.DummyPet{Name: "Rex", BirthDate: "15.03.2020"},
			setup:   func(_ *RepoMock, _ *GateMock) {},
			wantErr: ErrInvalidBirthDate,
		},
		{
			name:    "birth date in the future",
			req:     models.DummyPet{Name: "Rex", BirthDate: "2030-01-01"},
			setup:   func(_ *RepoMock, _ *GateMock) {},
			wantErr: ErrInvalidBirthDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			gate := new(GateMock)
			tt.setup(repo, gate)

			pet, err := newTestService(repo, gate).Create(context.Background(), "u1", tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, pet)
				repo.AssertNotCalled(t, "CreatePet", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			_, parseErr := uuid.Parse(pet.ID)
			assert.NoError(t, parseErr)
			if tt.wantBirth != "" {
				require.NotNil(t, pet.BirthDate)
				assert.Equal(t, tt.wantBirth, pet.BirthDate.Format(time.DateOnly))
			}
			repo.AssertExpectations(t)
			gate.AssertExpectations(t)
		})
	}
}

func TestService_Create_StorageFailure(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreatePetWithinLimit", mock.Anything, mock.Anything, 1).Return(errors.New("db down"))

	_, err := newTestService(repo, new(GateMock)).Create(context.Background(), "u1", models.DummyPet{Name: "Rex"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pets.Create")
}

func TestService_Get(t *testing.T) {
	petID := uuid.NewString()

	t.Run("own pet", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPet", mock.Anything, petID).Return(&models.Pet{ID: petID, OwnerID: "u1"}, nil)

		pet, err := newTestService(repo, new(GateMock)).Get(context.Background(), "u1", petID)
		require.NoError(t, err)
		assert.Equal(t, petID, pet.ID)
	})

	t.Run("someone else's pet", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetPet", mock.Anything, petID).Return(&models.Pet{ID: petID, OwnerID: "u2"}, nil)

		_, err := newTestService(repo, new(GateMock)).Get(context.Background(), "u1", petID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := newTestService(repo, new(GateMock)).Get(context.Background(), "u1", "abc")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		repo.AssertNotCalled(t, "GetPet", mock.Anything, mock.Anything)
	})
}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	want := []*models.Pet{{ID: "p1"}, {ID: "p2"}}
	repo.On("ListPets", mock.Anything, "u1").Return(want, nil)

	got, err := newTestService(repo, new(GateMock)).List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
