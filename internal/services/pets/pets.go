// Package pets управляет профилями собак пользователя.
package pets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// ErrInvalidBirthDate дата рождения не в формате YYYY-MM-DD или в будущем.
var ErrInvalidBirthDate = errors.New("invalid birth date")

// Repository хранилище питомцев.
type Repository interface {
	CreatePet(ctx context.Context, pet models.Pet) error
	CreatePetWithinLimit(ctx context.Context, pet models.Pet, limit int) error
	GetPet(ctx context.Context, id string) (*models.Pet, error)
	ListPets(ctx context.Context, ownerID string) ([]*models.Pet, error)
}

// Gate проверяет доступ к премиум-функциям.
type Gate interface {
	Require(ctx context.Context, userID string, f featuregate.Feature) error
}

// Service бизнес-логика питомцев.
type Service struct {
	repo Repository
	gate Gate
	log  *slog.Logger
	now  func() time.Time
}

// NewService создает Service.
func NewService(repo Repository, gate Gate, log *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, log: log, now: time.Now}
}

// freePetLimit число питомцев без multi_pet.
const freePetLimit = 1

// Create добавляет питомца. Второй и последующие питомцы требуют multi_pet.
// Сначала выполняется вставка с лимитом бесплатного плана, поэтому параллельные
// запросы не дадут бесплатному пользователю второго питомца.
func (s *Service) Create(ctx context.Context, ownerID string, req models.DummyPet) (*models.Pet, error) {
	const op = "pets.Create"

	birthDate, err := s.parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pet := models.Pet{
		ID:                 uuid.NewString(),
		OwnerID:            ownerID,
		Name:               strings.TrimSpace(req.Name),
		Breed:              strings.TrimSpace(req.Breed),
		BirthDate:          birthDate,
		WeightKg:           req.WeightKg,
		DailyCalorieTarget: req.DailyCalorieTarget,
		CreatedAt:          s.now().UTC(),
	}
	err = s.repo.CreatePetWithinLimit(ctx, pet, freePetLimit)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrLimitReached):
		if err := s.gate.Require(ctx, ownerID, featuregate.MultiPet); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := s.repo.CreatePet(ctx, pet); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("pet created", slog.String("op", op), slog.String("pet_id", pet.ID))
	return &pet, nil
}

// List возвращает питомцев владельца.
func (s *Service) List(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	const op = "pets.List"
	pets, err := s.repo.ListPets(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pets, nil
}

// Get возвращает питомца владельца. Чужой питомец неотличим от отсутствующего.
func (s *Service) Get(ctx context.Context, ownerID, petID string) (*models.Pet, error) {
	const op = "pets.Get"
	if _, err := uuid.Parse(petID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	pet, err := s.repo.GetPet(ctx, petID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if pet.OwnerID != ownerID {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrNotFound)
	}
	return pet, nil
}

func (s *Service) parseBirthDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBirthDate, raw)
	}
	if d.After(s.now()) {
		return nil, fmt.Errorf("%w: %s is in the future", ErrInvalidBirthDate, raw)
	}
	return &d, nil
}
