// Package diary ведёт журнал кормлений и взвешиваний питомца.
package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
)

// FreeHistoryWindow максимальная длина истории веса без history_charts.
const FreeHistoryWindow = 30 * 24 * time.Hour

// ErrInvalidRange конец интервала раньше начала.
var ErrInvalidRange = errors.New("invalid date range")

// Repository хранилище записей дневника.
type Repository interface {
	CreateMeal(ctx context.Context, meal models.Meal) (int64, error)
	SumCalories(ctx context.Context, petID string, from, to time.Time) (int, int, error)
	CreateWeight(ctx context.Context, w models.WeightEntry) (int64, error)
	ListWeights(ctx context.Context, petID string, from, to time.Time) ([]models.WeightEntry, error)
}

// Pets отдаёт питомца, только если он принадлежит владельцу.
type Pets interface {
	Get(ctx context.Context, ownerID, petID string) (*models.Pet, error)
}

// Gate проверяет доступ к премиум-функциям.
type Gate interface {
	Require(ctx context.Context, userID string, f featuregate.Feature) error
}

// Service бизнес-логика дневника.
type Service struct {
	repo Repository
	pets Pets
	gate Gate
	log  *slog.Logger
}

// NewService создает Service.
func NewService(repo Repository, pets Pets, gate Gate, log *slog.Logger) *Service {
	return &Service{repo: repo, pets: pets, gate: gate, log: log}
}

// LogMeal записывает приём пищи.
func (s *Service) LogMeal(ctx context.Context, ownerID, petID string, req models.DummyMeal) (*models.Meal, error) {
	const op = "diary.LogMeal"
	if _, err := s.pets.Get(ctx, ownerID, petID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	meal := models.Meal{
		PetID:        petID,
		EatenAt:      req.EatenAt.UTC(),
		Calories:     req.Calories,
		PortionGrams: req.PortionGrams,
	}
	id, err := s.repo.CreateMeal(ctx, meal)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	meal.ID = id
	return &meal, nil
}

// DailySummary суммирует калории за календарный день UTC.
func (s *Service) DailySummary(ctx context.Context, ownerID, petID string, day time.Time) (*models.DailySummary, error) {
	const op = "diary.DailySummary"
	pet, err := s.pets.Get(ctx, ownerID, petID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	total, count, err := s.repo.SumCalories(ctx, petID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.DailySummary{
		PetID:           petID,
		Day:             from.Format(time.DateOnly),
		TotalCalories:   total,
		TargetCalories:  pet.DailyCalorieTarget,
		PercentOfTarget: PercentOfTarget(total, pet.DailyCalorieTarget),
		Meals:           count,
	}, nil
}

// PercentOfTarget доля от цели в процентах с одним знаком после запятой.
// Нулевая цель даёт 0.
func PercentOfTarget(total, target int) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(target)*1000) / 10
}

// LogWeight записывает взвешивание.
func (s *Service) LogWeight(ctx context.Context, ownerID, petID string, req models.DummyWeight) (*models.WeightEntry, error) {
	const op = "diary.LogWeight"
	if _, err := s.pets.Get(ctx, ownerID, petID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w := models.WeightEntry{
		PetID:      petID,
		MeasuredAt: req.MeasuredAt.UTC(),
		WeightKg:   req.WeightKg,
	}
	id, err := s.repo.CreateWeight(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w.ID = id
	return &w, nil
}

// Weights возвращает взвешивания в интервале [from, to].
// История длиннее FreeHistoryWindow требует history_charts.
func (s *Service) Weights(ctx context.Context, ownerID, petID string, from, to time.Time) ([]models.WeightEntry, error) {
	const op = "diary.Weights"
	if to.Before(from) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRange)
	}
	if _, err := s.pets.Get(ctx, ownerID, petID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if to.Sub(from) > FreeHistoryWindow {
		if err := s.gate.Require(ctx, ownerID, featuregate.HistoryCharts); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	entries, err := s.repo.ListWeights(ctx, petID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entries == nil {
		entries = []models.WeightEntry{}
	}
	return entries, nil
}
