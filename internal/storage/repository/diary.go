package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/pawlog/internal/models"
)

// CreateMeal сохраняет приём пищи и возвращает его ID.
func (s *Storage) CreateMeal(ctx context.Context, meal models.Meal) (int64, error) {
	const op = "storage.CreateMeal"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO meals (pet_id, eaten_at, calories, portion_grams)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, meal.PetID, meal.EatenAt, meal.Calories,
		meal.PortionGrams).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SumCalories возвращает сумму калорий и число приёмов пищи в полуинтервале [from, to).
func (s *Storage) SumCalories(ctx context.Context, petID string, from, to time.Time) (int, int, error) {
	const op = "storage.SumCalories"
	if err := checkCtx(ctx, op); err != nil {
		return 0, 0, err
	}

	query := `SELECT COALESCE(SUM(calories), 0), COUNT(*)
			  FROM meals
			  WHERE pet_id = $1 AND eaten_at >= $2 AND eaten_at < $3`
	var total, count int
	if err := s.DB.QueryRowContext(ctx, query, petID, from, to).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, count, nil
}

// CreateWeight сохраняет взвешивание и возвращает его ID.
func (s *Storage) CreateWeight(ctx context.Context, w models.WeightEntry) (int64, error) {
	const op = "storage.CreateWeight"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO weights (pet_id, measured_at, weight_kg)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, w.PetID, w.MeasuredAt, w.WeightKg).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListWeights возвращает взвешивания в закрытом интервале [from, to] по возрастанию даты.
func (s *Storage) ListWeights(ctx context.Context, petID string, from, to time.Time) ([]models.WeightEntry, error) {
	const op = "storage.ListWeights"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, pet_id, measured_at, weight_kg
			  FROM weights
			  WHERE pet_id = $1 AND measured_at >= $2 AND measured_at <= $3
			  ORDER BY measured_at`
	rows, err := s.DB.QueryContext(ctx, query, petID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.WeightEntry
	for rows.Next() {
		var w models.WeightEntry
		if err = rows.Scan(&w.ID, &w.PetID, &w.MeasuredAt, &w.WeightKg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
