package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/pawlog/internal/models"
)

// GetEntitlement возвращает запись подписки пользователя или ErrNotFound.
func (s *Storage) GetEntitlement(ctx context.Context, userID string) (*models.EntitlementRecord, error) {
	const op = "storage.GetEntitlement"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT user_id, plan_type, plan_source, subscription_status,
			      trial_ends_at, current_period_end
			  FROM subscriptions
			  WHERE user_id = $1`
	var (
		rec                      models.EntitlementRecord
		planType                 string
		planSource               sql.NullString
		trialEnds, currentPeriod sql.NullTime
	)
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&rec.UserID, &planType, &planSource,
		&rec.SubscriptionStatus, &trialEnds, &currentPeriod)
	if err != nil {
		return nil, wrapNoRows(op, err)
	}
	rec.PlanType = models.PlanType(planType)
	if planSource.Valid {
		rec.PlanSource = &planSource.String
	}
	if trialEnds.Valid {
		rec.TrialEndsAt = &trialEnds.Time
	}
	if currentPeriod.Valid {
		rec.CurrentPeriodEnd = &currentPeriod.Time
	}
	return &rec, nil
}

// FindTrialsEndingBetween находит пробные периоды, заканчивающиеся в полуинтервале [from, to).
func (s *Storage) FindTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]models.TrialReminder, error) {
	const op = "storage.FindTrialsEndingBetween"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT user_id, trial_ends_at
			  FROM subscriptions
			  WHERE subscription_status = $1
			    AND plan_type <> 'premium'
			    AND trial_ends_at >= $2 AND trial_ends_at < $3
			  ORDER BY trial_ends_at`
	rows, err := s.DB.QueryContext(ctx, query, models.StatusTrialing, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.TrialReminder
	for rows.Next() {
		var r models.TrialReminder
		if err = rows.Scan(&r.UserID, &r.TrialEndsAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
