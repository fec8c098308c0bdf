package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/pawlog/internal/models"
)

// GetProfile возвращает профиль пользователя или ErrNotFound.
func (s *Storage) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT user_id, name, has_seen_onboarding FROM profiles WHERE user_id = $1`
	var p models.Profile
	if err := s.DB.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.Name, &p.HasSeenOnboarding); err != nil {
		return nil, wrapNoRows(op, err)
	}
	return &p, nil
}

// UpsertOnboardingSeen создаёт профиль или обновляет флаг онбординга.
// Уникальный ключ user_id защищает от гонки двух одновременных вставок.
func (s *Storage) UpsertOnboardingSeen(ctx context.Context, userID string, seen bool) error {
	const op = "storage.UpsertOnboardingSeen"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO profiles (user_id, has_seen_onboarding)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE
			  SET has_seen_onboarding = EXCLUDED.has_seen_onboarding,
			      updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, userID, seen); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpsertProfileName сохраняет имя пользователя, не трогая флаг онбординга.
func (s *Storage) UpsertProfileName(ctx context.Context, userID, name string) error {
	const op = "storage.UpsertProfileName"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO profiles (user_id, name)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE
			  SET name = EXCLUDED.name,
			      updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, userID, name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
