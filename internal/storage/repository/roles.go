package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/pawlog/internal/models"
)

// GetRole возвращает роль пользователя или ErrNotFound, если записи нет
// или в ней записано неизвестное значение.
func (s *Storage) GetRole(ctx context.Context, userID string) (models.Role, error) {
	const op = "storage.GetRole"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var role string
	err := s.DB.QueryRowContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID).Scan(&role)
	if err != nil {
		return "", wrapNoRows(op, err)
	}
	r := models.Role(role)
	if !r.Valid() {
		return "", fmt.Errorf("%s: unknown role %q: %w", op, role, ErrNotFound)
	}
	return r, nil
}
