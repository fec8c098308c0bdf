// Package session собирает состояние пользователя при смене аккаунта
// и очищает его при выходе.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
	"github.com/magabrotheeeer/pawlog/internal/services/onboarding"
)

// Roles определяет роль и очищает кэш ролей.
type Roles interface {
	Resolve(ctx context.Context, userID string) models.Role
	Clear(ctx context.Context) error
}

// Onboarding проверяет флаг знакомства с приложением.
type Onboarding interface {
	Check(ctx context.Context, userID string) onboarding.Status
}

// Entitlements управляет состоянием подписки.
type Entitlements interface {
	Refresh(ctx context.Context, userID, trigger string) (entitlement.State, error)
	Forget(userID string)
}

// Bootstrap состояние, которое клиент получает при входе.
type Bootstrap struct {
	UserID      string            `json:"user_id"`
	Role        models.Role       `json:"role"`
	Onboarding  onboarding.Status `json:"onboarding"`
	Entitlement entitlement.State `json:"entitlement"`
}

// Service координирует роль, онбординг и подписку.
type Service struct {
	roles        Roles
	onboarding   Onboarding
	entitlements Entitlements
	log          *slog.Logger
}

// NewService создает Service.
func NewService(roles Roles, ob Onboarding, ent Entitlements, log *slog.Logger) *Service {
	return &Service{
		roles:        roles,
		onboarding:   ob,
		entitlements: ent,
		log:          log,
	}
}

// Bootstrap загружает состояние пользователя после смены аккаунта.
// Ошибка загрузки подписки не прерывает вход: клиент получает последнее
// известное состояние либо бесплатный план.
func (s *Service) Bootstrap(ctx context.Context, userID string) Bootstrap {
	const op = "session.Bootstrap"
	log := s.log.With(slog.String("op", op), sl.UserID(userID))

	st, err := s.entitlements.Refresh(ctx, userID, entitlement.TriggerIdentity)
	if err != nil {
		log.Warn("entitlement not refreshed on sign-in", sl.Err(err))
	}

	return Bootstrap{
		UserID:      userID,
		Role:        s.roles.Resolve(ctx, userID),
		Onboarding:  s.onboarding.Check(ctx, userID),
		Entitlement: st,
	}
}

// SignOut очищает роли всех аккаунтов и состояние подписки пользователя.
// Флаг онбординга остаётся: экран знакомства не должен появляться повторно.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	const op = "session.SignOut"
	s.entitlements.Forget(userID)
	if err := s.roles.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user signed out", slog.String("op", op), sl.UserID(userID))
	return nil
}
