package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/pawlog/internal/lib/jwt"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
)

// TokenParser проверяет подпись и срок действия токена провайдера аутентификации.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.CustomClaims, error)
}

// FeatureGate принимает решение о доступе к функции.
type FeatureGate interface {
	Decide(ctx context.Context, userID string, f featuregate.Feature) featuregate.Decision
}
