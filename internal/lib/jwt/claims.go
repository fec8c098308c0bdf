package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingSubject токен не содержит идентификатор пользователя.
	ErrMissingSubject = errors.New("token has no subject")
	// ErrInvalidSubject идентификатор пользователя в токене не является UUID.
	ErrInvalidSubject = errors.New("token subject is not a uuid")
)

// CustomClaims описывает данные, хранящиеся в JWT провайдера.
type CustomClaims struct {
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"` // роль провайдера, обычно "authenticated"
	jwt.RegisteredClaims        // Subject содержит идентификатор пользователя
}

// UserID возвращает идентификатор пользователя из claim "sub".
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// GenerateToken создает JWT токен для пользователя, подписывая его секретным ключом.
// Используется в локальном окружении и тестах, в проде токены выпускает провайдер.
func (j *MakerImpl) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет подпись и срок действия.
// Subject обязателен и должен быть UUID: он попадает в uuid-колонки базы.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token claims", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingSubject)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSubject)
	}
	return claims, nil
}
