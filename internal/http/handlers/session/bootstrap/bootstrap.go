// Package bootstrap реализует HTTP-обработчик начальной загрузки сессии.
//
// Клиент вызывает его при смене аккаунта и получает роль, состояние онбординга
// и подписки одним ответом.
package bootstrap

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/services/session"
)

// Handler обрабатывает GET /session.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает загрузку состояния сессии.
type Service interface {
	Bootstrap(ctx context.Context, userID string) session.Bootstrap
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Начальная загрузка сессии
// @Description Возвращает роль, состояние онбординга и подписки текущего пользователя.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=session.Bootstrap}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.bootstrap"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	b := h.service.Bootstrap(r.Context(), userID)
	log.Info("session bootstrapped", slog.String("role", string(b.Role)), slog.String("plan", string(b.Entitlement.PlanType)))
	render.JSON(w, r, response.OKWithData(b))
}
