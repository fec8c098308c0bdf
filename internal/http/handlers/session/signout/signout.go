// Package signout реализует HTTP-обработчик выхода из аккаунта.
package signout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
)

// Handler обрабатывает POST /session/signout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service очищает состояние сессии.
type Service interface {
	SignOut(ctx context.Context, userID string) error
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход из аккаунта
// @Description Очищает кэш ролей и состояние подписки. Флаг онбординга сохраняется.
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Не удалось очистить кэш"
// @Router /session/signout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.signout"
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

	if err := h.service.SignOut(r.Context(), userID); err != nil {
		log.Error("failed to sign out", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not clear session"))
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{"signed_out": true}))
}
