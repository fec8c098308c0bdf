// Package get реализует HTTP-обработчик чтения состояния подписки.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
)

// Handler обрабатывает GET /entitlement.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service отдаёт состояние подписки.
type Service interface {
	Get(ctx context.Context, userID string) (entitlement.State, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние подписки
// @Description Последнее известное состояние подписки. Если его нет, оно загружается.
// @Tags Entitlement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=entitlement.State}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.get"
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

	st, err := h.service.Get(r.Context(), userID)
	if err != nil {
		// состояние после ошибки всё равно валидно: последнее известное либо free
		log.Warn("serving stale entitlement", sl.Err(err))
	}
	render.JSON(w, r, response.OKWithData(st))
}
