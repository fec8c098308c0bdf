// Package complete реализует HTTP-обработчик завершения онбординга.
package complete

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/services/onboarding"
)

// Handler обрабатывает POST /onboarding/complete.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service отмечает онбординг пройденным.
type Service interface {
	Complete(ctx context.Context, userID string) bool
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Завершить онбординг
// @Description Флаг сохраняется локально сразу. synced=false означает, что удалённый профиль не обновился.
// @Tags Onboarding
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /onboarding/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.complete"
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

	synced := h.service.Complete(r.Context(), userID)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": onboarding.StatusSeen,
		"synced": synced,
	}))
}
