// Package decide реализует HTTP-обработчик решения о доступе к функции.
package decide

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
)

// Handler обрабатывает GET /features/{id}.
type Handler struct {
	log  *slog.Logger
	gate Gate
}

// Gate принимает решение о доступе.
type Gate interface {
	Decide(ctx context.Context, userID string, f featuregate.Feature) featuregate.Decision
}

// New создает Handler.
func New(log *slog.Logger, gate Gate) *Handler {
	return &Handler{log: log, gate: gate}
}

// ServeHTTP godoc
// @Summary Доступ к функции
// @Description Возвращает режим отображения функции: render либо preview_upsell. Неизвестные функции бесплатны.
// @Tags Features
// @Produce json
// @Security BearerAuth
// @Param id path string true "Идентификатор функции" example(multi_pet)
// @Success 200 {object} response.Response{data=featuregate.Decision}
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /features/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.features.decide"
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

	f := featuregate.Feature(chi.URLParam(r, "id"))
	render.JSON(w, r, response.OKWithData(h.gate.Decide(r.Context(), userID, f)))
}
