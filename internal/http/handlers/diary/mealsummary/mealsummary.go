// Package mealsummary реализует HTTP-обработчик дневной сводки по калориям.
package mealsummary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// Handler обрабатывает GET /pets/{id}/meals/summary.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service считает дневную сводку.
type Service interface {
	DailySummary(ctx context.Context, ownerID, petID string, day time.Time) (*models.DailySummary, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary Сводка калорий за день
// @Description Сумма калорий и процент от дневной цели питомца. Без параметра day берётся текущий день UTC.
// @Tags Diary
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID питомца"
// @Param day query string false "День в формате YYYY-MM-DD"
// @Success 200 {object} response.Response{data=models.DailySummary}
// @Failure 400 {object} response.ErrorResponse "Некорректная дата"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Питомец не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pets/{id}/meals/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.mealsummary"
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

	day := h.now().UTC()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("day must be in format YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	summary, err := h.service.DailySummary(r.Context(), userID, chi.URLParam(r, "id"), day)
	if errors.Is(err, repository.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("pet not found"))
		return
	}
	if err != nil {
		log.Error("failed to build daily summary", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build summary"))
		return
	}
	render.JSON(w, r, response.OKWithData(summary))
}
