// Package weightlist реализует HTTP-обработчик истории веса питомца.
//
// Интервал задаётся датами from и to включительно. Без параметров отдаются
// последние 30 дней. История длиннее 30 дней требует функции history_charts.
package weightlist

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
	"github.com/magabrotheeeer/pawlog/internal/services/diary"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

const defaultDays = 30

// Handler обрабатывает GET /pets/{id}/weights.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// Service отдаёт историю веса.
type Service interface {
	Weights(ctx context.Context, ownerID, petID string, from, to time.Time) ([]models.WeightEntry, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary История веса
// @Tags Diary
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID питомца"
// @Param from query string false "Начало интервала YYYY-MM-DD"
// @Param to query string false "Конец интервала YYYY-MM-DD, включительно"
// @Success 200 {object} response.Response{data=[]models.WeightEntry}
// @Failure 400 {object} response.ErrorResponse "Некорректный интервал"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.UpsellResponse "Требуется премиум-план"
// @Failure 404 {object} response.ErrorResponse "Питомец не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pets/{id}/weights [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.weightlist"
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

	from, to, err := h.parseRange(r)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("from and to must be dates in format YYYY-MM-DD"))
		return
	}

	entries, err := h.service.Weights(r.Context(), userID, chi.URLParam(r, "id"), from, to)
	var locked *featuregate.LockedError
	switch {
	case err == nil:
	case errors.As(err, &locked):
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, response.Upsell(string(locked.Feature), featuregate.ModePreviewUpsell))
		return
	case errors.Is(err, diary.ErrInvalidRange):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("from must not be after to"))
		return
	case errors.Is(err, repository.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("pet not found"))
		return
	default:
		log.Error("failed to list weights", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list weights"))
		return
	}
	render.JSON(w, r, response.OKWithData(entries))
}

// parseRange возвращает [начало дня from, конец дня to].
func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := h.now().UTC()
	toDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		toDay = d
	}
	fromDay := toDay.AddDate(0, 0, -(defaultDays - 1))
	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		fromDay = d
	}
	return fromDay, toDay.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
