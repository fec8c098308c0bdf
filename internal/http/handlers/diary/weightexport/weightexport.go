// Package weightexport реализует выгрузку истории веса в CSV.
// Маршрут закрыт функцией pdf_export через middleware RequireFeature.
package weightexport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
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

// Handler обрабатывает GET /pets/{id}/weights/export.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service отдаёт историю веса.
type Service interface {
	Weights(ctx context.Context, ownerID, petID string, from, to time.Time) ([]models.WeightEntry, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выгрузка истории веса
// @Description Вся история взвешиваний питомца в CSV. Требует премиум-плана.
// @Tags Diary
// @Produce text/csv
// @Security BearerAuth
// @Param id path string true "ID питомца"
// @Success 200 {string} string "CSV"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.UpsellResponse "Требуется премиум-план"
// @Failure 404 {object} response.ErrorResponse "Питомец не найден"
// @Router /pets/{id}/weights/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.weightexport"
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

	petID := chi.URLParam(r, "id")
	entries, err := h.service.Weights(r.Context(), userID, petID, time.Unix(0, 0).UTC(), time.Now().UTC())
	if errors.Is(err, repository.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("pet not found"))
		return
	}
	if err != nil {
		log.Error("failed to load weights", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not export weights"))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="weights-%s.csv"`, petID))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"measured_at", "weight_kg"})
	for _, e := range entries {
		_ = cw.Write([]string{e.MeasuredAt.Format(time.RFC3339), strconv.FormatFloat(e.WeightKg, 'f', -1, 64)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error("failed to write csv", sl.Err(err))
	}
}
