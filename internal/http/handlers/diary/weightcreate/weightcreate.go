// Package weightcreate реализует HTTP-обработчик записи веса питомца.
package weightcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/storage/repository"
)

// Handler обрабатывает POST /pets/{id}/weights.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service записывает взвешивание.
type Service interface {
	LogWeight(ctx context.Context, ownerID, petID string, req models.DummyWeight) (*models.WeightEntry, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Записать вес
// @Tags Diary
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID питомца"
// @Param request body models.DummyWeight true "Взвешивание"
// @Success 201 {object} response.Response{data=models.WeightEntry}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Питомец не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pets/{id}/weights [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.diary.weightcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyWeight
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	entry, err := h.service.LogWeight(r.Context(), userID, chi.URLParam(r, "id"), req)
	if errors.Is(err, repository.ErrNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("pet not found"))
		return
	}
	if err != nil {
		log.Error("failed to log weight", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not log weight"))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(entry))
}
