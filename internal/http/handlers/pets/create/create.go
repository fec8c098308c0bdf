// Package create реализует HTTP-обработчик создания профиля собаки.
//
// Handler принимает JSON с данными питомца, валидирует его и вызывает сервис.
// Попытка добавить второго питомца без премиум-плана возвращает 402 с данными
// для предложения подписки.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/models"
	"github.com/magabrotheeeer/pawlog/internal/services/featuregate"
	"github.com/magabrotheeeer/pawlog/internal/services/pets"
)

// Handler управляет запросами на создание питомцев.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает создание питомца.
type Service interface {
	Create(ctx context.Context, ownerID string, req models.DummyPet) (*models.Pet, error)
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Добавить питомца
// @Description Создает профиль собаки. Второй питомец требует функции multi_pet.
// @Tags Pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DummyPet true "Данные питомца"
// @Success 201 {object} response.Response{data=models.Pet}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата рождения"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 402 {object} response.UpsellResponse "Требуется премиум-план"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /pets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pets.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPet
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

	pet, err := h.service.Create(r.Context(), userID, req)
	var locked *featuregate.LockedError
	switch {
	case err == nil:
	case errors.As(err, &locked):
		log.Info("second pet blocked by plan")
		render.Status(r, http.StatusPaymentRequired)
		render.JSON(w, r, response.Upsell(string(locked.Feature), featuregate.ModePreviewUpsell))
		return
	case errors.Is(err, pets.ErrInvalidBirthDate):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("birth_date must be a past date in format YYYY-MM-DD"))
		return
	default:
		log.Error("failed to create pet", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create pet"))
		return
	}

	log.Info("pet created", slog.String("pet_id", pet.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(pet))
}
