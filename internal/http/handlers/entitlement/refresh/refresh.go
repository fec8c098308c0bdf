// Package refresh реализует HTTP-обработчик повторного чтения подписки,
// который клиент вызывает при возврате приложения на передний план.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/pawlog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/pawlog/internal/http/response"
	"github.com/magabrotheeeer/pawlog/internal/lib/sl"
	"github.com/magabrotheeeer/pawlog/internal/services/entitlement"
)

// Handler обрабатывает POST /entitlement/refresh.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service перечитывает подписку.
type Service interface {
	Refresh(ctx context.Context, userID, trigger string) (entitlement.State, error)
}

// Request тело запроса. Пустое тело означает foreground.
type Request struct {
	Trigger string `json:"trigger" validate:"omitempty,oneof=foreground manual" example:"foreground"`
}

// Result ответ обработчика.
type Result struct {
	Entitlement entitlement.State `json:"entitlement"`
	Refreshed   bool              `json:"refreshed"`
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// ServeHTTP godoc
// @Summary Обновить состояние подписки
// @Description Перечитывает запись подписки. При ошибке возвращается прежнее состояние и refreshed=false.
// @Tags Entitlement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request false "Источник обновления"
// @Success 200 {object} response.Response{data=Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /entitlement/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlement.refresh"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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
	if req.Trigger == "" {
		req.Trigger = entitlement.TriggerForeground
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	st, err := h.service.Refresh(r.Context(), userID, req.Trigger)
	if err != nil {
		log.Warn("refresh failed, keeping previous state", sl.Err(err))
	}
	render.JSON(w, r, response.OKWithData(Result{Entitlement: st, Refreshed: err == nil}))
}
