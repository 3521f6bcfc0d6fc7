// Package subscriptionupdate применяет подтверждённую оплату к подписке клиента:
// активация, продление, смена уровня или периода.
package subscriptionupdate

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
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// Request — новое состояние подписки.
type Request struct {
	Tier          string `json:"tier" validate:"required,oneof=free social core pro premium"`
	BillingPeriod string `json:"billing_period" validate:"required,oneof=monthly yearly"`
}

// Service меняет подписку.
type Service interface {
	Change(ctx context.Context, userUID uuid.UUID, tier models.Tier, period models.BillingPeriod) (*models.Subscription, models.EventKind, error)
}

// Handler обрабатывает PUT /api/v1/admin/users/{uid}/subscription.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменение подписки
// @Description Активирует, продлевает или меняет уровень и период подписки пользователя.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Param request body Request true "Уровень и период"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{uid}/subscription [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptionupdate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		log.Warn("invalid uid in url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user uid"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub, kind, err := h.service.Change(r.Context(), userUID, models.Tier(req.Tier), models.BillingPeriod(req.BillingPeriod))
	if errors.Is(err, storage.ErrUserNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to change subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change subscription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
		"event":        kind,
	}))
}
