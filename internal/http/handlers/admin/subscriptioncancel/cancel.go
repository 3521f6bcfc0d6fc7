// Package subscriptioncancel отменяет подписку клиента.
package subscriptioncancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	services "github.com/magabrotheeeer/coaching-courses/internal/services/subscription"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// Service отменяет подписку.
type Service interface {
	Cancel(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error)
}

// Handler обрабатывает POST /api/v1/admin/users/{uid}/subscription/cancel.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отмена подписки
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Подписка не активна"
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{uid}/subscription/cancel [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptioncancel"

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

	sub, err := h.service.Cancel(r.Context(), userUID)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case errors.Is(err, services.ErrSubscriptionNotActive):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, response.Error("subscription is not active"))
		return
	case err != nil:
		log.Error("failed to cancel subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": sub,
	}))
}
