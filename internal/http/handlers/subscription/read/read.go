// Package read отдаёт клиенту его текущую подписку.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/month"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// Service читает подписку пользователя.
type Service interface {
	Get(ctx context.Context, userUID uuid.UUID) (*models.Subscription, error)
}

// Handler обрабатывает GET /api/v1/subscription.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ServeHTTP godoc
// @Summary Текущая подписка
// @Description Возвращает подписку клиента или null, если её нет.
// @Description Для активной подписки renews_at — дата следующего списания.
// @Tags Subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Warn("user uid missing in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Get(r.Context(), userUID)
	if errors.Is(err, storage.ErrUserNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to read subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscription"))
		return
	}

	data := map[string]any{"subscription": sub}
	if sub.IsActive() {
		data["renews_at"] = month.NextRenewal(sub.StartedAt, sub.BillingPeriod.Months(), h.now())
	}
	render.JSON(w, r, response.StatusOKWithData(data))
}
