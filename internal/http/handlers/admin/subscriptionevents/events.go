// Package subscriptionevents отдаёт журнал изменений подписки клиента.
package subscriptionevents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service читает журнал.
type Service interface {
	Events(ctx context.Context, userUID uuid.UUID, limit, offset int) ([]models.SubscriptionEvent, error)
}

// Handler обрабатывает GET /api/v1/admin/users/{uid}/subscription/events.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Журнал подписки
// @Description События изменения подписки, новые первыми.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param uid path string true "UID пользователя"
// @Param limit query int false "Размер страницы, до 100"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/users/{uid}/subscription/events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.subscriptionevents"

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

	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil || limit < 1 || limit > maxLimit {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("limit must be between 1 and 100"))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("offset must be a non-negative integer"))
		return
	}

	events, err := h.service.Events(r.Context(), userUID, limit, offset)
	if errors.Is(err, storage.ErrUserNotFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to list subscription events", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list subscription events"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"events": events,
		"limit":  limit,
		"offset": offset,
	}))
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
