// Package unlockstatus отдаёт клиенту список опубликованных курсов с признаком
// блокировки и датой открытия, плюс сводку по ним.
package unlockstatus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/coaching-courses/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
	"github.com/magabrotheeeer/coaching-courses/internal/storage"
)

// Исходы запроса для метрик.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Service строит отчёт о разблокировке для пользователя.
type Service interface {
	Status(ctx context.Context, userUID uuid.UUID) (*models.UnlockReport, error)
}

// Observer учитывает исход запроса.
type Observer interface {
	ObserveUnlockStatus(outcome string)
}

// Handler обрабатывает GET /api/v1/courses/unlock-status.
type Handler struct {
	log      *slog.Logger
	service  Service
	observer Observer
}

// New создает Handler. observer может быть nil.
func New(log *slog.Logger, service Service, observer Observer) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		observer: observer,
	}
}

// ServeHTTP godoc
// @Summary Статус разблокировки курсов
// @Description Возвращает опубликованные курсы в порядке позиции с признаком блокировки и датой открытия, а также сводку.
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UnlockReport
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /courses/unlock-status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.courses.unlockstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Warn("user uid missing in context")
		h.observe(OutcomeUnauthorized)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	log = log.With(slog.String("user_uid", userUID.String()))

	report, err := h.service.Status(r.Context(), userUID)
	if errors.Is(err, storage.ErrUserNotFound) {
		log.Warn("user not found")
		h.observe(OutcomeNotFound)
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}
	if err != nil {
		log.Error("failed to build unlock status", sl.Err(err))
		h.observe(OutcomeError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}

	log.Debug("unlock status built",
		slog.Int("unlocked", report.Summary.UnlockedCount),
		slog.Int("total", report.Summary.TotalCount),
	)
	h.observe(OutcomeOK)
	render.JSON(w, r, report)
}

func (h *Handler) observe(outcome string) {
	if h.observer != nil {
		h.observer.ObserveUnlockStatus(outcome)
	}
}
