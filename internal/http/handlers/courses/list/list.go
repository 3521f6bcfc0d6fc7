// Package list отдаёт опубликованный каталог курсов без статуса разблокировки.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

// Service отдаёт опубликованные курсы.
type Service interface {
	PublishedCourses(ctx context.Context) ([]models.Course, error)
}

// Handler обрабатывает GET /api/v1/courses.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог курсов
// @Tags Courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /courses [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.courses.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	courses, err := h.service.PublishedCourses(r.Context())
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list courses"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"courses": courses,
	}))
}
