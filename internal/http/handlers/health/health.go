// Package health отвечает на проверку живости с состоянием базы и кеша.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
	"github.com/magabrotheeeer/coaching-courses/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает GET /api/v1/health.
type Handler struct {
	log     *slog.Logger
	checks  map[string]Pinger
	timeout time.Duration
}

// New создает Handler, проверяющий checks по имени.
func New(log *slog.Logger, checks map[string]Pinger) *Handler {
	return &Handler{
		log:     log,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.log.Warn("dependency is unavailable", slog.String("op", op), slog.String("dependency", name), sl.Err(err))
			result[name] = "unavailable"
			healthy = false
			continue
		}
		result[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError, Data: result})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(result))
}
