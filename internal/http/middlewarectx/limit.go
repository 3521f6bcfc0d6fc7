package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/coaching-courses/internal/http/response"
)

// RateLimitMiddleware ограничивает общий поток запросов к группе маршрутов
// до rps в секунду с запасом burst.
func RateLimitMiddleware(log *slog.Logger, rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Warn("too many requests", slog.String("request_id", middleware.GetReqID(r.Context())))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
