// Package coachingcourses собирает HTTP API сервиса курсов.
package coachingcourses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/admin/subscriptioncancel"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/admin/subscriptionevents"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/admin/subscriptionupdate"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/courses/list"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/courses/unlockstatus"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/health"
	"github.com/magabrotheeeer/coaching-courses/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/coaching-courses/internal/http/middlewarectx"
	"github.com/magabrotheeeer/coaching-courses/internal/metrics"
)

// AuthService нужен обработчикам входа, регистрации и JWT middleware.
type AuthService interface {
	login.Service
	register.Service
	middlewarectx.Service
}

// SubscriptionService нужен обработчикам подписки.
type SubscriptionService interface {
	read.Service
	subscriptionupdate.Service
	subscriptioncancel.Service
	subscriptionevents.Service
}

// Deps — зависимости маршрутов.
type Deps struct {
	Log           *slog.Logger
	Auth          AuthService
	Unlock        unlockstatus.Service
	Catalog       list.Service
	Subscriptions SubscriptionService
	Health        map[string]health.Pinger
	Metrics       *metrics.Metrics
	MetricsPage   http.Handler
	RPS           float64
	Burst         int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
	)

	jwt := middlewarectx.JWTMiddleware(d.Auth, d.Log)
	limit := middlewarectx.RateLimitMiddleware(d.Log, d.RPS, d.Burst)
	unlockStatus := unlockstatus.New(d.Log, d.Unlock, d.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.New(d.Log, d.Health).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/register", register.New(d.Log, d.Auth).ServeHTTP)
			r.Post("/login", login.New(d.Log, d.Auth).ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwt, limit)
			r.Get("/courses", list.New(d.Log, d.Catalog).ServeHTTP)
			r.Get("/courses/unlock-status", unlockStatus.ServeHTTP)
			r.Get("/subscription", read.New(d.Log, d.Subscriptions).ServeHTTP)

			r.Route("/admin/users/{uid}/subscription", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(d.Log))
				r.Put("/", subscriptionupdate.New(d.Log, d.Subscriptions).ServeHTTP)
				r.Post("/cancel", subscriptioncancel.New(d.Log, d.Subscriptions).ServeHTTP)
				r.Get("/events", subscriptionevents.New(d.Log, d.Subscriptions).ServeHTTP)
			})
		})
	})

	// Старый путь клиентского приложения.
	r.With(jwt, limit).Get("/api/courses/unlock-status", unlockStatus.ServeHTTP)

	r.Handle("/metrics", d.MetricsPage)
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
