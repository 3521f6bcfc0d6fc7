// Package metrics регистрирует метрики Prometheus для HTTP API и рассыльщика.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coaching_courses"

// Metrics — набор метрик сервиса.
type Metrics struct {
	HTTPRequests           *prometheus.CounterVec
	HTTPDuration           *prometheus.HistogramVec
	NotificationsPublished prometheus.Counter
	NotifierRuns           *prometheus.CounterVec
	UnlockStatus           *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		NotificationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "course_unlocked_published_total",
			Help:      "course_unlocked messages sent to the broker.",
		}),
		NotifierRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifier_runs_total",
			Help:      "Notifier runs by result.",
		}, []string{"result"}),
		UnlockStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlock_status_requests_total",
			Help:      "Unlock status requests by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.NotificationsPublished, m.NotifierRuns, m.UnlockStatus)
	return m
}

// ObserveUnlockStatus учитывает исход запроса статуса курсов.
func (m *Metrics) ObserveUnlockStatus(outcome string) {
	m.UnlockStatus.WithLabelValues(outcome).Inc()
}

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(started).Seconds())
	})
}
