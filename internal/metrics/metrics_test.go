package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue ищет в reg счётчик name с метками labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			for k, v := range labels {
				if got[k] != v {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/admin/users/{uid}/subscription/events", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{
		"/api/v1/admin/users/a/subscription/events",
		"/api/v1/admin/users/b/subscription/events",
		"/ok",
	} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, counterValue(t, reg, "coaching_courses_http_requests_total", map[string]string{
		"route":  "/api/v1/admin/users/{uid}/subscription/events",
		"method": http.MethodGet,
		"code":   "404",
	}))
	assert.Equal(t, 1.0, counterValue(t, reg, "coaching_courses_http_requests_total", map[string]string{
		"route": "/ok",
		"code":  "200",
	}))
}

func TestMetrics_NotifierCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.NotificationsPublished.Add(3)
	m.NotifierRuns.WithLabelValues("ok").Inc()
	m.ObserveUnlockStatus("not_found")

	assert.Equal(t, 3.0, counterValue(t, reg, "coaching_courses_course_unlocked_published_total", nil))
	assert.Equal(t, 1.0, counterValue(t, reg, "coaching_courses_notifier_runs_total", map[string]string{"result": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "coaching_courses_unlock_status_requests_total", map[string]string{"outcome": "not_found"}))
}

func TestNewMetrics_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}
