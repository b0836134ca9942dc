package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() {
		MustRegister(reg)
		MustRegister(reg)
	})
}

func TestAction(t *testing.T) {
	before := testutil.ToFloat64(ActionsTotal.WithLabelValues("poke", "throttled"))
	Action("poke", "throttled")
	assert.Equal(t, before+1, testutil.ToFloat64(ActionsTotal.WithLabelValues("poke", "throttled")))
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/users/{id}", "418")))
}
