package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_actions_total",
		Help: "User actions processed, by action and outcome.",
	}, []string{"action", "outcome"})

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_deliveries_total",
		Help: "Events handed to live sessions, by event type.",
	}, []string{"event"})

	DroppedClients = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "socialhub_dropped_clients_total",
		Help: "Sessions disconnected because their send buffer was full.",
	})

	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "socialhub_connected_clients",
		Help: "Live websocket sessions.",
	})

	RelayErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_relay_errors_total",
		Help: "Failures publishing to or decoding from the cross-instance relay.",
	}, []string{"op"})

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "socialhub_http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialhub_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// MustRegister registers the package collectors once.
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			ActionsTotal,
			DeliveriesTotal,
			DroppedClients,
			ConnectedClients,
			RelayErrors,
			httpRequestsTotal,
			httpRequestDuration,
		)
	})
}

// Action records one processed action.
func Action(action, outcome string) {
	ActionsTotal.WithLabelValues(action, outcome).Inc()
}

// Middleware records count and latency per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		labels := []string{r.Method, route, strconv.Itoa(status)}
		httpRequestsTotal.WithLabelValues(labels...).Inc()
		httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}
