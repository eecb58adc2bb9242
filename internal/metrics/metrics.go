// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Requests counts HTTP requests by route template and status code.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2tank_http_requests_total",
		Help: "HTTP requests by route and status",
	}, []string{"route", "status"})

	// Duration tracks handler latency by route template.
	Duration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "h2tank_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"route"})

	// MonteCarloSamples counts stress-strength and burst samples drawn.
	MonteCarloSamples = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2tank_monte_carlo_samples_total",
		Help: "Monte-Carlo samples drawn by kind",
	}, []string{"kind"})

	// Jobs counts asynchronous job transitions by kind and status.
	Jobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2tank_jobs_total",
		Help: "Asynchronous job transitions by kind and status",
	}, []string{"kind", "status"})

	// DesignsEvaluated counts designs run through the batch evaluator.
	DesignsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "h2tank_designs_evaluated_total",
		Help: "Designs evaluated by source",
	}, []string{"source"})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records Requests and Duration under the matched mux route template.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		Requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
