package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagesift_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagesift_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	pagesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagesift_pages_processed_total",
			Help: "Total number of pages processed",
		},
		[]string{"source", "status"}, // source: image, pdf; status: ok, failed
	)

	pageProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagesift_page_processing_duration_seconds",
			Help:    "Page processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	regionsDetected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagesift_regions_detected",
			Help:    "Number of regions detected per page",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"type"}, // type: text, image
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pagesift_websocket_connections_active",
			Help: "Number of active WebSocket connections",
		},
	)
)

// metricsHandler exposes the Prometheus metrics endpoint.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// recordHTTPRequest records request metrics for the logging middleware.
func recordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// recordPage records per-page processing metrics.
func recordPage(source string, failed bool, duration time.Duration, textRegions, imageRegions int) {
	status := "ok"
	if failed {
		status = "failed"
	}
	pagesProcessedTotal.WithLabelValues(source, status).Inc()
	pageProcessingDuration.WithLabelValues(source).Observe(duration.Seconds())
	regionsDetected.WithLabelValues("text").Observe(float64(textRegions))
	regionsDetected.WithLabelValues("image").Observe(float64(imageRegions))
}
