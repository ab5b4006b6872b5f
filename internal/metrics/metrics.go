// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CapturesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_analysis_captures_total",
		Help: "Total number of frame captures, by outcome",
	}, []string{"outcome"})

	CaptureDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "video_analysis_capture_duration_seconds",
		Help:    "Duration of exact-frame extraction",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_analysis_renders_total",
		Help: "Total number of frame renders, by outcome",
	}, []string{"outcome"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "video_analysis_render_duration_seconds",
		Help:    "Duration of the filter, rescale and annotation composition",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	ArchivesBuiltTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_analysis_archives_built_total",
		Help: "Total number of export deliverables built, by format",
	}, []string{"format"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "video_analysis_active_sessions",
		Help: "Number of active video sessions (0 or 1)",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "video_analysis_http_requests_total",
		Help: "Total number of HTTP requests, by method and status code",
	}, []string{"method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "video_analysis_http_request_duration_seconds",
		Help:    "Duration of HTTP request handling",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// Outcome maps an operation's error to the label used on outcome counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
