package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_predictions_total",
			Help: "Total number of predictions served, by mode (model or fallback)",
		},
		[]string{"mode"},
	)

	LLMAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_llm_attempts_total",
			Help: "Total number of LLM provider attempts by outcome",
		},
		[]string{"task", "provider", "outcome"},
	)

	LLMAttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_llm_attempt_duration_seconds",
			Help:    "Duration of LLM provider attempts in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	TemplateFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_template_fallbacks_total",
			Help: "Total number of template results served after every provider failed",
		},
		[]string{"task"},
	)

	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_search_requests_total",
			Help: "Total number of web-search requests by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	ResumeUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_resume_uploads_total",
			Help: "Total number of resume uploads by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "career_model_loaded",
			Help: "1 when the encoder bundle and classifier are loaded, 0 in fallback mode",
		},
	)
)

// Outcome label values shared by the counters above.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeEmpty   = "empty"
)

// SetModelLoaded records whether the model bundle is available.
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
