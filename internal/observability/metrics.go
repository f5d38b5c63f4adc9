package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the grading pipeline, registered once via promauto at
// package load. The LLM clients and the orchestrator both record into these.
var (
	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routegrader",
		Subsystem: "llm",
		Name:      "request_duration_seconds",
		Help:      "Duration of LLM chat requests",
	}, []string{"provider", "model"})

	LLMRequestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrader",
		Subsystem: "llm",
		Name:      "request_failures_total",
		Help:      "Number of failed LLM chat requests",
	}, []string{"provider"})

	LLMRateLimitRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrader",
		Subsystem: "llm",
		Name:      "rate_limit_retries_total",
		Help:      "Number of retries triggered by provider rate limiting",
	}, []string{"provider"})

	GradingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "routegrader",
		Subsystem: "grading",
		Name:      "duration_seconds",
		Help:      "End-to-end duration of grading requests",
	}, []string{"mode"})

	GradingRepairAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrader",
		Subsystem: "grading",
		Name:      "repair_attempts_total",
		Help:      "Number of repair round-trips issued for malformed model output",
	}, []string{"mode"})

	GradingFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routegrader",
		Subsystem: "grading",
		Name:      "failures_total",
		Help:      "Number of grading requests that exhausted the repair budget",
	}, []string{"mode"})
)
