package resil

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// retryAttemptsTotal counts retries actually scheduled (not first tries).
	retryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_retry_attempts_total",
			Help: "Total number of retries scheduled",
		},
		[]string{"check", "category"},
	)

	// retryExhaustedTotal counts operations that failed after their final attempt.
	retryExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_retry_exhausted_total",
			Help: "Total number of operations that exhausted their retries",
		},
		[]string{"check", "category"},
	)

	// breakerStateGauge exposes the current breaker state (0=closed, 1=open, 2=half-open).
	breakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resil_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"breaker"},
	)

	// breakerRejectedTotal counts calls rejected while a breaker was open.
	breakerRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_breaker_rejected_total",
			Help: "Total number of calls rejected by an open circuit breaker",
		},
		[]string{"breaker"},
	)

	// degradedOutcomesTotal counts combinator outcomes by disposition.
	degradedOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_degraded_outcomes_total",
			Help: "Total number of degraded check outcomes",
		},
		[]string{"check", "disposition"},
	)

	// logEntriesTotal counts retained log entries by level.
	logEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resil_log_entries_total",
			Help: "Total number of retained log entries",
		},
		[]string{"level"},
	)
)

func checkLabel(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
