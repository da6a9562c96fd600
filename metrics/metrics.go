// Package metrics records run and per-test outcomes for the optional
// prometheus endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/storageward/s3-acceptor/types"
)

const MetricsNamespace = "s3acceptor"

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of internal errors",
	}, []string{
		"error",
	})

	validationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "validations_total",
		Help:      "Count of test executions",
	}, []string{
		"endpoint",
		"run_id",
		"test_id",
		"group",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Summary counts of the most recent run",
	}, []string{
		"endpoint",
		"run_id",
		"result",
	})

	runDurationSeconds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall-clock duration of the most recent run",
	}, []string{
		"endpoint",
		"run_id",
	})

	productionReady = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "production_ready",
		Help:      "1 if the most recent validation run gated production ready",
	}, []string{
		"endpoint",
		"run_id",
	})
)

// RecordError counts an internal (non-test) error.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// RecordValidation counts one test execution outcome.
func RecordValidation(endpoint, runID, testID, group string, status types.TestStatus) {
	validationsTotal.WithLabelValues(endpoint, runID, testID, group, string(status)).Inc()
}

// RecordRun publishes the summary of a completed run.
func RecordRun(endpoint, runID string, summary types.Summary, duration time.Duration) {
	runResults.WithLabelValues(endpoint, runID, "total").Set(float64(summary.Total))
	runResults.WithLabelValues(endpoint, runID, "passed").Set(float64(summary.Passed))
	runResults.WithLabelValues(endpoint, runID, "failed").Set(float64(summary.Failed))
	runResults.WithLabelValues(endpoint, runID, "skipped").Set(float64(summary.Skipped))
	runResults.WithLabelValues(endpoint, runID, "errors").Set(float64(summary.Errors))
	runDurationSeconds.WithLabelValues(endpoint, runID).Set(duration.Seconds())
}

// RecordProductionReady publishes the readiness gate of a validation run.
func RecordProductionReady(endpoint, runID string, ready bool) {
	v := 0.0
	if ready {
		v = 1.0
	}
	productionReady.WithLabelValues(endpoint, runID).Set(v)
}
