package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/storageward/s3-acceptor/types"
)

func TestRecordValidation(t *testing.T) {
	RecordValidation("http://localhost:9000", "run-metrics-1", "001", "basic", types.TestStatusPassed)
	RecordValidation("http://localhost:9000", "run-metrics-1", "001", "basic", types.TestStatusPassed)

	got := testutil.ToFloat64(validationsTotal.WithLabelValues(
		"http://localhost:9000", "run-metrics-1", "001", "basic", "PASSED"))
	assert.Equal(t, 2.0, got)
}

func TestRecordRun(t *testing.T) {
	RecordRun("http://localhost:9000", "run-metrics-2", types.Summary{
		Total: 5, Passed: 3, Failed: 1, Skipped: 1,
	}, 2*time.Second)

	assert.Equal(t, 5.0, testutil.ToFloat64(runResults.WithLabelValues("http://localhost:9000", "run-metrics-2", "total")))
	assert.Equal(t, 3.0, testutil.ToFloat64(runResults.WithLabelValues("http://localhost:9000", "run-metrics-2", "passed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(runDurationSeconds.WithLabelValues("http://localhost:9000", "run-metrics-2")))
}

func TestRecordProductionReady(t *testing.T) {
	RecordProductionReady("http://localhost:9000", "run-metrics-3", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(productionReady.WithLabelValues("http://localhost:9000", "run-metrics-3")))

	RecordProductionReady("http://localhost:9000", "run-metrics-3", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(productionReady.WithLabelValues("http://localhost:9000", "run-metrics-3")))
}
