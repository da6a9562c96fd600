package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

// Stdout markers emitted by the child process. The structured result file
// is authoritative; the markers exist so a parent can still classify a
// child that died before writing it.
const (
	MarkerPassed  = "TEST_PASSED"
	MarkerFailed  = "TEST_FAILED"
	MarkerError   = "TEST_ERROR"
	MarkerSkipped = "TEST_SKIPPED"
	MarkerTimeout = "TEST_TIMEOUT"
)

// ExecChild is the hidden child-process mode: run one test in-process,
// write the JSON-encoded result to resultFile and print the outcome
// marker. It always produces a result, even for an unknown test ID.
func ExecChild(ctx context.Context, reg *registry.Registry, exec *Executor, id, resultFile string, stdout io.Writer) types.TestResult {
	var result types.TestResult

	unit, ok := reg.GetByID(id)
	if !ok {
		result = types.TestResult{
			TestID:  id,
			Status:  types.TestStatusError,
			Message: fmt.Sprintf("Test error: test %q not found in catalog", id),
			Error:   fmt.Sprintf("test %q not found in catalog", id),
		}
		if key, err := registry.NormalizeID(id); err == nil {
			result.TestID = key
		}
	} else {
		result = exec.Run(ctx, unit)
	}

	if resultFile != "" {
		if data, err := json.Marshal(result); err == nil {
			if werr := os.WriteFile(resultFile, data, 0644); werr != nil {
				exec.Log.Warn().Err(werr).Str("path", resultFile).Msg("failed to write result file")
			}
		}
	}

	fmt.Fprintln(stdout, markerLine(result))
	return result
}

func markerLine(result types.TestResult) string {
	switch result.Status {
	case types.TestStatusPassed:
		return MarkerPassed
	case types.TestStatusFailed:
		return MarkerFailed + ": " + result.Message
	case types.TestStatusSkipped:
		return MarkerSkipped + ": " + result.Message
	case types.TestStatusTimeout:
		return MarkerTimeout + ": " + result.Message
	default:
		return MarkerError + ": " + result.Message
	}
}
