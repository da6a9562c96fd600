package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/logging"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

// DefaultTestTimeout is the wall-clock bound placed on each child process.
const DefaultTestTimeout = 300 * time.Second

// SubprocessExecutor runs one test per isolated child process. The process
// boundary is the fault and hang isolation unit: a test that corrupts
// process state or blocks forever takes down only its own child.
type SubprocessExecutor struct {
	BinPath    string // executable to re-exec; defaults to the current binary
	ConfigPath string // harness config handed down to the child
	WorkDir    string // scratch directory for per-test result files
	Timeout    time.Duration
	Registry   *registry.Registry  // used to hydrate metadata on synthetic results
	Logs       *logging.FileLogger // optional per-test output capture
	Log        zerolog.Logger
}

// Isolated adapts the subprocess executor to the unit-executor shape so
// batch runs get per-test process isolation.
type Isolated struct {
	Exec *SubprocessExecutor
}

func (i Isolated) Run(ctx context.Context, unit types.TestUnit) types.TestResult {
	return i.Exec.Run(ctx, unit.Key)
}

// Run launches the child, waits with the wall-clock bound, and classifies
// the outcome. A child that cannot be launched degrades to an ERROR
// result; it never aborts the caller.
func (s *SubprocessExecutor) Run(ctx context.Context, id string) types.TestResult {
	result, stdout, stderr := s.run(ctx, id)
	if s.Logs != nil {
		if err := s.Logs.Consume(result, stdout, stderr); err != nil {
			s.Log.Warn().Err(err).Str("test", id).Msg("failed to persist test log")
		}
	}
	return result
}

func (s *SubprocessExecutor) run(ctx context.Context, id string) (types.TestResult, string, string) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTestTimeout
	}
	bin := s.BinPath
	if bin == "" {
		var err error
		if bin, err = os.Executable(); err != nil {
			return s.syntheticResult(id, types.TestStatusError,
				"Test error: cannot resolve test binary", err.Error()), "", ""
		}
	}

	start := time.Now()
	resultFile := filepath.Join(s.WorkDir, fmt.Sprintf("result-%s.json", id))
	defer os.Remove(resultFile)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"--exec-test", id, "--result-file", resultFile}
	if s.ConfigPath != "" {
		args = append(args, "--config", s.ConfigPath)
	}
	cmd := exec.CommandContext(cctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.Log.Debug().Str("test", id).Str("bin", bin).Dur("timeout", timeout).Msg("launching test process")
	runErr := cmd.Run()

	if cctx.Err() == context.DeadlineExceeded {
		result := s.syntheticResult(id, types.TestStatusTimeout,
			fmt.Sprintf("test timed out after %s", timeout), "")
		// Duration is the bound, not the time we actually waited.
		result.Duration = timeout.Seconds()
		result.Timestamp = types.FormatTimestamp(start)
		return result, stdout.String(), stderr.String()
	}

	// The structured result file is authoritative when present.
	if data, err := os.ReadFile(resultFile); err == nil {
		var result types.TestResult
		if jerr := json.Unmarshal(data, &result); jerr == nil && result.Status != "" {
			return result, stdout.String(), stderr.String()
		}
		s.Log.Warn().Str("test", id).Msg("malformed result file, falling back to output markers")
	}

	out := stripansi.Strip(stdout.String())
	if result, ok := s.parseMarkers(id, out, start); ok {
		return result, stdout.String(), stderr.String()
	}

	// No result file and no marker: either the child never launched or it
	// crashed before reporting.
	detail := firstLine(stderr.String())
	if detail == "" {
		detail = firstLine(out)
	}
	msg := "Test error: child process produced no result"
	if runErr != nil {
		msg = fmt.Sprintf("Test error: %v", runErr)
		if detail != "" {
			msg += ": " + detail
		}
	}
	result := s.syntheticResult(id, types.TestStatusError, msg, strings.TrimSpace(stderr.String()))
	result.Duration = time.Since(start).Seconds()
	result.Timestamp = types.FormatTimestamp(start)
	return result, stdout.String(), stderr.String()
}

// parseMarkers classifies a child from its stdout markers.
func (s *SubprocessExecutor) parseMarkers(id, out string, start time.Time) (types.TestResult, bool) {
	status := types.TestStatus("")
	message := ""
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		marker, rest, _ := strings.Cut(line, ":")
		switch marker {
		case MarkerPassed:
			status = types.TestStatusPassed
		case MarkerFailed:
			status, message = types.TestStatusFailed, strings.TrimSpace(rest)
		case MarkerError:
			status, message = types.TestStatusError, strings.TrimSpace(rest)
		case MarkerSkipped:
			status, message = types.TestStatusSkipped, strings.TrimSpace(rest)
		case MarkerTimeout:
			status, message = types.TestStatusTimeout, strings.TrimSpace(rest)
		default:
			continue
		}
	}
	if status == "" {
		return types.TestResult{}, false
	}

	result := s.syntheticResult(id, status, message, "")
	if status == types.TestStatusFailed || status == types.TestStatusError {
		result.Error = message
	}
	result.Duration = time.Since(start).Seconds()
	result.Timestamp = types.FormatTimestamp(start)
	return result, true
}

// syntheticResult builds a result for outcomes decided by the parent,
// hydrating name and group from the catalog when the ID is known.
func (s *SubprocessExecutor) syntheticResult(id string, status types.TestStatus, message, detail string) types.TestResult {
	result := types.TestResult{
		TestID:  id,
		Status:  status,
		Message: message,
		Error:   detail,
	}
	if s.Registry != nil {
		if unit, ok := s.Registry.GetByID(id); ok {
			result.TestID = unit.Key
			result.Name = unit.Name
			result.Group = unit.Group
		}
	}
	return result
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
