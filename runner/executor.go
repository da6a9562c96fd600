// Package runner executes test units and classifies their outcomes.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/types"
)

// Executor runs exactly one test unit in-process and produces exactly one
// TestResult. It never lets a fault propagate past its boundary: panics
// and errors alike are converted into a classified result.
//
// The Executor enforces no timeout of its own; a hung test blocks the
// caller. Batch validation always drives tests through the subprocess
// wrapper, which bounds them.
type Executor struct {
	Client *s3.Client
	Cfg    *config.Config
	Log    zerolog.Logger
}

// panicFault marks an error that originated from a recovered panic so the
// classifier can attach the stack trace.
type panicFault struct {
	value any
	stack []byte
}

func (p *panicFault) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// Run invokes the unit's entry point with the shared client handle and
// configuration, measuring wall-clock duration.
func (e *Executor) Run(ctx context.Context, unit types.TestUnit) types.TestResult {
	start := time.Now()
	result := types.TestResult{
		TestID:    unit.Key,
		Name:      unit.Name,
		Group:     unit.Group,
		Timestamp: types.FormatTimestamp(start),
	}

	err := e.invoke(ctx, unit)
	result.Duration = time.Since(start).Seconds()
	classify(&result, err)

	e.Log.Debug().Str("test", unit.Key).Str("status", string(result.Status)).
		Float64("duration", result.Duration).Msg("test executed")
	return result
}

func (e *Executor) invoke(ctx context.Context, unit types.TestUnit) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &panicFault{value: rec, stack: debug.Stack()}
		}
	}()
	if unit.Fn == nil {
		return fmt.Errorf("test unit %s has no entry point", unit.Key)
	}
	return unit.Fn(ctx, e.Client, e.Cfg)
}

// classify maps the entry point's return into the status taxonomy:
// nil is PASSED, an assertion fault is FAILED with the assertion text as
// the message, an explicit skip is SKIPPED, anything else is ERROR.
func classify(result *types.TestResult, err error) {
	if err == nil {
		result.Status = types.TestStatusPassed
		return
	}

	var assertion *types.AssertionError
	if errors.As(err, &assertion) {
		result.Status = types.TestStatusFailed
		result.Message = assertion.Msg
		result.Error = assertion.Msg
		return
	}

	var skip *types.SkipError
	if errors.As(err, &skip) {
		result.Status = types.TestStatusSkipped
		result.Message = skip.Reason
		return
	}

	var pf *panicFault
	if errors.As(err, &pf) {
		result.Status = types.TestStatusError
		result.Message = "Test error: " + pf.Error()
		result.Error = pf.Error() + "\n" + string(pf.stack)
		return
	}

	result.Status = types.TestStatusError
	result.Message = "Test error: " + err.Error()
	result.Error = err.Error()
}
