package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/metrics"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

// Selection narrows a batch run to one test or one group. The zero value
// selects every enabled test.
type Selection struct {
	TestID string
	Group  string
}

// UnitExecutor turns one test unit into one result. The in-process
// Executor and the subprocess-backed Isolated adapter both satisfy it.
type UnitExecutor interface {
	Run(ctx context.Context, unit types.TestUnit) types.TestResult
}

// Runner drives a sequence of test executions against the catalog.
// Tests run sequentially in ID order because test units mutate shared
// remote state.
type Runner struct {
	Registry *registry.Registry
	Executor UnitExecutor
	Cfg      *config.Config
	RunID    string
	Verbose  bool
	Log      zerolog.Logger
}

// Run executes the selected tests and returns one result per test, in
// execution order. A selection that matches nothing is an error; an
// individual test failing is not.
func (r *Runner) Run(ctx context.Context, sel Selection) ([]types.TestResult, error) {
	units, err := r.selectUnits(sel)
	if err != nil {
		return nil, err
	}

	results := make([]types.TestResult, 0, len(units))
	for _, unit := range units {
		if r.Verbose {
			r.Log.Info().Str("test", unit.Key).Str("name", unit.Name).Msg("running test")
		}
		result := r.Executor.Run(ctx, unit)
		metrics.RecordValidation(r.Cfg.Endpoint, r.RunID, result.TestID, result.Group, result.Status)

		if r.Verbose || !result.Status.IsPassing() {
			evt := r.Log.Info()
			if !result.Status.IsPassing() {
				evt = r.Log.Warn()
			}
			evt.Str("test", unit.Key).Str("status", string(result.Status)).
				Float64("duration", result.Duration).Str("message", result.Message).
				Msg("test finished")
		}
		results = append(results, result)

		if ctx.Err() != nil {
			return results, ctx.Err()
		}
	}
	return results, nil
}

func (r *Runner) selectUnits(sel Selection) ([]types.TestUnit, error) {
	switch {
	case sel.TestID != "":
		unit, ok := r.Registry.GetByID(sel.TestID)
		if !ok {
			return nil, fmt.Errorf("test %q not found in catalog", sel.TestID)
		}
		return []types.TestUnit{unit}, nil

	case sel.Group != "":
		units := r.Registry.GetByGroup(sel.Group)
		if len(units) == 0 {
			return nil, fmt.Errorf("group %q has no tests", sel.Group)
		}
		return units, nil

	default:
		var units []types.TestUnit
		for _, unit := range r.Registry.GetAll() {
			if !r.Cfg.GroupEnabled(unit.Group) {
				r.Log.Debug().Str("test", unit.Key).Str("group", unit.Group).
					Msg("group disabled in config, skipping")
				continue
			}
			units = append(units, unit)
		}
		if len(units) == 0 {
			return nil, fmt.Errorf("no tests to run")
		}
		return units, nil
	}
}
