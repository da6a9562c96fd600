package validation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/storageward/s3-acceptor/metrics"
	"github.com/storageward/s3-acceptor/reporting"
	"github.com/storageward/s3-acceptor/types"
)

// SuiteStatus tracks a suite through the validation run.
type SuiteStatus string

const (
	SuiteNotStarted SuiteStatus = "NOT_STARTED"
	SuiteRunning    SuiteStatus = "RUNNING"
	SuiteMeets      SuiteStatus = "MEETS_REQUIREMENT"
	SuiteFails      SuiteStatus = "FAILS_REQUIREMENT"
)

// TestExecutor runs a single test by catalog ID and always yields a
// result, never an error. runner.SubprocessExecutor satisfies this.
type TestExecutor interface {
	Run(ctx context.Context, id string) types.TestResult
}

// SuiteResult is the outcome of one suite.
type SuiteResult struct {
	Name             string             `json:"name"`
	Description      string             `json:"description,omitempty"`
	Critical         bool               `json:"critical"`
	Status           SuiteStatus        `json:"status"`
	RequiredPassRate float64            `json:"required_pass_rate"`
	PassRate         float64            `json:"pass_rate"`
	Results          []types.TestResult `json:"results"`

	rawRate float64
}

// Meets reports whether the suite cleared its own requirement. The
// comparison uses the unrounded rate so a suite is never failed by
// display rounding.
func (s *SuiteResult) Meets() bool {
	return s.Status == SuiteMeets
}

// Report is the full outcome of a validation run.
type Report struct {
	RunID           string        `json:"run_id"`
	Endpoint        string        `json:"endpoint"`
	GeneratedAt     string        `json:"timestamp"`
	Suites          []SuiteResult `json:"suites"`
	Summary         types.Summary `json:"summary"`
	OverallPassRate float64       `json:"overall_pass_rate"`
	ProductionReady bool          `json:"production_ready"`
	Duration        float64       `json:"duration"`
}

// Orchestrator walks a suite table against one endpoint and renders the
// production-readiness verdict.
type Orchestrator struct {
	Executor TestExecutor
	Suites   []Suite
	RunID    string
	Endpoint string
	Log      zerolog.Logger

	// now is swappable for deterministic report timestamps in tests.
	now func() time.Time
}

// NewOrchestrator wires an orchestrator over a suite table. The table
// must be non-empty; a run with nothing to validate is a harness
// misconfiguration, not a test failure.
func NewOrchestrator(exec TestExecutor, suites []Suite, runID, endpoint string, log zerolog.Logger) (*Orchestrator, error) {
	if len(suites) == 0 {
		return nil, fmt.Errorf("no validation suites configured")
	}
	return &Orchestrator{
		Executor: exec,
		Suites:   suites,
		RunID:    runID,
		Endpoint: endpoint,
		Log:      log,
		now:      time.Now,
	}, nil
}

// Run executes every suite in table order, tests in listed order, and
// assembles the report. Individual test outcomes never abort the run;
// only a cancelled context does.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := o.now()
	report := &Report{
		RunID:       o.RunID,
		Endpoint:    o.Endpoint,
		GeneratedAt: types.FormatTimestamp(start),
	}

	var all []types.TestResult
	for _, suite := range o.Suites {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("validation run interrupted: %w", err)
		}
		sr, err := o.runSuite(ctx, suite)
		if err != nil {
			return nil, err
		}
		all = append(all, sr.Results...)
		report.Suites = append(report.Suites, sr)
	}

	report.Summary = reporting.Summarize(all)
	report.Duration = o.now().Sub(start).Seconds()

	overall := passRate(all)
	report.OverallPassRate = roundRate(overall)

	ready := overall >= ReadinessThreshold
	for _, sr := range report.Suites {
		if !sr.Meets() {
			ready = false
		}
		if sr.Critical && !sr.Meets() {
			ready = false
		}
	}
	report.ProductionReady = ready

	metrics.RecordRun(o.Endpoint, o.RunID, report.Summary, o.now().Sub(start))
	metrics.RecordProductionReady(o.Endpoint, o.RunID, ready)

	o.Log.Info().
		Bool("production_ready", ready).
		Float64("overall_pass_rate", report.OverallPassRate).
		Int("suites", len(report.Suites)).
		Msg("validation run complete")
	return report, nil
}

func (o *Orchestrator) runSuite(ctx context.Context, suite Suite) (SuiteResult, error) {
	sr := SuiteResult{
		Name:             suite.Name,
		Description:      suite.Description,
		Critical:         suite.Critical,
		Status:           SuiteRunning,
		RequiredPassRate: suite.RequiredPassRate,
	}
	o.Log.Info().Str("suite", suite.Name).Int("tests", len(suite.TestIDs)).Msg("running suite")

	if len(suite.TestIDs) == 0 {
		// An empty suite with a positive requirement can never clear it.
		if suite.RequiredPassRate > 0 {
			sr.Status = SuiteFails
		} else {
			sr.Status = SuiteMeets
		}
		return sr, nil
	}

	for _, id := range suite.TestIDs {
		if ctx.Err() != nil {
			break
		}
		result := o.Executor.Run(ctx, id)
		metrics.RecordValidation(o.Endpoint, o.RunID, result.TestID, result.Group, result.Status)
		o.Log.Debug().
			Str("suite", suite.Name).
			Str("test", result.TestID).
			Str("status", string(result.Status)).
			Msg("test complete")
		sr.Results = append(sr.Results, result)
	}

	// A cancellation that cut the suite short must not grade it on
	// partial results.
	if err := ctx.Err(); err != nil {
		return SuiteResult{}, fmt.Errorf("validation run interrupted: %w", err)
	}

	sr.rawRate = passRate(sr.Results)
	sr.PassRate = roundRate(sr.rawRate)
	if sr.rawRate >= suite.RequiredPassRate {
		sr.Status = SuiteMeets
	} else {
		sr.Status = SuiteFails
	}
	return sr, nil
}

// passRate is passed / total * 100. Only PASSED counts toward the rate;
// skips are excused from the exit-code contract but not from readiness.
func passRate(results []types.TestResult) float64 {
	if len(results) == 0 {
		return 0
	}
	passed := 0
	for _, r := range results {
		if r.Status == types.TestStatusPassed {
			passed++
		}
	}
	return float64(passed) / float64(len(results)) * 100
}

func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}

// SortedSuiteNames lists the suite names in a report in table order.
func (r *Report) SortedSuiteNames() []string {
	names := make([]string, len(r.Suites))
	for i, s := range r.Suites {
		names[i] = s.Name
	}
	return names
}

// FailedSuites lists suites that missed their requirement, critical
// first, then by name.
func (r *Report) FailedSuites() []SuiteResult {
	var failed []SuiteResult
	for _, s := range r.Suites {
		if !s.Meets() {
			failed = append(failed, s)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		if failed[i].Critical != failed[j].Critical {
			return failed[i].Critical
		}
		return failed[i].Name < failed[j].Name
	})
	return failed
}
