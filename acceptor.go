// Package acceptor wires the test catalog, the subprocess runner and the
// reporting layer into the two command-line surfaces: the test runner and
// the production-readiness gate.
package acceptor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/storageward/s3-acceptor/logging"
	"github.com/storageward/s3-acceptor/metrics"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/reporting"
	"github.com/storageward/s3-acceptor/runner"
	"github.com/storageward/s3-acceptor/s3client"
	"github.com/storageward/s3-acceptor/service"
	"github.com/storageward/s3-acceptor/validation"

	// Register the test catalog.
	_ "github.com/storageward/s3-acceptor/checks"
)

// App is the assembled test-runner application.
type App struct {
	cfg *RunConfig
	reg *registry.Registry
}

// NewApp builds the registry from the registered catalog and validates
// the run configuration against it.
func NewApp(cfg *RunConfig) (*App, error) {
	reg, err := registry.New(registry.Config{
		Groups:  registry.DefaultGroups(),
		Entries: registry.Registered(),
		Log:     cfg.Log,
	})
	if err != nil {
		return nil, NewRuntimeError(fmt.Errorf("building test registry: %w", err))
	}
	return &App{cfg: cfg, reg: reg}, nil
}

// Run executes the selected tests, writes the report and prints the
// summary table. Test failures surface as a TestFailureError so the
// process exits 1; harness problems surface as RuntimeError (exit 2).
func (a *App) Run(ctx context.Context, stdout io.Writer) error {
	if a.cfg.ExecTestID != "" {
		return a.execChild(ctx, stdout)
	}
	if a.cfg.ListTests {
		return a.listTests(stdout)
	}

	if a.cfg.MetricsAddr != "" {
		svc := service.New(a.cfg.Log)
		svc.Start(a.cfg.MetricsAddr)
		defer svc.Shutdown(context.Background()) //nolint:errcheck
	}

	runID := uuid.New().String()
	start := time.Now()
	a.cfg.Log.Info().
		Str("run_id", runID).
		Str("endpoint", a.cfg.Cfg.Endpoint).
		Msg("starting test run")

	workDir, err := os.MkdirTemp("", "s3-acceptor-*")
	if err != nil {
		return NewRuntimeError(fmt.Errorf("creating scratch directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	logs, err := logging.NewFileLogger(a.cfg.OutputDir, runID)
	if err != nil {
		return NewRuntimeError(err)
	}

	exec := &runner.SubprocessExecutor{
		ConfigPath: a.cfg.ConfigPath,
		WorkDir:    workDir,
		Timeout:    a.cfg.Timeout,
		Registry:   a.reg,
		Logs:       logs,
		Log:        a.cfg.Log,
	}
	rn := &runner.Runner{
		Registry: a.reg,
		Executor: runner.Isolated{Exec: exec},
		Cfg:      a.cfg.Cfg,
		RunID:    runID,
		Verbose:  a.cfg.Verbose,
		Log:      a.cfg.Log,
	}

	results, err := rn.Run(ctx, runner.Selection{TestID: a.cfg.TestID, Group: a.cfg.Group})
	if err != nil {
		metrics.RecordError("run_failed")
		return NewRuntimeError(err)
	}
	if err := logs.Complete(); err != nil {
		a.cfg.Log.Warn().Err(err).Msg("failed to write log summary")
	}

	data := reporting.NewReportData(runID, a.cfg.Cfg.Endpoint, time.Now(), results)
	metrics.RecordRun(a.cfg.Cfg.Endpoint, runID, data.Summary, time.Since(start))

	if err := a.writeReport(data); err != nil {
		return NewRuntimeError(err)
	}

	fmt.Fprintln(stdout, reporting.RenderTable(data))

	if failed := data.Summary.Failed + data.Summary.Errors; failed > 0 {
		return NewTestFailureError(fmt.Sprintf("%d of %d tests did not pass", failed, data.Summary.Total))
	}
	return nil
}

func (a *App) writeReport(data *reporting.ReportData) error {
	formatter, ext, err := reporting.ForFormat(a.cfg.OutputFormat)
	if err != nil {
		return err
	}
	content, err := formatter.Format(data)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}
	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", a.cfg.OutputDir, err)
	}
	path := filepath.Join(a.cfg.OutputDir, "results."+ext)
	if err := reporting.NewFileWriter(path).Write(content); err != nil {
		return err
	}
	a.cfg.Log.Info().Str("path", path).Msg("report written")
	return nil
}

// execChild is the hidden per-test child mode. The child always exits 0
// when it manages to report; the parent classifies the outcome from the
// result file.
func (a *App) execChild(ctx context.Context, stdout io.Writer) error {
	client, err := s3client.New(ctx, a.cfg.Cfg)
	if err != nil {
		return NewRuntimeError(fmt.Errorf("creating client: %w", err))
	}
	exec := &runner.Executor{Client: client, Cfg: a.cfg.Cfg, Log: a.cfg.Log}
	runner.ExecChild(ctx, a.reg, exec, a.cfg.ExecTestID, a.cfg.ResultFile, stdout)
	return nil
}

func (a *App) listTests(stdout io.Writer) error {
	t := table.NewWriter()
	t.SetOutputMirror(stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Group"})
	for _, unit := range a.reg.GetAll() {
		t.AppendRow(table.Row{unit.Key, unit.Name, unit.Group})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d tests", len(a.reg.GetAll())), ""})
	t.Render()
	return nil
}

// RunValidation executes the production-readiness gate: run every suite
// through the subprocess executor, persist the report and render the
// verdict. A not-ready endpoint surfaces as a TestFailureError (exit 1).
func RunValidation(ctx context.Context, cfg *ValidateConfig, stdout io.Writer) error {
	if cfg.ExecTestID != "" {
		app, err := NewApp(&RunConfig{
			ConfigPath: cfg.ConfigPath,
			Cfg:        cfg.Cfg,
			ExecTestID: cfg.ExecTestID,
			ResultFile: cfg.ResultFile,
			Log:        cfg.Log,
		})
		if err != nil {
			return err
		}
		return app.Run(ctx, stdout)
	}

	suites := validation.DefaultSuites()
	if cfg.SuitesPath != "" {
		var err error
		if suites, err = validation.LoadSuites(cfg.SuitesPath); err != nil {
			return NewRuntimeError(err)
		}
	}
	if cfg.Quick {
		suites = validation.QuickSuites(suites)
	}

	reg, err := registry.New(registry.Config{
		Groups:  registry.DefaultGroups(),
		Entries: registry.Registered(),
		Log:     cfg.Log,
	})
	if err != nil {
		return NewRuntimeError(fmt.Errorf("building test registry: %w", err))
	}

	if cfg.MetricsAddr != "" {
		svc := service.New(cfg.Log)
		svc.Start(cfg.MetricsAddr)
		defer svc.Shutdown(context.Background()) //nolint:errcheck
	}

	workDir, err := os.MkdirTemp("", "s3-acceptor-*")
	if err != nil {
		return NewRuntimeError(fmt.Errorf("creating scratch directory: %w", err))
	}
	defer os.RemoveAll(workDir)

	runID := uuid.New().String()
	logs, err := logging.NewFileLogger(cfg.OutputDir, runID)
	if err != nil {
		return NewRuntimeError(err)
	}

	exec := &runner.SubprocessExecutor{
		ConfigPath: cfg.ConfigPath,
		WorkDir:    workDir,
		Timeout:    cfg.Timeout,
		Registry:   reg,
		Logs:       logs,
		Log:        cfg.Log,
	}

	orch, err := validation.NewOrchestrator(exec, suites, runID, cfg.Cfg.Endpoint, cfg.Log)
	if err != nil {
		return NewRuntimeError(err)
	}

	report, err := orch.Run(ctx)
	if err != nil {
		metrics.RecordError("validation_failed")
		return NewRuntimeError(err)
	}
	if err := logs.Complete(); err != nil {
		cfg.Log.Warn().Err(err).Msg("failed to write log summary")
	}

	jsonPath, _, err := validation.WriteReport(report, cfg.OutputDir)
	if err != nil {
		return NewRuntimeError(err)
	}
	cfg.Log.Info().Str("path", jsonPath).Msg("validation report written")

	fmt.Fprintln(stdout, validation.FormatText(report))

	if !report.ProductionReady {
		return NewTestFailureError("endpoint is not production ready")
	}
	return nil
}
