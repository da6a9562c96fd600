package acceptor

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/flags"
)

// RunConfig holds the resolved configuration of a runner invocation.
type RunConfig struct {
	ConfigPath   string
	Cfg          *config.Config
	TestID       string // run a single test when set
	Group        string // run a single group when set
	OutputDir    string
	OutputFormat string
	Verbose      bool
	ListTests    bool
	Timeout      time.Duration
	MetricsAddr  string
	ExecTestID   string // child-process mode when set
	ResultFile   string
	Log          zerolog.Logger
}

// NewRunConfig assembles a RunConfig from cli flags, loading and
// validating the endpoint configuration.
func NewRunConfig(ctx *cli.Context, log zerolog.Logger) (*RunConfig, error) {
	cfg, err := loadEndpointConfig(ctx, log)
	if err != nil {
		return nil, err
	}

	rc := &RunConfig{
		ConfigPath:   ctx.String(flags.ConfigFile.Name),
		Cfg:          cfg,
		TestID:       ctx.String(flags.TestID.Name),
		Group:        ctx.String(flags.Group.Name),
		OutputDir:    ctx.String(flags.OutputDir.Name),
		OutputFormat: ctx.String(flags.OutputFormat.Name),
		Verbose:      ctx.Bool(flags.Verbose.Name),
		ListTests:    ctx.Bool(flags.ListTests.Name),
		Timeout:      ctx.Duration(flags.TestTimeout.Name),
		MetricsAddr:  ctx.String(flags.MetricsAddr.Name),
		ExecTestID:   ctx.String(flags.ExecTest.Name),
		ResultFile:   ctx.String(flags.ResultFile.Name),
		Log:          log,
	}
	if rc.TestID != "" && rc.Group != "" {
		return nil, fmt.Errorf("--test and --group are mutually exclusive")
	}
	return rc, nil
}

// ValidateConfig holds the resolved configuration of a validation
// (production-readiness gate) invocation.
type ValidateConfig struct {
	ConfigPath  string
	Cfg         *config.Config
	SuitesPath  string
	OutputDir   string
	Verbose     bool
	Timeout     time.Duration
	Quick       bool
	MetricsAddr string
	ExecTestID  string
	ResultFile  string
	Log         zerolog.Logger
}

// NewValidateConfig assembles a ValidateConfig from cli flags. The gate
// refuses to run without an explicit config path: falling back to the
// localhost defaults would validate the wrong endpoint. When no output
// directory is given the report lands in a timestamped directory so
// consecutive runs never clobber each other.
func NewValidateConfig(ctx *cli.Context, log zerolog.Logger) (*ValidateConfig, error) {
	if ctx.String(flags.ConfigFile.Name) == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := loadEndpointConfig(ctx, log)
	if err != nil {
		return nil, err
	}

	outputDir := ctx.String(flags.ValidateOutputDir.Name)
	if outputDir == "" {
		outputDir = filepath.Join("validation-results",
			time.Now().UTC().Format("20060102-150405"))
	}

	return &ValidateConfig{
		ConfigPath:  ctx.String(flags.ConfigFile.Name),
		Cfg:         cfg,
		SuitesPath:  ctx.String(flags.SuitesFile.Name),
		OutputDir:   outputDir,
		Verbose:     ctx.Bool(flags.Verbose.Name),
		Timeout:     ctx.Duration(flags.TestTimeout.Name),
		Quick:       ctx.Bool(flags.Quick.Name),
		MetricsAddr: ctx.String(flags.MetricsAddr.Name),
		ExecTestID:  ctx.String(flags.ExecTest.Name),
		ResultFile:  ctx.String(flags.ResultFile.Name),
		Log:         log,
	}, nil
}

func loadEndpointConfig(ctx *cli.Context, log zerolog.Logger) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(flags.ConfigFile.Name), log)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
