package flags

import (
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/storageward/s3-acceptor/runner"
)

const EnvVarPrefix = "S3_ACCEPTOR"

// FlagNameToEnvVarName derives the single env var for a flag name:
// dots and dashes become underscores under the shared prefix.
func FlagNameToEnvVarName(name, prefix string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return prefix + "_" + strings.ToUpper(name)
}

func prefixEnvVars(name string) []string {
	return []string{FlagNameToEnvVarName(name, EnvVarPrefix)}
}

var (
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("config"),
		Usage:   "Path to harness config file (eg. 'config.yaml')",
	}
	TestID = &cli.StringFlag{
		Name:    "test",
		Value:   "",
		EnvVars: prefixEnvVars("test"),
		Usage:   "Run a single test by numeric ID (eg. '1' or '001')",
	}
	Group = &cli.StringFlag{
		Name:    "group",
		Value:   "",
		EnvVars: prefixEnvVars("group"),
		Usage:   "Run only the tests of one group (eg. 'multipart')",
	}
	OutputDir = &cli.StringFlag{
		Name:    "output-dir",
		Value:   "results",
		EnvVars: prefixEnvVars("output-dir"),
		Usage:   "Directory to write the run report into",
	}
	OutputFormat = &cli.StringFlag{
		Name:    "output-format",
		Value:   "text",
		EnvVars: prefixEnvVars("output-format"),
		Usage:   "Report format: text, json, yaml or junit",
	}
	Verbose = &cli.BoolFlag{
		Name:    "verbose",
		Value:   false,
		EnvVars: prefixEnvVars("verbose"),
		Usage:   "Log each test as it runs",
	}
	ListTests = &cli.BoolFlag{
		Name:    "list-tests",
		Value:   false,
		EnvVars: prefixEnvVars("list-tests"),
		Usage:   "Print the registered tests and exit without running anything",
	}
	TestTimeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   runner.DefaultTestTimeout,
		EnvVars: prefixEnvVars("timeout"),
		Usage:   "Wall-clock bound per test process (eg. '300s', '5m')",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics-addr",
		Value:   "",
		EnvVars: prefixEnvVars("metrics-addr"),
		Usage:   "Address to serve prometheus metrics and health on (eg. ':7300'). Empty disables the server.",
	}
	ValidateOutputDir = &cli.StringFlag{
		Name:    "output-dir",
		Value:   "",
		EnvVars: prefixEnvVars("output-dir"),
		Usage:   "Directory to write the validation report into. Defaults to a timestamped directory under validation-results/.",
	}
	SuitesFile = &cli.StringFlag{
		Name:    "suites",
		Value:   "",
		EnvVars: prefixEnvVars("suites"),
		Usage:   "Path to a validation suite table override (eg. 'suites.yaml')",
	}
	Quick = &cli.BoolFlag{
		Name:    "quick",
		Value:   false,
		EnvVars: prefixEnvVars("quick"),
		Usage:   "Validate only the critical and error-handling suites",
	}

	// Child-process plumbing; callers never set these by hand.
	ExecTest = &cli.StringFlag{
		Name:   "exec-test",
		Hidden: true,
	}
	ResultFile = &cli.StringFlag{
		Name:   "result-file",
		Hidden: true,
	}
)

// RunnerFlags is the flag set of the test-runner binary.
var RunnerFlags = []cli.Flag{
	ConfigFile,
	TestID,
	Group,
	OutputDir,
	OutputFormat,
	Verbose,
	ListTests,
	TestTimeout,
	MetricsAddr,
	ExecTest,
	ResultFile,
}

// ValidateFlags is the flag set of the production-readiness gate binary.
var ValidateFlags = []cli.Flag{
	ConfigFile,
	SuitesFile,
	ValidateOutputDir,
	Verbose,
	TestTimeout,
	Quick,
	MetricsAddr,
	ExecTest,
	ResultFile,
}
