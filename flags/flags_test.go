package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func allFlagSets() map[string][]cli.Flag {
	return map[string][]cli.Flag{
		"runner":   RunnerFlags,
		"validate": ValidateFlags,
	}
}

// TestNoRequiredFlags asserts that both binaries can start from defaults
// and environment alone.
func TestNoRequiredFlags(t *testing.T) {
	for name, set := range allFlagSets() {
		for _, flag := range set {
			reqFlag, ok := flag.(cli.RequiredFlag)
			require.True(t, ok)
			require.False(t, reqFlag.IsRequired(), "%s: flag %s", name, flag.Names()[0])
		}
	}
}

// TestUniqueFlags asserts that all flag names are unique within each
// flag set, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	for name, set := range allFlagSets() {
		seen := make(map[string]struct{})
		for _, flag := range set {
			flagName := flag.Names()[0]
			if _, ok := seen[flagName]; ok {
				t.Errorf("%s: duplicate flag %s", name, flagName)
				continue
			}
			seen[flagName] = struct{}{}
		}
	}
}

func TestHasEnvVar(t *testing.T) {
	hidden := map[string]bool{ExecTest.Name: true, ResultFile.Name: true}
	for _, flag := range RunnerFlags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			if hidden[flagName] {
				require.Empty(t, envFlags, "internal flags are not environment-settable")
				return
			}
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
		})
	}
}

func TestEnvVarFormat(t *testing.T) {
	for _, flag := range RunnerFlags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			if len(envFlags) == 0 {
				return
			}
			expected := FlagNameToEnvVarName(flagName, EnvVarPrefix)
			require.Equal(t, expected, envFlags[0])
		})
	}
}

func TestFlagNameToEnvVarName(t *testing.T) {
	assert.Equal(t, "S3_ACCEPTOR_OUTPUT_DIR", FlagNameToEnvVarName("output-dir", EnvVarPrefix))
	assert.Equal(t, "S3_ACCEPTOR_CONFIG", FlagNameToEnvVarName("config", EnvVarPrefix))
	assert.Equal(t, "S3_ACCEPTOR_METRICS_ADDR", FlagNameToEnvVarName("metrics.addr", EnvVarPrefix))
}

func TestDefaults(t *testing.T) {
	app := &cli.App{
		Flags: RunnerFlags,
		Action: func(ctx *cli.Context) error {
			assert.Equal(t, "results", ctx.String(OutputDir.Name))
			assert.Equal(t, "text", ctx.String(OutputFormat.Name))
			assert.False(t, ctx.Bool(Verbose.Name))
			assert.Equal(t, "5m0s", ctx.Duration(TestTimeout.Name).String())
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"app"}))
}
