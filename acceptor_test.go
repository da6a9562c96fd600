package acceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/flags"
	"github.com/storageward/s3-acceptor/types"
)

func newApp(t *testing.T, cfg *RunConfig) *App {
	t.Helper()
	if cfg.Cfg == nil {
		cfg.Cfg = config.Default()
	}
	cfg.Log = zerolog.Nop()
	app, err := NewApp(cfg)
	require.NoError(t, err)
	return app
}

func TestListTestsRendersCatalog(t *testing.T) {
	app := newApp(t, &RunConfig{ListTests: true})

	var out bytes.Buffer
	require.NoError(t, app.Run(context.Background(), &out))

	listing := out.String()
	assert.Contains(t, listing, "001")
	assert.Contains(t, listing, "create_bucket")
	assert.Contains(t, listing, "multipart")
	assert.Contains(t, listing, "tests")
}

func TestExecChildUnknownTestReportsError(t *testing.T) {
	resultFile := filepath.Join(t.TempDir(), "result.json")
	app := newApp(t, &RunConfig{ExecTestID: "999", ResultFile: resultFile})

	var out bytes.Buffer
	require.NoError(t, app.Run(context.Background(), &out))

	data, err := os.ReadFile(resultFile)
	require.NoError(t, err)
	var result types.TestResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, types.TestStatusError, result.Status)
	assert.Contains(t, result.Message, "not found in catalog")
	assert.Contains(t, out.String(), "TEST_ERROR")
}

func TestNewValidateConfigRequiresConfigPath(t *testing.T) {
	app := &cli.App{
		Flags: flags.ValidateFlags,
		Action: func(c *cli.Context) error {
			_, err := NewValidateConfig(c, zerolog.Nop())
			return err
		},
	}
	err := app.Run([]string{"app"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config is required")
}

func TestNewValidateConfigWithConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: https://s3.example.com\nregion: us-east-1\n"), 0o644))

	app := &cli.App{
		Flags: flags.ValidateFlags,
		Action: func(c *cli.Context) error {
			cfg, err := NewValidateConfig(c, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, "https://s3.example.com", cfg.Cfg.Endpoint)
			assert.Equal(t, path, cfg.ConfigPath)
			assert.True(t, strings.HasPrefix(cfg.OutputDir, "validation-results"), cfg.OutputDir)
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"app", "--config", path}))
}

func TestRuntimeErrorWrapping(t *testing.T) {
	base := errors.New("bad config")
	err := NewRuntimeError(base)
	assert.True(t, IsRuntimeError(err))
	assert.True(t, IsRuntimeError(fmt.Errorf("outer: %w", err)))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsRuntimeError(base))
	assert.False(t, IsRuntimeError(nil))
}

func TestTestFailureErrorWrapping(t *testing.T) {
	err := NewTestFailureError("3 of 20 tests did not pass")
	assert.True(t, IsTestFailureError(err))
	assert.True(t, IsTestFailureError(fmt.Errorf("outer: %w", err)))
	assert.False(t, IsTestFailureError(errors.New("other")))
	assert.Contains(t, err.Error(), "3 of 20")
}
