package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storageward/s3-acceptor/config"
	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

func newTestRunner(t *testing.T, cfg *config.Config, entries []registry.Entry) *Runner {
	t.Helper()
	reg, err := registry.New(registry.Config{
		Groups:  registry.DefaultGroups(),
		Entries: entries,
		Log:     zerolog.Nop(),
	})
	require.NoError(t, err)
	return &Runner{
		Registry: reg,
		Executor: &Executor{Cfg: cfg, Log: zerolog.Nop()},
		Cfg:      cfg,
		RunID:    "test-run",
		Log:      zerolog.Nop(),
	}
}

func passFn(ctx context.Context, client *s3.Client, cfg *config.Config) error { return nil }
func failFn(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return types.Assertf("assertion did not hold")
}
func errFn(ctx context.Context, client *s3.Client, cfg *config.Config) error {
	return errors.New("unexpected fault")
}

func TestRunnerRunAllInIDOrder(t *testing.T) {
	r := newTestRunner(t, config.Default(), []registry.Entry{
		{Group: "multipart", Name: "100_c", Fn: passFn},
		{Group: "basic", Name: "002_b", Fn: failFn},
		{Group: "basic", Name: "001_a", Fn: passFn},
	})

	results, err := r.Run(context.Background(), Selection{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "001", results[0].TestID)
	assert.Equal(t, "002", results[1].TestID)
	assert.Equal(t, "100", results[2].TestID)
	assert.Equal(t, types.TestStatusFailed, results[1].Status)
}

func TestRunnerSingleTestSelection(t *testing.T) {
	r := newTestRunner(t, config.Default(), []registry.Entry{
		{Group: "basic", Name: "001_a", Fn: passFn},
		{Group: "basic", Name: "002_b", Fn: passFn},
	})

	// Unpadded ID resolves to the same unit.
	results, err := r.Run(context.Background(), Selection{TestID: "2"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "002", results[0].TestID)
}

func TestRunnerUnknownTestIsError(t *testing.T) {
	r := newTestRunner(t, config.Default(), []registry.Entry{
		{Group: "basic", Name: "001_a", Fn: passFn},
	})

	_, err := r.Run(context.Background(), Selection{TestID: "042"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRunnerGroupSelection(t *testing.T) {
	r := newTestRunner(t, config.Default(), []registry.Entry{
		{Group: "basic", Name: "001_a", Fn: passFn},
		{Group: "errors", Name: "300_x", Fn: errFn},
	})

	results, err := r.Run(context.Background(), Selection{Group: "errors"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.TestStatusError, results[0].Status)

	_, err = r.Run(context.Background(), Selection{Group: "versioning"})
	require.Error(t, err)
}

func TestRunnerHonorsGroupEnableFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = map[string]bool{"multipart": false}
	r := newTestRunner(t, cfg, []registry.Entry{
		{Group: "basic", Name: "001_a", Fn: passFn},
		{Group: "multipart", Name: "100_c", Fn: passFn},
	})

	results, err := r.Run(context.Background(), Selection{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "001", results[0].TestID)

	// Explicit group selection still runs a disabled group.
	results, err = r.Run(context.Background(), Selection{Group: "multipart"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRunnerOneBadTestDoesNotAbortTheRest(t *testing.T) {
	r := newTestRunner(t, config.Default(), []registry.Entry{
		{Group: "basic", Name: "001_a", Fn: func(ctx context.Context, client *s3.Client, cfg *config.Config) error {
			panic("corrupted state")
		}},
		{Group: "basic", Name: "002_b", Fn: passFn},
	})

	results, err := r.Run(context.Background(), Selection{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.TestStatusError, results[0].Status)
	assert.Equal(t, types.TestStatusPassed, results[1].Status)
}
