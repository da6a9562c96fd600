package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storageward/s3-acceptor/registry"
	"github.com/storageward/s3-acceptor/types"
)

// writeStubChild creates an executable shell script standing in for the
// re-exec'd test binary. The subprocess executor passes the result file
// path as the fourth argument.
func writeStubChild(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub child scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "stub-child.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func newSubprocessExecutor(t *testing.T, bin string, timeout time.Duration) *SubprocessExecutor {
	t.Helper()
	reg, err := registry.New(registry.Config{
		Groups: map[string]registry.Range{"basic": {Min: 1, Max: 99}},
		Entries: []registry.Entry{
			{Group: "basic", Name: "001_stub", Fn: nil},
		},
		Log: zerolog.Nop(),
	})
	require.NoError(t, err)
	return &SubprocessExecutor{
		BinPath:  bin,
		WorkDir:  t.TempDir(),
		Timeout:  timeout,
		Registry: reg,
		Log:      zerolog.Nop(),
	}
}

func TestSubprocessResultFileIsAuthoritative(t *testing.T) {
	// The child writes a FAILED result file but prints a pass marker; the
	// structured file must win.
	bin := writeStubChild(t, `printf '{"test_id":"001","name":"001_stub","group":"basic","status":"FAILED","duration":0.5,"message":"boom","error":"boom","timestamp":"2025-06-01T12:00:00Z"}' > "$4"
echo "TEST_PASSED"`)
	s := newSubprocessExecutor(t, bin, 10*time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusFailed, result.Status)
	assert.Equal(t, "boom", result.Message)
	assert.Equal(t, 0.5, result.Duration)
}

func TestSubprocessMarkerFallback(t *testing.T) {
	bin := writeStubChild(t, `echo "TEST_FAILED: Size mismatch: expected 10, got 5"`)
	s := newSubprocessExecutor(t, bin, 10*time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusFailed, result.Status)
	assert.Equal(t, "Size mismatch: expected 10, got 5", result.Message)
	assert.Equal(t, "001_stub", result.Name, "metadata hydrated from the catalog")
	assert.Equal(t, "basic", result.Group)
}

func TestSubprocessPassMarker(t *testing.T) {
	bin := writeStubChild(t, `echo "TEST_PASSED"`)
	s := newSubprocessExecutor(t, bin, 10*time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusPassed, result.Status)
}

func TestSubprocessTimeout(t *testing.T) {
	bin := writeStubChild(t, `sleep 5`)
	s := newSubprocessExecutor(t, bin, 200*time.Millisecond)

	startedAt := time.Now()
	result := s.Run(context.Background(), "001")
	assert.Less(t, time.Since(startedAt), 3*time.Second, "child must be killed at the bound")

	assert.Equal(t, types.TestStatusTimeout, result.Status)
	// Duration reports the bound, not the blocked time.
	assert.Equal(t, 0.2, result.Duration)
	assert.Contains(t, result.Message, "timed out after")
}

func TestSubprocessLaunchFailure(t *testing.T) {
	s := newSubprocessExecutor(t, filepath.Join(t.TempDir(), "does-not-exist"), time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusError, result.Status)
	assert.Contains(t, result.Message, "Test error:")
}

func TestSubprocessCrashWithNoOutput(t *testing.T) {
	bin := writeStubChild(t, `echo "something broke" >&2
exit 3`)
	s := newSubprocessExecutor(t, bin, 10*time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusError, result.Status)
	assert.Contains(t, result.Message, "something broke")
	assert.Contains(t, result.Error, "something broke")
}

func TestSubprocessStripsANSIFromMarkers(t *testing.T) {
	bin := writeStubChild(t, `printf '\033[32mTEST_PASSED\033[0m\n'`)
	s := newSubprocessExecutor(t, bin, 10*time.Second)

	result := s.Run(context.Background(), "001")
	assert.Equal(t, types.TestStatusPassed, result.Status)
}
