// Package logging persists per-test child output so failures can be
// inspected after a run without re-executing anything.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/acarl005/stripansi"

	"github.com/storageward/s3-acceptor/types"
)

const (
	// RunDirectoryPrefix is the standardized prefix for run directories.
	RunDirectoryPrefix = "testrun-"

	failedDirName   = "failed"
	summaryFileName = "summary.log"
)

// FileLogger writes one log file per executed test under a run-scoped
// directory. Output of tests that did not pass is duplicated into a
// failed/ subdirectory so the interesting files are easy to find.
type FileLogger struct {
	logDir    string
	failedDir string

	mu      sync.Mutex
	summary []string
}

// NewFileLogger creates the run directory layout under baseDir.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if runID == "" {
		return nil, fmt.Errorf("runID is required")
	}
	logDir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	failedDir := filepath.Join(logDir, failedDirName)
	if err := os.MkdirAll(failedDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %s: %w", failedDir, err)
	}
	return &FileLogger{logDir: logDir, failedDir: failedDir}, nil
}

// LogDir returns the run-scoped directory files are written into.
func (l *FileLogger) LogDir() string {
	return l.logDir
}

// Consume writes the captured output of one test. ANSI escapes are
// stripped so the files read cleanly in any pager.
func (l *FileLogger) Consume(result types.TestResult, stdout, stderr string) error {
	content := fmt.Sprintf("test:     %s %s\nstatus:   %s\nduration: %.3fs\n",
		result.TestID, result.Name, result.Status, result.Duration)
	if result.Message != "" {
		content += "message:  " + result.Message + "\n"
	}
	content += "\n--- stdout ---\n" + stripansi.Strip(stdout)
	if stderr != "" {
		content += "\n--- stderr ---\n" + stripansi.Strip(stderr)
	}

	name := fmt.Sprintf("%s.log", result.TestID)
	if result.TestID == "" {
		name = "unknown.log"
	}
	if err := os.WriteFile(filepath.Join(l.logDir, name), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing test log: %w", err)
	}
	if !result.Status.IsPassing() {
		if err := os.WriteFile(filepath.Join(l.failedDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing failed-test log: %w", err)
		}
	}

	l.mu.Lock()
	l.summary = append(l.summary, fmt.Sprintf("%s %-8s %s", result.TestID, result.Status, result.Name))
	l.mu.Unlock()
	return nil
}

// Complete writes the one-line-per-test summary file.
func (l *FileLogger) Complete() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	content := ""
	for _, line := range l.summary {
		content += line + "\n"
	}
	return os.WriteFile(filepath.Join(l.logDir, summaryFileName), []byte(content), 0o644)
}
