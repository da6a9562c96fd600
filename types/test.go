package types

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/storageward/s3-acceptor/config"
)

// TestStatus represents the possible outcomes of a test execution
type TestStatus string

const (
	TestStatusPassed  TestStatus = "PASSED"
	TestStatusFailed  TestStatus = "FAILED"
	TestStatusError   TestStatus = "ERROR"
	TestStatusSkipped TestStatus = "SKIPPED"
	TestStatusTimeout TestStatus = "TIMEOUT"
)

// IsPassing reports whether the status counts as a successful outcome
// for exit codes and logging. Pass-rate math is stricter: only PASSED
// counts there, so a skip is excused from failure without inflating a
// rate.
// Skipped tests are not failures.
func (s TestStatus) IsPassing() bool {
	return s == TestStatusPassed || s == TestStatusSkipped
}

// TestFunc is the calling convention every test unit implements. A nil
// return means the check held. Failure is signalled through the returned
// error: *AssertionError for a compatibility assertion that did not hold,
// *SkipError for a test that declines to run, anything else for an
// unexpected fault.
type TestFunc func(ctx context.Context, client *s3.Client, cfg *config.Config) error

// TestUnit is one executable compatibility check with a stable numeric ID.
// Units are immutable once registered.
type TestUnit struct {
	ID    int      // stable numeric identifier
	Key   string   // ID zero-padded to 3 digits; the catalog key
	Name  string   // registered name, e.g. "001_create_bucket"
	Group string   // category the unit belongs to
	Fn    TestFunc // entry point
}

// TestResult captures the outcome of a single test execution. Exactly one
// result is produced per execution attempt and it is never mutated after
// creation.
type TestResult struct {
	TestID    string     `json:"test_id" yaml:"test_id"`
	Name      string     `json:"name" yaml:"name"`
	Group     string     `json:"group" yaml:"group"`
	Status    TestStatus `json:"status" yaml:"status"`
	Duration  float64    `json:"duration" yaml:"duration"` // wall-clock seconds
	Message   string     `json:"message" yaml:"message"`
	Error     string     `json:"error" yaml:"error"` // full diagnostic, empty unless FAILED/ERROR
	Timestamp string     `json:"timestamp" yaml:"timestamp"` // execution start, ISO-8601
}

// Summary holds the counts derived from a sequence of results. Timeouts are
// counted as failures so that the four buckets always partition the total.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Errors  int `json:"errors" yaml:"errors"`
}

// FormatTimestamp renders an execution start time the way every report
// serializes it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// AssertionError signals that a test unit's own correctness check did not
// hold. The message is the assertion text shown to the user.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string { return e.Msg }

// Assertf builds an AssertionError from a format string.
func Assertf(format string, args ...any) *AssertionError {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}

// SkipError signals that a test unit declined to run, e.g. because the
// feature under test is not applicable to the endpoint.
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string { return e.Reason }

// Skipf builds a SkipError from a format string.
func Skipf(format string, args ...any) *SkipError {
	return &SkipError{Reason: fmt.Sprintf(format, args...)}
}
