// Package reporting turns sequences of test results into reports in the
// supported interchange formats.
package reporting

import (
	"sort"
	"time"

	"github.com/storageward/s3-acceptor/types"
)

// ReportData is the frozen input every formatter consumes. Formatters are
// pure functions over it: identical data always renders to identical
// bytes.
type ReportData struct {
	RunID       string
	Endpoint    string
	GeneratedAt time.Time
	Results     []types.TestResult
	Summary     types.Summary
}

// NewReportData freezes a result sequence for formatting. Results are
// sorted by test ID and the summary is computed once; formatters never
// share mutable state.
func NewReportData(runID, endpoint string, generatedAt time.Time, results []types.TestResult) *ReportData {
	sorted := make([]types.TestResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TestID < sorted[j].TestID })

	return &ReportData{
		RunID:       runID,
		Endpoint:    endpoint,
		GeneratedAt: generatedAt,
		Results:     sorted,
		Summary:     Summarize(sorted),
	}
}

// Summarize reduces a result sequence to its status counts. Timeouts fold
// into the failed bucket so passed+failed+skipped+errors always equals
// total.
func Summarize(results []types.TestResult) types.Summary {
	s := types.Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case types.TestStatusPassed:
			s.Passed++
		case types.TestStatusFailed, types.TestStatusTimeout:
			s.Failed++
		case types.TestStatusSkipped:
			s.Skipped++
		default:
			s.Errors++
		}
	}
	return s
}
