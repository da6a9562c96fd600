package validation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/storageward/s3-acceptor/types"
)

// WriteReport persists the validation report as JSON plus a plain-text
// rendering under dir, creating the directory if needed. It returns the
// paths written.
func WriteReport(report *Report, dir string) (jsonPath, textPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating report directory %s: %w", dir, err)
	}

	jsonPath = filepath.Join(dir, "validation-report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("encoding validation report: %w", err)
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", jsonPath, err)
	}

	textPath = filepath.Join(dir, "validation-report.txt")
	if err := os.WriteFile(textPath, []byte(FormatText(report)), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", textPath, err)
	}
	return jsonPath, textPath, nil
}

// FormatText renders a report for terminals and log archives.
func FormatText(report *Report) string {
	var b strings.Builder
	b.WriteString("S3 Production Readiness Validation\n")
	b.WriteString("==================================\n")
	fmt.Fprintf(&b, "Run:       %s\n", report.RunID)
	fmt.Fprintf(&b, "Endpoint:  %s\n", report.Endpoint)
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt)
	b.WriteString("\n")

	for _, s := range report.Suites {
		marker := "PASS"
		if !s.Meets() {
			marker = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s", marker, s.Name)
		if s.Critical {
			b.WriteString(" (critical)")
		}
		fmt.Fprintf(&b, ": %.1f%% (required %.1f%%, %d tests)\n",
			s.PassRate, s.RequiredPassRate, len(s.Results))
		for _, r := range s.Results {
			if r.Status == types.TestStatusPassed {
				continue
			}
			fmt.Fprintf(&b, "    %s %s: %s", r.TestID, r.Name, r.Status)
			if r.Message != "" {
				fmt.Fprintf(&b, " (%s)", r.Message)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Overall pass rate: %.1f%% (threshold %.1f%%)\n",
		report.OverallPassRate, ReadinessThreshold)
	fmt.Fprintf(&b, "Tests: %d total, %d passed, %d failed, %d skipped, %d errors\n",
		report.Summary.Total, report.Summary.Passed, report.Summary.Failed,
		report.Summary.Skipped, report.Summary.Errors)
	if report.ProductionReady {
		b.WriteString("\nVERDICT: PRODUCTION READY\n")
	} else {
		b.WriteString("\nVERDICT: NOT PRODUCTION READY\n")
	}
	return b.String()
}
