package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/storageward/s3-acceptor/types"
)

// Formatter renders a frozen report into one output format.
type Formatter interface {
	Format(data *ReportData) (string, error)
}

// Writer delivers a rendered report to its destination.
type Writer interface {
	Write(content string) error
}

// FileWriter writes reports to a file.
type FileWriter struct {
	path string
}

func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

func (fw *FileWriter) Write(content string) error {
	return os.WriteFile(fw.path, []byte(content), 0644)
}

// StdoutWriter writes reports to stdout.
type StdoutWriter struct{}

func (StdoutWriter) Write(content string) error {
	_, err := fmt.Print(content)
	return err
}

// ForFormat returns the formatter and file extension for a format name.
func ForFormat(name string) (Formatter, string, error) {
	switch name {
	case "json":
		return &JSONFormatter{}, "json", nil
	case "yaml":
		return &YAMLFormatter{}, "yaml", nil
	case "text":
		return &TextFormatter{}, "txt", nil
	case "junit":
		return &JUnitFormatter{}, "xml", nil
	default:
		return nil, "", fmt.Errorf("unknown output format %q (want json, yaml, text or junit)", name)
	}
}

// structuredReport is the schema shared by the JSON and YAML formatters.
type structuredReport struct {
	Timestamp string             `json:"timestamp" yaml:"timestamp"`
	Endpoint  string             `json:"endpoint" yaml:"endpoint"`
	RunID     string             `json:"run_id" yaml:"run_id"`
	Summary   types.Summary      `json:"summary" yaml:"summary"`
	Results   []types.TestResult `json:"results" yaml:"results"`
}

func newStructuredReport(data *ReportData) structuredReport {
	results := data.Results
	if results == nil {
		results = []types.TestResult{}
	}
	return structuredReport{
		Timestamp: types.FormatTimestamp(data.GeneratedAt),
		Endpoint:  data.Endpoint,
		RunID:     data.RunID,
		Summary:   data.Summary,
		Results:   results,
	}
}

// JSONFormatter renders the structured record as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(data *ReportData) (string, error) {
	out, err := json.MarshalIndent(newStructuredReport(data), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON report: %w", err)
	}
	return string(out) + "\n", nil
}

// YAMLFormatter renders the structured record as YAML.
type YAMLFormatter struct{}

func (YAMLFormatter) Format(data *ReportData) (string, error) {
	out, err := yaml.Marshal(newStructuredReport(data))
	if err != nil {
		return "", fmt.Errorf("marshaling YAML report: %w", err)
	}
	return string(out), nil
}

// statusGlyph is the single-character annotation used in text reports.
func statusGlyph(status types.TestStatus) string {
	switch status {
	case types.TestStatusPassed:
		return "✓"
	case types.TestStatusFailed:
		return "✗"
	case types.TestStatusError:
		return "!"
	case types.TestStatusSkipped:
		return "-"
	case types.TestStatusTimeout:
		return "⏱"
	default:
		return "?"
	}
}

// TextFormatter renders the human-readable narrative report.
type TextFormatter struct{}

func (TextFormatter) Format(data *ReportData) (string, error) {
	var b strings.Builder
	b.WriteString("S3 Compatibility Test Results\n")
	b.WriteString("=============================\n")
	fmt.Fprintf(&b, "Generated: %s\n", types.FormatTimestamp(data.GeneratedAt))
	if data.Endpoint != "" {
		fmt.Fprintf(&b, "Endpoint:  %s\n", data.Endpoint)
	}
	b.WriteString("\n")

	s := data.Summary
	fmt.Fprintf(&b, "Total:   %d\n", s.Total)
	if s.Total > 0 {
		fmt.Fprintf(&b, "Passed:  %d (%.1f%%)\n", s.Passed, pct(s.Passed, s.Total))
		fmt.Fprintf(&b, "Failed:  %d (%.1f%%)\n", s.Failed, pct(s.Failed, s.Total))
		fmt.Fprintf(&b, "Skipped: %d (%.1f%%)\n", s.Skipped, pct(s.Skipped, s.Total))
		fmt.Fprintf(&b, "Errors:  %d (%.1f%%)\n", s.Errors, pct(s.Errors, s.Total))
	} else {
		fmt.Fprintf(&b, "Passed:  %d\n", s.Passed)
		fmt.Fprintf(&b, "Failed:  %d\n", s.Failed)
		fmt.Fprintf(&b, "Skipped: %d\n", s.Skipped)
		fmt.Fprintf(&b, "Errors:  %d\n", s.Errors)
	}
	b.WriteString("\n")

	for _, r := range data.Results {
		fmt.Fprintf(&b, "%s [%s] %s (%s) %.2fs\n", statusGlyph(r.Status), r.TestID, r.Name, r.Group, r.Duration)
		if r.Status != types.TestStatusPassed && r.Message != "" {
			fmt.Fprintf(&b, "    %s\n", r.Message)
		}
	}
	return b.String(), nil
}

func pct(count, total int) float64 {
	return float64(count) * 100 / float64(total)
}
