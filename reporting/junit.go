package reporting

import (
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/storageward/s3-acceptor/types"
)

// JUnitFormatter renders CI-interchange XML: one testsuite element per
// distinct group present in the results.
type JUnitFormatter struct{}

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitOutcome `xml:"failure,omitempty"`
	Error     *junitOutcome `xml:"error,omitempty"`
	Skipped   *junitOutcome `xml:"skipped,omitempty"`
}

type junitOutcome struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

func (JUnitFormatter) Format(data *ReportData) (string, error) {
	byGroup := make(map[string][]types.TestResult)
	for _, r := range data.Results {
		byGroup[r.Group] = append(byGroup[r.Group], r)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	doc := junitTestSuites{}
	for _, group := range groups {
		results := byGroup[group]
		suite := junitTestSuite{Name: group, Tests: len(results)}

		var total float64
		for _, r := range results {
			total += r.Duration
			tc := junitTestCase{
				Name:      r.Name,
				ClassName: r.Group,
				Time:      fmt.Sprintf("%.3f", r.Duration),
			}
			outcome := &junitOutcome{Message: r.Message, Content: r.Error}
			switch r.Status {
			case types.TestStatusFailed, types.TestStatusTimeout:
				suite.Failures++
				tc.Failure = outcome
			case types.TestStatusError:
				suite.Errors++
				tc.Error = outcome
			case types.TestStatusSkipped:
				suite.Skipped++
				tc.Skipped = outcome
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Time = fmt.Sprintf("%.3f", total)
		doc.Suites = append(doc.Suites, suite)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JUnit report: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
