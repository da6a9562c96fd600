package reporting

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/storageward/s3-acceptor/types"
)

// RenderTable renders the console results table shown at the end of a run.
func RenderTable(data *ReportData) string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("S3 Compatibility Results (%d tests)", data.Summary.Total))

	t.AppendHeader(table.Row{"ID", "Test", "Group", "Duration", "Status", "Message"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Test", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Group", AutoMerge: true},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Message", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, r := range data.Results {
		msg := ""
		if r.Status != types.TestStatusPassed {
			msg = r.Message
		}
		t.AppendRow(table.Row{
			r.TestID,
			r.Name,
			r.Group,
			formatSeconds(r.Duration),
			string(r.Status),
			msg,
		})
	}

	s := data.Summary
	t.AppendFooter(table.Row{
		"", "", "",
		"",
		fmt.Sprintf("%d/%d passed", s.Passed, s.Total),
		fmt.Sprintf("failed=%d skipped=%d errors=%d", s.Failed, s.Skipped, s.Errors),
	})

	return t.Render() + "\n"
}

func formatSeconds(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(10 * time.Millisecond).String()
}
