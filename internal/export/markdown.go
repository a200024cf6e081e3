package export

import (
	"bytes"
	"fmt"
	"strings"

	"statflow/internal/validation"
)

// Markdown renders the report source. The plot is only embedded when
// embedPlot is set since it inlines the whole image.
func Markdown(pkg Package, embedPlot bool) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", pkg.Title)
	fmt.Fprintf(&b, "Generated %s, N = %d", pkg.GeneratedAt.Format("2006-01-02 15:04 MST"), pkg.SampleSize)
	if pkg.RunID != "" {
		fmt.Fprintf(&b, ", run `%s`", pkg.RunID)
	}
	b.WriteString("\n\n")

	b.WriteString("## Interpretation\n\n")
	b.WriteString(pkg.Interpretation.Narrative)
	b.WriteString("\n\n")
	for _, insight := range pkg.Interpretation.Insights {
		fmt.Fprintf(&b, "- %s\n", insight)
	}
	if len(pkg.Interpretation.Insights) > 0 {
		b.WriteString("\n")
	}

	for _, t := range pkg.Tables {
		fmt.Fprintf(&b, "## %s\n\n", t.Title)
		writeTable(&b, t.Columns, t.Rows)
	}

	if embedPlot && pkg.Plot != "" {
		fmt.Fprintf(&b, "## Plot\n\n![%s plot](data:image/png;base64,%s)\n\n", pkg.Title, pkg.Plot)
	}

	b.WriteString("## Variables\n\n")
	writeTable(&b, []string{"Role", "Column"}, roleRows(pkg.Selection))

	if desc := pkg.Settings.Describe(pkg.Kind); desc != "" {
		fmt.Fprintf(&b, "## Settings\n\n%s\n\n", desc)
	}

	if len(pkg.Checks) > 0 {
		b.WriteString("## Assumption checks\n\n")
		writeTable(&b, []string{"Check", "Status", "Severity", "Detail"}, checkRows(pkg.Checks))
	}
	return b.Bytes()
}

func writeTable(b *bytes.Buffer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	b.WriteString("|")
	for _, c := range columns {
		b.WriteString(" " + cell(c) + " |")
	}
	b.WriteString("\n|")
	b.WriteString(strings.Repeat(" --- |", len(columns)))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("|")
		for i := range columns {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			b.WriteString(" " + cell(v) + " |")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

func checkStatus(c validation.Check) string {
	if c.Passed {
		return "Passed"
	}
	return "Failed"
}

func checkRows(checks []validation.Check) [][]string {
	rows := make([][]string, len(checks))
	for i, c := range checks {
		rows[i] = []string{c.Label, checkStatus(c), string(c.Severity), c.Detail}
	}
	return rows
}
