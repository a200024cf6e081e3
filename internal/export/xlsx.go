package export

import (
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"statflow/domain/dataset"
	"statflow/internal/thresholds"
)

const (
	sheetSummary   = "Summary"
	sheetResults   = "Results"
	sheetSelection = "Selection"
	sheetChecks    = "Checks"
)

// Workbook renders the package as an xlsx file with one sheet each for the
// summary, the result tables, the variables and the checks.
func Workbook(pkg Package) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{sheetResults, sheetSelection, sheetChecks} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, bold: bold}

	w.summary(pkg)
	w.results(pkg.Tables)
	w.selection(pkg)
	w.checks(pkg)
	if w.err != nil {
		return nil, w.err
	}
	if pkg.Plot != "" {
		if err := addPlot(f, pkg.Plot); err != nil {
			log.Printf("[Export] Workbook for %s written without plot: %v", pkg.ID, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so sheet building reads top to bottom
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, r int, values []string, header bool) {
	if w.err != nil {
		return
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	start, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetSheetRow(sheet, start, &cells); w.err != nil || !header || len(values) == 0 {
		return
	}
	end, err := excelize.CoordinatesToCellName(len(values), r)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, start, end, w.bold)
}

func (w *sheetWriter) width(sheet, from, to string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(sheet, from, to, width)
	}
}

func (w *sheetWriter) summary(pkg Package) {
	interp := pkg.Interpretation
	significant := "No"
	if interp.Significant {
		significant = "Yes"
	}
	p := na
	if interp.PValue != nil {
		p = thresholds.Fixed(*interp.PValue, 4)
	}
	rows := [][]string{
		{"Analysis", pkg.Title},
		{"Generated", pkg.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Run", string(pkg.RunID)},
		{"N", fmt.Sprint(pkg.SampleSize)},
		{"Significant", significant},
		{"p", p},
		{"Stars", interp.Stars},
		{"Effect", orNA(interp.EffectLabel)},
		{"Narrative", interp.Narrative},
	}
	for i, insight := range interp.Insights {
		label := ""
		if i == 0 {
			label = "Insights"
		}
		rows = append(rows, []string{label, insight})
	}
	for i, r := range rows {
		w.row(sheetSummary, i+1, r, false)
		if w.err == nil && r[0] != "" {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			w.err = w.f.SetCellStyle(sheetSummary, cell, cell, w.bold)
		}
	}
	w.width(sheetSummary, "A", "A", 14)
	w.width(sheetSummary, "B", "B", 100)
}

func (w *sheetWriter) results(tables []Table) {
	r := 1
	widest := 2
	for _, t := range tables {
		w.row(sheetResults, r, []string{t.Title}, true)
		w.row(sheetResults, r+1, t.Columns, true)
		r += 2
		for _, values := range t.Rows {
			w.row(sheetResults, r, values, false)
			r++
		}
		r++
		if len(t.Columns) > widest {
			widest = len(t.Columns)
		}
	}
	last, _ := excelize.ColumnNumberToName(widest)
	w.width(sheetResults, "A", "A", 28)
	if widest > 1 {
		w.width(sheetResults, "B", last, 14)
	}
}

func (w *sheetWriter) selection(pkg Package) {
	w.row(sheetSelection, 1, []string{"Role", "Column", "Type", "Missing", "Distinct", "Mean", "Std. dev.", "Min", "Max"}, true)
	profiles := make(map[string]dataset.ColumnProfile, len(pkg.Profiles))
	for _, p := range pkg.Profiles {
		profiles[p.Name] = p
	}
	for i, rr := range roleRows(pkg.Selection) {
		values := rr
		if p, ok := profiles[rr[1]]; ok {
			values = append(values, string(p.Type), fmt.Sprint(p.Missing), fmt.Sprint(p.Distinct),
				num(p.Mean, 3), num(p.StdDev, 3), num(p.Min, 3), num(p.Max, 3))
		}
		w.row(sheetSelection, i+2, values, false)
	}
	r := len(roleRows(pkg.Selection)) + 3
	if desc := pkg.Settings.Describe(pkg.Kind); desc != "" {
		w.row(sheetSelection, r, []string{"Settings", desc}, false)
	}
	w.width(sheetSelection, "A", "B", 18)
}

func (w *sheetWriter) checks(pkg Package) {
	w.row(sheetChecks, 1, []string{"Check", "Status", "Severity", "Detail"}, true)
	for i, values := range checkRows(pkg.Checks) {
		w.row(sheetChecks, i+2, values, false)
	}
	w.width(sheetChecks, "A", "A", 28)
	w.width(sheetChecks, "D", "D", 80)
}

func addPlot(f *excelize.File, plot string) error {
	img, err := base64.StdEncoding.DecodeString(strings.TrimSpace(plot))
	if err != nil {
		return fmt.Errorf("decode plot: %w", err)
	}
	return f.AddPictureFromBytes(sheetSummary, "D1", &excelize.Picture{
		Extension: ".png",
		File:      img,
		Format:    &excelize.GraphicOptions{ScaleX: 0.75, ScaleY: 0.75},
	})
}
