package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	domain "statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/internal/analysis"
	"statflow/internal/narrative"
	"statflow/internal/validation"
)

// Format names an export target
type Format string

const (
	FormatXLSX     Format = "xlsx"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
	FormatPNG      Format = "png"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

var formatInfo = map[Format]struct {
	ext         string
	contentType string
}{
	FormatXLSX:     {"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	FormatHTML:     {"html", "text/html; charset=utf-8"},
	FormatMarkdown: {"md", "text/markdown; charset=utf-8"},
	FormatJSON:     {"json", "application/json"},
	FormatPNG:      {"png", "image/png"},
	FormatPDF:      {"pdf", "application/pdf"},
	FormatDOCX:     {"docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := formatInfo[format]; !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, s)
	}
	return format, nil
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string { return formatInfo[f].contentType }

// Package is the complete, self-describing input of every exporter
type Package struct {
	ID             core.PackageID           `json:"id"`
	ScreenID       core.ScreenID            `json:"screen_id"`
	RunID          core.RunID               `json:"run_id"`
	Kind           domain.Kind              `json:"kind"`
	Title          string                   `json:"title"`
	GeneratedAt    time.Time                `json:"generated_at"`
	Selection      dataset.Selection        `json:"selection"`
	Settings       domain.Settings          `json:"settings"`
	SampleSize     int                      `json:"sample_size"`
	Profiles       []dataset.ColumnProfile  `json:"profiles,omitempty"`
	Checks         []validation.Check       `json:"checks"`
	Interpretation narrative.Interpretation `json:"interpretation"`
	Tables         []Table                  `json:"tables"`
	Plot           string                   `json:"plot,omitempty"`
	RawResult      json.RawMessage          `json:"raw_result,omitempty"`
}

// NewPackage assembles the export package of a screen's last result
func NewPackage(snap analysis.Snapshot, now time.Time) Package {
	pkg := Package{
		ID:             core.NewPackageID(),
		ScreenID:       snap.ScreenID,
		RunID:          snap.RunID,
		Kind:           snap.Kind,
		Title:          snap.Kind.Title(),
		GeneratedAt:    now.UTC(),
		Selection:      snap.Selection,
		Settings:       snap.Settings,
		Profiles:       selectedProfiles(snap.Profiles, snap.Selection),
		Checks:         snap.Checks,
		Interpretation: snap.Interpretation,
		Plot:           snap.Plot,
	}
	if snap.Result != nil {
		pkg.SampleSize = snap.Result.SampleSize()
		pkg.Tables = Tables(snap.Result)
		pkg.RawResult = snap.Result.Raw()
	}
	return pkg
}

// Filename is the download name of the package in format
func (p Package) Filename(format Format) string {
	stamp := p.GeneratedAt.Format("20060102-150405")
	return fmt.Sprintf("%s-%s.%s", p.Kind, stamp, formatInfo[format].ext)
}

func selectedProfiles(profiles []dataset.ColumnProfile, sel dataset.Selection) []dataset.ColumnProfile {
	cols := sel.Columns()
	if len(cols) == 0 {
		return nil
	}
	byName := make(map[string]dataset.ColumnProfile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}
	out := make([]dataset.ColumnProfile, 0, len(cols))
	for _, c := range cols {
		if p, ok := byName[c]; ok {
			out = append(out, p)
		}
	}
	return out
}

var roleNames = map[dataset.Role]string{
	dataset.RoleTarget:  "Target",
	dataset.RoleFeature: "Feature",
	dataset.RoleGroup:   "Group",
	dataset.RoleTime:    "Time",
	dataset.RoleCluster: "Cluster",
}

// roleRows lists the selection as role/column pairs
func roleRows(sel dataset.Selection) [][]string {
	var rows [][]string
	for _, a := range sel.Assignments() {
		rows = append(rows, []string{roleNames[a.Role], a.Column})
	}
	return rows
}
