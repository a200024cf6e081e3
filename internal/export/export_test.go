package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	domain "statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/internal/analysis"
	apperrors "statflow/internal/errors"
	"statflow/internal/narrative"
	"statflow/internal/validation"
)

var generatedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func decode(t *testing.T, kind domain.Kind, body string) domain.Result {
	t.Helper()
	r, err := domain.Decode(kind, json.RawMessage(body))
	require.NoError(t, err)
	return r
}

func regressionSnapshot(t *testing.T) analysis.Snapshot {
	t.Helper()
	result := decode(t, domain.KindRegression, `{
		"n": 45, "r_squared": 0.371, "adj_r_squared": 0.341, "f_statistic": 12.4,
		"df_model": 2, "df_resid": 42, "f_p_value": 0.00006,
		"coefficients": [
			{"name": "const", "estimate": 1.2, "std_error": 0.4, "statistic": 3, "p_value": 0.004},
			{"name": "x1", "estimate": 0.85, "std_error": 0.2, "statistic": 4.25, "p_value": 0.0001, "vif": 1.8},
			{"name": "x|2", "estimate": -0.1, "std_error": 0.2, "statistic": -0.5, "p_value": 0.62, "vif": 1.8}
		]}`)
	sel := dataset.Selection{Target: "y", Features: []string{"x1", "x|2"}}
	ictx := narrative.Context{Selection: sel, Settings: domain.DefaultSettings(domain.KindRegression)}
	mean, sd := 10.0, 2.0
	return analysis.Snapshot{
		ScreenID:  core.ScreenID("screen-1"),
		RunID:     core.RunID("run-1"),
		Kind:      domain.KindRegression,
		Selection: sel,
		Settings:  domain.DefaultSettings(domain.KindRegression),
		Checks: []validation.Check{
			{Label: validation.LabelSampleSize, Passed: true, Detail: "N = 45", Severity: validation.SeverityCritical},
			{Label: validation.LabelMissingValues, Passed: false, Detail: "Missing cells (y: 1)", Severity: validation.SeverityInfo},
		},
		Profiles: []dataset.ColumnProfile{
			{Name: "y", Type: dataset.TypeNumeric, Count: 45, Mean: &mean, StdDev: &sd},
			{Name: "x1", Type: dataset.TypeNumeric, Count: 45},
			{Name: "unused", Type: dataset.TypeCategorical, Count: 45},
		},
		Result:         result,
		Plot:           "aGVsbG8=",
		Interpretation: narrative.Interpret(result, ictx),
	}
}

func TestNewPackage(t *testing.T) {
	pkg := NewPackage(regressionSnapshot(t), generatedAt)

	assert.NotEmpty(t, pkg.ID)
	assert.Equal(t, "Multiple Regression", pkg.Title)
	assert.Equal(t, 45, pkg.SampleSize)
	assert.Equal(t, generatedAt, pkg.GeneratedAt)
	assert.Len(t, pkg.Tables, 2)
	assert.JSONEq(t, string(regressionSnapshot(t).Result.Raw()), string(pkg.RawResult))

	names := make([]string, len(pkg.Profiles))
	for i, p := range pkg.Profiles {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"y", "x1"}, names)
	assert.Equal(t, "regression-20260314-093000.xlsx", pkg.Filename(FormatXLSX))
}

func TestRegressionTables(t *testing.T) {
	tables := Tables(regressionSnapshot(t).Result)
	require.Len(t, tables, 2)

	summary := tables[0]
	assert.Equal(t, []string{"R²", "0.371"}, summary.Rows[1])
	assert.Equal(t, []string{"df", "2, 42"}, summary.Rows[4])
	assert.Equal(t, []string{"p", "< .001"}, summary.Rows[5])
	assert.Equal(t, []string{"RMSE", "n/a"}, summary.Rows[6])

	coefs := tables[1]
	assert.Equal(t, []string{"Term", "Estimate", "Std. error", "Statistic", "p", "", "VIF"}, coefs.Columns)
	want := [][]string{
		{"const", "1.200", "0.400", "3.00", ".004", "**", "n/a"},
		{"x1", "0.850", "0.200", "4.25", "< .001", "***", "1.80"},
		{"x|2", "-0.100", "0.200", "-0.50", ".620", "", "1.80"},
	}
	if diff := cmp.Diff(want, coefs.Rows); diff != "" {
		t.Errorf("coefficient rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCrosstabTablesAddTotals(t *testing.T) {
	tables := Tables(decode(t, domain.KindCrosstab, `{
		"n": 40, "chi_square": 6.1, "df": 2, "p_value": 0.047, "cramers_v": 0.39,
		"row_levels": ["control", "treated"], "column_levels": ["no", "maybe", "yes"],
		"counts": [[10, 5, 5], [4, 6, 10]]}`))
	require.Len(t, tables, 2)

	want := Table{
		Title:   "Observed counts",
		Columns: []string{"", "no", "maybe", "yes", "Total"},
		Rows: [][]string{
			{"control", "10", "5", "5", "20"},
			{"treated", "4", "6", "10", "20"},
			{"Total", "14", "11", "15", "40"},
		},
	}
	if diff := cmp.Diff(want, tables[1]); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestDiDTables(t *testing.T) {
	tables := Tables(decode(t, domain.KindDiD, `{
		"n": 400, "att": 1.5, "std_error": 0.3, "p_value": 0.0002, "ci_lower": 0.91, "ci_upper": 2.09,
		"means": {"pre_treated": 10, "post_treated": 12, "pre_control": 10.2, "post_control": 10.7}}`))
	require.Len(t, tables, 2)
	assert.Contains(t, tables[0].Rows, []string{"Confidence interval", "[0.910, 2.090]"})
	assert.Contains(t, tables[0].Rows, []string{"Clusters", "n/a"})
	assert.Equal(t, []string{"Treated", "10.000", "12.000", "2.000"}, tables[1].Rows[0])
	assert.Equal(t, []string{"Control", "10.200", "10.700", "0.500"}, tables[1].Rows[1])
}

func TestOutlierAndGLMTables(t *testing.T) {
	outliers := Tables(decode(t, domain.KindOutliers, `{
		"n": 200, "method": "iqr", "threshold": 1.5, "outlier_count": 6, "outlier_rate": 0.03,
		"columns": [{"name": "income", "outliers": 6, "lower": -10, "upper": 250.5}]}`))
	require.Len(t, outliers, 2)
	assert.Contains(t, outliers[0].Rows, []string{"Outlier rate", "3.0%"})
	assert.Equal(t, []string{"income", "6", "-10.000", "250.500"}, outliers[1].Rows[0])

	glm := Tables(decode(t, domain.KindGLM, `{
		"n": 300, "family": "binomial", "link": "logit", "lr_p_value": 0.02,
		"coefficients": [{"name": "age", "estimate": 0.05, "exp_estimate": 1.051, "p_value": 0.01}]}`))
	require.Len(t, glm, 2)
	assert.Contains(t, glm[0].Rows, []string{"Family / link", "binomial / logit"})
	assert.Equal(t, "exp(B)", glm[1].Columns[6])
	assert.Equal(t, "1.051", glm[1].Rows[0][6])

	assert.Nil(t, Tables(nil))
}

func TestMarkdown(t *testing.T) {
	pkg := NewPackage(regressionSnapshot(t), generatedAt)
	md := string(Markdown(pkg, false))

	assert.True(t, strings.HasPrefix(md, "# Multiple Regression\n"))
	assert.Contains(t, md, "## Interpretation\n\n"+pkg.Interpretation.Narrative)
	assert.Contains(t, md, "| x\\|2 | -0.100 |")
	assert.Contains(t, md, "| Feature | x\\|2 |")
	assert.Contains(t, md, "| Missing values | Failed | info | Missing cells (y: 1) |")
	assert.Contains(t, md, "## Settings\n\nmethod=enter, intercept=true")
	assert.NotContains(t, md, "data:image/png")

	assert.Contains(t, string(Markdown(pkg, true)), "![Multiple Regression plot](data:image/png;base64,aGVsbG8=)")
}

func TestHTML(t *testing.T) {
	pkg := NewPackage(regressionSnapshot(t), generatedAt)
	page := string(HTML(pkg))
	assert.Contains(t, page, "<title>Multiple Regression</title>")
	assert.Contains(t, page, `<main id="results">`)
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, `<img src="data:image/png;base64,aGVsbG8="`)

	pkg.Title = "Sales <Q1>"
	pkg.Plot = ""
	assert.Contains(t, string(HTML(pkg)), "<title>Sales &lt;Q1&gt;</title>")
}

func TestWorkbook(t *testing.T) {
	pkg := NewPackage(regressionSnapshot(t), generatedAt)
	data, err := Workbook(pkg)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Summary", "Results", "Selection", "Checks"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Multiple Regression", v)
	v, err = f.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, pkg.Interpretation.Narrative, v)

	results, err := f.GetRows("Results")
	require.NoError(t, err)
	assert.Equal(t, []string{"Model summary"}, results[0])
	assert.Equal(t, []string{"Statistic", "Value"}, results[1])

	selection, err := f.GetRows("Selection")
	require.NoError(t, err)
	assert.Equal(t, []string{"Target", "y", "numeric", "0", "0", "10.000", "2.000", "n/a", "n/a"}, selection[1])

	checks, err := f.GetRows("Checks")
	require.NoError(t, err)
	require.Len(t, checks, 3)
	assert.Equal(t, []string{"Sample size", "Passed", "critical", "N = 45"}, checks[1])
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, format string, pkg []byte) ([]byte, error) {
	args := m.Called(ctx, format, pkg)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type recordingMetrics struct {
	formats []string
}

func (r *recordingMetrics) ExportFinished(format string, _ error, _ time.Duration) {
	r.formats = append(r.formats, format)
}

func TestServiceFormats(t *testing.T) {
	local := NewService(Options{})
	assert.Equal(t, []Format{FormatXLSX, FormatHTML, FormatMarkdown, FormatJSON}, local.Formats())

	_, err := local.Export(context.Background(), NewPackage(regressionSnapshot(t), generatedAt), FormatPNG)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.True(t, IsUnavailable(err))

	full := NewService(Options{Renderer: &mockRenderer{}, Capturer: NewBrowserCapture(0)})
	assert.True(t, full.Supports(FormatPDF))
	assert.True(t, full.Supports(FormatPNG))
}

func TestServiceRemoteFormats(t *testing.T) {
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, "pdf", mock.Anything).Return([]byte("%PDF-1.7"), nil).Once()
	renderer.On("Render", mock.Anything, "docx", mock.Anything).
		Return(nil, apperrors.New(apperrors.CodeExportFailed, "template missing")).Once()
	metrics := &recordingMetrics{}
	svc := NewService(Options{Renderer: renderer, Metrics: metrics})
	pkg := NewPackage(regressionSnapshot(t), generatedAt)

	a, err := svc.Export(context.Background(), pkg, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", a.ContentType)
	assert.Equal(t, "regression-20260314-093000.pdf", a.Filename)
	assert.Equal(t, "%PDF-1.7", string(a.Data))

	var sent Package
	require.NoError(t, json.Unmarshal(renderer.Calls[0].Arguments.Get(2).([]byte), &sent))
	assert.Equal(t, pkg.ID, sent.ID)
	assert.Len(t, sent.Tables, 2)

	_, err = svc.Export(context.Background(), pkg, FormatDOCX)
	assert.Equal(t, "template missing", apperrors.UserMessage(err))
	assert.Equal(t, []string{"pdf", "docx"}, metrics.formats)
	renderer.AssertExpectations(t)
}

func TestBundle(t *testing.T) {
	svc := NewService(Options{Parallel: 2})
	pkg := NewPackage(regressionSnapshot(t), generatedAt)

	bundle, err := svc.Bundle(context.Background(), pkg, []Format{FormatMarkdown, FormatXLSX, FormatMarkdown, FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, "regression-20260314-093000.zip", bundle.Filename)

	zr, err := zip.NewReader(bytes.NewReader(bundle.Data), int64(len(bundle.Data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"regression-20260314-093000.md",
		"regression-20260314-093000.xlsx",
		"regression-20260314-093000.json",
	}, names)

	rc, err := zr.File[2].Open()
	require.NoError(t, err)
	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	var decoded Package
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, pkg.Interpretation, decoded.Interpretation)

	_, err = svc.Bundle(context.Background(), pkg, []Format{FormatXLSX, FormatPDF})
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	_, err = svc.Bundle(context.Background(), pkg, nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "text/markdown; charset=utf-8", FormatMarkdown.ContentType())

	_, err = ParseFormat("odt")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestBrowserCapture(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser capture in short mode")
	}
	var found bool
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("no Chrome binary on PATH")
	}

	pkg := NewPackage(regressionSnapshot(t), generatedAt)
	pkg.Plot = ""
	png, err := NewBrowserCapture(30*time.Second).Capture(context.Background(), HTML(pkg))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
