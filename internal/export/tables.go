package export

import (
	"strconv"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

// Table is a rendered block of a result, shared by every exporter
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Tables renders the result variant into display tables. Missing metrics
// render as "n/a" so every row keeps its shape.
func Tables(result analysis.Result) []Table {
	switch r := result.(type) {
	case *analysis.RegressionResult:
		return regressionTables(r)
	case *analysis.OutlierResult:
		return outlierTables(r)
	case *analysis.CrosstabResult:
		return crosstabTables(r)
	case *analysis.GLMResult:
		return glmTables(r)
	case *analysis.DiDResult:
		return didTables(r)
	default:
		return nil
	}
}

const na = "n/a"

func num(x *float64, places int) string {
	if x == nil {
		return na
	}
	return thresholds.Fixed(*x, places)
}

func pval(x *float64) string {
	if x == nil {
		return na
	}
	if *x < 0.001 {
		return "< .001"
	}
	return thresholds.NoLeadingZero(*x, 3)
}

func stars(x *float64) string {
	if x == nil {
		return ""
	}
	return thresholds.Stars(*x)
}

func count(x *int) string {
	if x == nil {
		return na
	}
	return strconv.Itoa(*x)
}

func metrics(rows ...[]string) Table {
	return Table{Title: "Model summary", Columns: []string{"Statistic", "Value"}, Rows: rows}
}

func coefficientTable(title string, coefs []analysis.Coefficient, withVIF, withExp bool) Table {
	cols := []string{"Term", "Estimate", "Std. error", "Statistic", "p", ""}
	if withExp {
		cols = append(cols, "exp(B)")
	}
	if withVIF {
		cols = append(cols, "VIF")
	}
	t := Table{Title: title, Columns: cols}
	for _, c := range coefs {
		row := []string{c.Name, num(c.Estimate, 3), num(c.StdError, 3), num(c.Statistic, 2), pval(c.PValue), stars(c.PValue)}
		if withExp {
			row = append(row, num(c.ExpEstimate, 3))
		}
		if withVIF {
			row = append(row, num(c.VIF, 2))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func regressionTables(r *analysis.RegressionResult) []Table {
	out := []Table{metrics(
		[]string{"N", strconv.Itoa(r.N)},
		[]string{"R²", num(r.RSquared, 3)},
		[]string{"Adjusted R²", num(r.AdjRSquared, 3)},
		[]string{"F", num(r.FStatistic, 2)},
		[]string{"df", count(r.DFModel) + ", " + count(r.DFResid)},
		[]string{"p", pval(r.FPValue)},
		[]string{"RMSE", num(r.RMSE, 3)},
		[]string{"MAE", num(r.MAE, 3)},
		[]string{"Durbin-Watson", num(r.DurbinWatson, 2)},
	)}
	if len(r.Coefficients) > 0 {
		out = append(out, coefficientTable("Coefficients", r.Coefficients, true, false))
	}
	return out
}

func outlierTables(r *analysis.OutlierResult) []Table {
	summary := metrics(
		[]string{"N", strconv.Itoa(r.N)},
		[]string{"Method", orNA(r.Method)},
		[]string{"Threshold", num(r.Threshold, 2)},
		[]string{"Outliers", count(r.OutlierCount)},
		[]string{"Outlier rate", rate(r.OutlierRate)},
	)
	if r.TestName != "" {
		summary.Rows = append(summary.Rows, []string{r.TestName + " p", pval(r.TestPValue)})
	}
	out := []Table{summary}
	if len(r.Columns) > 0 {
		t := Table{Title: "Outliers by variable", Columns: []string{"Variable", "Outliers", "Lower fence", "Upper fence"}}
		for _, c := range r.Columns {
			t.Rows = append(t.Rows, []string{c.Name, strconv.Itoa(c.Outliers), num(c.Lower, 3), num(c.Upper, 3)})
		}
		out = append(out, t)
	}
	return out
}

func crosstabTables(r *analysis.CrosstabResult) []Table {
	out := []Table{metrics(
		[]string{"N", strconv.Itoa(r.N)},
		[]string{"χ²", num(r.ChiSquare, 2)},
		[]string{"df", count(r.DF)},
		[]string{"p", pval(r.PValue)},
		[]string{"Cramér's V", num(r.CramersV, 3)},
		[]string{"Minimum expected count", num(r.MinExpected, 2)},
		[]string{"Cells expected below 5", count(r.CellsBelow5)},
	)}
	if len(r.Counts) == 0 {
		return out
	}
	t := Table{Title: "Observed counts", Columns: append([]string{""}, r.ColumnLevels...)}
	t.Columns = append(t.Columns, "Total")
	colTotals := make([]int, len(r.ColumnLevels))
	grand := 0
	for ri, counts := range r.Counts {
		label := strconv.Itoa(ri + 1)
		if ri < len(r.RowLevels) {
			label = r.RowLevels[ri]
		}
		row := []string{label}
		total := 0
		for ci, n := range counts {
			row = append(row, strconv.Itoa(n))
			total += n
			if ci < len(colTotals) {
				colTotals[ci] += n
			}
		}
		grand += total
		t.Rows = append(t.Rows, append(row, strconv.Itoa(total)))
	}
	totals := []string{"Total"}
	for _, n := range colTotals {
		totals = append(totals, strconv.Itoa(n))
	}
	t.Rows = append(t.Rows, append(totals, strconv.Itoa(grand)))
	return append(out, t)
}

func glmTables(r *analysis.GLMResult) []Table {
	out := []Table{metrics(
		[]string{"N", strconv.Itoa(r.N)},
		[]string{"Family / link", orNA(r.Family) + " / " + orNA(r.Link)},
		[]string{"Deviance", num(r.Deviance, 2)},
		[]string{"Null deviance", num(r.NullDeviance, 2)},
		[]string{"AIC", num(r.AIC, 2)},
		[]string{"LR χ²", num(r.LRChiSquare, 2)},
		[]string{"LR df", count(r.LRDF)},
		[]string{"p", pval(r.LRPValue)},
		[]string{"Pseudo-R²", num(r.PseudoRSquared, 3)},
		[]string{"Dispersion", num(r.Dispersion, 3)},
	)}
	if len(r.Coefficients) > 0 {
		out = append(out, coefficientTable("Coefficients", r.Coefficients, false, true))
	}
	return out
}

func didTables(r *analysis.DiDResult) []Table {
	ci := na
	if r.CILower != nil && r.CIUpper != nil {
		ci = "[" + num(r.CILower, 3) + ", " + num(r.CIUpper, 3) + "]"
	}
	summary := metrics(
		[]string{"N", strconv.Itoa(r.N)},
		[]string{"ATT", num(r.ATT, 3)},
		[]string{"Std. error", num(r.StdError, 3)},
		[]string{"t", num(r.Statistic, 2)},
		[]string{"p", pval(r.PValue)},
		[]string{"Confidence interval", ci},
		[]string{"Cohen's d", num(r.CohensD, 2)},
		[]string{"Parallel trends p", pval(r.ParallelTrendsPValue)},
		[]string{"Clusters", count(r.Clusters)},
	)
	m := r.Means
	means := Table{
		Title:   "Group means",
		Columns: []string{"Group", "Pre", "Post", "Change"},
		Rows: [][]string{
			{"Treated", num(m.PreTreated, 3), num(m.PostTreated, 3), diff(m.PostTreated, m.PreTreated)},
			{"Control", num(m.PreControl, 3), num(m.PostControl, 3), diff(m.PostControl, m.PreControl)},
		},
	}
	return []Table{summary, means}
}

func diff(a, b *float64) string {
	if a == nil || b == nil {
		return na
	}
	d := *a - *b
	return num(&d, 3)
}

func rate(x *float64) string {
	if x == nil {
		return na
	}
	return thresholds.Percent(*x)
}

func orNA(s string) string {
	if s == "" {
		return na
	}
	return s
}
