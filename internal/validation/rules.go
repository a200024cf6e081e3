package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"statflow/domain/analysis"
	"statflow/domain/dataset"
	"statflow/internal/thresholds"
)

// Labels referenced outside the package
const (
	LabelDataLoaded        = "Data loaded"
	LabelDistinctRoles     = "Distinct variable roles"
	LabelColumnsPresent    = "Columns present in data"
	LabelSampleSize        = "Sample size"
	LabelObsPerPredictor   = "Obs per predictor"
	LabelMissingValues     = "Missing values"
	LabelExpectedFrequency = "Expected frequency check"
	LabelDesignCells       = "All design cells observed"
	LabelFamilyLink        = "Family/link compatibility"
	LabelTargetDomain      = "Target fits family"
	LabelConstant          = "Non-constant predictors"
	LabelCollinearity      = "Predictor collinearity"
	LabelClusterCount      = "Cluster count"
)

// role selects one single-column role from a selection
type role struct {
	name string
	get  func(dataset.Selection) string
}

var (
	targetRole  = role{"target", func(s dataset.Selection) string { return s.Target }}
	groupRole   = role{"group", func(s dataset.Selection) string { return s.Group }}
	timeRole    = role{"period", func(s dataset.Selection) string { return s.Time }}
	clusterRole = role{"cluster", func(s dataset.Selection) string { return s.Cluster }}
)

func pass(label, detail string, sev Severity) Check {
	return Check{Label: label, Passed: true, Detail: detail, Severity: sev}
}

func fail(label, detail string, sev Severity) Check {
	return Check{Label: label, Passed: false, Detail: detail, Severity: sev}
}

// skipped marks a check that cannot be evaluated until an earlier,
// blocking check is fixed.
func skipped(label, reason string) Check {
	return fail(label, "Not evaluated: "+reason, SeverityInfo)
}

// DataLoaded requires a non-empty sample
func DataLoaded() Rule {
	return func(in Input) Check {
		if in.Sample.Len() == 0 {
			return fail(LabelDataLoaded, "No data rows loaded", SeverityCritical)
		}
		return pass(LabelDataLoaded, fmt.Sprintf("%d rows, %d columns", in.Sample.Len(), len(in.Sample.Columns)), SeverityCritical)
	}
}

// RequireRole requires a single-column role to be filled
func requireRole(label string, r role) Rule {
	return func(in Input) Check {
		col := r.get(in.Selection)
		if col == "" {
			return fail(label, fmt.Sprintf("Select a %s variable", r.name), SeverityCritical)
		}
		return pass(label, col, SeverityCritical)
	}
}

// RequireTarget requires the target/outcome role
func RequireTarget(label string) Rule { return requireRole(label, targetRole) }

// RequireGroup requires the grouping/treatment role
func RequireGroup(label string) Rule { return requireRole(label, groupRole) }

// RequireTime requires the time/period role
func RequireTime(label string) Rule { return requireRole(label, timeRole) }

// RequireFeatures requires at least min predictors
func RequireFeatures(label string, min int) Rule {
	return func(in Input) Check {
		n := len(in.Selection.Features)
		detail := fmt.Sprintf("%d selected (minimum %d)", n, min)
		if n < min {
			return fail(label, detail, SeverityCritical)
		}
		return pass(label, detail, SeverityCritical)
	}
}

// DistinctRoles rejects a column used in two mutually exclusive roles
func DistinctRoles() Rule {
	return func(in Input) Check {
		conflicts := in.Selection.Conflicts()
		if len(conflicts) == 0 {
			return pass(LabelDistinctRoles, "Each column fills one role", SeverityCritical)
		}
		parts := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			roles := make([]string, len(c.Roles))
			for i, r := range c.Roles {
				roles[i] = string(r)
			}
			parts = append(parts, fmt.Sprintf("%s is used as %s", c.Column, strings.Join(roles, " and ")))
		}
		return fail(LabelDistinctRoles, strings.Join(parts, "; "), SeverityCritical)
	}
}

// ColumnsPresent requires every referenced column to exist in the sample
func ColumnsPresent() Rule {
	return func(in Input) Check {
		var missing []string
		for _, c := range in.Selection.Columns() {
			if !in.Sample.HasColumn(c) {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			return fail(LabelColumnsPresent, "Unknown columns: "+strings.Join(missing, ", "), SeverityCritical)
		}
		return pass(LabelColumnsPresent, "All selected columns found", SeverityCritical)
	}
}

// NumericTarget requires the target column to be numeric
func NumericTarget(label string) Rule {
	return func(in Input) Check {
		col := in.Selection.Target
		if col == "" || !in.Sample.HasColumn(col) {
			return skipped(label, "no target column")
		}
		if !in.Sample.IsNumeric(col) {
			return fail(label, col+" is not numeric", SeverityCritical)
		}
		return pass(label, col+" is numeric", SeverityCritical)
	}
}

// NumericFeatures requires every predictor to be numeric. An empty feature
// list passes so optional covariates can use the same rule.
func NumericFeatures(label string) Rule {
	return func(in Input) Check {
		var bad []string
		for _, f := range in.Selection.Features {
			if in.Sample.HasColumn(f) && !in.Sample.IsNumeric(f) {
				bad = append(bad, f)
			}
		}
		if len(bad) > 0 {
			return fail(label, "Not numeric: "+strings.Join(bad, ", "), SeverityCritical)
		}
		return pass(label, fmt.Sprintf("%d numeric predictors", len(in.Selection.Features)), SeverityCritical)
	}
}

// MinSampleSize blocks below min complete cases and warns below recommended
func MinSampleSize(min, recommended int) Rule {
	return func(in Input) Check {
		n := completeCases(in)
		switch {
		case n < min:
			return fail(LabelSampleSize, fmt.Sprintf("N = %d complete cases (minimum %d)", n, min), SeverityCritical)
		case n < recommended:
			return fail(LabelSampleSize, fmt.Sprintf("N = %d complete cases (recommended %d)", n, recommended), SeverityWarning)
		}
		return pass(LabelSampleSize, fmt.Sprintf("N = %d complete cases", n), SeverityCritical)
	}
}

// ObsPerPredictor checks floor(n/p): passing at or above pass, a warning
// between warnBelow and pass, critical below warnBelow.
func ObsPerPredictor(passAt, warnBelow int) Rule {
	return func(in Input) Check {
		p := len(in.Selection.Features)
		if p == 0 {
			return skipped(LabelObsPerPredictor, "no predictors selected")
		}
		ratio := completeCases(in) / p
		detail := fmt.Sprintf("%d observations per predictor (minimum %d)", ratio, passAt)
		switch {
		case ratio >= passAt:
			return pass(LabelObsPerPredictor, detail, SeverityCritical)
		case ratio >= warnBelow:
			return fail(LabelObsPerPredictor, detail, SeverityWarning)
		}
		return fail(LabelObsPerPredictor, detail, SeverityCritical)
	}
}

// MissingValues reports missing cells in the selected columns. It is
// informational only; incomplete rows are dropped by the compute service.
func MissingValues() Rule {
	return func(in Input) Check {
		cols := presentColumns(in)
		if in.Sample.Len() == 0 || len(cols) == 0 {
			return pass(LabelMissingValues, "No columns to inspect", SeverityInfo)
		}
		var parts []string
		for _, c := range cols {
			if n := in.Sample.MissingCount(c); n > 0 {
				parts = append(parts, fmt.Sprintf("%s: %d", c, n))
			}
		}
		if len(parts) == 0 {
			return pass(LabelMissingValues, "No missing values in selected columns", SeverityInfo)
		}
		excluded := in.Sample.Len() - in.Sample.CompleteCases(cols...)
		return fail(LabelMissingValues,
			fmt.Sprintf("Missing cells (%s); %d rows will be excluded", strings.Join(parts, ", "), excluded),
			SeverityInfo)
	}
}

// ExpectedFrequency approximates the expected cell count of the Group x
// Target contingency table as N/(r*c) and warns below min.
func ExpectedFrequency(min float64) Rule {
	return func(in Input) Check {
		row, col := in.Selection.Group, in.Selection.Target
		if row == "" || col == "" || !in.Sample.HasColumn(row) || !in.Sample.HasColumn(col) {
			return skipped(LabelExpectedFrequency, "select both table variables")
		}
		r, c := len(in.Sample.Levels(row)), len(in.Sample.Levels(col))
		if r == 0 || c == 0 {
			return fail(LabelExpectedFrequency, "Table has no observed categories", SeverityWarning)
		}
		n := in.Sample.CompleteCases(row, col)
		expected := float64(n) / float64(r*c)
		detail := fmt.Sprintf("Expected frequency per cell ≈ %s across %dx%d cells (minimum %s)",
			thresholds.Fixed(expected, 2), r, c, strconv.FormatFloat(min, 'f', -1, 64))
		if expected < min {
			return fail(LabelExpectedFrequency, detail, SeverityWarning)
		}
		return pass(LabelExpectedFrequency, detail, SeverityWarning)
	}
}

// CategoryLevels requires between min and max distinct levels; too few is
// critical, too many a warning.
func categoryLevels(label string, r role, min, max int) Rule {
	return func(in Input) Check {
		col := r.get(in.Selection)
		if col == "" || !in.Sample.HasColumn(col) {
			return skipped(label, "no "+r.name+" column")
		}
		n := len(in.Sample.Levels(col))
		detail := fmt.Sprintf("%s has %d categories", col, n)
		switch {
		case n < min:
			return fail(label, fmt.Sprintf("%s (minimum %d)", detail, min), SeverityCritical)
		case n > max:
			return fail(label, fmt.Sprintf("%s (more than %d makes the table sparse)", detail, max), SeverityWarning)
		}
		return pass(label, detail, SeverityCritical)
	}
}

// GroupLevels bounds the categories of the grouping column
func GroupLevels(label string, min, max int) Rule { return categoryLevels(label, groupRole, min, max) }

// TargetLevels bounds the categories of the target column
func TargetLevels(label string, min, max int) Rule { return categoryLevels(label, targetRole, min, max) }

// TwoLevels requires a role to have exactly two observed values
func twoLevels(label string, r role) Rule {
	return func(in Input) Check {
		col := r.get(in.Selection)
		if col == "" || !in.Sample.HasColumn(col) {
			return skipped(label, "no "+r.name+" column")
		}
		levels := in.Sample.Levels(col)
		if len(levels) != 2 {
			return fail(label, fmt.Sprintf("%s has %d distinct values, expected 2", col, len(levels)), SeverityCritical)
		}
		return pass(label, fmt.Sprintf("%s: %s / %s", col, levels[0], levels[1]), SeverityCritical)
	}
}

// TwoGroups requires a binary treatment indicator
func TwoGroups(label string) Rule { return twoLevels(label, groupRole) }

// TwoPeriods requires a binary period indicator
func TwoPeriods(label string) Rule { return twoLevels(label, timeRole) }

// DesignCells requires every group x period cell of a 2x2 design to hold at
// least one observation with an outcome.
func DesignCells() Rule {
	return func(in Input) Check {
		g, p, y := in.Selection.Group, in.Selection.Time, in.Selection.Target
		if g == "" || p == "" || y == "" {
			return skipped(LabelDesignCells, "outcome, treatment and period are required")
		}
		groups, periods := in.Sample.Levels(g), in.Sample.Levels(p)
		if len(groups) != 2 || len(periods) != 2 {
			return skipped(LabelDesignCells, "treatment and period must be binary")
		}
		counts := make(map[string]int)
		for _, row := range in.Sample.Rows {
			if dataset.IsMissing(row[g]) || dataset.IsMissing(row[p]) || dataset.IsMissing(row[y]) {
				continue
			}
			counts[row[g]+"\x00"+row[p]]++
		}
		var empty []string
		var sizes []string
		for _, gl := range groups {
			for _, pl := range periods {
				n := counts[gl+"\x00"+pl]
				sizes = append(sizes, fmt.Sprintf("%s/%s=%d", gl, pl, n))
				if n == 0 {
					empty = append(empty, gl+"/"+pl)
				}
			}
		}
		if len(empty) > 0 {
			return fail(LabelDesignCells, "Empty cells: "+strings.Join(empty, ", "), SeverityCritical)
		}
		return pass(LabelDesignCells, strings.Join(sizes, ", "), SeverityCritical)
	}
}

// FamilyLink requires a known GLM family and a link it accepts
func FamilyLink() Rule {
	return func(in Input) Check {
		fam, link := in.Settings.Family, in.Settings.Link
		if !analysis.KnownFamily(fam) {
			return fail(LabelFamilyLink, fmt.Sprintf("Unknown family %q", fam), SeverityCritical)
		}
		if !analysis.LinkAllowed(fam, link) {
			return fail(LabelFamilyLink, fmt.Sprintf("Link %q is not valid for the %s family", link, fam), SeverityCritical)
		}
		return pass(LabelFamilyLink, fam+" / "+link, SeverityCritical)
	}
}

// TargetDomain checks the target values fit the GLM family: binary for
// binomial, non-negative integers for poisson, positive for gamma.
func TargetDomain() Rule {
	return func(in Input) Check {
		col := in.Selection.Target
		if col == "" || !in.Sample.HasColumn(col) {
			return skipped(LabelTargetDomain, "no target column")
		}
		fam := in.Settings.Family
		if fam == analysis.FamilyBinomial {
			levels := in.Sample.Levels(col)
			if len(levels) != 2 {
				return fail(LabelTargetDomain, fmt.Sprintf("%s has %d distinct values; binomial needs 2", col, len(levels)), SeverityCritical)
			}
			return pass(LabelTargetDomain, fmt.Sprintf("%s is binary", col), SeverityCritical)
		}

		values, bad := in.Sample.Numeric(col)
		if bad > 0 || len(values) == 0 {
			return fail(LabelTargetDomain, col+" is not numeric", SeverityCritical)
		}
		switch fam {
		case analysis.FamilyPoisson:
			for _, v := range values {
				if v < 0 || v != math.Trunc(v) {
					return fail(LabelTargetDomain, col+" must hold non-negative counts for poisson", SeverityCritical)
				}
			}
			return pass(LabelTargetDomain, col+" holds counts", SeverityCritical)
		case analysis.FamilyGamma:
			for _, v := range values {
				if v <= 0 {
					return fail(LabelTargetDomain, col+" must be strictly positive for gamma", SeverityCritical)
				}
			}
			return pass(LabelTargetDomain, col+" is positive", SeverityCritical)
		}
		return pass(LabelTargetDomain, col+" is numeric", SeverityCritical)
	}
}

// ConstantPredictors warns about predictors without variance
func ConstantPredictors() Rule {
	return func(in Input) Check {
		cols := numericFeatures(in)
		if len(cols) == 0 {
			return skipped(LabelConstant, "no numeric predictors")
		}
		matrix := in.Sample.NumericMatrix(cols...)
		var constant []string
		for i, c := range cols {
			if len(matrix[i]) < 2 || stat.Variance(matrix[i], nil) == 0 {
				constant = append(constant, c)
			}
		}
		if len(constant) > 0 {
			return fail(LabelConstant, "Zero variance: "+strings.Join(constant, ", "), SeverityWarning)
		}
		return pass(LabelConstant, "All predictors vary", SeverityWarning)
	}
}

// Collinearity warns about predictor pairs whose absolute Pearson
// correlation reaches limit.
func Collinearity(limit float64) Rule {
	return func(in Input) Check {
		cols := numericFeatures(in)
		if len(cols) < 2 {
			return pass(LabelCollinearity, "Fewer than two numeric predictors", SeverityWarning)
		}
		matrix := in.Sample.NumericMatrix(cols...)
		if len(matrix[0]) < 3 {
			return skipped(LabelCollinearity, "too few complete rows")
		}
		var pairs []string
		for i := 0; i < len(cols); i++ {
			for j := i + 1; j < len(cols); j++ {
				r := stat.Correlation(matrix[i], matrix[j], nil)
				if math.IsNaN(r) {
					continue
				}
				if math.Abs(r) >= limit {
					pairs = append(pairs, fmt.Sprintf("%s~%s (r = %s)", cols[i], cols[j], thresholds.NoLeadingZero(r, 2)))
				}
			}
		}
		if len(pairs) > 0 {
			return fail(LabelCollinearity, "Highly correlated: "+strings.Join(pairs, ", "), SeverityWarning)
		}
		return pass(LabelCollinearity, fmt.Sprintf("No pair with |r| ≥ %s", thresholds.NoLeadingZero(limit, 2)), SeverityWarning)
	}
}

// ClusterCount warns when clustered errors rest on few clusters
func ClusterCount(min int) Rule {
	return func(in Input) Check {
		col := in.Selection.Cluster
		if col == "" {
			return pass(LabelClusterCount, "No clustering requested", SeverityInfo)
		}
		if !in.Sample.HasColumn(col) {
			return skipped(LabelClusterCount, "no cluster column")
		}
		n := len(in.Sample.Levels(col))
		detail := fmt.Sprintf("%d clusters in %s (recommended %d)", n, col, min)
		if n < 2 {
			return fail(LabelClusterCount, detail, SeverityCritical)
		}
		if n < min {
			return fail(LabelClusterCount, detail, SeverityWarning)
		}
		return pass(LabelClusterCount, detail, SeverityWarning)
	}
}

func presentColumns(in Input) []string {
	var cols []string
	for _, c := range in.Selection.Columns() {
		if in.Sample.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func completeCases(in Input) int {
	cols := presentColumns(in)
	if len(cols) == 0 {
		return in.Sample.Len()
	}
	return in.Sample.CompleteCases(cols...)
}

func numericFeatures(in Input) []string {
	var cols []string
	for _, f := range in.Selection.Features {
		if in.Sample.HasColumn(f) && in.Sample.IsNumeric(f) {
			cols = append(cols, f)
		}
	}
	return cols
}
