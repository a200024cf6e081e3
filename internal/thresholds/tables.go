package thresholds

import "math"

// Band is one labelled interval of a table. A band covers [Lower, next.Lower).
type Band struct {
	Lower float64 `json:"lower"`
	Label string  `json:"label"`
}

// Table maps a metric onto ordered labels. Bands are sorted by ascending
// lower bound; values below the first bound take the first label so the
// table never has gaps.
type Table struct {
	Name  string `json:"name"`
	Bands []Band `json:"bands"`
}

// Classify returns the label of the band containing v. NaN yields "".
func (t Table) Classify(v float64) string {
	if len(t.Bands) == 0 || math.IsNaN(v) {
		return ""
	}
	label := t.Bands[0].Label
	for _, b := range t.Bands {
		if v >= b.Lower {
			label = b.Label
		}
	}
	return label
}

// Rank returns the band index of v, 0 for the lowest band.
func (t Table) Rank(v float64) int {
	rank := 0
	for i, b := range t.Bands {
		if v >= b.Lower {
			rank = i
		}
	}
	return rank
}

// Labels lists the labels from lowest to highest band
func (t Table) Labels() []string {
	out := make([]string, len(t.Bands))
	for i, b := range t.Bands {
		out[i] = b.Label
	}
	return out
}

var (
	// PValue maps a p-value to its star marker.
	PValue = Table{Name: "p-value", Bands: []Band{
		{0, "***"},
		{0.001, "**"},
		{0.01, "*"},
		{0.05, ""},
	}}

	// CramersV classifies association strength for contingency tables.
	CramersV = Table{Name: "Cramér's V", Bands: []Band{
		{0, "Negligible"},
		{0.1, "Small"},
		{0.3, "Medium"},
		{0.5, "Large"},
	}}

	// RSquared classifies explained variance of linear models.
	RSquared = Table{Name: "R²", Bands: []Band{
		{0, "Weak"},
		{0.3, "Moderate"},
		{0.5, "Good"},
		{0.7, "Excellent"},
	}}

	// PseudoRSquared classifies McFadden's pseudo-R², which runs much lower
	// than OLS R² for comparable fits.
	PseudoRSquared = Table{Name: "pseudo-R²", Bands: []Band{
		{0, "Weak"},
		{0.1, "Moderate"},
		{0.2, "Good"},
		{0.4, "Excellent"},
	}}

	// VIF classifies multicollinearity of a predictor.
	VIF = Table{Name: "VIF", Bands: []Band{
		{0, "Low"},
		{5, "Moderate"},
		{10, "High"},
	}}

	// CohensD classifies standardized mean differences (absolute value).
	CohensD = Table{Name: "Cohen's d", Bands: []Band{
		{0, "Negligible"},
		{0.2, "Small"},
		{0.5, "Medium"},
		{0.8, "Large"},
	}}

	// OutlierRate classifies the share of flagged observations.
	OutlierRate = Table{Name: "outlier rate", Bands: []Band{
		{0, "Minimal"},
		{0.01, "Low"},
		{0.05, "Moderate"},
		{0.10, "High"},
	}}

	// DurbinWatson classifies residual autocorrelation.
	DurbinWatson = Table{Name: "Durbin-Watson", Bands: []Band{
		{0, "Positive autocorrelation"},
		{1.5, "No autocorrelation"},
		{2.5, "Negative autocorrelation"},
	}}

	// Dispersion classifies the GLM dispersion ratio.
	Dispersion = Table{Name: "dispersion", Bands: []Band{
		{0, "Underdispersed"},
		{0.8, "Adequate"},
		{1.5, "Overdispersed"},
	}}

	// ErrorMagnitude classifies RMSE relative to the target's standard deviation.
	ErrorMagnitude = Table{Name: "relative error", Bands: []Band{
		{0, "Low"},
		{0.5, "Moderate"},
		{0.8, "High"},
	}}
)
