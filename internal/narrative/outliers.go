package narrative

import (
	"fmt"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

var methodNames = map[string]string{
	analysis.MethodIQR:    "IQR",
	analysis.MethodZScore: "Z-score",
	analysis.MethodMAD:    "MAD",
}

func init() {
	register(Descriptor{
		Kind:         analysis.KindOutliers,
		EffectTable:  thresholds.OutlierRate,
		Significance: func(r analysis.Result) *float64 { return r.(*analysis.OutlierResult).TestPValue },
		Effect:       outlierRate,
		Sentence:     outlierSentence,
		Insights:     []Insight{outlierRateInsight, outlierColumns},
	})
}

// outlierRate prefers the reported rate and derives it from the count
func outlierRate(res analysis.Result) *float64 {
	r := res.(*analysis.OutlierResult)
	if r.OutlierRate != nil {
		return r.OutlierRate
	}
	if r.OutlierCount != nil && r.N > 0 {
		rate := float64(*r.OutlierCount) / float64(r.N)
		return &rate
	}
	return nil
}

func outlierMethod(f Facts) string {
	method := f.Result.(*analysis.OutlierResult).Method
	if method == "" {
		method = f.Context.Settings.Method
	}
	if name, ok := methodNames[method]; ok {
		return name
	}
	return orDefault(method, "Outlier")
}

func outlierSentence(f Facts) string {
	r := f.Result.(*analysis.OutlierResult)
	vars := joinNames(f.Context.Selection.Features)
	if vars == "" {
		vars = "the selected variables"
	}

	var flagged string
	if r.OutlierCount != nil {
		flagged = fmt.Sprintf("flagged %d of %d observations", *r.OutlierCount, r.N)
	} else {
		flagged = fmt.Sprintf("screened %d observations", r.N)
	}
	rate := "outlier rate not available"
	if f.HasEffect {
		rate = thresholds.Percent(f.Effect) + ", " + strings.ToLower(f.EffectLabel) + " outlier rate"
	}
	text := fmt.Sprintf("%s detection on %s %s (%s).", outlierMethod(f), vars, flagged, rate)

	test := "The outlier test"
	if r.TestName != "" {
		test = "The " + r.TestName + " test"
	}
	if !f.HasP {
		return text + " Significance of the most extreme value could not be determined."
	}
	return text + " " + test + " " + verdict(f) + ", " + pClause(f) + "."
}

func outlierRateInsight(f Facts) (string, bool) {
	if !f.HasEffect {
		return "", false
	}
	return fmt.Sprintf("An outlier rate of %s is %s.", thresholds.Percent(f.Effect), strings.ToLower(f.EffectLabel)), true
}

func outlierColumns(f Facts) (string, bool) {
	r := f.Result.(*analysis.OutlierResult)
	if len(r.Columns) == 0 {
		return "", false
	}
	var parts []string
	for _, c := range r.Columns {
		if c.Outliers == 0 {
			continue
		}
		part := fmt.Sprintf("%s: %d", c.Name, c.Outliers)
		if lo, hi := num(c.Lower, 2), num(c.Upper, 2); lo != "" && hi != "" {
			part += " outside [" + lo + ", " + hi + "]"
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return "No variable has flagged observations.", true
	}
	return "Flagged per variable: " + strings.Join(parts, "; ") + ".", true
}
