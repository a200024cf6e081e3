package narrative

import (
	"fmt"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

func init() {
	register(Descriptor{
		Kind:         analysis.KindRegression,
		EffectTable:  thresholds.RSquared,
		Significance: func(r analysis.Result) *float64 { return r.(*analysis.RegressionResult).FPValue },
		Effect:       func(r analysis.Result) *float64 { return r.(*analysis.RegressionResult).RSquared },
		Sentence:     regressionSentence,
		Insights: []Insight{
			regressionFit,
			regressionError,
			func(f Facts) (string, bool) { return vifInsight(f.Result.(*analysis.RegressionResult).Coefficients) },
			regressionAutocorrelation,
			func(f Facts) (string, bool) {
				return predictorsInsight(f.Result.(*analysis.RegressionResult).Coefficients, "")
			},
			regressionSelection,
		},
	})
}

func regressionSentence(f Facts) string {
	r := f.Result.(*analysis.RegressionResult)
	sel := f.Context.Selection

	predictors := joinNames(sel.Features)
	if predictors == "" {
		predictors = "the selected predictors"
	}
	var fStat string
	if v := num(r.FStatistic, 2); v != "" {
		if r.DFModel != nil && r.DFResid != nil {
			fStat = fmt.Sprintf("F(%d, %d) = %s", *r.DFModel, *r.DFResid, v)
		} else {
			fStat = "F = " + v
		}
	}
	return fmt.Sprintf("A multiple regression predicting %s from %s %s%s, N = %d.",
		orDefault(sel.Target, "the outcome"), predictors, verdict(f),
		statistics(fStat, pClause(f), effectPhrase(f, "fit", labeled("R²", ratio(r.RSquared, 2)))),
		r.N)
}

func regressionFit(f Facts) (string, bool) {
	r := f.Result.(*analysis.RegressionResult)
	if !f.HasEffect {
		return "Model fit (R²) is " + notAvailable + ".", true
	}
	text := fmt.Sprintf("R² = %s: the predictors explain %s of the variance in %s (%s fit)",
		ratio(r.RSquared, 2), thresholds.Percent(f.Effect), orDefault(f.Context.Selection.Target, "the outcome"),
		strings.ToLower(f.EffectLabel))
	if adj := ratio(r.AdjRSquared, 2); adj != "" {
		text += "; adjusted R² = " + adj
	}
	return text + ".", true
}

// regressionError scales RMSE by the target's standard deviation
func regressionError(f Facts) (string, bool) {
	r := f.Result.(*analysis.RegressionResult)
	rmse := num(r.RMSE, 2)
	if rmse == "" {
		return "", false
	}
	text := "RMSE = " + rmse
	if mae := num(r.MAE, 2); mae != "" {
		text += " (MAE = " + mae + ")"
	}
	target := f.Context.Selection.Target
	p, ok := f.Context.Profile(target)
	if !ok || p.StdDev == nil || *p.StdDev <= 0 {
		return text + "; relative error magnitude is " + notAvailable + ".", true
	}
	rel := (*r.RMSE) / (*p.StdDev)
	return fmt.Sprintf("%s is %s standard deviations of %s (%s error).",
		text, thresholds.Fixed(rel, 2), target, strings.ToLower(thresholds.ErrorMagnitude.Classify(rel))), true
}

func regressionAutocorrelation(f Facts) (string, bool) {
	r := f.Result.(*analysis.RegressionResult)
	dw := num(r.DurbinWatson, 2)
	if dw == "" {
		return "", false
	}
	return fmt.Sprintf("Durbin-Watson = %s indicates %s in the residuals.",
		dw, strings.ToLower(thresholds.DurbinWatson.Classify(*r.DurbinWatson))), true
}

func regressionSelection(f Facts) (string, bool) {
	r := f.Result.(*analysis.RegressionResult)
	method := r.Method
	if method == "" {
		method = f.Context.Settings.Method
	}
	if method == "" || method == analysis.MethodEnter || r.SelectedFeatures == nil {
		return "", false
	}
	total := len(f.Context.Selection.Features)
	if len(r.SelectedFeatures) == 0 {
		return fmt.Sprintf("%s selection retained none of the %s.",
			capitalize(method), plural(total, "predictor", "predictors")), true
	}
	return fmt.Sprintf("%s selection retained %d of %d predictors: %s.",
		capitalize(method), len(r.SelectedFeatures), total, joinNames(r.SelectedFeatures)), true
}
