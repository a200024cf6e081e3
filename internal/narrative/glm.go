package narrative

import (
	"fmt"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

func init() {
	register(Descriptor{
		Kind:         analysis.KindGLM,
		EffectTable:  thresholds.PseudoRSquared,
		Significance: func(r analysis.Result) *float64 { return r.(*analysis.GLMResult).LRPValue },
		Effect:       func(r analysis.Result) *float64 { return r.(*analysis.GLMResult).PseudoRSquared },
		Sentence:     glmSentence,
		Insights: []Insight{
			glmFit,
			glmDeviance,
			glmDispersion,
			func(f Facts) (string, bool) {
				r := f.Result.(*analysis.GLMResult)
				return predictorsInsight(r.Coefficients, expLabel(glmLink(f)))
			},
		},
	})
}

func glmFamily(f Facts) string {
	if fam := f.Result.(*analysis.GLMResult).Family; fam != "" {
		return fam
	}
	return f.Context.Settings.Family
}

func glmLink(f Facts) string {
	r := f.Result.(*analysis.GLMResult)
	if r.Link != "" {
		return r.Link
	}
	// the chosen link describes the fit unless the service reports another family
	chosen := f.Context.Settings
	if chosen.Link != "" && (r.Family == "" || r.Family == chosen.Family) {
		return chosen.Link
	}
	return analysis.CanonicalLink(r.Family)
}

// expLabel names the exponentiated coefficient for links where it has a
// ratio reading.
func expLabel(link string) string {
	switch link {
	case analysis.LinkLogit:
		return "OR"
	case analysis.LinkLog:
		return "RR"
	}
	return ""
}

func glmSentence(f Facts) string {
	r := f.Result.(*analysis.GLMResult)
	sel := f.Context.Selection

	predictors := joinNames(sel.Features)
	if predictors == "" {
		predictors = "the selected predictors"
	}
	var lr string
	if v := num(r.LRChiSquare, 2); v != "" {
		if r.LRDF != nil {
			lr = fmt.Sprintf("LR χ²(%d) = %s", *r.LRDF, v)
		} else {
			lr = "LR χ² = " + v
		}
	}
	return fmt.Sprintf("A %s GLM with %s link predicting %s from %s %s%s, N = %d.",
		glmFamily(f), glmLink(f), orDefault(sel.Target, "the outcome"), predictors, verdict(f),
		statistics(lr, pClause(f), effectPhrase(f, "fit", labeled("pseudo-R²", ratio(r.PseudoRSquared, 2)))),
		r.N)
}

func glmFit(f Facts) (string, bool) {
	r := f.Result.(*analysis.GLMResult)
	if !f.HasEffect {
		return "Model fit (pseudo-R²) is " + notAvailable + ".", true
	}
	return fmt.Sprintf("Pseudo-R² = %s indicates a %s fit.", ratio(r.PseudoRSquared, 2), strings.ToLower(f.EffectLabel)), true
}

func glmDeviance(f Facts) (string, bool) {
	r := f.Result.(*analysis.GLMResult)
	dev, null := num(r.Deviance, 2), num(r.NullDeviance, 2)
	if dev == "" || null == "" {
		if aic := num(r.AIC, 2); aic != "" {
			return "AIC = " + aic + ".", true
		}
		return "", false
	}
	text := fmt.Sprintf("Deviance fell from %s (null model) to %s", null, dev)
	if *r.NullDeviance > 0 {
		text += " (" + thresholds.Percent(1-(*r.Deviance)/(*r.NullDeviance)) + " reduction)"
	}
	if aic := num(r.AIC, 2); aic != "" {
		text += "; AIC = " + aic
	}
	return text + ".", true
}

// glmDispersion flags over- or underdispersion for families with a fixed
// scale; a gaussian or gamma dispersion is estimated and not a diagnostic.
func glmDispersion(f Facts) (string, bool) {
	r := f.Result.(*analysis.GLMResult)
	fam := glmFamily(f)
	if fam != analysis.FamilyPoisson && fam != analysis.FamilyBinomial {
		return "", false
	}
	d := num(r.Dispersion, 2)
	if d == "" {
		return "", false
	}
	label := thresholds.Dispersion.Classify(*r.Dispersion)
	text := fmt.Sprintf("Dispersion ratio = %s (%s)", d, strings.ToLower(label))
	if label == "Overdispersed" {
		text += "; standard errors may be understated"
	}
	return text + ".", true
}
