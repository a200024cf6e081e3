package narrative

import (
	"fmt"
	"math"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

// minClusters below which clustered standard errors are flagged
const minClusters = 20

func init() {
	register(Descriptor{
		Kind:         analysis.KindDiD,
		EffectTable:  thresholds.CohensD,
		Significance: func(r analysis.Result) *float64 { return r.(*analysis.DiDResult).PValue },
		Effect: func(r analysis.Result) *float64 {
			d := r.(*analysis.DiDResult).CohensD
			if d == nil {
				return nil
			}
			abs := math.Abs(*d)
			return &abs
		},
		Sentence: didSentence,
		Insights: []Insight{didEffect, didChanges, didParallelTrends, didClusters},
	})
}

func didConfidence(f Facts) float64 {
	if c := f.Result.(*analysis.DiDResult).ConfidenceLevel; c != nil && *c > 0 && *c < 1 {
		return *c
	}
	return f.Context.Settings.ConfidenceLevel
}

func didSentence(f Facts) string {
	r := f.Result.(*analysis.DiDResult)
	sel := f.Context.Selection

	var ci string
	if lo, hi := num(r.CILower, 2), num(r.CIUpper, 2); lo != "" && hi != "" {
		ci = fmt.Sprintf("%s%% CI [%s, %s]", confidencePercent(didConfidence(f)), lo, hi)
	}
	return fmt.Sprintf("The difference-in-differences estimate of the effect of %s on %s %s%s, N = %d.",
		orDefault(sel.Group, "treatment"), orDefault(sel.Target, "the outcome"), verdict(f),
		statistics(
			labeled("ATT", num(r.ATT, 2)),
			labeled("SE", num(r.StdError, 2)),
			labeled("t", num(r.Statistic, 2)),
			pClause(f),
			ci,
			effectPhrase(f, "effect", labeled("d", num(r.CohensD, 2))),
		),
		r.N)
}

func didEffect(f Facts) (string, bool) {
	r := f.Result.(*analysis.DiDResult)
	if !f.HasEffect {
		return "Standardized effect size (Cohen's d) is " + notAvailable + ".", true
	}
	direction := "an increase"
	if *r.CohensD < 0 {
		direction = "a decrease"
	}
	return fmt.Sprintf("Cohen's d = %s indicates a %s effect, %s in %s relative to the control group.",
		num(r.CohensD, 2), strings.ToLower(f.EffectLabel), direction, orDefault(f.Context.Selection.Target, "the outcome")), true
}

func didChanges(f Facts) (string, bool) {
	m := f.Result.(*analysis.DiDResult).Means
	if m.PreTreated == nil || m.PostTreated == nil || m.PreControl == nil || m.PostControl == nil {
		return "", false
	}
	treated := *m.PostTreated - *m.PreTreated
	control := *m.PostControl - *m.PreControl
	return fmt.Sprintf("The treated group changed by %s versus %s in the control group.",
		thresholds.Fixed(treated, 2), thresholds.Fixed(control, 2)), true
}

func didParallelTrends(f Facts) (string, bool) {
	p := probability(f.Result.(*analysis.DiDResult).ParallelTrendsPValue)
	if p == nil {
		return "The parallel trends assumption could not be tested; no pre-treatment comparison was reported.", true
	}
	if thresholds.IsSignificant(*p) {
		return "Pre-treatment trends differ (p " + thresholds.FormatP(*p) + "); the parallel trends assumption may be violated.", true
	}
	return "Pre-treatment trends do not differ significantly (p " + thresholds.FormatP(*p) + "), consistent with parallel trends.", true
}

func didClusters(f Facts) (string, bool) {
	r := f.Result.(*analysis.DiDResult)
	if r.Clusters == nil {
		return "", false
	}
	text := fmt.Sprintf("Standard errors are clustered on %s", plural(*r.Clusters, "cluster", "clusters"))
	if *r.Clusters < minClusters {
		text += fmt.Sprintf("; with fewer than %d clusters they may be unreliable", minClusters)
	}
	return text + ".", true
}
