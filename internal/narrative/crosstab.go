package narrative

import (
	"fmt"
	"strings"

	"statflow/domain/analysis"
	"statflow/internal/thresholds"
)

func init() {
	register(Descriptor{
		Kind:         analysis.KindCrosstab,
		EffectTable:  thresholds.CramersV,
		Significance: func(r analysis.Result) *float64 { return r.(*analysis.CrosstabResult).PValue },
		Effect:       func(r analysis.Result) *float64 { return r.(*analysis.CrosstabResult).CramersV },
		Sentence:     crosstabSentence,
		Insights:     []Insight{crosstabAssociation, crosstabExpected, crosstabShape},
	})
}

func crosstabVariables(f Facts) (string, string) {
	sel := f.Context.Selection
	return orDefault(sel.Group, "the row variable"), orDefault(sel.Target, "the column variable")
}

func crosstabSentence(f Facts) string {
	r := f.Result.(*analysis.CrosstabResult)
	row, col := crosstabVariables(f)

	var chi string
	if v := num(r.ChiSquare, 2); v != "" {
		if r.DF != nil {
			chi = fmt.Sprintf("χ²(%d, N = %d) = %s", *r.DF, r.N, v)
		} else {
			chi = fmt.Sprintf("χ²(N = %d) = %s", r.N, v)
		}
	}
	var n string
	if chi == "" {
		n = fmt.Sprintf(", N = %d", r.N)
	}
	return fmt.Sprintf("A chi-square test of independence between %s and %s %s%s%s.",
		row, col, verdict(f),
		statistics(chi, pClause(f), effectPhrase(f, "association", labeled("Cramér's V", ratio(r.CramersV, 2)))), n)
}

func crosstabAssociation(f Facts) (string, bool) {
	r := f.Result.(*analysis.CrosstabResult)
	row, col := crosstabVariables(f)
	if !f.HasEffect {
		return "Association strength (Cramér's V) is " + notAvailable + ".", true
	}
	return fmt.Sprintf("Cramér's V = %s indicates a %s association between %s and %s.",
		ratio(r.CramersV, 2), strings.ToLower(f.EffectLabel), row, col), true
}

func crosstabExpected(f Facts) (string, bool) {
	r := f.Result.(*analysis.CrosstabResult)
	switch {
	case r.CellsBelow5 != nil && *r.CellsBelow5 > 0:
		return fmt.Sprintf("%s expected counts below 5; the chi-square approximation may be unreliable.",
			plural(*r.CellsBelow5, "cell has", "cells have")), true
	case r.MinExpected != nil && finite(*r.MinExpected) && *r.MinExpected < 5:
		return fmt.Sprintf("The smallest expected count is %s, below 5; the chi-square approximation may be unreliable.",
			thresholds.Fixed(*r.MinExpected, 2)), true
	case r.MinExpected != nil && finite(*r.MinExpected):
		return fmt.Sprintf("All expected cell counts are at least 5 (minimum %s).", thresholds.Fixed(*r.MinExpected, 2)), true
	}
	return "", false
}

func crosstabShape(f Facts) (string, bool) {
	r := f.Result.(*analysis.CrosstabResult)
	if len(r.RowLevels) == 0 || len(r.ColumnLevels) == 0 {
		return "", false
	}
	return fmt.Sprintf("The table crosses %d by %d categories over N = %d observations.",
		len(r.RowLevels), len(r.ColumnLevels), r.N), true
}
