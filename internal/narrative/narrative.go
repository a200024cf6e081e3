// Package narrative turns decoded analysis results into APA-style prose.
// One generic engine runs over a Descriptor registered per analysis kind.
package narrative

import (
	"math"
	"strings"

	"statflow/domain/analysis"
	"statflow/domain/dataset"
	"statflow/internal/thresholds"
)

// Context carries what the result alone does not know: the variable names
// chosen on the screen, the settings of the run and the sample profile.
type Context struct {
	Selection dataset.Selection
	Settings  analysis.Settings
	Profiles  []dataset.ColumnProfile
}

// Profile returns the profile of a column
func (c Context) Profile(col string) (dataset.ColumnProfile, bool) {
	for _, p := range c.Profiles {
		if p.Name == col {
			return p, true
		}
	}
	return dataset.ColumnProfile{}, false
}

// Interpretation is the derived, immutable reading of one result
type Interpretation struct {
	Narrative   string   `json:"narrative"`
	Insights    []string `json:"insights"`
	Significant bool     `json:"significant"`
	PValue      *float64 `json:"p_value,omitempty"`
	PFormatted  string   `json:"p_formatted,omitempty"`
	Stars       string   `json:"stars"`
	EffectLabel string   `json:"effect_label,omitempty"`
}

// Facts is the classified view of a result handed to sentence and insight
// builders.
type Facts struct {
	Result  analysis.Result
	Context Context

	P           float64
	HasP        bool
	Significant bool

	Effect      float64
	HasEffect   bool
	EffectLabel string
}

// Insight yields one independent finding, or false when the metric it
// describes was not reported.
type Insight func(f Facts) (string, bool)

// Descriptor parametrises the engine for one analysis kind
type Descriptor struct {
	Kind         analysis.Kind
	EffectTable  thresholds.Table
	Significance func(analysis.Result) *float64
	Effect       func(analysis.Result) *float64
	Sentence     func(f Facts) string
	Insights     []Insight
}

var registry = map[analysis.Kind]Descriptor{}

func register(d Descriptor) {
	registry[d.Kind] = d
}

// DescriptorFor returns the registered descriptor of a kind
func DescriptorFor(kind analysis.Kind) (Descriptor, bool) {
	d, ok := registry[kind]
	return d, ok
}

// Interpret derives the interpretation of a result. Identical input always
// yields identical output, and missing metrics degrade to "not available"
// phrases.
func Interpret(result analysis.Result, ctx Context) Interpretation {
	if result == nil {
		return Interpretation{Narrative: "No result is available to interpret.", Insights: []string{}}
	}
	d, ok := registry[result.Kind()]
	if !ok {
		return Interpretation{Narrative: "No interpretation is available for this analysis.", Insights: []string{}}
	}
	ctx.Selection = ctx.Selection.Normalize()
	ctx.Settings = ctx.Settings.WithDefaults(result.Kind())

	f := Facts{Result: result, Context: ctx}
	if p := probability(d.Significance(result)); p != nil {
		f.P, f.HasP = *p, true
		f.Significant = thresholds.IsSignificant(f.P)
	}
	if e := d.Effect(result); e != nil && finite(*e) {
		f.Effect, f.HasEffect = *e, true
		f.EffectLabel = d.EffectTable.Classify(f.Effect)
	}

	out := Interpretation{
		Narrative:   d.Sentence(f),
		Insights:    []string{},
		Significant: f.Significant,
		EffectLabel: f.EffectLabel,
	}
	if f.HasP {
		p := f.P
		out.PValue = &p
		out.PFormatted = thresholds.FormatP(p)
		out.Stars = thresholds.Stars(p)
	}
	for _, insight := range d.Insights {
		if text, ok := insight(f); ok {
			out.Insights = append(out.Insights, text)
		}
	}
	return out
}

// probability accepts only finite values in [0,1]
func probability(p *float64) *float64 {
	if p == nil || !finite(*p) || *p < 0 || *p > 1 {
		return nil
	}
	return p
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// verdict is the significance clause shared by every sentence template
func verdict(f Facts) string {
	switch {
	case !f.HasP:
		return "could not be assessed for significance because no p-value was reported"
	case f.Significant:
		return "was statistically significant"
	default:
		return "was not statistically significant"
	}
}

// statistics joins the reported statistic fragments, skipping absent ones
func statistics(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return ", " + strings.Join(kept, ", ")
}

// effectPhrase renders "(moderate fit)" or "fit not available"
func effectPhrase(f Facts, noun, format string) string {
	if !f.HasEffect {
		return noun + " not available"
	}
	return format + " (" + strings.ToLower(f.EffectLabel) + " " + noun + ")"
}
