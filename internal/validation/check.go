package validation

import (
	"statflow/domain/analysis"
	"statflow/domain/dataset"
)

// Severity classifies how strongly a failing check blocks progress
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Check is one finding of the rule engine
type Check struct {
	Label    string   `json:"label"`
	Passed   bool     `json:"passed"`
	Detail   string   `json:"detail"`
	Severity Severity `json:"severity"`
}

// Blocking reports a failed critical check
func (c Check) Blocking() bool {
	return c.Severity == SeverityCritical && !c.Passed
}

// Input is everything a rule may look at. Rules must treat it as read-only.
type Input struct {
	Kind      analysis.Kind
	Sample    *dataset.Sample
	Selection dataset.Selection
	Settings  analysis.Settings
}

// Rule evaluates one aspect of the input
type Rule func(in Input) Check

// Report is the ordered outcome of a rule set
type Report struct {
	Checks []Check `json:"checks"`
	Ready  bool    `json:"ready"`
}

// Evaluate runs every rule in order. The input is normalised first so rules
// see trimmed, de-duplicated selections and defaulted settings.
func Evaluate(rules []Rule, in Input) Report {
	in.Selection = in.Selection.Normalize()
	in.Settings = in.Settings.WithDefaults(in.Kind)

	checks := make([]Check, 0, len(rules))
	for _, rule := range rules {
		checks = append(checks, rule(in))
	}
	return Report{Checks: checks, Ready: Ready(checks)}
}

// EvaluateKind evaluates the rule set registered for in.Kind
func EvaluateKind(in Input) Report {
	return Evaluate(RulesFor(in.Kind), in)
}

// Ready is the logical AND over the passed flag of critical checks.
// Warnings and info findings never block.
func Ready(checks []Check) bool {
	for _, c := range checks {
		if c.Blocking() {
			return false
		}
	}
	return true
}

// Counts tallies failed checks by severity
func (r Report) Counts() map[Severity]int {
	counts := map[Severity]int{}
	for _, c := range r.Checks {
		if !c.Passed {
			counts[c.Severity]++
		}
	}
	return counts
}

// Find returns the first check with the label
func (r Report) Find(label string) (Check, bool) {
	for _, c := range r.Checks {
		if c.Label == label {
			return c, true
		}
	}
	return Check{}, false
}
