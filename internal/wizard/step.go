package wizard

import "fmt"

// Step is one stage of the fixed analysis sequence
type Step int

const (
	StepVariables Step = iota + 1
	StepSettings
	StepValidation
	StepSummary
	StepReasoning
	StepStatistics
)

const (
	FirstStep = StepVariables
	LastStep  = StepStatistics
	// ResultStep is the first step that shows output of a run
	ResultStep = StepSummary
)

var stepLabels = [...]string{
	StepVariables:  "Variables",
	StepSettings:   "Settings",
	StepValidation: "Validation",
	StepSummary:    "Summary",
	StepReasoning:  "Reasoning",
	StepStatistics: "Statistics",
}

// Steps returns every step in order
func Steps() []Step {
	return []Step{StepVariables, StepSettings, StepValidation, StepSummary, StepReasoning, StepStatistics}
}

// Valid reports whether the step lies in 1..6
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepLabels[s]
}
