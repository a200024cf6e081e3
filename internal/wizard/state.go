package wizard

// State is the serialisable wizard position of one screen.
// CurrentStep never exceeds MaxReachedStep, and MaxReachedStep only grows
// until the session is reset or reopened.
type State struct {
	CurrentStep    Step `json:"current_step"`
	MaxReachedStep Step `json:"max_reached_step"`
	HasResult      bool `json:"has_result"`
}

// Initial is the state of a freshly mounted screen
func Initial() State {
	return State{CurrentStep: FirstStep, MaxReachedStep: FirstStep}
}

// CanVisit reports whether a step may be jumped to. Once a result exists
// the result steps are reachable regardless of MaxReachedStep.
func (s State) CanVisit(step Step) bool {
	if !step.Valid() {
		return false
	}
	return step <= s.MaxReachedStep || (s.HasResult && step >= ResultStep)
}

// Button is the affordance rendered for one step
type Button struct {
	Step    Step   `json:"step"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Current bool   `json:"current"`
}

// Buttons derives the step affordances from the state
func (s State) Buttons() []Button {
	steps := Steps()
	out := make([]Button, len(steps))
	for i, step := range steps {
		out[i] = Button{
			Step:    step,
			Label:   step.String(),
			Enabled: s.CanVisit(step),
			Current: step == s.CurrentStep,
		}
	}
	return out
}
