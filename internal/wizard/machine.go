package wizard

import (
	"fmt"

	"statflow/domain/core"
)

// Action tells the caller what a navigation request resulted in
type Action string

const (
	ActionNone  Action = "none"
	ActionMoved Action = "moved"
	// ActionRun means the caller must start a run; the machine did not move
	ActionRun Action = "run"
)

// Machine drives the step sequence of a single screen. It is not safe for
// concurrent use; the owning screen serialises access.
type Machine struct {
	state   State
	running bool
}

// New returns a machine at the initial state
func New() *Machine {
	return &Machine{state: Initial()}
}

// State returns a copy of the current state
func (m *Machine) State() State {
	return m.state
}

// Running reports whether a run is in flight
func (m *Machine) Running() bool {
	return m.running
}

// SetRunning marks the start or end of a run
func (m *Machine) SetRunning(running bool) {
	m.running = running
}

// GoTo jumps to a reachable step. While running only steps already reached
// are allowed.
func (m *Machine) GoTo(step Step) error {
	if !step.Valid() {
		return core.NewStepError(int(step), "outside the step range")
	}
	if !m.state.CanVisit(step) {
		return core.NewStepError(int(step), fmt.Sprintf("not reached yet (max %d)", m.state.MaxReachedStep))
	}
	if m.running && step > m.state.MaxReachedStep {
		return fmt.Errorf("go to step %d: %w", step, core.ErrRunInFlight)
	}
	m.move(step)
	return nil
}

// Next advances one step. Leaving the validation step is the caller's run
// trigger; the machine stays put and reports ActionRun.
func (m *Machine) Next() (Action, error) {
	if m.running {
		return ActionNone, core.ErrRunInFlight
	}
	switch cur := m.state.CurrentStep; {
	case cur == StepValidation:
		return ActionRun, nil
	case cur >= LastStep:
		return ActionNone, nil
	default:
		m.move(cur + 1)
		return ActionMoved, nil
	}
}

// Previous steps back with a floor at the first step
func (m *Machine) Previous() Action {
	if m.state.CurrentStep <= FirstStep {
		return ActionNone
	}
	m.move(m.state.CurrentStep - 1)
	return ActionMoved
}

// Reset starts a new session at the first step without a result
func (m *Machine) Reset() {
	m.state = Initial()
}

// Reopen starts a new session no further than step and drops the result.
// Used when settings change: earlier choices stay valid, later ones do not.
func (m *Machine) Reopen(step Step) {
	if !step.Valid() {
		step = FirstStep
	}
	cur := m.state.CurrentStep
	if cur > step {
		cur = step
	}
	m.state = State{CurrentStep: cur, MaxReachedStep: cur}
}

// CompleteRun records a successful run and shows the summary
func (m *Machine) CompleteRun() {
	m.running = false
	m.state.HasResult = true
	m.move(StepSummary)
}

// FailRun ends a run and returns to the validation step. An earlier
// result stays reachable since it still matches the inputs.
func (m *Machine) FailRun() {
	m.running = false
	if m.state.CurrentStep > StepValidation {
		m.state.CurrentStep = StepValidation
	}
}

// CanAdvance reports whether the continue action is enabled. At the
// validation step it additionally requires every critical check to pass.
func (m *Machine) CanAdvance(ready bool) bool {
	if m.running || m.state.CurrentStep >= LastStep {
		return false
	}
	if m.state.CurrentStep == StepValidation {
		return ready
	}
	return true
}

// Buttons derives the step affordances; forward jumps are disabled while a
// run is in flight.
func (m *Machine) Buttons() []Button {
	buttons := m.state.Buttons()
	if m.running {
		for i := range buttons {
			if buttons[i].Step > m.state.MaxReachedStep {
				buttons[i].Enabled = false
			}
		}
	}
	return buttons
}

func (m *Machine) move(step Step) {
	m.state.CurrentStep = step
	if step > m.state.MaxReachedStep {
		m.state.MaxReachedStep = step
	}
}
