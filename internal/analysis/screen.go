package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	domain "statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/domain/dataset"
	"statflow/internal"
	apperrors "statflow/internal/errors"
	"statflow/internal/narrative"
	"statflow/internal/validation"
	"statflow/internal/wizard"
	"statflow/ports"
)

// Screen lifecycle events
const (
	EventSampleLoaded    = "sample_loaded"
	EventSelectionChange = "selection_changed"
	EventSettingsChange  = "settings_changed"
	EventRunStarted      = "run_started"
	EventRunSucceeded    = "run_succeeded"
	EventRunFailed       = "run_failed"
	EventRunDiscarded    = "run_discarded"
)

var errClosed = fmt.Errorf("%w: screen closed", core.ErrScreenNotFound)

// Deps are the collaborators shared by all screens
type Deps struct {
	Compute ports.ComputeClient
	Runs    ports.RunRepository
	Events  ports.EventPublisher
	Metrics Recorder
	Logger  *internal.Logger
	Now     func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = nopPublisher{}
	}
	if d.Metrics == nil {
		d.Metrics = nopRecorder{}
	}
	if d.Logger == nil {
		d.Logger = internal.DefaultLogger
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Screen is one analysis screen: the wizard, the inputs and the last
// result of a single analysis kind. Its lock is never held across the
// compute call.
type Screen struct {
	id         core.ScreenID
	kind       domain.Kind
	deps       Deps
	log        *internal.Logger
	generation *Generation
	createdAt  time.Time

	mu        sync.Mutex
	machine   *wizard.Machine
	sample    *dataset.Sample
	profiles  []dataset.ColumnProfile
	selection dataset.Selection
	settings  domain.Settings
	report    validation.Report
	result    domain.Result
	plot      string
	interp    *narrative.Interpretation
	lastError string
	lastRun   core.RunID
	closed    bool
	updatedAt time.Time
}

// NewScreen creates a screen at the first step with no sample
func NewScreen(kind domain.Kind, deps Deps) (*Screen, error) {
	kind, err := domain.ParseKind(string(kind))
	if err != nil {
		return nil, err
	}
	if deps.Compute == nil {
		return nil, apperrors.ConfigInvalid("screen requires a compute client")
	}
	deps = deps.withDefaults()
	now := deps.Now()
	s := &Screen{
		id:         core.NewScreenID(),
		kind:       kind,
		deps:       deps,
		log:        deps.Logger.With("Screen"),
		generation: NewGeneration(),
		createdAt:  now,
		updatedAt:  now,
		machine:    wizard.New(),
		settings:   domain.DefaultSettings(kind),
	}
	s.revalidateLocked()
	return s, nil
}

// ID returns the screen identifier
func (s *Screen) ID() core.ScreenID { return s.id }

// Kind returns the analysis kind of the screen
func (s *Screen) Kind() domain.Kind { return s.kind }

// SetSample replaces the dataset. The selection, the result and the wizard
// position are discarded and any run in flight becomes stale.
func (s *Screen) SetSample(sample *dataset.Sample) error {
	if sample == nil {
		return core.ErrNoSample
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	s.sample = sample
	s.profiles = dataset.ProfileSample(sample)
	s.selection = dataset.Selection{}
	s.invalidateLocked()
	s.machine.Reset()
	s.revalidateLocked()
	step := s.machine.State().CurrentStep
	s.mu.Unlock()

	s.log.Info("%s loaded sample with %d rows, %d columns", s.id, sample.Len(), len(sample.Columns))
	s.publish(EventSampleLoaded, step, "", map[string]interface{}{"rows": sample.Len(), "columns": sample.Columns})
	return nil
}

// SetSelection replaces the role assignment. A changed selection resets
// the wizard to the first step and drops the result.
func (s *Screen) SetSelection(sel dataset.Selection) error {
	sel = sel.Normalize()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	if sel.Equal(s.selection) {
		s.mu.Unlock()
		return nil
	}
	s.selection = sel
	s.invalidateLocked()
	s.machine.Reset()
	s.revalidateLocked()
	step := s.machine.State().CurrentStep
	s.mu.Unlock()

	s.publish(EventSelectionChange, step, "", nil)
	return nil
}

// SetSettings replaces the analysis parameters. A change drops the result
// and reopens the session no further than the settings step.
func (s *Screen) SetSettings(settings domain.Settings) error {
	settings = settings.WithDefaults(s.kind)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errClosed
	}
	if settings.Equal(s.settings, s.kind) {
		s.mu.Unlock()
		return nil
	}
	s.settings = settings
	s.invalidateLocked()
	s.machine.Reopen(wizard.StepSettings)
	s.revalidateLocked()
	step := s.machine.State().CurrentStep
	s.mu.Unlock()

	s.publish(EventSettingsChange, step, settings.Describe(s.kind), nil)
	return nil
}

// GoTo jumps to a reachable step
func (s *Screen) GoTo(step wizard.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if err := s.machine.GoTo(step); err != nil {
		return err
	}
	s.touchLocked()
	return nil
}

// Previous steps back one step
func (s *Screen) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.machine.Previous()
	s.touchLocked()
	return nil
}

// Next advances the wizard. At the validation step it runs the analysis
// and only moves on when the run succeeds.
func (s *Screen) Next(ctx context.Context) (wizard.Action, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wizard.ActionNone, errClosed
	}
	action, err := s.machine.Next()
	s.touchLocked()
	s.mu.Unlock()
	if err != nil || action != wizard.ActionRun {
		return action, err
	}
	_, err = s.Run(ctx)
	return action, err
}

// Run issues the single compute call for the current inputs. It requires
// every critical check to pass, at most one run per screen may be in
// flight, and a response that arrives after the inputs changed is
// discarded with ErrStaleResponse.
func (s *Screen) Run(ctx context.Context) (domain.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errClosed
	}
	if s.machine.Running() {
		s.mu.Unlock()
		return nil, core.ErrRunInFlight
	}
	if s.sample.Len() == 0 {
		s.mu.Unlock()
		return nil, core.ErrNoSample
	}
	if !s.report.Ready {
		s.mu.Unlock()
		return nil, core.ErrNotReady
	}
	if s.machine.State().CurrentStep < wizard.StepValidation {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: runs start from the %s step", core.ErrNotReady, wizard.StepValidation)
	}

	req := NewComputeRequest(s.kind, s.sample, s.selection, s.settings)
	tag := s.generation.Next()
	s.machine.SetRunning(true)
	s.lastError = ""
	run := s.newRunRecordLocked()
	ictx := narrative.Context{Selection: s.selection, Settings: s.settings, Profiles: s.profiles}
	step := s.machine.State().CurrentStep
	s.touchLocked()
	s.mu.Unlock()

	s.deps.Metrics.RunStarted(s.kind)
	s.publish(EventRunStarted, step, "", map[string]interface{}{"run_id": run.ID.String()})
	s.log.Debug("%s run %s started (generation %d, %d rows)", s.id, run.ID, tag, len(req.Rows))

	env, err := s.deps.Compute.Compute(ctx, req)
	run.FinishedAt = s.deps.Now()

	s.mu.Lock()
	if s.closed || !s.generation.IsCurrent(tag) {
		closed := s.closed
		s.mu.Unlock()
		s.log.Warn("%s discarded stale %s response (generation %d)", s.id, s.kind, tag)
		s.deps.Metrics.RunDiscarded(s.kind)
		if !closed {
			s.publish(EventRunDiscarded, step, "", map[string]interface{}{"run_id": run.ID.String()})
		}
		return nil, core.ErrStaleResponse
	}

	if err != nil {
		msg := apperrors.UserMessage(err)
		s.lastError = msg
		s.machine.FailRun()
		step = s.machine.State().CurrentStep
		s.touchLocked()
		s.mu.Unlock()

		run.Status = domain.RunFailed
		run.Error = msg
		s.log.Warn("%s run %s failed: %v", s.id, run.ID, err)
		s.finishRun(ctx, run)
		s.publish(EventRunFailed, step, msg, map[string]interface{}{"run_id": run.ID.String(), "code": apperrors.GetCode(err)})
		return nil, err
	}

	interp := narrative.Interpret(env.Result, ictx)
	s.result = env.Result
	s.plot = env.Plot
	s.interp = &interp
	s.lastRun = run.ID
	s.machine.CompleteRun()
	step = s.machine.State().CurrentStep
	s.touchLocked()
	s.mu.Unlock()

	run.Status = domain.RunSucceeded
	run.Result = env.Result.Raw()
	run.Narrative = interp.Narrative
	run.PValue = interp.PValue
	run.EffectLabel = interp.EffectLabel
	s.log.Info("%s run %s succeeded in %v", s.id, run.ID, run.Duration())
	s.finishRun(ctx, run)
	s.publish(EventRunSucceeded, step, interp.Narrative, map[string]interface{}{"run_id": run.ID.String(), "stars": interp.Stars})
	return env.Result, nil
}

// Close tears the screen down; a run in flight is discarded on arrival
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation.Next()
	s.machine.SetRunning(false)
}

// View is the renderable state of a screen
type View struct {
	ID             core.ScreenID             `json:"id"`
	Kind           domain.Kind               `json:"kind"`
	Title          string                    `json:"title"`
	State          wizard.State              `json:"state"`
	Buttons        []wizard.Button           `json:"buttons"`
	CanAdvance     bool                      `json:"can_advance"`
	Running        bool                      `json:"running"`
	Ready          bool                      `json:"ready"`
	Checks         []validation.Check        `json:"checks"`
	Columns        []string                  `json:"columns"`
	SampleSize     int                       `json:"sample_size"`
	Profiles       []dataset.ColumnProfile   `json:"profiles,omitempty"`
	Selection      dataset.Selection         `json:"selection"`
	Settings       domain.Settings           `json:"settings"`
	Error          string                    `json:"error,omitempty"`
	Interpretation *narrative.Interpretation `json:"interpretation,omitempty"`
	HasPlot        bool                      `json:"has_plot"`
	LastRunID      core.RunID                `json:"last_run_id,omitempty"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// View returns a consistent copy of the screen state
func (s *Screen) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:         s.id,
		Kind:       s.kind,
		Title:      s.kind.Title(),
		State:      s.machine.State(),
		Buttons:    s.machine.Buttons(),
		CanAdvance: s.machine.CanAdvance(s.report.Ready),
		Running:    s.machine.Running(),
		Ready:      s.report.Ready,
		Checks:     append([]validation.Check(nil), s.report.Checks...),
		SampleSize: s.sample.Len(),
		Profiles:   s.profiles,
		Selection:  s.selection,
		Settings:   s.settings,
		Error:      s.lastError,
		HasPlot:    s.plot != "",
		LastRunID:  s.lastRun,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.sample != nil {
		v.Columns = append([]string(nil), s.sample.Columns...)
	}
	if s.interp != nil {
		interp := *s.interp
		v.Interpretation = &interp
	}
	return v
}

// Snapshot is everything an exporter needs about the last successful run
type Snapshot struct {
	ScreenID       core.ScreenID
	RunID          core.RunID
	Kind           domain.Kind
	Selection      dataset.Selection
	Settings       domain.Settings
	Checks         []validation.Check
	Profiles       []dataset.ColumnProfile
	Result         domain.Result
	Plot           string
	Interpretation narrative.Interpretation
}

// Snapshot returns the stored result with its inputs, or ErrNoResult
func (s *Screen) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.interp == nil {
		return Snapshot{}, core.ErrNoResult
	}
	return Snapshot{
		ScreenID:       s.id,
		RunID:          s.lastRun,
		Kind:           s.kind,
		Selection:      s.selection,
		Settings:       s.settings,
		Checks:         append([]validation.Check(nil), s.report.Checks...),
		Profiles:       s.profiles,
		Result:         s.result,
		Plot:           s.plot,
		Interpretation: *s.interp,
	}, nil
}

// invalidateLocked drops the result and makes any in-flight run stale
func (s *Screen) invalidateLocked() {
	s.generation.Next()
	s.machine.SetRunning(false)
	s.result = nil
	s.plot = ""
	s.interp = nil
	s.lastError = ""
	s.touchLocked()
}

func (s *Screen) revalidateLocked() {
	s.report = validation.EvaluateKind(validation.Input{
		Kind:      s.kind,
		Sample:    s.sample,
		Selection: s.selection,
		Settings:  s.settings,
	})
}

func (s *Screen) touchLocked() {
	s.updatedAt = s.deps.Now()
}

func (s *Screen) newRunRecordLocked() domain.RunRecord {
	sel, _ := json.Marshal(s.selection)
	settings, _ := json.Marshal(s.settings)
	return domain.RunRecord{
		ID:         core.NewRunID(),
		ScreenID:   s.id,
		Kind:       s.kind,
		SampleHash: s.sample.Fingerprint(),
		SampleSize: s.sample.Len(),
		Selection:  sel,
		Settings:   settings,
		StartedAt:  s.deps.Now(),
	}
}

// finishRun records metrics and persists the run; persistence failures
// are logged and never fail the run.
func (s *Screen) finishRun(ctx context.Context, run domain.RunRecord) {
	s.deps.Metrics.RunFinished(s.kind, run.Status, run.Duration())
	if s.deps.Runs == nil {
		return
	}
	if err := s.deps.Runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		s.log.Error("%s failed to persist run %s: %v", s.id, run.ID, err)
	}
}

func (s *Screen) publish(eventType string, step wizard.Step, message string, data map[string]interface{}) {
	s.deps.Events.Publish(ports.ScreenEvent{
		ScreenID:  s.id.String(),
		EventType: eventType,
		Step:      int(step),
		Message:   message,
		Data:      data,
		Timestamp: s.deps.Now(),
	})
}
