package analysis

import (
	"encoding/json"
	"time"

	"statflow/domain/core"
)

// RunStatus is the outcome of one compute call
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is the history entry persisted for every settled run. Stale
// responses are never recorded.
type RunRecord struct {
	ID          core.RunID      `json:"id" db:"id"`
	ScreenID    core.ScreenID   `json:"screen_id" db:"screen_id"`
	Kind        Kind            `json:"kind" db:"kind"`
	Status      RunStatus       `json:"status" db:"status"`
	SampleHash  core.Hash       `json:"sample_hash" db:"sample_hash"`
	SampleSize  int             `json:"sample_size" db:"sample_size"`
	Selection   json.RawMessage `json:"selection" db:"selection"`
	Settings    json.RawMessage `json:"settings" db:"settings"`
	Result      json.RawMessage `json:"result,omitempty" db:"result"`
	Narrative   string          `json:"narrative,omitempty" db:"narrative"`
	PValue      *float64        `json:"p_value,omitempty" db:"p_value"`
	EffectLabel string          `json:"effect_label,omitempty" db:"effect_label"`
	Error       string          `json:"error,omitempty" db:"error_message"`
	StartedAt   time.Time       `json:"started_at" db:"started_at"`
	FinishedAt  time.Time       `json:"finished_at" db:"finished_at"`
}

// Duration is the wall time of the compute call
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
