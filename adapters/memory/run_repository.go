package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/ports"
)

// RunRepository keeps run history in process memory. It backs the server
// when no database is configured.
type RunRepository struct {
	mu   sync.RWMutex
	runs []analysis.RunRecord
	max  int
}

var _ ports.RunRepository = (*RunRepository)(nil)

// NewRunRepository keeps at most max runs, dropping the oldest; max <= 0
// means unbounded.
func NewRunRepository(max int) *RunRepository {
	return &RunRepository{max: max}
}

func (r *RunRepository) SaveRun(ctx context.Context, run analysis.RunRecord) error {
	if run.ID.String() == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	if r.max > 0 && len(r.runs) > r.max {
		r.runs = append([]analysis.RunRecord(nil), r.runs[len(r.runs)-r.max:]...)
	}
	return nil
}

func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*analysis.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			run := r.runs[i]
			return &run, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
}

func (r *RunRepository) ListRuns(ctx context.Context, screenID core.ScreenID, limit int) ([]analysis.RunRecord, error) {
	r.mu.RLock()
	var out []analysis.RunRecord
	for _, run := range r.runs {
		if screenID == "" || run.ScreenID == screenID {
			out = append(out, run)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
