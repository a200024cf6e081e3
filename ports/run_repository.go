package ports

import (
	"context"

	"statflow/domain/analysis"
	"statflow/domain/core"
)

// RunRepository stores the run history of analysis screens
type RunRepository interface {
	// SaveRun appends a settled run
	SaveRun(ctx context.Context, run analysis.RunRecord) error

	// GetRun retrieves one run
	GetRun(ctx context.Context, id core.RunID) (*analysis.RunRecord, error)

	// ListRuns returns runs newest first, for one screen when screenID is
	// set; limit <= 0 means no limit
	ListRuns(ctx context.Context, screenID core.ScreenID, limit int) ([]analysis.RunRecord, error)
}
