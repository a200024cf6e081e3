package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/domain/analysis"
	"statflow/domain/core"
)

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(3)
	screen := core.NewScreenID()
	other := core.NewScreenID()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []core.RunID
	for i := 0; i < 4; i++ {
		run := analysis.RunRecord{
			ID:        core.NewRunID(),
			ScreenID:  screen,
			Kind:      analysis.KindRegression,
			Status:    analysis.RunSucceeded,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 3 {
			run.ScreenID = other
		}
		require.NoError(t, repo.SaveRun(ctx, run))
		ids = append(ids, run.ID)
	}

	all, err := repo.ListRuns(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[3], all[0].ID)

	mine, err := repo.ListRuns(ctx, screen, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ids[2], mine[0].ID)

	_, err = repo.GetRun(ctx, ids[0])
	assert.ErrorIs(t, err, core.ErrRunNotFound)

	got, err := repo.GetRun(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, screen, got.ScreenID)
}
