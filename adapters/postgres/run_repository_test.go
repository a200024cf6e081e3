package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statflow/domain/analysis"
	"statflow/domain/core"
	"statflow/internal/migration"
)

// openTestDB connects to STATFLOW_TEST_DATABASE_URL and applies the schema
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("STATFLOW_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STATFLOW_TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func TestRunRepositoryRoundTrip(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()
	screen := core.NewScreenID()
	start := time.Now().UTC().Truncate(time.Millisecond)
	p := 0.012

	ok := analysis.RunRecord{
		ID: core.NewRunID(), ScreenID: screen, Kind: analysis.KindCrosstab, Status: analysis.RunSucceeded,
		SampleHash: core.NewHash([]byte("sample")), SampleSize: 40,
		Selection: json.RawMessage(`{"target":"answer","group":"group"}`),
		Result:    json.RawMessage(`{"n":40,"p_value":0.012}`),
		Narrative: "A chi-square test...", PValue: &p, EffectLabel: "Moderate",
		StartedAt: start, FinishedAt: start.Add(time.Second),
	}
	failed := analysis.RunRecord{
		ID: core.NewRunID(), ScreenID: screen, Kind: analysis.KindCrosstab, Status: analysis.RunFailed,
		SampleHash: core.NewHash([]byte("sample")), Error: "feature X not numeric",
		StartedAt: start.Add(time.Minute), FinishedAt: start.Add(time.Minute),
	}
	require.NoError(t, repo.SaveRun(ctx, ok))
	require.NoError(t, repo.SaveRun(ctx, failed))
	require.NoError(t, repo.SaveRun(ctx, failed))

	got, err := repo.GetRun(ctx, ok.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.RunSucceeded, got.Status)
	assert.JSONEq(t, string(ok.Result), string(got.Result))
	require.NotNil(t, got.PValue)
	assert.InDelta(t, 0.012, *got.PValue, 1e-12)
	assert.True(t, start.Equal(got.StartedAt))

	runs, err := repo.ListRuns(ctx, screen, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, failed.ID, runs[0].ID)
	assert.Nil(t, runs[0].Result)
	assert.Nil(t, runs[0].PValue)
	assert.Equal(t, "feature X not numeric", runs[0].Error)

	runs, err = repo.ListRuns(ctx, screen, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = repo.GetRun(ctx, core.NewRunID())
	assert.ErrorIs(t, err, core.ErrRunNotFound)
}
