package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"statflow/domain/analysis"
	"statflow/domain/core"
	apperrors "statflow/internal/errors"
	"statflow/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// runRow mirrors analysis_runs; nullable columns scan into plain bytes
type runRow struct {
	ID          string          `db:"id"`
	ScreenID    string          `db:"screen_id"`
	Kind        string          `db:"kind"`
	Status      string          `db:"status"`
	SampleHash  string          `db:"sample_hash"`
	SampleSize  int             `db:"sample_size"`
	Selection   []byte          `db:"selection"`
	Settings    []byte          `db:"settings"`
	Result      []byte          `db:"result"`
	Narrative   string          `db:"narrative"`
	PValue      sql.NullFloat64 `db:"p_value"`
	EffectLabel string          `db:"effect_label"`
	Error       string          `db:"error_message"`
	StartedAt   time.Time       `db:"started_at"`
	FinishedAt  time.Time       `db:"finished_at"`
}

func (row runRow) record() analysis.RunRecord {
	run := analysis.RunRecord{
		ID:          core.RunID(row.ID),
		ScreenID:    core.ScreenID(row.ScreenID),
		Kind:        analysis.Kind(row.Kind),
		Status:      analysis.RunStatus(row.Status),
		SampleHash:  core.Hash(row.SampleHash),
		SampleSize:  row.SampleSize,
		Selection:   row.Selection,
		Settings:    row.Settings,
		Result:      row.Result,
		Narrative:   row.Narrative,
		EffectLabel: row.EffectLabel,
		Error:       row.Error,
		StartedAt:   row.StartedAt,
		FinishedAt:  row.FinishedAt,
	}
	if row.PValue.Valid {
		p := row.PValue.Float64
		run.PValue = &p
	}
	return run
}

const runColumns = `id, screen_id, kind, status, sample_hash, sample_size, selection, settings, result,
		narrative, p_value, effect_label, error_message, started_at, finished_at`

// SaveRun inserts a settled run; saving the same run twice is a no-op
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, run analysis.RunRecord) error {
	if run.ID == "" {
		return apperrors.ValidationError("run ID cannot be empty")
	}
	var pValue interface{}
	if run.PValue != nil {
		pValue = *run.PValue
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`, run.ID.String(), run.ScreenID.String(), string(run.Kind), string(run.Status), run.SampleHash.String(),
		run.SampleSize, jsonOr(run.Selection, "{}"), jsonOr(run.Settings, "{}"), nullJSON(run.Result),
		run.Narrative, pValue, run.EffectLabel, run.Error, run.StartedAt, run.FinishedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to save run")
	}
	return nil
}

// GetRun retrieves a run by ID
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*analysis.RunRecord, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `SELECT `+runColumns+` FROM analysis_runs WHERE id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to get run")
	}
	run := row.record()
	return &run, nil
}

// ListRuns returns runs newest first, optionally for one screen and limited
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, screenID core.ScreenID, limit int) ([]analysis.RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM analysis_runs`
	var args []interface{}
	if screenID != "" {
		args = append(args, screenID.String())
		query += fmt.Sprintf(" WHERE screen_id = $%d", len(args))
	}
	query += " ORDER BY started_at DESC"
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.Wrap(apperrors.WithCode(apperrors.CodeDatabaseError, err), "failed to list runs")
	}
	runs := make([]analysis.RunRecord, len(rows))
	for i, row := range rows {
		runs[i] = row.record()
	}
	return runs, nil
}

func jsonOr(raw []byte, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}
	return string(raw)
}

func nullJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
