package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"statflow/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

var _ Migrator = (*MigrationRunner)(nil)

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.1.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every statement is
// idempotent so Run may be applied to an up-to-date schema.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createAnalysisRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}

	if err := r.addAnalysisRunsColumns(ctx, db); err != nil {
		return errors.Wrap(err, "failed to add analysis_runs columns")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statements returns the DDL in execution order, for dry runs
func (r *MigrationRunner) Statements() []string {
	out := []string{createAnalysisRuns, addAnalysisRunsColumns}
	return append(out, indexes...)
}

const createAnalysisRuns = `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			screen_id UUID NOT NULL,
			kind VARCHAR(32) NOT NULL,
			status VARCHAR(16) NOT NULL,
			sample_hash CHAR(64) NOT NULL,
			sample_size INTEGER NOT NULL DEFAULT 0,
			selection JSONB NOT NULL DEFAULT '{}'::jsonb,
			settings JSONB NOT NULL DEFAULT '{}'::jsonb,
			result JSONB,
			narrative TEXT NOT NULL DEFAULT '',
			p_value DOUBLE PRECISION,
			error_message TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP WITH TIME ZONE NOT NULL,
			finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`

// effect_label arrived after the first release
const addAnalysisRunsColumns = `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'analysis_runs' AND column_name = 'effect_label'
			) THEN
				ALTER TABLE analysis_runs ADD COLUMN effect_label VARCHAR(64) NOT NULL DEFAULT '';
			END IF;
		END $$;
	`

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_runs_screen_started ON analysis_runs(screen_id, started_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_runs_started_at ON analysis_runs(started_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_runs_kind_status ON analysis_runs(kind, status)",
	"CREATE INDEX IF NOT EXISTS idx_runs_sample_hash ON analysis_runs(sample_hash)",
}

func (r *MigrationRunner) createAnalysisRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, createAnalysisRuns)
	return err
}

func (r *MigrationRunner) addAnalysisRunsColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, addAnalysisRunsColumns)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
