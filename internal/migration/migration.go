package migration

import (
	"context"

	"goeda/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
}

type step struct {
	name string
	sql  string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		steps: []step{
			{name: "datasets table", sql: createDatasetsTable},
			{name: "datasets verdict column", sql: addVerdictColumn},
			{name: "indexes", sql: createIndexes},
		},
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Steps returns the migration names in execution order
func (r *MigrationRunner) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.name
	}
	return names
}

// Run executes all database migrations in order. Every statement is
// idempotent so Run is safe on every startup.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrapf(err, "failed to run migration %q", s.name)
		}
	}
	return nil
}

const createDatasetsTable = `
	CREATE TABLE IF NOT EXISTS datasets (
		id UUID PRIMARY KEY,
		original_filename TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		source VARCHAR(20) NOT NULL DEFAULT 'upload',
		record_count INTEGER DEFAULT 0,
		field_count INTEGER DEFAULT 0,
		missing_rate DOUBLE PRECISION DEFAULT 0.0,
		status VARCHAR(20) NOT NULL DEFAULT 'processing',
		error_message TEXT,
		metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
		profile JSONB,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)
`

const addVerdictColumn = `
	DO $$
	BEGIN
		IF NOT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = 'datasets' AND column_name = 'verdict'
		) THEN
			ALTER TABLE datasets ADD COLUMN verdict VARCHAR(20);
		END IF;
	END $$;
`

const createIndexes = `
	CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_datasets_status ON datasets(status);
`
