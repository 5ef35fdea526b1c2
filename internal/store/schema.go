package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current version of the run index schema.
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id           TEXT PRIMARY KEY,
    tag          TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    mode         TEXT NOT NULL,
    sfh          TEXT NOT NULL,
    catalog      TEXT NOT NULL DEFAULT '',
    systems      INTEGER NOT NULL,
    binned       INTEGER NOT NULL,
    elapsed      REAL NOT NULL,
    z_bins       INTEGER NOT NULL,
    f_bins       INTEGER NOT NULL,
    omega_bulk   REAL NOT NULL,
    omega_birth  REAL NOT NULL,
    omega_merger REAL NOT NULL,
    n_total      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_sfh ON runs(sfh);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS run_diagnostics (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    name   TEXT NOT NULL,
    count  INTEGER NOT NULL,
    PRIMARY KEY (run_id, name)
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// InitSchema creates the tables of a new index. Existing indexes are left
// untouched.
func InitSchema(ctx context.Context, db *sql.DB) error {
	var version sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err == nil && version.Valid && version.Int64 >= SchemaVersion {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
