package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all run history tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL DEFAULT '',
		algorithm      TEXT NOT NULL,
		cpus           INTEGER NOT NULL,
		quantum        INTEGER NOT NULL DEFAULT 0,
		priority_order TEXT NOT NULL DEFAULT 'lower',
		status         TEXT NOT NULL,
		error          TEXT NOT NULL DEFAULT '',
		total_ticks    INTEGER NOT NULL DEFAULT 0,
		summary        TEXT NOT NULL DEFAULT '{}',
		result         TEXT,
		created_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_processes (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq      INTEGER NOT NULL,
		pid      INTEGER NOT NULL,
		arrival  INTEGER NOT NULL,
		burst    INTEGER NOT NULL,
		priority INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, seq)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_algorithm ON runs(algorithm)`,
}

// alterStatements adds columns introduced after the first schema version.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
	indexSQL string
}{
	{
		table:    "runs",
		column:   "max_ticks",
		alterSQL: `ALTER TABLE runs ADD COLUMN max_ticks INTEGER NOT NULL DEFAULT 0`,
		indexSQL: `CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
	},
}

// migrate executes all schema statements against db.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// Execute ALTER TABLE statements idempotently.
	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
		if alter.indexSQL != "" {
			if _, err := db.ExecContext(ctx, alter.indexSQL); err != nil {
				return err
			}
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil // Column already exists
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
