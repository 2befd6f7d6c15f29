package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                     TEXT PRIMARY KEY,
		seed                   INTEGER NOT NULL DEFAULT 0,
		score                  REAL NOT NULL DEFAULT 0,
		fill_rate              REAL NOT NULL DEFAULT 0,
		total_slots            INTEGER NOT NULL DEFAULT 0,
		filled_slots           INTEGER NOT NULL DEFAULT 0,
		direct_fills           INTEGER NOT NULL DEFAULT 0,
		swap_chains            INTEGER NOT NULL DEFAULT 0,
		backtracks             INTEGER NOT NULL DEFAULT 0,
		max_consecutive_days   INTEGER NOT NULL,
		beam_width             INTEGER NOT NULL,
		csp_timeout_secs       INTEGER NOT NULL,
		neighbor_expansion     INTEGER NOT NULL,
		max_backtracks         INTEGER NOT NULL,
		swap_search_depth      INTEGER NOT NULL,
		created_at             TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_assignments (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		date    TEXT NOT NULL,
		role    TEXT NOT NULL CHECK(role IN ('attending','resident')),
		doctor  TEXT NOT NULL,
		PRIMARY KEY (run_id, date, role)
	)`,

	`CREATE TABLE IF NOT EXISTS run_gaps (
		run_id  TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		date    TEXT NOT NULL,
		role    TEXT NOT NULL CHECK(role IN ('attending','resident')),
		reason  TEXT NOT NULL,
		PRIMARY KEY (run_id, date, role)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_run_assignments_doctor ON run_assignments(doctor)`,

	// Added after the first release; older databases get the columns here.
	`ALTER TABLE runs ADD COLUMN search_budget_secs INTEGER NOT NULL DEFAULT 120`,
	`ALTER TABLE runs ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0`,
}
