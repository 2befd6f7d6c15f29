package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/dutyroster/internal/db"
)

// NewTestDB opens a private in-memory run store with the runs, run_assignments
// and run_gaps tables migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	if err != nil {
		t.Fatalf("opening run store: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewTestUoW wraps the store for services that save runs.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
