package db_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/db"
)

func openTestDB(t *testing.T) (*sql.DB, *db.SQLiteUnitOfWork) {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, db.NewSQLiteUnitOfWork(database)
}

func insertRun(ctx context.Context, tx db.DBTX, id string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO runs (id, max_consecutive_days, beam_width, csp_timeout_secs,
		neighbor_expansion, max_backtracks, swap_search_depth, created_at)
		VALUES (?, 2, 5, 10, 10, 20, 3, '2025-08-01T00:00:00Z')`, id)
	return err
}

func countRows(t *testing.T, database *sql.DB, table, runID string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, keyColumn(table)), runID).Scan(&n))
	return n
}

func keyColumn(table string) string {
	if table == "runs" {
		return "id"
	}
	return "run_id"
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	database, uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertRun(ctx, tx, "r1"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO run_gaps (run_id, date, role, reason) VALUES ('r1', '2025-08-01', 'attending', 'no_candidates')`)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, database, "runs", "r1"))
	assert.Equal(t, 1, countRows(t, database, "run_gaps", "r1"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	database, uow := openTestDB(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertRun(ctx, tx, "r2"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")
	assert.Zero(t, countRows(t, database, "runs", "r2"), "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	database, uow := openTestDB(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertRun(ctx, tx, "r3")
			panic("boom")
		})
	})
	assert.Zero(t, countRows(t, database, "runs", "r3"), "row should not exist after panic rollback")
}

func TestForeignKeys_CascadeOnRunDelete(t *testing.T) {
	database, uow := openTestDB(t)

	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertRun(ctx, tx, "r4"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO run_assignments (run_id, date, role, doctor) VALUES ('r4', '2025-08-01', 'resident', 'R')`)
		return err
	}))

	_, err := database.Exec(`DELETE FROM runs WHERE id = 'r4'`)
	require.NoError(t, err)
	assert.Zero(t, countRows(t, database, "run_assignments", "r4"))

	_, err = database.Exec(`INSERT INTO run_assignments (run_id, date, role, doctor) VALUES ('missing', '2025-08-01', 'resident', 'R')`)
	assert.Error(t, err, "foreign keys must be enforced")
}
