package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dutyroster/internal/db"
	"github.com/alexanderramin/dutyroster/internal/domain"
	"github.com/alexanderramin/dutyroster/internal/testutil"
)

func TestRunRepo_CreateAndGetByID(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()

	run := testutil.NewTestRun("run-1",
		testutil.WithAssignment("2025-08-02", domain.RoleResident, "res-a"),
		testutil.WithAssignment("2025-08-01", domain.RoleResident, "res-b"),
		testutil.WithAssignment("2025-08-01", domain.RoleAttending, "att-a"),
		testutil.WithGap("2025-08-02", domain.RoleAttending, "no_candidates"),
	)
	run.Seed = 7
	run.Score = 950.5
	run.DirectFills = 1
	run.Backtracks = 2
	run.DurationMillis = 1234
	run.Constraints.BeamWidth = 3

	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
	assert.InDelta(t, 950.5, got.Score, 1e-9)
	assert.InDelta(t, 0.75, got.FillRate, 1e-9)
	assert.Equal(t, 4, got.TotalSlots)
	assert.Equal(t, 3, got.FilledSlots)
	assert.Equal(t, 1, got.DirectFills)
	assert.Equal(t, 2, got.Backtracks)
	assert.Equal(t, int64(1234), got.DurationMillis)
	assert.Equal(t, 3, got.Constraints.BeamWidth)
	assert.Equal(t, 120, got.Constraints.SearchBudgetSecs)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	// Assignments come back in date order, attending before resident.
	require.Len(t, got.Assignments, 3)
	assert.Equal(t, "att-a", got.Assignments[0].Doctor)
	assert.Equal(t, "res-b", got.Assignments[1].Doctor)
	assert.Equal(t, "res-a", got.Assignments[2].Doctor)
	assert.Equal(t, domain.MustParseDate("2025-08-02"), got.Assignments[2].Date)

	require.Len(t, got.RemainingGaps, 1)
	assert.Equal(t, domain.RoleAttending, got.RemainingGaps[0].Role)
	assert.Equal(t, "no_candidates", got.RemainingGaps[0].Reason)
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepo_GetByPrefix(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestRun("abc123")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestRun("abd456")))

	got, err := repo.GetByPrefix(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.ID)

	_, err = repo.GetByPrefix(ctx, "ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = repo.GetByPrefix(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepo_ListNewestFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()

	base := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		run := testutil.NewTestRun(id,
			testutil.WithCreatedAt(base.Add(time.Duration(i)*time.Hour)),
			testutil.WithGap("2025-08-01", domain.RoleAttending, "no_candidates"),
		)
		require.NoError(t, repo.Create(ctx, run))
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].ID)
	assert.Equal(t, "r2", runs[1].ID)
	assert.Equal(t, 1, runs[0].Gaps)
}

func TestRunRepo_DeleteCascades(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()

	run := testutil.NewTestRun("r1",
		testutil.WithAssignment("2025-08-01", domain.RoleAttending, "att-a"),
		testutil.WithGap("2025-08-01", domain.RoleResident, "all_over_quota"),
	)
	require.NoError(t, repo.Create(ctx, run))
	require.NoError(t, repo.Delete(ctx, "r1"))

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM run_assignments`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM run_gaps`).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.Delete(ctx, "r1"), ErrNotFound)
}

func TestRunRepo_CreateRollsBackOnPartialFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("injected")
	uow := &testutil.FailingInsertUoW{DB: database, Table: "run_assignments", FailOn: 2, Err: boom}

	run := testutil.NewTestRun("r1",
		testutil.WithAssignment("2025-08-01", domain.RoleAttending, "att-a"),
		testutil.WithAssignment("2025-08-01", domain.RoleResident, "res-a"),
	)
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteRunRepo(tx).Create(ctx, run)
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n))
	assert.Zero(t, n, "run row must be rolled back")
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM run_assignments`).Scan(&n))
	assert.Zero(t, n)
}
