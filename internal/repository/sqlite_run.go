package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dutyroster/internal/db"
	"github.com/alexanderramin/dutyroster/internal/domain"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo. Pass a *sql.Tx from a
// UnitOfWork to make Create atomic across the run, assignment and gap rows.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, seed, score, fill_rate, total_slots, filled_slots, direct_fills, swap_chains,
		backtracks, max_consecutive_days, beam_width, csp_timeout_secs, neighbor_expansion,
		max_backtracks, swap_search_depth, search_budget_secs, duration_ms, created_at`

func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.Run) error {
	c := run.Constraints
	query := `INSERT INTO runs (` + runColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Seed,
		run.Score,
		run.FillRate,
		run.TotalSlots,
		run.FilledSlots,
		run.DirectFills,
		run.SwapChains,
		run.Backtracks,
		c.MaxConsecutiveDays,
		c.BeamWidth,
		c.CSPTimeoutSecs,
		c.NeighborExpansion,
		c.MaxBacktracks,
		c.SwapSearchDepth,
		c.SearchBudgetSecs,
		run.DurationMillis,
		timestamp(run.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, a := range run.Assignments {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO run_assignments (run_id, date, role, doctor) VALUES (?, ?, ?, ?)`,
			run.ID, a.Date.String(), string(a.Role), a.Doctor)
		if err != nil {
			return fmt.Errorf("inserting assignment %s/%s: %w", a.Date, a.Role, err)
		}
	}
	for _, g := range run.RemainingGaps {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO run_gaps (run_id, date, role, reason) VALUES (?, ?, ?, ?)`,
			run.ID, g.Date.String(), string(g.Role), g.Reason)
		if err != nil {
			return fmt.Errorf("inserting gap %s/%s: %w", g.Date, g.Role, err)
		}
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return r.load(ctx, row)
}

// GetByPrefix resolves a run by a unique id prefix, the way ids are typed at
// the command line.
func (r *SQLiteRunRepo) GetByPrefix(ctx context.Context, prefix string) (*domain.Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("run: %w", ErrNotFound)
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? || '%' ORDER BY id LIMIT 2`, prefix)
	if err != nil {
		return nil, fmt.Errorf("looking up run prefix: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating run ids: %w", err)
	}
	rows.Close()

	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("run %q: %w", prefix, ErrNotFound)
	case 1:
		return r.GetByID(ctx, ids[0])
	default:
		return nil, fmt.Errorf("run prefix %q is ambiguous", prefix)
	}
}

// List returns the most recent runs first.
func (r *SQLiteRunRepo) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT r.id, r.seed, r.score, r.fill_rate, r.total_slots, r.filled_slots,
			(SELECT COUNT(*) FROM run_gaps g WHERE g.run_id = r.id), r.created_at
		FROM runs r
		ORDER BY r.created_at DESC, r.id
		LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Seed, &s.Score, &s.FillRate, &s.TotalSlots,
			&s.FilledSlots, &s.Gaps, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return out, nil
}

// Delete removes a run; assignment and gap rows go with it via ON DELETE CASCADE.
func (r *SQLiteRunRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRunRepo) load(ctx context.Context, row *sql.Row) (*domain.Run, error) {
	var run domain.Run
	var createdAtStr string
	c := &run.Constraints
	err := row.Scan(
		&run.ID, &run.Seed, &run.Score, &run.FillRate, &run.TotalSlots, &run.FilledSlots,
		&run.DirectFills, &run.SwapChains, &run.Backtracks,
		&c.MaxConsecutiveDays, &c.BeamWidth, &c.CSPTimeoutSecs, &c.NeighborExpansion,
		&c.MaxBacktracks, &c.SwapSearchDepth, &c.SearchBudgetSecs,
		&run.DurationMillis, &createdAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if run.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	if run.Assignments, err = r.loadAssignments(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.RemainingGaps, err = r.loadGaps(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *SQLiteRunRepo) loadAssignments(ctx context.Context, runID string) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, role, doctor FROM run_assignments WHERE run_id = ?
		ORDER BY date, CASE role WHEN 'attending' THEN 0 ELSE 1 END`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing run assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assignment
	for rows.Next() {
		var dateStr, roleStr string
		var a domain.Assignment
		if err := rows.Scan(&dateStr, &roleStr, &a.Doctor); err != nil {
			return nil, fmt.Errorf("scanning assignment row: %w", err)
		}
		if a.Date, a.Role, err = parseSlotKey(dateStr, roleStr); err != nil {
			return nil, fmt.Errorf("parsing assignment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRunRepo) loadGaps(ctx context.Context, runID string) ([]domain.RunGap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, role, reason FROM run_gaps WHERE run_id = ?
		ORDER BY date, CASE role WHEN 'attending' THEN 0 ELSE 1 END`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing run gaps: %w", err)
	}
	defer rows.Close()

	var out []domain.RunGap
	for rows.Next() {
		var dateStr, roleStr string
		var g domain.RunGap
		if err := rows.Scan(&dateStr, &roleStr, &g.Reason); err != nil {
			return nil, fmt.Errorf("scanning gap row: %w", err)
		}
		if g.Date, g.Role, err = parseSlotKey(dateStr, roleStr); err != nil {
			return nil, fmt.Errorf("parsing gap: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating gaps: %w", err)
	}
	return out, nil
}
