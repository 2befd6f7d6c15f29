package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/dutyroster/internal/db"
)

// FailingInsertUoW runs the callback in a real transaction but fails the
// FailOn-th INSERT into Table with Err. An empty Table counts every write.
type FailingInsertUoW struct {
	DB     *sql.DB
	Table  string
	FailOn int32
	Err    error
}

func (u *FailingInsertUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	guard := &insertGuard{DBTX: tx, prefix: "INSERT INTO " + u.Table, failOn: u.FailOn, err: u.Err}
	if u.Table == "" {
		guard.prefix = ""
	}
	if err := fn(ctx, guard); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type insertGuard struct {
	db.DBTX
	prefix string
	seen   atomic.Int32
	failOn int32
	err    error
}

func (g *insertGuard) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.HasPrefix(strings.TrimSpace(query), g.prefix) && g.seen.Add(1) == g.failOn {
		return nil, g.err
	}
	return g.DBTX.ExecContext(ctx, query, args...)
}
