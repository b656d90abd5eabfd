// Package store holds the SQL for every table. Stores are thin values over a
// DBTX so the same store can run against *sql.DB or inside a transaction.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	// ErrMemberElsewhere is returned when the schema rejects a user who
	// already sits in some household.
	ErrMemberElsewhere = errors.New("user already belongs to a household")
	// ErrDuplicateInviteCode is returned on an invite code collision.
	ErrDuplicateInviteCode = errors.New("invite code already in use")
	// ErrUnavailable marks failures where the database could not be reached
	// or was too busy to answer.
	ErrUnavailable = errors.New("database unavailable")
)

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = classify(fmt.Errorf("commit tx: %w", cerr))
		}
	}()

	return fn(ctx, tx)
}

// classify tags low-level errors with the package sentinels. The original
// error stays in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	// database/sql has no sentinel for a closed pool
	if strings.Contains(err.Error(), "sql: database is closed") {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	case sqlite3.SQLITE_CONSTRAINT:
		msg := se.Error()
		switch {
		case strings.Contains(msg, ErrMemberElsewhere.Error()),
			strings.Contains(msg, "households.user_a_id"),
			strings.Contains(msg, "households.user_b_id"):
			return fmt.Errorf("%w: %w", ErrMemberElsewhere, err)
		case strings.Contains(msg, "households.invite_code"):
			return fmt.Errorf("%w: %w", ErrDuplicateInviteCode, err)
		}
	}
	return err
}

// wrap prefixes err with op and classifies it.
func wrap(op string, err error) error {
	return classify(fmt.Errorf("%s: %w", op, err))
}

// Timestamps are stored as fixed-width UTC text so that ORDER BY on the
// column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

type scanner interface{ Scan(...any) error }

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
