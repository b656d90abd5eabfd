package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/twoof/internal/database"
	"github.com/dukerupert/twoof/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func seedHousehold(t *testing.T, db *sql.DB, userA, code string) *model.Household {
	t.Helper()
	h := &model.Household{
		ID:         uuid.NewString(),
		Name:       "Us",
		InviteCode: &code,
		UserAID:    userA,
		CreatedAt:  testNow,
	}
	require.NoError(t, NewHouseholdStore(db).Create(context.Background(), h))
	return h
}

func seedMemory(t *testing.T, db *sql.DB, householdID, title, date string, pinned bool, createdAt time.Time, tags ...string) *model.Memory {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	m := &model.Memory{
		ID:          uuid.NewString(),
		HouseholdID: householdID,
		CreatedBy:   "alice",
		Title:       title,
		MemoryDate:  d,
		Tags:        tags,
		Pinned:      pinned,
		CreatedAt:   createdAt,
	}
	require.NoError(t, NewMemoryStore(db).Create(context.Background(), m))
	return m
}

func TestWithTxCommits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var id string
	err := WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		code := "TXCOMMIT"
		h := &model.Household{ID: uuid.NewString(), Name: "Us", InviteCode: &code, UserAID: "alice", CreatedAt: testNow}
		id = h.ID
		return NewHouseholdStore(tx).Create(ctx, h)
	})
	require.NoError(t, err)

	got, err := NewHouseholdStore(db).GetByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var id string
	err := WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		code := "TXROLL"
		h := &model.Household{ID: uuid.NewString(), Name: "Us", InviteCode: &code, UserAID: "alice", CreatedAt: testNow}
		id = h.ID
		if err := NewHouseholdStore(tx).Create(ctx, h); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := NewHouseholdStore(db).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = WithTx(ctx, db, func(ctx context.Context, tx DBTX) error {
			code := "TXPANIC"
			h := &model.Household{ID: "panic-house", Name: "Us", InviteCode: &code, UserAID: "alice", CreatedAt: testNow}
			require.NoError(t, NewHouseholdStore(tx).Create(ctx, h))
			panic("kaboom")
		})
	})

	got, err := NewHouseholdStore(db).GetByID(ctx, "panic-house")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestWithTxBeginFailureIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err = WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error { return nil })
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWithTxCommitFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

	err = WithTx(context.Background(), db, func(ctx context.Context, tx DBTX) error { return nil })
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedDatabaseIsUnavailable(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = NewHouseholdStore(db).GetByMember(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestQueryErrorFromDriverIsUnavailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM households`).WillReturnError(sql.ErrConnDone)

	_, err = NewHouseholdStore(db).GetByMember(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimestampsSortLexically(t *testing.T) {
	a := formatTime(time.Date(2025, 1, 1, 9, 0, 0, 5, time.UTC))
	b := formatTime(time.Date(2025, 1, 1, 9, 0, 0, 40, time.UTC))
	assert.Less(t, a, b)

	parsed, err := parseTime(a)
	require.NoError(t, err)
	assert.Equal(t, 5, parsed.Nanosecond())
}
