package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dukerupert/twoof/internal/model"
)

type HouseholdStore struct {
	db DBTX
}

func NewHouseholdStore(db DBTX) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(s scanner) (*model.Household, error) {
	var h model.Household
	var createdAt string
	err := s.Scan(&h.ID, &h.Name, &h.InviteCode, &h.UserAID, &h.UserBID, &h.Anniversary, &createdAt)
	if err != nil {
		return nil, err
	}
	if h.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &h, nil
}

const householdCols = `id, name, invite_code, user_a_id, user_b_id, anniversary, created_at`

func (s *HouseholdStore) Create(ctx context.Context, h *model.Household) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO households (id, name, invite_code, user_a_id, user_b_id, anniversary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, h.Name, h.InviteCode, h.UserAID, h.UserBID, h.Anniversary, formatTime(h.CreatedAt),
	)
	if err != nil {
		return wrap("insert household", err)
	}
	return nil
}

func (s *HouseholdStore) get(ctx context.Context, op, where string, args ...any) (*model.Household, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+householdCols+` FROM households WHERE `+where, args...)
	h, err := scanHousehold(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return h, nil
}

func (s *HouseholdStore) GetByID(ctx context.Context, id string) (*model.Household, error) {
	return s.get(ctx, "get household", `id = ?`, id)
}

// GetByMember returns the household where userID holds either seat.
func (s *HouseholdStore) GetByMember(ctx context.Context, userID string) (*model.Household, error) {
	return s.get(ctx, "get household by member", `user_a_id = ? OR user_b_id = ? LIMIT 1`, userID, userID)
}

func (s *HouseholdStore) GetByInviteCode(ctx context.Context, code string) (*model.Household, error) {
	return s.get(ctx, "get household by invite code", `invite_code = ?`, code)
}

// FillSecondSeat assigns user_b_id only while the seat is empty. It reports
// whether the seat was taken by this call.
func (s *HouseholdStore) FillSecondSeat(ctx context.Context, id, userID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE households SET user_b_id = ? WHERE id = ? AND user_b_id IS NULL`,
		userID, id,
	)
	if err != nil {
		return false, wrap("fill second seat", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, wrap("rows affected", err)
	}
	return n == 1, nil
}

func (s *HouseholdStore) SetInviteCode(ctx context.Context, id, code string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE households SET invite_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return wrap("set invite code", err)
	}
	return nil
}

func (s *HouseholdStore) Update(ctx context.Context, h *model.Household) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE households SET name = ?, anniversary = ? WHERE id = ?`,
		h.Name, h.Anniversary, h.ID,
	)
	if err != nil {
		return wrap("update household", err)
	}
	return nil
}

// Delete removes the household. Memories, date ideas and milestones go with it.
func (s *HouseholdStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return wrap("delete household", err)
	}
	return nil
}
