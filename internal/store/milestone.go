package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dukerupert/twoof/internal/model"
)

type MilestoneStore struct {
	db DBTX
}

func NewMilestoneStore(db DBTX) *MilestoneStore {
	return &MilestoneStore{db: db}
}

func scanMilestone(s scanner) (*model.Milestone, error) {
	var m model.Milestone
	var recurring int
	var createdAt string
	err := s.Scan(&m.ID, &m.HouseholdID, &m.Title, &m.Description, &m.MilestoneDate, &recurring, &m.Icon, &createdAt)
	if err != nil {
		return nil, err
	}
	m.Recurring = recurring != 0
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

const milestoneCols = `id, household_id, title, description, milestone_date, recurring, icon, created_at`

func (s *MilestoneStore) Create(ctx context.Context, m *model.Milestone) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO milestones (`+milestoneCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HouseholdID, m.Title, m.Description, m.MilestoneDate, m.Recurring, m.Icon, formatTime(m.CreatedAt),
	)
	if err != nil {
		return wrap("insert milestone", err)
	}
	return nil
}

func (s *MilestoneStore) GetByID(ctx context.Context, householdID, id string) (*model.Milestone, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+milestoneCols+` FROM milestones WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	m, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get milestone", err)
	}
	return m, nil
}

// List returns the household's milestones by date, oldest first. Ordering by
// next occurrence happens above the store.
func (s *MilestoneStore) List(ctx context.Context, householdID string) ([]model.Milestone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+milestoneCols+` FROM milestones WHERE household_id = ? ORDER BY milestone_date ASC, created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, wrap("list milestones", err)
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, wrap("scan milestone", err)
		}
		milestones = append(milestones, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate milestones", err)
	}
	return milestones, nil
}

func (s *MilestoneStore) Update(ctx context.Context, m *model.Milestone) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE milestones SET title = ?, description = ?, milestone_date = ?, recurring = ?, icon = ?
		 WHERE id = ? AND household_id = ?`,
		m.Title, m.Description, m.MilestoneDate, m.Recurring, m.Icon,
		m.ID, m.HouseholdID,
	)
	if err != nil {
		return wrap("update milestone", err)
	}
	return nil
}

func (s *MilestoneStore) Delete(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return wrap("delete milestone", err)
	}
	return nil
}
