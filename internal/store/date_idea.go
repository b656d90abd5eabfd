package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dukerupert/twoof/internal/model"
)

type DateIdeaStore struct {
	db DBTX
}

func NewDateIdeaStore(db DBTX) *DateIdeaStore {
	return &DateIdeaStore{db: db}
}

func scanDateIdea(s scanner) (*model.DateIdea, error) {
	var d model.DateIdea
	var done int
	var createdAt string
	err := s.Scan(
		&d.ID, &d.HouseholdID, &d.CreatedBy, &d.Title, &d.Description, &d.Category,
		&d.EstimatedCost, &d.Location, &d.URL, &done, &d.DoneDate, &d.Priority, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	d.Done = done != 0
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &d, nil
}

const dateIdeaCols = `id, household_id, created_by, title, description, category, estimated_cost, location, url, done, done_date, priority, created_at`

func (s *DateIdeaStore) Create(ctx context.Context, d *model.DateIdea) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO date_ideas (`+dateIdeaCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.HouseholdID, d.CreatedBy, d.Title, d.Description, d.Category,
		d.EstimatedCost, d.Location, d.URL, d.Done, d.DoneDate, d.Priority, formatTime(d.CreatedAt),
	)
	if err != nil {
		return wrap("insert date idea", err)
	}
	return nil
}

func (s *DateIdeaStore) GetByID(ctx context.Context, householdID, id string) (*model.DateIdea, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dateIdeaCols+` FROM date_ideas WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	d, err := scanDateIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get date idea", err)
	}
	return d, nil
}

// List returns the household's date ideas, highest priority first, then newest.
func (s *DateIdeaStore) List(ctx context.Context, householdID string, f model.DateIdeaFilter) ([]model.DateIdea, error) {
	where := []string{"household_id = ?"}
	args := []any{householdID}
	if f.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *f.Category)
	}
	if f.Done != nil {
		where = append(where, "done = ?")
		args = append(args, *f.Done)
	}
	if f.Priority != nil {
		where = append(where, "priority = ?")
		args = append(args, *f.Priority)
	}

	return s.query(ctx, "list date ideas",
		`SELECT `+dateIdeaCols+` FROM date_ideas WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY priority DESC, created_at DESC`,
		args...,
	)
}

// ListAll returns every date idea of the household, oldest first.
func (s *DateIdeaStore) ListAll(ctx context.Context, householdID string) ([]model.DateIdea, error) {
	return s.query(ctx, "list all date ideas",
		`SELECT `+dateIdeaCols+` FROM date_ideas WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
}

func (s *DateIdeaStore) query(ctx context.Context, op, q string, args ...any) ([]model.DateIdea, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	ideas := []model.DateIdea{}
	for rows.Next() {
		d, err := scanDateIdea(rows)
		if err != nil {
			return nil, wrap("scan date idea", err)
		}
		ideas = append(ideas, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return ideas, nil
}

func (s *DateIdeaStore) Update(ctx context.Context, d *model.DateIdea) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE date_ideas
		 SET title = ?, description = ?, category = ?, estimated_cost = ?, location = ?, url = ?,
		     done = ?, done_date = ?, priority = ?
		 WHERE id = ? AND household_id = ?`,
		d.Title, d.Description, d.Category, d.EstimatedCost, d.Location, d.URL,
		d.Done, d.DoneDate, d.Priority,
		d.ID, d.HouseholdID,
	)
	if err != nil {
		return wrap("update date idea", err)
	}
	return nil
}

func (s *DateIdeaStore) Delete(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM date_ideas WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return wrap("delete date idea", err)
	}
	return nil
}
