package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/twoof/internal/model"
)

type MemoryStore struct {
	db DBTX
}

func NewMemoryStore(db DBTX) *MemoryStore {
	return &MemoryStore{db: db}
}

func scanMemory(s scanner) (*model.Memory, error) {
	var m model.Memory
	var tags, createdAt string
	var pinned int

	err := s.Scan(
		&m.ID, &m.HouseholdID, &m.CreatedBy, &m.Title, &m.Content, &m.MemoryDate,
		&m.Location, &m.Mood, &tags, &pinned, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.Pinned = pinned != 0
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	m.Photos = []model.Photo{}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

const memoryCols = `id, household_id, created_by, title, content, memory_date, location, mood, tags, pinned, created_at`

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func (s *MemoryStore) Create(ctx context.Context, m *model.Memory) error {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (`+memoryCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.HouseholdID, m.CreatedBy, m.Title, m.Content, m.MemoryDate,
		m.Location, m.Mood, tags, m.Pinned, formatTime(m.CreatedAt),
	)
	if err != nil {
		return wrap("insert memory", err)
	}
	return nil
}

// GetByID returns the memory only if it belongs to householdID.
func (s *MemoryStore) GetByID(ctx context.Context, householdID, id string) (*model.Memory, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memoryCols+` FROM memories WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get memory", err)
	}
	return m, nil
}

// List returns one page of a household's memories, pinned first, then by
// memory date and creation time, newest first. The second value is the
// total number of matches across all pages.
func (s *MemoryStore) List(ctx context.Context, householdID string, f model.MemoryFilter) ([]model.Memory, int, error) {
	where := []string{"household_id = ?"}
	args := []any{householdID}

	if f.Year != nil {
		where = append(where, "CAST(strftime('%Y', memory_date) AS INTEGER) = ?")
		args = append(args, *f.Year)
	}
	if f.Month != nil {
		where = append(where, "CAST(strftime('%m', memory_date) AS INTEGER) = ?")
		args = append(args, *f.Month)
	}
	if f.Tag != nil {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(memories.tags) WHERE json_each.value = ?)")
		args = append(args, *f.Tag)
	}
	if f.Pinned != nil {
		where = append(where, "pinned = ?")
		args = append(args, *f.Pinned)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count memories", err)
	}

	pageArgs := append(append([]any{}, args...), f.PerPage, (f.Page-1)*f.PerPage)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoryCols+` FROM memories WHERE `+cond+`
		 ORDER BY pinned DESC, memory_date DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		pageArgs...,
	)
	if err != nil {
		return nil, 0, wrap("list memories", err)
	}
	defer rows.Close()

	memories, err := collectMemories(rows)
	if err != nil {
		return nil, 0, err
	}
	return memories, total, nil
}

// ListAll returns every memory of the household in chronological order.
func (s *MemoryStore) ListAll(ctx context.Context, householdID string) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoryCols+` FROM memories WHERE household_id = ? ORDER BY memory_date ASC, created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, wrap("list all memories", err)
	}
	defer rows.Close()
	return collectMemories(rows)
}

func collectMemories(rows *sql.Rows) ([]model.Memory, error) {
	memories := []model.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, wrap("scan memory", err)
		}
		memories = append(memories, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate memories", err)
	}
	return memories, nil
}

func (s *MemoryStore) Update(ctx context.Context, m *model.Memory) error {
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE memories
		 SET title = ?, content = ?, memory_date = ?, location = ?, mood = ?, tags = ?, pinned = ?
		 WHERE id = ? AND household_id = ?`,
		m.Title, m.Content, m.MemoryDate, m.Location, m.Mood, tags, m.Pinned,
		m.ID, m.HouseholdID,
	)
	if err != nil {
		return wrap("update memory", err)
	}
	return nil
}

// Delete removes the memory and, by cascade, its photo rows.
func (s *MemoryStore) Delete(ctx context.Context, householdID, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return wrap("delete memory", err)
	}
	return nil
}
