package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dukerupert/twoof/internal/model"
)

type PhotoStore struct {
	db DBTX
}

func NewPhotoStore(db DBTX) *PhotoStore {
	return &PhotoStore{db: db}
}

func scanPhoto(s scanner) (*model.Photo, error) {
	var p model.Photo
	var uploadedAt string
	err := s.Scan(&p.ID, &p.MemoryID, &p.FilePath, &p.Filename, &p.MimeType, &p.SizeBytes, &p.SortOrder, &uploadedAt)
	if err != nil {
		return nil, err
	}
	if p.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

const photoCols = `id, memory_id, file_path, filename, mime_type, size_bytes, sort_order, uploaded_at`

func (s *PhotoStore) Create(ctx context.Context, p *model.Photo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO photos (`+photoCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.MemoryID, p.FilePath, p.Filename, p.MimeType, p.SizeBytes, p.SortOrder, formatTime(p.UploadedAt),
	)
	if err != nil {
		return wrap("insert photo", err)
	}
	return nil
}

// MaxSortOrder returns the highest sort_order among the memory's photos,
// or -1 when it has none.
func (s *PhotoStore) MaxSortOrder(ctx context.Context, memoryID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM photos WHERE memory_id = ?`, memoryID,
	).Scan(&max)
	if err != nil {
		return 0, wrap("max sort order", err)
	}
	return max, nil
}

func (s *PhotoStore) ListByMemory(ctx context.Context, memoryID string) ([]model.Photo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+photoCols+` FROM photos WHERE memory_id = ? ORDER BY sort_order ASC, uploaded_at ASC`,
		memoryID,
	)
	if err != nil {
		return nil, wrap("list photos", err)
	}
	defer rows.Close()

	photos := []model.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, wrap("scan photo", err)
		}
		photos = append(photos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate photos", err)
	}
	return photos, nil
}

// ListByMemories groups the photos of several memories by memory id.
func (s *PhotoStore) ListByMemories(ctx context.Context, memoryIDs []string) (map[string][]model.Photo, error) {
	out := make(map[string][]model.Photo, len(memoryIDs))
	if len(memoryIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(memoryIDs))
	for i, id := range memoryIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+photoCols+` FROM photos WHERE memory_id IN (`+placeholders(len(memoryIDs))+`)
		 ORDER BY memory_id, sort_order ASC, uploaded_at ASC`,
		args...,
	)
	if err != nil {
		return nil, wrap("list photos for memories", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, wrap("scan photo", err)
		}
		out[p.MemoryID] = append(out[p.MemoryID], *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate photos", err)
	}
	return out, nil
}

// GetForHousehold returns the photo only if its memory belongs to householdID.
func (s *PhotoStore) GetForHousehold(ctx context.Context, householdID, id string) (*model.Photo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT p.id, p.memory_id, p.file_path, p.filename, p.mime_type, p.size_bytes, p.sort_order, p.uploaded_at
		 FROM photos p
		 JOIN memories m ON m.id = p.memory_id
		 WHERE p.id = ? AND m.household_id = ?`,
		id, householdID,
	)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get photo", err)
	}
	return p, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return wrap("delete photo", err)
	}
	return nil
}
