package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/blob"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// MemoryService manages memories and their photos.
type MemoryService struct {
	db     *sql.DB
	blobs  blob.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewMemoryService(db *sql.DB, blobs blob.Store, logger *slog.Logger) *MemoryService {
	return &MemoryService{db: db, blobs: blobs, logger: logger, now: time.Now}
}

func (s *MemoryService) List(ctx context.Context, userID string, f model.MemoryFilter) (*model.MemoryPage, error) {
	if f.Page < 1 {
		return nil, apperror.ValidationFailed("page", "page must be at least 1")
	}
	if f.PerPage < 1 || f.PerPage > MaxPerPage {
		return nil, apperror.ValidationFailed("per_page", "per_page must be between 1 and 100")
	}
	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		return nil, apperror.ValidationFailed("month", "month must be between 1 and 12")
	}

	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	memories, total, err := store.NewMemoryStore(s.db).List(ctx, h.ID, f)
	if err != nil {
		return nil, translate("list memories", err)
	}
	if err := s.attachPhotos(ctx, memories); err != nil {
		return nil, err
	}
	return &model.MemoryPage{Memories: memories, Total: total, Page: f.Page, PerPage: f.PerPage}, nil
}

func (s *MemoryService) attachPhotos(ctx context.Context, memories []model.Memory) error {
	ids := make([]string, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	photos, err := store.NewPhotoStore(s.db).ListByMemories(ctx, ids)
	if err != nil {
		return translate("list photos", err)
	}
	for i := range memories {
		if ps, ok := photos[memories[i].ID]; ok {
			memories[i].Photos = ps
		} else {
			memories[i].Photos = []model.Photo{}
		}
	}
	return nil
}

func (s *MemoryService) Get(ctx context.Context, userID, id string) (*model.Memory, error) {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	m, err := s.load(ctx, s.db, h.ID, id)
	if err != nil {
		return nil, err
	}
	photos, err := store.NewPhotoStore(s.db).ListByMemory(ctx, m.ID)
	if err != nil {
		return nil, translate("list photos", err)
	}
	m.Photos = photos
	return m, nil
}

func (s *MemoryService) load(ctx context.Context, q store.DBTX, householdID, id string) (*model.Memory, error) {
	m, err := store.NewMemoryStore(q).GetByID(ctx, householdID, id)
	if err != nil {
		return nil, translate("get memory", err)
	}
	if m == nil {
		return nil, apperror.NotFound("memory")
	}
	return m, nil
}

func validateMemoryFields(m *model.Memory) error {
	if err := checkLen("location", m.Location, maxLocationLen); err != nil {
		return err
	}
	return checkLen("mood", m.Mood, maxMoodLen)
}

func (s *MemoryService) Create(ctx context.Context, userID string, req model.MemoryCreate) (*model.Memory, error) {
	title, err := requiredText("title", req.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	if req.MemoryDate == nil || req.MemoryDate.IsZero() {
		return nil, apperror.ValidationFailed("memory_date", "memory_date is required")
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	m := &model.Memory{
		ID:         uuid.NewString(),
		CreatedBy:  userID,
		Title:      title,
		Content:    req.Content,
		MemoryDate: *req.MemoryDate,
		Location:   req.Location,
		Mood:       req.Mood,
		Tags:       tags,
		Pinned:     req.Pinned,
		Photos:     []model.Photo{},
		CreatedAt:  s.now().UTC(),
	}
	if err := validateMemoryFields(m); err != nil {
		return nil, err
	}

	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		m.HouseholdID = h.ID
		return store.NewMemoryStore(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, translate("create memory", err)
	}
	return m, nil
}

func (s *MemoryService) Update(ctx context.Context, userID, id string, patch model.MemoryPatch) (*model.Memory, error) {
	var updated *model.Memory
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		m, err := s.load(ctx, tx, h.ID, id)
		if err != nil {
			return err
		}
		if err := applyMemoryPatch(m, patch); err != nil {
			return err
		}
		if err := store.NewMemoryStore(tx).Update(ctx, m); err != nil {
			return err
		}
		photos, err := store.NewPhotoStore(tx).ListByMemory(ctx, m.ID)
		if err != nil {
			return err
		}
		m.Photos = photos
		updated = m
		return nil
	})
	if err != nil {
		return nil, translate("update memory", err)
	}
	return updated, nil
}

func applyMemoryPatch(m *model.Memory, p model.MemoryPatch) error {
	if err := patchTitle("title", p.Title, &m.Title, maxTitleLen); err != nil {
		return err
	}
	if err := patchString("content", p.Content, &m.Content, 0); err != nil {
		return err
	}
	if p.MemoryDate.Set {
		if err := notNull("memory_date", p.MemoryDate.Null); err != nil {
			return err
		}
		m.MemoryDate = p.MemoryDate.Value
	}
	if err := patchString("location", p.Location, &m.Location, maxLocationLen); err != nil {
		return err
	}
	if err := patchString("mood", p.Mood, &m.Mood, maxMoodLen); err != nil {
		return err
	}
	if p.Tags.Set {
		m.Tags = p.Tags.Value
		if m.Tags == nil {
			m.Tags = []string{}
		}
	}
	if p.Pinned.Set {
		if err := notNull("pinned", p.Pinned.Null); err != nil {
			return err
		}
		m.Pinned = p.Pinned.Value
	}
	return nil
}

// Delete removes the memory's photo files, then the memory itself. Photo
// rows go with the memory by cascade.
func (s *MemoryService) Delete(ctx context.Context, userID, id string) error {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return err
	}
	m, err := s.load(ctx, s.db, h.ID, id)
	if err != nil {
		return err
	}
	photos, err := store.NewPhotoStore(s.db).ListByMemory(ctx, m.ID)
	if err != nil {
		return translate("list photos", err)
	}
	for _, p := range photos {
		s.removeBlob(ctx, p.FilePath)
	}

	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		return store.NewMemoryStore(tx).Delete(ctx, h.ID, m.ID)
	})
	return translate("delete memory", err)
}

// removeBlob deletes a stored file and only logs failures.
func (s *MemoryService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("remove photo file", "key", key, "error", err)
	}
}
