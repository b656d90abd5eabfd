package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

const (
	AppName    = "twoof"
	AppVersion = "1.0.0"
)

type ExportService struct {
	db  *sql.DB
	now func() time.Time
}

func NewExportService(db *sql.DB) *ExportService {
	return &ExportService{db: db, now: time.Now}
}

// Export dumps everything the household owns. Photos are listed by
// metadata only.
func (s *ExportService) Export(ctx context.Context, userID string) (*model.Export, error) {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	memories, err := store.NewMemoryStore(s.db).ListAll(ctx, h.ID)
	if err != nil {
		return nil, translate("export memories", err)
	}
	ids := make([]string, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	photos, err := store.NewPhotoStore(s.db).ListByMemories(ctx, ids)
	if err != nil {
		return nil, translate("export photos", err)
	}
	ideas, err := store.NewDateIdeaStore(s.db).ListAll(ctx, h.ID)
	if err != nil {
		return nil, translate("export date ideas", err)
	}
	milestones, err := store.NewMilestoneStore(s.db).List(ctx, h.ID)
	if err != nil {
		return nil, translate("export milestones", err)
	}

	out := &model.Export{
		App:        AppName,
		Version:    AppVersion,
		ExportedAt: s.now().UTC(),
		Household: model.ExportHousehold{
			Name:        h.Name,
			UserAID:     h.UserAID,
			UserBID:     h.UserBID,
			Anniversary: h.Anniversary,
		},
		Memories:   make([]model.ExportMemory, 0, len(memories)),
		DateIdeas:  make([]model.ExportDateIdea, 0, len(ideas)),
		Milestones: make([]model.ExportMilestone, 0, len(milestones)),
	}

	for _, m := range memories {
		em := model.ExportMemory{
			Title:      m.Title,
			Content:    m.Content,
			MemoryDate: m.MemoryDate,
			Location:   m.Location,
			Mood:       m.Mood,
			Tags:       m.Tags,
			Pinned:     m.Pinned,
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt,
			Photos:     []model.ExportPhoto{},
		}
		for _, p := range photos[m.ID] {
			em.Photos = append(em.Photos, model.ExportPhoto{
				Filename:  p.Filename,
				MimeType:  p.MimeType,
				SizeBytes: p.SizeBytes,
			})
		}
		out.Memories = append(out.Memories, em)
	}

	for _, d := range ideas {
		out.DateIdeas = append(out.DateIdeas, model.ExportDateIdea{
			Title:         d.Title,
			Description:   d.Description,
			Category:      d.Category,
			EstimatedCost: d.EstimatedCost,
			Location:      d.Location,
			URL:           d.URL,
			Done:          d.Done,
			DoneDate:      d.DoneDate,
			Priority:      d.Priority,
			CreatedBy:     d.CreatedBy,
			CreatedAt:     d.CreatedAt,
		})
	}

	for _, m := range milestones {
		out.Milestones = append(out.Milestones, model.ExportMilestone{
			Title:         m.Title,
			Description:   m.Description,
			MilestoneDate: m.MilestoneDate,
			Recurring:     m.Recurring,
			Icon:          m.Icon,
		})
	}
	return out, nil
}
