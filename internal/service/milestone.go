package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/recurrence"
	"github.com/dukerupert/twoof/internal/store"
)

type MilestoneService struct {
	db *sql.DB
	clock
}

func NewMilestoneService(db *sql.DB, loc *time.Location) *MilestoneService {
	return &MilestoneService{db: db, clock: newClock(loc)}
}

// List returns the household's milestones soonest first, each with its
// days_until. Past one-off milestones come last.
func (s *MilestoneService) List(ctx context.Context, userID string) ([]model.Milestone, error) {
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	milestones, err := store.NewMilestoneStore(s.db).List(ctx, h.ID)
	if err != nil {
		return nil, translate("list milestones", err)
	}
	recurrence.Annotate(milestones, s.today())
	recurrence.SortByDaysUntil(milestones)
	return milestones, nil
}

func (s *MilestoneService) Create(ctx context.Context, userID string, req model.MilestoneCreate) (*model.Milestone, error) {
	title, err := requiredText("title", req.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	if req.MilestoneDate == nil || req.MilestoneDate.IsZero() {
		return nil, apperror.ValidationFailed("milestone_date", "milestone_date is required")
	}
	if err := checkLen("icon", req.Icon, maxIconLen); err != nil {
		return nil, err
	}
	m := &model.Milestone{
		ID:            uuid.NewString(),
		Title:         title,
		Description:   req.Description,
		MilestoneDate: *req.MilestoneDate,
		Recurring:     req.Recurring,
		Icon:          req.Icon,
		CreatedAt:     s.now().UTC(),
	}

	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		m.HouseholdID = h.ID
		return store.NewMilestoneStore(tx).Create(ctx, m)
	})
	if err != nil {
		return nil, translate("create milestone", err)
	}
	m.DaysUntil = recurrence.DaysUntil(m.MilestoneDate, s.today(), m.Recurring)
	return m, nil
}

func (s *MilestoneService) Update(ctx context.Context, userID, id string, patch model.MilestonePatch) (*model.Milestone, error) {
	var updated *model.Milestone
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		ms := store.NewMilestoneStore(tx)
		m, err := ms.GetByID(ctx, h.ID, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperror.NotFound("milestone")
		}

		if err := patchTitle("title", patch.Title, &m.Title, maxTitleLen); err != nil {
			return err
		}
		if err := patchString("description", patch.Description, &m.Description, 0); err != nil {
			return err
		}
		if patch.MilestoneDate.Set {
			if err := notNull("milestone_date", patch.MilestoneDate.Null); err != nil {
				return err
			}
			m.MilestoneDate = patch.MilestoneDate.Value
		}
		if patch.Recurring.Set {
			if err := notNull("recurring", patch.Recurring.Null); err != nil {
				return err
			}
			m.Recurring = patch.Recurring.Value
		}
		if err := patchString("icon", patch.Icon, &m.Icon, maxIconLen); err != nil {
			return err
		}

		if err := ms.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, translate("update milestone", err)
	}
	updated.DaysUntil = recurrence.DaysUntil(updated.MilestoneDate, s.today(), updated.Recurring)
	return updated, nil
}

func (s *MilestoneService) Delete(ctx context.Context, userID, id string) error {
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		ms := store.NewMilestoneStore(tx)
		m, err := ms.GetByID(ctx, h.ID, id)
		if err != nil {
			return err
		}
		if m == nil {
			return apperror.NotFound("milestone")
		}
		return ms.Delete(ctx, h.ID, id)
	})
	return translate("delete milestone", err)
}
