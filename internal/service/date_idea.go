package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

type DateIdeaService struct {
	db *sql.DB
	clock
}

// NewDateIdeaService uses loc to decide what "today" is when an idea is
// marked done.
func NewDateIdeaService(db *sql.DB, loc *time.Location) *DateIdeaService {
	return &DateIdeaService{db: db, clock: newClock(loc)}
}

func (s *DateIdeaService) List(ctx context.Context, userID string, f model.DateIdeaFilter) ([]model.DateIdea, error) {
	if f.Priority != nil {
		if err := checkPriority(*f.Priority); err != nil {
			return nil, err
		}
	}
	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	ideas, err := store.NewDateIdeaStore(s.db).List(ctx, h.ID, f)
	if err != nil {
		return nil, translate("list date ideas", err)
	}
	return ideas, nil
}

func (s *DateIdeaService) Create(ctx context.Context, userID string, req model.DateIdeaCreate) (*model.DateIdea, error) {
	title, err := requiredText("title", req.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	d := &model.DateIdea{
		ID:            uuid.NewString(),
		CreatedBy:     userID,
		Title:         title,
		Description:   req.Description,
		Category:      req.Category,
		EstimatedCost: req.EstimatedCost,
		Location:      req.Location,
		URL:           req.URL,
		Priority:      req.Priority,
		CreatedAt:     s.now().UTC(),
	}
	if err := validateDateIdea(d); err != nil {
		return nil, err
	}

	err = store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		d.HouseholdID = h.ID
		return store.NewDateIdeaStore(tx).Create(ctx, d)
	})
	if err != nil {
		return nil, translate("create date idea", err)
	}
	return d, nil
}

func validateDateIdea(d *model.DateIdea) error {
	if err := checkLen("category", d.Category, maxCategoryLen); err != nil {
		return err
	}
	if err := checkLen("estimated_cost", d.EstimatedCost, maxCostLen); err != nil {
		return err
	}
	if err := checkLen("location", d.Location, maxLocationLen); err != nil {
		return err
	}
	return checkPriority(d.Priority)
}

func (s *DateIdeaService) Update(ctx context.Context, userID, id string, patch model.DateIdeaPatch) (*model.DateIdea, error) {
	return s.mutate(ctx, userID, id, "update date idea", func(d *model.DateIdea) error {
		if err := patchTitle("title", patch.Title, &d.Title, maxTitleLen); err != nil {
			return err
		}
		for _, f := range []struct {
			name string
			o    model.Optional[string]
			cur  **string
		}{
			{"description", patch.Description, &d.Description},
			{"category", patch.Category, &d.Category},
			{"estimated_cost", patch.EstimatedCost, &d.EstimatedCost},
			{"location", patch.Location, &d.Location},
			{"url", patch.URL, &d.URL},
		} {
			if err := patchString(f.name, f.o, f.cur, 0); err != nil {
				return err
			}
		}
		if patch.Priority.Set {
			if err := notNull("priority", patch.Priority.Null); err != nil {
				return err
			}
			d.Priority = patch.Priority.Value
		}
		return validateDateIdea(d)
	})
}

// ToggleDone flips the done flag. done_date is today while done, null
// otherwise.
func (s *DateIdeaService) ToggleDone(ctx context.Context, userID, id string) (*model.DateIdea, error) {
	return s.mutate(ctx, userID, id, "toggle date idea", func(d *model.DateIdea) error {
		d.Done = !d.Done
		if d.Done {
			today := s.today()
			d.DoneDate = &today
		} else {
			d.DoneDate = nil
		}
		return nil
	})
}

func (s *DateIdeaService) mutate(ctx context.Context, userID, id, op string, apply func(*model.DateIdea) error) (*model.DateIdea, error) {
	var updated *model.DateIdea
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		ds := store.NewDateIdeaStore(tx)
		d, err := ds.GetByID(ctx, h.ID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return apperror.NotFound("date idea")
		}
		if err := apply(d); err != nil {
			return err
		}
		if err := ds.Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, translate(op, err)
	}
	return updated, nil
}

func (s *DateIdeaService) Delete(ctx context.Context, userID, id string) error {
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		ds := store.NewDateIdeaStore(tx)
		d, err := ds.GetByID(ctx, h.ID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return apperror.NotFound("date idea")
		}
		return ds.Delete(ctx, h.ID, id)
	})
	return translate("delete date idea", err)
}
