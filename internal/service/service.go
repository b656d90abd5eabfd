// Package service holds the household-scoped operations behind the API.
// Every operation resolves the caller's household first; a caller without
// one gets apperror.ErrNotFound from everything except household create and
// join.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

// Field length limits.
const (
	maxNameLen     = 200
	maxTitleLen    = 500
	maxLocationLen = 500
	maxMoodLen     = 20
	maxCategoryLen = 100
	maxCostLen     = 50
	maxIconLen     = 10
	maxInviteLen   = 20
	maxQueryLen    = 500
)

// ResolveHousehold returns the household userID belongs to. q may be the
// database or an open transaction.
func ResolveHousehold(ctx context.Context, q store.DBTX, userID string) (*model.Household, error) {
	h, err := store.NewHouseholdStore(q).GetByMember(ctx, userID)
	if err != nil {
		return nil, translate("resolve household", err)
	}
	if h == nil {
		return nil, apperror.NotFound("household")
	}
	return h, nil
}

// translate turns store errors into apperror kinds. Errors that already are
// an *apperror.AppError pass through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperror.AppError
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, store.ErrUnavailable):
		return apperror.Unavailable(fmt.Errorf("%s: %w", op, err))
	case errors.Is(err, store.ErrMemberElsewhere):
		return apperror.Conflict("already in a household")
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// clock is embedded by services that need "now" or "today".
type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(loc *time.Location) clock {
	if loc == nil {
		loc = time.UTC
	}
	return clock{now: time.Now, loc: loc}
}

// today is the current calendar date in the configured time zone.
func (c clock) today() model.Date {
	return model.DateOf(c.now().In(c.loc))
}

func requiredText(field, v string, max int) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if utf8.RuneCountInString(v) > max {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return v, nil
}

func checkLen(field string, v *string, max int) error {
	if v != nil && utf8.RuneCountInString(*v) > max {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func checkPriority(p int) error {
	if p < 0 || p > 3 {
		return apperror.ValidationFailed("priority", "priority must be between 0 and 3")
	}
	return nil
}

func notNull(field string, null bool) error {
	if null {
		return apperror.ValidationFailed(field, field+" cannot be null")
	}
	return nil
}

// patchTitle applies an optional title: absent leaves cur alone, null is
// rejected, a value is trimmed and checked.
func patchTitle(field string, o model.Optional[string], cur *string, max int) error {
	if !o.Set {
		return nil
	}
	if err := notNull(field, o.Null); err != nil {
		return err
	}
	v, err := requiredText(field, o.Value, max)
	if err != nil {
		return err
	}
	*cur = v
	return nil
}

// patchString applies an optional nullable string field.
func patchString(field string, o model.Optional[string], cur **string, max int) error {
	if !o.Set {
		return nil
	}
	v := o.Ptr()
	if max > 0 {
		if err := checkLen(field, v, max); err != nil {
			return err
		}
	}
	*cur = v
	return nil
}
