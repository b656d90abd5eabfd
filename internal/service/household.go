package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

// Invite codes avoid 0/O and 1/I so they can be read aloud. The alphabet
// has 32 symbols, so byte % 32 is unbiased.
const (
	inviteAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	inviteCodeLen      = 8
	inviteCodeAttempts = 5
)

// NewInviteCode returns a random invite code.
func NewInviteCode() (string, error) {
	b := make([]byte, inviteCodeLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	for i := range b {
		b[i] = inviteAlphabet[int(b[i])%len(inviteAlphabet)]
	}
	return string(b), nil
}

// NormalizeInviteCode trims and uppercases user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type HouseholdService struct {
	db      *sql.DB
	now     func() time.Time
	newCode func() (string, error)
}

func NewHouseholdService(db *sql.DB) *HouseholdService {
	return &HouseholdService{db: db, now: time.Now, newCode: NewInviteCode}
}

func (s *HouseholdService) Get(ctx context.Context, userID string) (*model.Household, error) {
	return ResolveHousehold(ctx, s.db, userID)
}

// Create makes userID the first member of a new household.
func (s *HouseholdService) Create(ctx context.Context, userID string, req model.HouseholdCreate) (*model.Household, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = model.DefaultHouseholdName
	}
	if err := checkLen("name", &name, maxNameLen); err != nil {
		return nil, err
	}

	var created *model.Household
	err := s.withFreshCode(func(code string) error {
		return store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
			hs := store.NewHouseholdStore(tx)
			existing, err := hs.GetByMember(ctx, userID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperror.Conflict("already in a household")
			}

			h := &model.Household{
				ID:          uuid.NewString(),
				Name:        name,
				InviteCode:  &code,
				UserAID:     userID,
				Anniversary: req.Anniversary,
				CreatedAt:   s.now().UTC(),
			}
			if err := hs.Create(ctx, h); err != nil {
				return err
			}
			created = h
			return nil
		})
	})
	if err != nil {
		return nil, translate("create household", err)
	}
	return created, nil
}

// Join puts userID in the second seat of the household holding code.
func (s *HouseholdService) Join(ctx context.Context, userID, code string) (*model.Household, error) {
	code = NormalizeInviteCode(code)
	if code == "" {
		return nil, apperror.ValidationFailed("invite_code", "invite_code is required")
	}
	if len(code) > maxInviteLen {
		return nil, apperror.ValidationFailed("invite_code", fmt.Sprintf("invite_code must be at most %d characters", maxInviteLen))
	}

	var joined *model.Household
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		hs := store.NewHouseholdStore(tx)
		h, err := hs.GetByInviteCode(ctx, code)
		if err != nil {
			return err
		}
		if h == nil {
			return apperror.NotFound("invite code")
		}
		if h.HasMember(userID) {
			return apperror.InvalidOperation("cannot join your own household")
		}

		existing, err := hs.GetByMember(ctx, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.Conflict("already in a household")
		}
		if h.Full() {
			return apperror.Conflict("household is full")
		}

		ok, err := hs.FillSecondSeat(ctx, h.ID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("household is full")
		}
		h.UserBID = &userID
		joined = h
		return nil
	})
	if err != nil {
		return nil, translate("join household", err)
	}
	return joined, nil
}

// RegenerateInvite replaces the household's invite code. The old code stops
// working immediately.
func (s *HouseholdService) RegenerateInvite(ctx context.Context, userID string) (*model.Household, error) {
	var updated *model.Household
	err := s.withFreshCode(func(code string) error {
		return store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
			h, err := ResolveHousehold(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := store.NewHouseholdStore(tx).SetInviteCode(ctx, h.ID, code); err != nil {
				return err
			}
			h.InviteCode = &code
			updated = h
			return nil
		})
	})
	if err != nil {
		return nil, translate("regenerate invite", err)
	}
	return updated, nil
}

func (s *HouseholdService) Update(ctx context.Context, userID string, patch model.HouseholdPatch) (*model.Household, error) {
	var updated *model.Household
	err := store.WithTx(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		h, err := ResolveHousehold(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := patchTitle("name", patch.Name, &h.Name, maxNameLen); err != nil {
			return err
		}
		if patch.Anniversary.Set {
			h.Anniversary = patch.Anniversary.Ptr()
		}
		if err := store.NewHouseholdStore(tx).Update(ctx, h); err != nil {
			return err
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, translate("update household", err)
	}
	return updated, nil
}

// withFreshCode calls fn with new invite codes until fn stops failing on a
// code collision.
func (s *HouseholdService) withFreshCode(fn func(code string) error) error {
	for range inviteCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return err
		}
		err = fn(code)
		if !errors.Is(err, store.ErrDuplicateInviteCode) {
			return err
		}
	}
	return errors.New("no unique invite code after several attempts")
}
