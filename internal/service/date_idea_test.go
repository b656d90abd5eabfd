package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
)

func newDateIdeaService(env *testEnv) *DateIdeaService {
	s := NewDateIdeaService(env.db, time.UTC)
	s.now = fixedNow
	return s
}

func TestDateIdeaCreateAndList(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.couple(t, "alice", "bob")
	s := newDateIdeaService(env)

	tick := testNow
	s.now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	outdoor := "outdoor"
	_, err := s.Create(ctx, "alice", model.DateIdeaCreate{Title: " Picnic ", Category: &outdoor, Priority: 1})
	require.NoError(t, err)
	_, err = s.Create(ctx, "bob", model.DateIdeaCreate{Title: "Cooking class", Priority: 3})
	require.NoError(t, err)
	_, err = s.Create(ctx, "alice", model.DateIdeaCreate{Title: "Stargazing", Category: &outdoor, Priority: 1})
	require.NoError(t, err)

	all, err := s.List(ctx, "bob", model.DateIdeaFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Cooking class", all[0].Title)
	assert.Equal(t, "Stargazing", all[1].Title)
	assert.Equal(t, "Picnic", all[2].Title)

	filtered, err := s.List(ctx, "alice", model.DateIdeaFilter{Category: &outdoor, Priority: ptr(1), Done: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	_, err = s.List(ctx, "alice", model.DateIdeaFilter{Priority: ptr(4)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDateIdeaCreateValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.couple(t, "alice", "")
	s := newDateIdeaService(env)

	for _, req := range []model.DateIdeaCreate{
		{Title: ""},
		{Title: "x", Priority: -1},
		{Title: "x", Priority: 4},
		{Title: "x", Category: ptr(strings.Repeat("c", 101))},
		{Title: "x", EstimatedCost: ptr(strings.Repeat("$", 51))},
	} {
		_, err := s.Create(ctx, "alice", req)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	}
}

func TestDateIdeaToggleDone(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.couple(t, "alice", "bob")

	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Skip("tzdata not available")
	}
	s := NewDateIdeaService(env.db, la)
	// 03:00 UTC on the 15th is still the 14th in Los Angeles
	s.now = func() time.Time { return time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC) }

	d, err := s.Create(ctx, "alice", model.DateIdeaCreate{Title: "Ballet"})
	require.NoError(t, err)
	assert.False(t, d.Done)
	assert.Nil(t, d.DoneDate)

	done, err := s.ToggleDone(ctx, "bob", d.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)
	require.NotNil(t, done.DoneDate)
	assert.Equal(t, "2025-06-14", done.DoneDate.String())

	undone, err := s.ToggleDone(ctx, "alice", d.ID)
	require.NoError(t, err)
	assert.False(t, undone.Done)
	assert.Nil(t, undone.DoneDate)

	list, err := s.List(ctx, "alice", model.DateIdeaFilter{Done: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDateIdeaUpdateAndDelete(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.couple(t, "alice", "")
	env.couple(t, "carol", "")
	s := newDateIdeaService(env)

	url := "https://example.com"
	d, err := s.Create(ctx, "alice", model.DateIdeaCreate{Title: "Escape room", URL: &url, Priority: 2})
	require.NoError(t, err)

	updated, err := s.Update(ctx, "alice", d.ID, model.DateIdeaPatch{
		Title:    model.Some(" Escape room 2 "),
		URL:      model.Null[string](),
		Priority: model.Some(0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Escape room 2", updated.Title)
	assert.Nil(t, updated.URL)
	assert.Equal(t, 0, updated.Priority)

	_, err = s.Update(ctx, "alice", d.ID, model.DateIdeaPatch{Priority: model.Some(9)})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = s.Update(ctx, "alice", d.ID, model.DateIdeaPatch{Priority: model.Null[int]()})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = s.Update(ctx, "carol", d.ID, model.DateIdeaPatch{Title: model.Some("stolen")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = s.ToggleDone(ctx, "carol", d.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "carol", d.ID), apperror.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "alice", d.ID))
	assert.ErrorIs(t, s.Delete(ctx, "alice", d.ID), apperror.ErrNotFound)
}
