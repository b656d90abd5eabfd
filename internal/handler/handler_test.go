package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/blob"
	"github.com/dukerupert/twoof/internal/database"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type testApp struct {
	db         *sql.DB
	households *HouseholdHandler
	memories   *MemoryHandler
	photos     *PhotoHandler
	ideas      *DateIdeaHandler
	milestones *MilestoneHandler
	search     *SearchHandler
	export     *ExportHandler
	health     *HealthHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	hub := websocket.NewHub(quietLogger)
	hs := service.NewHouseholdService(db)
	ms := service.NewMemoryService(db, blobs, quietLogger)
	return &testApp{
		db:         db,
		households: NewHouseholdHandler(hs, hub, quietLogger),
		memories:   NewMemoryHandler(ms, hs, hub, quietLogger),
		photos:     NewPhotoHandler(ms, hs, hub, quietLogger),
		ideas:      NewDateIdeaHandler(service.NewDateIdeaService(db, time.UTC), hs, hub, quietLogger),
		milestones: NewMilestoneHandler(service.NewMilestoneService(db, time.UTC), hs, hub, quietLogger),
		search:     NewSearchHandler(service.NewSearchService(db), quietLogger),
		export:     NewExportHandler(service.NewExportService(db), quietLogger),
		health:     NewHealthHandler(db, quietLogger),
	}
}

// newRequest builds a request for user. body may be nil, a raw string, or a
// value to encode as JSON.
func newRequest(t *testing.T, method, target, user string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	r := httptest.NewRequest(method, target, rd)
	if user != "" {
		r = r.WithContext(auth.WithAuth(r.Context(), auth.AuthContext{UserID: user}))
	}
	return r
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[errorBody](t, rec).Error
}

// couple creates a household for a and joins b to it when b is set.
func (a *testApp) couple(t *testing.T, userA, userB string) model.Household {
	t.Helper()
	rec := serve(a.households.Create, newRequest(t, http.MethodPost, "/api/household", userA, map[string]any{"name": "Home"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	hh := decode[model.Household](t, rec)
	if userB != "" {
		rec = serve(a.households.Join, newRequest(t, http.MethodPost, "/api/household/join", userB, map[string]any{"invite_code": *hh.InviteCode}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		hh = decode[model.Household](t, rec)
	}
	return hh
}

func (a *testApp) createMemory(t *testing.T, user, title string) model.Memory {
	t.Helper()
	rec := serve(a.memories.Create, newRequest(t, http.MethodPost, "/api/memories", user, map[string]any{
		"title":       title,
		"content":     "We walked to the " + title,
		"memory_date": "2024-08-01",
		"tags":        []string{"walk"},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Memory](t, rec)
}

func TestHouseholdFlow(t *testing.T) {
	app := newTestApp(t)

	hh := app.couple(t, "alice", "")
	require.NotNil(t, hh.InviteCode)
	assert.Equal(t, "Home", hh.Name)

	rec := serve(app.households.Get, newRequest(t, http.MethodGet, "/api/household", "bob", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorCode(t, rec))

	rec = serve(app.households.Join, newRequest(t, http.MethodPost, "/api/household/join", "alice", map[string]any{"invite_code": *hh.InviteCode}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_operation", errorCode(t, rec))

	rec = serve(app.households.Join, newRequest(t, http.MethodPost, "/api/household/join", "bob", map[string]any{"invite_code": " " + strings.ToLower(*hh.InviteCode)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	joined := decode[model.Household](t, rec)
	require.NotNil(t, joined.UserBID)
	assert.Equal(t, "bob", *joined.UserBID)

	rec = serve(app.households.Join, newRequest(t, http.MethodPost, "/api/household/join", "carol", map[string]any{"invite_code": *hh.InviteCode}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(t, rec))

	rec = serve(app.households.Create, newRequest(t, http.MethodPost, "/api/household", "bob", map[string]any{}))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(app.households.Join, newRequest(t, http.MethodPost, "/api/household/join", "carol", map[string]any{"invite_code": "NOPE2345"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHouseholdUpdateAndRegenerate(t *testing.T) {
	app := newTestApp(t)
	hh := app.couple(t, "alice", "bob")

	rec := serve(app.households.Update, newRequest(t, http.MethodPut, "/api/household", "bob", `{"name":"  Nest  ","anniversary":"2019-05-04"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[model.Household](t, rec)
	assert.Equal(t, "Nest", got.Name)
	require.NotNil(t, got.Anniversary)
	assert.Equal(t, "2019-05-04", got.Anniversary.String())

	rec = serve(app.households.Update, newRequest(t, http.MethodPut, "/api/household", "alice", `{"anniversary":null}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[model.Household](t, rec).Anniversary)

	rec = serve(app.households.RegenerateInvite, newRequest(t, http.MethodPost, "/api/household/regenerate-invite", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, *hh.InviteCode, *decode[model.Household](t, rec).InviteCode)

	rec = serve(app.households.RegenerateInvite, newRequest(t, http.MethodPost, "/api/household/regenerate-invite", "zed", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidJSON(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")

	rec := serve(app.memories.Create, newRequest(t, http.MethodPost, "/api/memories", "alice", `{"title":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", errorCode(t, rec))

	rec = serve(app.memories.Create, newRequest(t, http.MethodPost, "/api/memories", "alice", `{"title":"x","memory_date":"June 1st"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	huge := `{"title":"` + strings.Repeat("a", maxJSONBody) + `"}`
	rec = serve(app.memories.Create, newRequest(t, http.MethodPost, "/api/memories", "alice", huge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMemoryCRUD(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "bob")
	app.couple(t, "carol", "")

	m := app.createMemory(t, "alice", "Beach")
	assert.Equal(t, "alice", m.CreatedBy)
	assert.Equal(t, []string{"walk"}, m.Tags)
	assert.Empty(t, m.Photos)

	rec := serve(app.memories.Get, withID(newRequest(t, http.MethodGet, "/api/memories/"+m.ID, "bob", nil), m.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Beach", decode[model.Memory](t, rec).Title)

	rec = serve(app.memories.Get, withID(newRequest(t, http.MethodGet, "/api/memories/"+m.ID, "carol", nil), m.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app.memories.Update, withID(newRequest(t, http.MethodPut, "/api/memories/"+m.ID, "bob", `{"pinned":true,"location":null}`), m.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Memory](t, rec)
	assert.True(t, updated.Pinned)
	assert.Equal(t, "Beach", updated.Title)

	rec = serve(app.memories.Update, withID(newRequest(t, http.MethodPut, "/api/memories/"+m.ID, "bob", `{"title":null}`), m.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(app.memories.Delete, withID(newRequest(t, http.MethodDelete, "/api/memories/"+m.ID, "carol", nil), m.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app.memories.Delete, withID(newRequest(t, http.MethodDelete, "/api/memories/"+m.ID, "alice", nil), m.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(app.memories.Get, withID(newRequest(t, http.MethodGet, "/api/memories/"+m.ID, "alice", nil), m.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMemoryList(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")
	for i := 0; i < 3; i++ {
		app.createMemory(t, "alice", fmt.Sprintf("Walk %d", i))
	}

	rec := serve(app.memories.List, newRequest(t, http.MethodGet, "/api/memories?year=2024&tag=walk&per_page=2", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[model.MemoryPage](t, rec)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Memories, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PerPage)

	rec = serve(app.memories.List, newRequest(t, http.MethodGet, "/api/memories?year=2023", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"memories":[],"total":0,"page":1,"per_page":20}`, rec.Body.String())

	for _, q := range []string{"year=abc", "month=13", "per_page=101", "page=0", "pinned=maybe"} {
		rec = serve(app.memories.List, newRequest(t, http.MethodGet, "/api/memories?"+q, "alice", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = serve(app.memories.List, newRequest(t, http.MethodGet, "/api/memories", "nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type part struct {
	name, contentType string
	size              int
}

func multipartRequest(t *testing.T, target, user string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, photoFormField, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(bytes.Repeat([]byte{0xAB}, p.size))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := newRequest(t, http.MethodPost, target, user, nil)
	r.Body = io.NopCloser(&buf)
	r.ContentLength = int64(buf.Len())
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestPhotoUploadServeDelete(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "bob")
	app.couple(t, "carol", "")
	m := app.createMemory(t, "alice", "Lake")
	target := "/api/memories/" + m.ID + "/photos"

	rec := serve(app.photos.Upload, withID(multipartRequest(t, target, "bob",
		part{"one.jpg", "image/jpeg", 100},
		part{"two.png", "image/png", 200},
	), m.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	photos := decode[[]model.Photo](t, rec)
	require.Len(t, photos, 2)
	assert.Equal(t, 0, photos[0].SortOrder)
	assert.Equal(t, 1, photos[1].SortOrder)
	assert.Equal(t, "two.png", photos[1].Filename)

	rec = serve(app.photos.File, withID(newRequest(t, http.MethodGet, "/api/photos/"+photos[1].ID+"/file", "alice", nil), photos[1].ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "200", rec.Header().Get("Content-Length"))
	assert.Equal(t, bytes.Repeat([]byte{0xAB}, 200), rec.Body.Bytes())

	rec = serve(app.photos.File, withID(newRequest(t, http.MethodGet, "/api/photos/"+photos[1].ID+"/file", "carol", nil), photos[1].ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app.photos.Delete, withID(newRequest(t, http.MethodDelete, "/api/photos/"+photos[0].ID, "carol", nil), photos[0].ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(app.photos.Delete, withID(newRequest(t, http.MethodDelete, "/api/photos/"+photos[0].ID, "alice", nil), photos[0].ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(app.memories.Get, withID(newRequest(t, http.MethodGet, "/api/memories/"+m.ID, "alice", nil), m.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.Memory](t, rec).Photos, 1)
}

func TestPhotoUploadRejects(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")
	app.couple(t, "carol", "")
	m := app.createMemory(t, "alice", "Lake")
	target := "/api/memories/" + m.ID + "/photos"

	tests := []struct {
		name   string
		user   string
		parts  []part
		status int
	}{
		{"disallowed type", "alice", []part{{"a.jpg", "image/jpeg", 10}, {"doc.pdf", "application/pdf", 10}}, http.StatusBadRequest},
		{"oversized", "alice", []part{{"a.jpg", "image/jpeg", 10}, {"big.jpg", "image/jpeg", service.MaxPhotoSize + 1}}, http.StatusRequestEntityTooLarge},
		{"no files", "alice", nil, http.StatusBadRequest},
		{"other household", "carol", []part{{"a.jpg", "image/jpeg", 10}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app.photos.Upload, withID(multipartRequest(t, target, tt.user, tt.parts...), m.ID))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec := serve(app.memories.Get, withID(newRequest(t, http.MethodGet, "/api/memories/"+m.ID, "alice", nil), m.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[model.Memory](t, rec).Photos, "rejected batches store nothing")

	r := withID(newRequest(t, http.MethodPost, target, "alice", `{"files":[]}`), m.ID)
	r.Header.Set("Content-Type", "application/json")
	rec = serve(app.photos.Upload, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDateIdeas(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "bob")

	rec := serve(app.ideas.Create, newRequest(t, http.MethodPost, "/api/dates", "alice", map[string]any{"title": "Picnic", "priority": 1, "category": "outdoor"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	picnic := decode[model.DateIdea](t, rec)

	rec = serve(app.ideas.Create, newRequest(t, http.MethodPost, "/api/dates", "bob", map[string]any{"title": "Opera", "priority": 3}))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(app.ideas.Create, newRequest(t, http.MethodPost, "/api/dates", "bob", map[string]any{"title": "Bad", "priority": 4}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(app.ideas.List, newRequest(t, http.MethodGet, "/api/dates", "bob", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.DateIdea](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Opera", list[0].Title)

	rec = serve(app.ideas.ToggleDone, withID(newRequest(t, http.MethodPatch, "/api/dates/"+picnic.ID+"/done", "bob", nil), picnic.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	done := decode[model.DateIdea](t, rec)
	assert.True(t, done.Done)
	assert.NotNil(t, done.DoneDate)

	rec = serve(app.ideas.List, newRequest(t, http.MethodGet, "/api/dates?done=true&category=outdoor", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.DateIdea](t, rec), 1)

	rec = serve(app.ideas.List, newRequest(t, http.MethodGet, "/api/dates?priority=2", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = serve(app.ideas.Update, withID(newRequest(t, http.MethodPut, "/api/dates/"+picnic.ID, "alice", `{"category":null,"priority":2}`), picnic.ID))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.DateIdea](t, rec)
	assert.Nil(t, updated.Category)
	assert.Equal(t, 2, updated.Priority)

	rec = serve(app.ideas.Delete, withID(newRequest(t, http.MethodDelete, "/api/dates/"+picnic.ID, "alice", nil), picnic.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = serve(app.ideas.Delete, withID(newRequest(t, http.MethodDelete, "/api/dates/"+picnic.ID, "alice", nil), picnic.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMilestones(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")

	rec := serve(app.milestones.Create, newRequest(t, http.MethodPost, "/api/milestones", "alice", map[string]any{
		"title": "Met", "milestone_date": "2001-01-01",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	met := decode[model.Milestone](t, rec)
	assert.Nil(t, met.DaysUntil)

	rec = serve(app.milestones.Create, newRequest(t, http.MethodPost, "/api/milestones", "alice", map[string]any{
		"title": "Anniversary", "milestone_date": "2001-01-01", "recurring": true,
	}))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotNil(t, decode[model.Milestone](t, rec).DaysUntil)

	rec = serve(app.milestones.List, newRequest(t, http.MethodGet, "/api/milestones", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Milestone](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Anniversary", list[0].Title)
	assert.Nil(t, list[1].DaysUntil)

	rec = serve(app.milestones.Update, withID(newRequest(t, http.MethodPut, "/api/milestones/"+met.ID, "alice", `{"recurring":null}`), met.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(app.milestones.Update, withID(newRequest(t, http.MethodPut, "/api/milestones/"+met.ID, "alice", `{"recurring":true}`), met.ID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode[model.Milestone](t, rec).DaysUntil)

	rec = serve(app.milestones.Delete, withID(newRequest(t, http.MethodDelete, "/api/milestones/"+met.ID, "alice", nil), met.ID))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")
	app.createMemory(t, "alice", "lighthouse")

	rec := serve(app.search.Search, newRequest(t, http.MethodGet, "/api/search?q=lighthouse", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := decode[[]model.SearchResult](t, rec)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Snippet, "**lighthouse**")

	rec = serve(app.search.Search, newRequest(t, http.MethodGet, "/api/search?q=volcano", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	for _, q := range []string{"", "q=", "q=x&limit=0", "q=x&limit=many"} {
		rec = serve(app.search.Search, newRequest(t, http.MethodGet, "/api/search?"+q, "alice", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestExport(t *testing.T) {
	app := newTestApp(t)
	app.couple(t, "alice", "")
	app.createMemory(t, "alice", "Lake")

	rec := serve(app.export.Export, newRequest(t, http.MethodGet, "/api/export", "alice", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="twoof-export.json"`, rec.Header().Get("Content-Disposition"))
	doc := decode[model.Export](t, rec)
	assert.Equal(t, "twoof", doc.App)
	assert.Len(t, doc.Memories, 1)

	rec = serve(app.export.Export, newRequest(t, http.MethodGet, "/api/export", "nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := serve(app.health.Health, newRequest(t, http.MethodGet, "/health", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","app":"twoof","version":"1.0.0","db":true}`, rec.Body.String())

	require.NoError(t, app.db.Close())
	rec = serve(app.health.Health, newRequest(t, http.MethodGet, "/health", "", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","app":"twoof","version":"1.0.0","db":false}`, rec.Body.String())
}

func TestUnavailableDatastore(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.db.Close())

	rec := serve(app.memories.List, newRequest(t, http.MethodGet, "/api/memories", "alice", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"service_unavailable","message":"datastore unavailable"}`, rec.Body.String())
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperror.NotFound("memory"), http.StatusNotFound, `{"error":"not_found","message":"memory not found"}`},
		{apperror.ValidationFailed("title", "title is required"), http.StatusBadRequest, `{"error":"validation_error","message":"title is required","field":"title"}`},
		{fmt.Errorf("wrapped: %w", apperror.Conflict("already in a household")), http.StatusConflict, `{"error":"conflict","message":"already in a household"}`},
		{apperror.TooLarge("file too large"), http.StatusRequestEntityTooLarge, `{"error":"payload_too_large","message":"file too large"}`},
		{apperror.Unauthorized("who are you"), http.StatusUnauthorized, `{"error":"unauthorized","message":"who are you"}`},
		{errors.New("disk on fire at /var/lib/twoof"), http.StatusInternalServerError, `{"error":"internal_error","message":"internal server error"}`},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), quietLogger, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.JSONEq(t, tt.body, rec.Body.String())
	}
}

func TestBroadcastWithoutHub(t *testing.T) {
	n := notifier{logger: quietLogger}
	r := newRequest(t, http.MethodGet, "/", "alice", nil)
	// nil hub is a no-op
	n.broadcast(r.WithContext(context.Background()), websocket.NewMessage("memory", "created", "m", nil))
}
