package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

type DateIdeaHandler struct {
	ideas *service.DateIdeaService
	notifier
}

func NewDateIdeaHandler(ds *service.DateIdeaService, hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *DateIdeaHandler {
	return &DateIdeaHandler{ideas: ds, notifier: notifier{hub: hub, households: hs, logger: logger}}
}

func (h *DateIdeaHandler) List(w http.ResponseWriter, r *http.Request) {
	f := model.DateIdeaFilter{Category: queryString(r, "category")}
	var err error
	if f.Done, err = queryBool(r, "done"); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if f.Priority, err = queryInt(r, "priority"); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ideas, err := h.ideas.List(r.Context(), auth.UserID(r.Context()), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if ideas == nil {
		ideas = []model.DateIdea{}
	}
	writeJSON(w, http.StatusOK, ideas)
}

func (h *DateIdeaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.DateIdeaCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d, err := h.ideas.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("date_idea", "created", d.ID, nil))

	writeJSON(w, http.StatusCreated, d)
}

func (h *DateIdeaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.DateIdeaPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	d, err := h.ideas.Update(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("date_idea", "updated", d.ID, nil))

	writeJSON(w, http.StatusOK, d)
}

func (h *DateIdeaHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	d, err := h.ideas.ToggleDone(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("date_idea", "toggled", d.ID, map[string]any{"done": d.Done}))

	writeJSON(w, http.StatusOK, d)
}

func (h *DateIdeaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.ideas.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("date_idea", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
