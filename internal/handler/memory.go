package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

type MemoryHandler struct {
	memories *service.MemoryService
	notifier
}

func NewMemoryHandler(ms *service.MemoryService, hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *MemoryHandler {
	return &MemoryHandler{memories: ms, notifier: notifier{hub: hub, households: hs, logger: logger}}
}

func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := memoryFilter(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.memories.List(r.Context(), auth.UserID(r.Context()), f)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func memoryFilter(r *http.Request) (model.MemoryFilter, error) {
	var f model.MemoryFilter
	var err error
	if f.Year, err = queryInt(r, "year"); err != nil {
		return f, err
	}
	if f.Month, err = queryInt(r, "month"); err != nil {
		return f, err
	}
	if f.Pinned, err = queryBool(r, "pinned"); err != nil {
		return f, err
	}
	page, err := queryInt(r, "page")
	if err != nil {
		return f, err
	}
	perPage, err := queryInt(r, "per_page")
	if err != nil {
		return f, err
	}
	f.Tag = queryString(r, "tag")
	f.Page = intOr(page, 1)
	f.PerPage = intOr(perPage, service.DefaultPerPage)
	return f, nil
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.MemoryCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.memories.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("memory", "created", m.ID, nil))

	writeJSON(w, http.StatusCreated, m)
}

func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.memories.Get(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MemoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.MemoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.memories.Update(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("memory", "updated", m.ID, nil))

	writeJSON(w, http.StatusOK, m)
}

func (h *MemoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.memories.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("memory", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
