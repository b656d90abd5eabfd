package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

type MilestoneHandler struct {
	milestones *service.MilestoneService
	notifier
}

func NewMilestoneHandler(ms *service.MilestoneService, hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *MilestoneHandler {
	return &MilestoneHandler{milestones: ms, notifier: notifier{hub: hub, households: hs, logger: logger}}
}

func (h *MilestoneHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.milestones.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []model.Milestone{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MilestoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.MilestoneCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.milestones.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("milestone", "created", m.ID, nil))

	writeJSON(w, http.StatusCreated, m)
}

func (h *MilestoneHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.MilestonePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	m, err := h.milestones.Update(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("milestone", "updated", m.ID, nil))

	writeJSON(w, http.StatusOK, m)
}

func (h *MilestoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.milestones.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(r, websocket.NewMessage("milestone", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
