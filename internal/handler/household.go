package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
	"github.com/dukerupert/twoof/internal/websocket"
)

type HouseholdHandler struct {
	households *service.HouseholdService
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *service.HouseholdService, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, hub: hub, logger: logger}
}

func (h *HouseholdHandler) broadcast(hh *model.Household, action string) {
	if h.hub != nil {
		h.hub.Broadcast(hh.ID, websocket.NewMessage("household", action, hh.ID, nil))
	}
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.HouseholdCreate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hh, err := h.households.Create(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, hh)
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	hh, err := h.households.Get(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

func (h *HouseholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.HouseholdPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hh, err := h.households.Update(r.Context(), auth.UserID(r.Context()), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(hh, "updated")

	writeJSON(w, http.StatusOK, hh)
}

func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req model.HouseholdJoin
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	hh, err := h.households.Join(r.Context(), auth.UserID(r.Context()), req.InviteCode)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(hh, "joined")

	writeJSON(w, http.StatusOK, hh)
}

func (h *HouseholdHandler) RegenerateInvite(w http.ResponseWriter, r *http.Request) {
	hh, err := h.households.RegenerateInvite(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.broadcast(hh, "invite_regenerated")

	writeJSON(w, http.StatusOK, hh)
}
