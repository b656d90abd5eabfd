package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/twoof/internal/database"
	"github.com/dukerupert/twoof/internal/service"
)

type healthResponse struct {
	Status  string `json:"status"`
	App     string `json:"app"`
	Version string `json:"version"`
	DB      bool   `json:"db"`
}

type HealthHandler struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewHealthHandler(db *sql.DB, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health reports whether the datastore answers. It needs no credentials.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", App: service.AppName, Version: service.AppVersion, DB: true}
	status := http.StatusOK
	if err := database.Ping(ctx, h.db); err != nil {
		h.logger.Warn("health check: database unreachable", "error", err)
		resp.Status = "degraded"
		resp.DB = false
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
