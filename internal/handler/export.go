package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/service"
)

const exportFilename = "twoof-export.json"

type ExportHandler struct {
	export *service.ExportService
	logger *slog.Logger
}

func NewExportHandler(es *service.ExportService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{export: es, logger: logger}
}

// Export downloads the caller's household as one JSON document.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.export.Export(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	writeJSON(w, http.StatusOK, doc)
}
