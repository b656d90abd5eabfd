package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/twoof/internal/auth"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
	logger *slog.Logger
}

func NewSearchHandler(ss *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: ss, logger: logger}
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	results, err := h.search.Search(r.Context(), auth.UserID(r.Context()), r.URL.Query().Get("q"), intOr(limit, service.DefaultSearchLimit))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
