package service

import (
	"context"
	"database/sql"
	"strings"
	"unicode/utf8"

	"github.com/dukerupert/twoof/internal/apperror"
	"github.com/dukerupert/twoof/internal/model"
	"github.com/dukerupert/twoof/internal/store"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type SearchService struct {
	db *sql.DB
}

func NewSearchService(db *sql.DB) *SearchService {
	return &SearchService{db: db}
}

// Search runs a ranked full-text query over the caller's household's
// memories.
func (s *SearchService) Search(ctx context.Context, userID, query string, limit int) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "q is required")
	}
	if utf8.RuneCountInString(query) > maxQueryLen {
		return nil, apperror.ValidationFailed("q", "q must be at most 500 characters")
	}
	if limit < 1 || limit > MaxSearchLimit {
		return nil, apperror.ValidationFailed("limit", "limit must be between 1 and 100")
	}

	h, err := ResolveHousehold(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	results, err := store.NewSearchStore(s.db).Search(ctx, h.ID, store.BuildMatchQuery(query), limit)
	if err != nil {
		return nil, translate("search memories", err)
	}
	return results, nil
}
