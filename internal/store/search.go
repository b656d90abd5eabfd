package store

import (
	"context"
	"strings"
	"unicode"

	"github.com/dukerupert/twoof/internal/model"
)

type SearchStore struct {
	db DBTX
}

func NewSearchStore(db DBTX) *SearchStore {
	return &SearchStore{db: db}
}

// snippetTokens bounds the excerpt returned with each hit.
const snippetTokens = 30

// BuildMatchQuery turns free text into an FTS5 MATCH expression that ANDs
// every word as a quoted string, so user input is never parsed as FTS
// syntax. It returns "" when the text holds no searchable word.
func BuildMatchQuery(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, " AND ")
}

// Search runs a ranked full-text query over the household's memories. The
// match argument must come from BuildMatchQuery.
func (s *SearchStore) Search(ctx context.Context, householdID, match string, limit int) ([]model.SearchResult, error) {
	results := []model.SearchResult{}
	if match == "" {
		return results, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.id, m.title,
		        snippet(memories_fts, 2, '**', '**', '…', ?),
		        m.memory_date, m.location
		 FROM memories_fts
		 JOIN memories m ON m.id = memories_fts.memory_id
		 WHERE memories_fts MATCH ?
		   AND memories_fts.household_id = ?
		   AND m.household_id = ?
		 ORDER BY bm25(memories_fts), m.memory_date DESC
		 LIMIT ?`,
		snippetTokens, match, householdID, householdID, limit,
	)
	if err != nil {
		return nil, wrap("search memories", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r model.SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet, &r.MemoryDate, &r.Location); err != nil {
			return nil, wrap("scan search result", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate search results", err)
	}
	return results, nil
}
