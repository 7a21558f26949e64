// Package services defines the contracts between the newswire subsystems:
// the persistent record store, the inverted index, and the search paths
// consumed by the web and command layers.
package services

import (
	"context"

	"github.com/charisk/newswire/model"
)

// ScoredID is a single ranked hit from the inverted index: a news ID and
// its relevance score. Callers re-join IDs against the record store and
// must preserve this ordering.
type ScoredID struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// SearchResult is the response of the caller-facing search path.
type SearchResult struct {
	Hits     []model.News `json:"hits"`
	Total    int          `json:"total"`
	Took     int64        `json:"took"` // milliseconds
	QueryID  string       `json:"query_id"`
	Fallback bool         `json:"fallback"` // true when served by the fuzzy fallback path
}

// NewsFilter describes the field-level filter search exposed by the record
// store (topic in title, nation in description, author, exact language and
// category).
type NewsFilter struct {
	Topic    string
	Nation   string
	Author   string
	Language string
	Category string
	Limit    int
}

// NewsStore is the persistent record store reachable by identifier. The
// index is rebuilt from it at startup and never persisted itself.
type NewsStore interface {
	// FetchAll returns every stored news item; used for index bulk loads.
	FetchAll(ctx context.Context) ([]model.News, error)
	// FetchByIDs returns the items for the given IDs. The result order is
	// unspecified; callers re-join against the requested ID order.
	FetchByIDs(ctx context.Context, ids []int64) ([]model.News, error)
	GetByID(ctx context.Context, id int64) (model.News, error)
	// SearchCandidates returns items whose title, description, or category
	// contains term as a case-insensitive substring. It is the pre-filter
	// for the fuzzy fallback matcher, not a ranked search.
	SearchCandidates(ctx context.Context, term string) ([]model.News, error)
	RecentByLanguage(ctx context.Context, lang string, limit int) ([]model.News, error)
	FilterByLanguage(ctx context.Context, lang string) ([]model.News, error)
	Filter(ctx context.Context, filter NewsFilter) ([]model.News, error)
	// Create assigns n.ID on success.
	Create(ctx context.Context, n *model.News) error
	Update(ctx context.Context, n model.News) error
	Delete(ctx context.Context, id int64) error
}

// Indexer defines the maintenance operations that keep the inverted index
// consistent with the record store. These are the only index writers.
type Indexer interface {
	Add(n model.News)
	Remove(id int64)
	// Update reindexes an edited item as an atomic remove-then-add.
	Update(n model.News)
	Ready() bool
}

// Searcher is the scored query contract of the inverted index.
type Searcher interface {
	// Search returns at most limit (id, score) pairs, highest score first.
	// It returns errors.ErrIndexNotReady while the index is uninitialized.
	Search(query string, limit int) ([]ScoredID, error)
}

// NewsSearcher is the caller-facing search contract: it resolves ranked
// IDs to full records and falls back to the fuzzy matcher when the index
// is unavailable.
type NewsSearcher interface {
	Search(ctx context.Context, query string, limit int) (SearchResult, error)
}
