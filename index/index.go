// Package index implements the in-memory inverted index over news items.
// Three field indexes (title, description, category) map terms to ID sets,
// and a document cache keeps the indexed text so removals can recover the
// exact term set that was added.
package index

import (
	"context"
	"log/slog"
	"sync"

	"github.com/charisk/newswire/internal/tokenizer"
	"github.com/charisk/newswire/model"
)

// Loader is the slice of the record store the index needs for bulk loads.
type Loader interface {
	FetchAll(ctx context.Context) ([]model.News, error)
}

// fieldIndex maps a term to the set of news IDs containing it in one field.
type fieldIndex map[string]map[int64]struct{}

func (fi fieldIndex) add(term string, id int64) {
	ids, ok := fi[term]
	if !ok {
		ids = make(map[int64]struct{})
		fi[term] = ids
	}
	ids[id] = struct{}{}
}

// discard removes id from the term's posting set and drops the set
// entirely once it is empty, so stale terms do not pin memory.
func (fi fieldIndex) discard(term string, id int64) {
	ids, ok := fi[term]
	if !ok {
		return
	}
	delete(ids, id)
	if len(ids) == 0 {
		delete(fi, term)
	}
}

// docEntry is the per-document snapshot captured at index time. Removal
// re-normalizes these fields, so the entry must always reflect the text
// that was actually indexed.
type docEntry struct {
	Title       string
	Description string
	Category    string
	Language    string
	Region      model.Region
}

// Index is the process-wide inverted index. Reads take the shared lock and
// only the maintenance operations (Add, Remove, Update, Rebuild) write.
type Index struct {
	mu          sync.RWMutex
	title       fieldIndex
	description fieldIndex
	category    fieldIndex
	docs        map[int64]docEntry
	initialized bool
	logger      *slog.Logger
}

// New creates an empty, uninitialized index. Queries fail with
// errors.ErrIndexNotReady until Initialize succeeds.
func New() *Index {
	return &Index{
		title:       make(fieldIndex),
		description: make(fieldIndex),
		category:    make(fieldIndex),
		docs:        make(map[int64]docEntry),
		logger:      slog.Default().With("component", "index"),
	}
}

// Add indexes a news item across all three field indexes and stores its
// cache entry. Re-adding an existing ID overwrites the cache entry without
// clearing the previous term postings; callers must Remove (or Update)
// before re-adding an edited item.
func (ix *Index) Add(n model.News) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.addLocked(n)
}

func (ix *Index) addLocked(n model.News) {
	ix.docs[n.ID] = docEntry{
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		Language:    n.Language,
		Region:      model.ParseRegion(string(n.Region)),
	}

	for _, term := range tokenizer.Normalize(n.Title) {
		ix.title.add(term, n.ID)
	}
	for _, term := range tokenizer.Normalize(n.Description) {
		ix.description.add(term, n.ID)
	}
	for _, term := range tokenizer.Normalize(n.Category) {
		ix.category.add(term, n.ID)
	}
}

// Remove deletes a news item from every posting list it appears in and
// drops its cache entry. Removing an unknown ID is a no-op.
func (ix *Index) Remove(id int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
}

func (ix *Index) removeLocked(id int64) {
	doc, ok := ix.docs[id]
	if !ok {
		return
	}

	for _, term := range tokenizer.Normalize(doc.Title) {
		ix.title.discard(term, id)
	}
	for _, term := range tokenizer.Normalize(doc.Description) {
		ix.description.discard(term, id)
	}
	for _, term := range tokenizer.Normalize(doc.Category) {
		ix.category.discard(term, id)
	}

	delete(ix.docs, id)
}

// Update reindexes an edited item as remove-then-add under a single write
// lock, so no query observes the intermediate state and no stale postings
// survive the edit.
func (ix *Index) Update(n model.News) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(n.ID)
	ix.addLocked(n)
}

// Ready reports whether the bulk load has completed successfully.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.initialized
}

// Initialize bulk-loads every record from the store and marks the index
// ready. On a fetch failure the index keeps its previous state and the
// ready flag stays unset, so callers route queries to the fallback until a
// later Rebuild succeeds.
func (ix *Index) Initialize(ctx context.Context, loader Loader) error {
	return ix.Rebuild(ctx, loader)
}

// Rebuild reconstructs the index from scratch. The replacement maps are
// built off-lock and swapped in atomically: queries running during the
// rebuild see the previous state throughout.
func (ix *Index) Rebuild(ctx context.Context, loader Loader) error {
	all, err := loader.FetchAll(ctx)
	if err != nil {
		ix.logger.Error("index bulk load failed", "error", err)
		return err
	}

	fresh := New()
	for _, n := range all {
		fresh.addLocked(n)
	}

	ix.mu.Lock()
	ix.title = fresh.title
	ix.description = fresh.description
	ix.category = fresh.category
	ix.docs = fresh.docs
	ix.initialized = true
	ix.mu.Unlock()

	ix.logger.Info("index initialized", "documents", len(all))
	return nil
}

// Stats summarizes index size, mirroring the counts exposed on the admin
// surface.
type Stats struct {
	TotalDocuments   int `json:"total_documents"`
	TitleTerms       int `json:"title_terms"`
	DescriptionTerms int `json:"description_terms"`
	CategoryTerms    int `json:"category_terms"`
	TotalTerms       int `json:"total_terms"`
}

// Stats returns current index statistics.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Stats{
		TotalDocuments:   len(ix.docs),
		TitleTerms:       len(ix.title),
		DescriptionTerms: len(ix.description),
		CategoryTerms:    len(ix.category),
		TotalTerms:       len(ix.title) + len(ix.description) + len(ix.category),
	}
}

// loaderFunc adapts a plain function to the Loader interface; used by
// tests and the rebuild trigger.
type loaderFunc func(ctx context.Context) ([]model.News, error)

func (f loaderFunc) FetchAll(ctx context.Context) ([]model.News, error) { return f(ctx) }

// LoaderFunc wraps fn as a Loader.
func LoaderFunc(fn func(ctx context.Context) ([]model.News, error)) Loader { return loaderFunc(fn) }
