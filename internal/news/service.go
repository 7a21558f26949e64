// Package news orchestrates the record store, the inverted index, and the
// fuzzy fallback matcher behind the caller-facing search and mutation
// operations.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/charisk/newswire/config"
	"github.com/charisk/newswire/index"
	"github.com/charisk/newswire/internal/cache"
	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/internal/events"
	"github.com/charisk/newswire/internal/fuzzy"
	"github.com/charisk/newswire/internal/metrics"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

// Service is the single owner of the index lifecycle: it runs the bulk
// load, routes queries to the index or the fallback matcher, and keeps the
// index live on mutations.
type Service struct {
	store    services.NewsStore
	index    *index.Index
	cfg      config.SearchConfig
	cache    *cache.QueryCache
	producer *events.Producer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithCache wires the Redis query cache.
func WithCache(c *cache.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithProducer routes mutation events through Kafka instead of applying
// the index maintenance hooks in-process.
func WithProducer(p *events.Producer) Option {
	return func(s *Service) { s.producer = p }
}

// WithMetrics wires the Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates the orchestration service.
func NewService(st services.NewsStore, ix *index.Index, cfg config.SearchConfig, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("news store cannot be nil")
	}
	if ix == nil {
		return nil, fmt.Errorf("index cannot be nil")
	}
	s := &Service{
		store:  st,
		index:  ix,
		cfg:    cfg,
		logger: slog.Default().With("component", "news-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize bulk-loads the index from the record store. A failure is
// recoverable: the service keeps answering through the fallback matcher
// until a later Rebuild succeeds.
func (s *Service) Initialize(ctx context.Context) error {
	err := s.index.Initialize(ctx, s.store)
	s.recordRebuild(err)
	return err
}

// Rebuild re-runs the bulk load from scratch; exposed to operators as the
// repair operation for index drift.
func (s *Service) Rebuild(ctx context.Context) error {
	err := s.index.Rebuild(ctx, s.store)
	s.recordRebuild(err)
	return err
}

func (s *Service) recordRebuild(err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.IndexRebuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	s.metrics.IndexRebuildsTotal.WithLabelValues("success").Inc()
	s.metrics.IndexDocuments.Set(float64(s.index.Stats().TotalDocuments))
}

// Ready reports whether the inverted index is serving queries.
func (s *Service) Ready() bool {
	return s.index.Ready()
}

// Stats exposes the index size counters.
func (s *Service) Stats() index.Stats {
	return s.index.Stats()
}

// SearchAll answers a query with the widest allowed result set.
func (s *Service) SearchAll(ctx context.Context, query string) (services.SearchResult, error) {
	return s.Search(ctx, query, s.cfg.MaxLimit)
}

// Search answers a query through the inverted index, re-joining the ranked
// IDs against the record store in order. While the index is not ready it
// degrades to the fuzzy fallback scan instead of failing.
func (s *Service) Search(ctx context.Context, query string, limit int) (services.SearchResult, error) {
	limit = s.clampLimit(limit)
	start := time.Now()

	if s.cache != nil {
		if result, ok := s.cache.Get(ctx, query, limit); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
			}
			return result, nil
		}
		if s.metrics != nil {
			s.metrics.CacheMissesTotal.Inc()
		}
	}

	hits, fallback, err := s.runSearch(ctx, query, limit)
	if err != nil {
		s.recordSearch("index", "error", start, 0)
		return services.SearchResult{}, err
	}

	result := services.SearchResult{
		Hits:     hits,
		Total:    len(hits),
		Took:     time.Since(start).Milliseconds(),
		QueryID:  uuid.New().String(),
		Fallback: fallback,
	}

	path := "index"
	if fallback {
		path = "fallback"
	}
	outcome := "hit"
	if len(hits) == 0 {
		outcome = "zero_result"
	}
	s.recordSearch(path, outcome, start, len(hits))

	if s.cache != nil {
		s.cache.Set(ctx, query, limit, result)
	}
	return result, nil
}

func (s *Service) runSearch(ctx context.Context, query string, limit int) ([]model.News, bool, error) {
	scored, err := s.index.Search(query, limit)
	switch {
	case err == nil:
		hits, joinErr := s.joinByIDs(ctx, scored)
		return hits, false, joinErr
	case err == errors.ErrIndexNotReady:
		s.logger.Warn("index not ready, using fallback search", "query", query)
		hits, fbErr := s.fallbackSearch(ctx, query, limit)
		return hits, true, fbErr
	default:
		return nil, false, err
	}
}

// joinByIDs resolves ranked IDs to full records, preserving the index's
// ordering — the store's bulk fetch has no inherent order.
func (s *Service) joinByIDs(ctx context.Context, scored []services.ScoredID) ([]model.News, error) {
	if len(scored) == 0 {
		return []model.News{}, nil
	}
	ids := make([]int64, len(scored))
	for i, sc := range scored {
		ids[i] = sc.ID
	}
	fetched, err := s.store.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching search hits: %w", err)
	}
	byID := make(map[int64]model.News, len(fetched))
	for _, n := range fetched {
		byID[n.ID] = n
	}
	hits := make([]model.News, 0, len(ids))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			hits = append(hits, n)
		}
	}
	return hits, nil
}

// fallbackSearch is the degraded path: substring pre-filter at the store,
// similarity-ratio ranking in memory.
func (s *Service) fallbackSearch(ctx context.Context, query string, limit int) ([]model.News, error) {
	if strings.TrimSpace(query) == "" {
		return []model.News{}, nil
	}
	candidates, err := s.store.SearchCandidates(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetching fallback candidates: %w", err)
	}
	return fuzzy.RankAll(query, candidates, limit), nil
}

// Create validates and persists a news item, rejecting near-duplicates,
// then pushes the add hook to the index (directly, or via the event topic
// when eventing is on).
func (s *Service) Create(ctx context.Context, n *model.News) error {
	if strings.TrimSpace(n.Title) == "" {
		return errors.NewValidationError("title", "cannot be empty")
	}

	candidates, err := s.store.SearchCandidates(ctx, n.Title)
	if err != nil {
		return fmt.Errorf("checking for duplicates: %w", err)
	}
	for _, existing := range candidates {
		if fuzzy.IsSimilar(*n, existing, s.cfg.SimilarityThreshold) {
			if s.metrics != nil {
				s.metrics.DuplicatesRejected.Inc()
			}
			return errors.NewDuplicateNewsError(n.Title, existing.ID)
		}
	}

	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("persisting news: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.Created(ctx, *n); err != nil {
			return err
		}
	} else {
		s.index.Add(*n)
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexDocuments.Set(float64(s.index.Stats().TotalDocuments))
	}
	s.afterMutation(ctx)
	s.logger.Info("news created", "id", n.ID, "title", n.Title)
	return nil
}

// Update persists an edit and reindexes it atomically — an edited record
// must never keep its old postings.
func (s *Service) Update(ctx context.Context, n model.News) error {
	if err := s.store.Update(ctx, n); err != nil {
		return err
	}
	if s.producer != nil {
		if err := s.producer.Updated(ctx, n); err != nil {
			return err
		}
	} else {
		s.index.Update(n)
	}
	s.afterMutation(ctx)
	s.logger.Info("news updated", "id", n.ID)
	return nil
}

// Delete removes a news item from the store and the index.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if s.producer != nil {
		if err := s.producer.Deleted(ctx, id); err != nil {
			return err
		}
	} else {
		s.index.Remove(id)
	}
	if s.metrics != nil {
		s.metrics.DocsRemovedTotal.Inc()
		s.metrics.IndexDocuments.Set(float64(s.index.Stats().TotalDocuments))
	}
	s.afterMutation(ctx)
	s.logger.Info("news deleted", "id", id)
	return nil
}

func (s *Service) afterMutation(ctx context.Context) {
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
}

func (s *Service) recordSearch(path, outcome string, start time.Time, results int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchesTotal.WithLabelValues(path, outcome).Inc()
	s.metrics.SearchLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
	s.metrics.SearchResultsCount.Observe(float64(results))
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

var _ services.NewsSearcher = (*Service)(nil)
