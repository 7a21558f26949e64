// Package store provides the persistent news record store behind the
// services.NewsStore contract, with Postgres, SQLite, and in-memory
// implementations.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

// Memory is an in-memory NewsStore used by tests and single-process demo
// deployments.
type Memory struct {
	mu     sync.RWMutex
	items  map[int64]model.News
	nextID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[int64]model.News)}
}

// Seed inserts items verbatim, keeping their IDs. Intended for tests.
func (m *Memory) Seed(items ...model.News) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range items {
		m.items[n.ID] = n
		if n.ID > m.nextID {
			m.nextID = n.ID
		}
	}
}

func (m *Memory) FetchAll(ctx context.Context) ([]model.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := make([]model.News, 0, len(m.items))
	for _, n := range m.items {
		all = append(all, n)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *Memory) FetchByIDs(ctx context.Context, ids []int64) ([]model.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := make([]model.News, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.items[id]; ok {
			found = append(found, n)
		}
	}
	return found, nil
}

func (m *Memory) GetByID(ctx context.Context, id int64) (model.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.items[id]
	if !ok {
		return model.News{}, errors.NewNewsNotFoundError(id)
	}
	return n, nil
}

func (m *Memory) SearchCandidates(ctx context.Context, term string) ([]model.News, error) {
	termLower := strings.ToLower(term)
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]model.News, 0)
	for _, n := range m.items {
		if strings.Contains(strings.ToLower(n.Title), termLower) ||
			strings.Contains(strings.ToLower(n.Description), termLower) ||
			strings.Contains(strings.ToLower(n.Category), termLower) {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

func (m *Memory) RecentByLanguage(ctx context.Context, lang string, limit int) ([]model.News, error) {
	all, err := m.FilterByLanguage(ctx, lang)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *Memory) FilterByLanguage(ctx context.Context, lang string) ([]model.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]model.News, 0)
	for _, n := range m.items {
		if n.Language == lang {
			matched = append(matched, n)
		}
	}
	sortByDateDesc(matched)
	return matched, nil
}

func (m *Memory) Filter(ctx context.Context, filter services.NewsFilter) ([]model.News, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]model.News, 0)
	for _, n := range m.items {
		if filter.Topic != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(filter.Topic)) {
			continue
		}
		if filter.Nation != "" && !strings.Contains(strings.ToLower(n.Description), strings.ToLower(filter.Nation)) {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(n.Reporter), strings.ToLower(filter.Author)) {
			continue
		}
		if filter.Language != "" && n.Language != filter.Language {
			continue
		}
		if filter.Category != "" && n.Category != filter.Category {
			continue
		}
		matched = append(matched, n)
	}
	sortByDateDesc(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *Memory) Create(ctx context.Context, n *model.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	if n.Date.IsZero() {
		n.Date = time.Now().UTC()
	}
	n.Region = model.ParseRegion(string(n.Region))
	m.items[n.ID] = *n
	return nil
}

func (m *Memory) Update(ctx context.Context, n model.News) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[n.ID]; !ok {
		return errors.NewNewsNotFoundError(n.ID)
	}
	n.Region = model.ParseRegion(string(n.Region))
	m.items[n.ID] = n
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return errors.NewNewsNotFoundError(id)
	}
	delete(m.items, id)
	return nil
}

const defaultFilterLimit = 10

func sortByDateDesc(items []model.News) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
}

var _ services.NewsStore = (*Memory)(nil)
