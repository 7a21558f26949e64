package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

func TestMemoryCreateAssignsIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	first := model.News{Title: "Election results", Language: "en"}
	second := model.News{Title: "Storm warning", Language: "en"}

	require.NoError(t, m.Create(ctx, &first))
	require.NoError(t, m.Create(ctx, &second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.Date.IsZero(), "Create should stamp the date")
	assert.Equal(t, model.RegionGlobal, first.Region, "empty region should normalize to Global")
}

func TestMemoryFetchByIDs(t *testing.T) {
	m := NewMemory()
	m.Seed(
		model.News{ID: 1, Title: "one"},
		model.News{ID: 2, Title: "two"},
		model.News{ID: 3, Title: "three"},
	)

	items, err := m.FetchByIDs(context.Background(), []int64{3, 1, 99})
	require.NoError(t, err)
	require.Len(t, items, 2, "unknown IDs are skipped")
}

func TestMemoryGetByIDNotFound(t *testing.T) {
	m := NewMemory()
	_, err := m.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, errors.ErrNewsNotFound)
}

func TestMemorySearchCandidates(t *testing.T) {
	m := NewMemory()
	m.Seed(
		model.News{ID: 1, Title: "Storm hits coastal city"},
		model.News{ID: 2, Description: "A severe STORM is coming"},
		model.News{ID: 3, Category: "storm-watch"},
		model.News{ID: 4, Title: "Election results"},
	)

	items, err := m.SearchCandidates(context.Background(), "Storm")
	require.NoError(t, err)
	require.Len(t, items, 3, "substring match must be case-insensitive across all three fields")
	for _, n := range items {
		assert.NotEqual(t, int64(4), n.ID)
	}
}

func TestMemoryFilter(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Seed(
		model.News{ID: 1, Title: "Election results in Europe", Description: "France reacts", Reporter: "alice", Language: "en", Category: "politics", Date: base},
		model.News{ID: 2, Title: "Election fraud claims", Description: "Germany reacts", Reporter: "bob", Language: "en", Category: "politics", Date: base.Add(time.Hour)},
		model.News{ID: 3, Title: "Football highlights", Description: "France wins", Reporter: "alice", Language: "fr", Category: "sports", Date: base.Add(2 * time.Hour)},
	)
	ctx := context.Background()

	byTopic, err := m.Filter(ctx, services.NewsFilter{Topic: "election"})
	require.NoError(t, err)
	require.Len(t, byTopic, 2)
	assert.Equal(t, int64(2), byTopic[0].ID, "results must be newest first")

	byNation, err := m.Filter(ctx, services.NewsFilter{Nation: "france"})
	require.NoError(t, err)
	require.Len(t, byNation, 2)

	combined, err := m.Filter(ctx, services.NewsFilter{Author: "alice", Language: "en"})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, int64(1), combined[0].ID)

	byCategory, err := m.Filter(ctx, services.NewsFilter{Category: "sports"})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
}

func TestMemoryRecentByLanguage(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	for i := int64(1); i <= 5; i++ {
		m.Seed(model.News{ID: i, Title: "item", Language: "en", Date: base.Add(time.Duration(i) * time.Hour)})
	}

	items, err := m.RecentByLanguage(context.Background(), "en", 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, int64(5), items[0].ID)
	assert.Equal(t, int64(3), items[2].ID)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	m.Seed(model.News{ID: 1, Title: "one"})
	ctx := context.Background()

	require.NoError(t, m.Delete(ctx, 1))
	assert.ErrorIs(t, m.Delete(ctx, 1), errors.ErrNewsNotFound)
}

func TestMemoryUpdate(t *testing.T) {
	m := NewMemory()
	m.Seed(model.News{ID: 1, Title: "old title"})
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, model.News{ID: 1, Title: "new title"}))
	got, err := m.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)

	assert.ErrorIs(t, m.Update(ctx, model.News{ID: 99}), errors.ErrNewsNotFound)
}
