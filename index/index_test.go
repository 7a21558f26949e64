package index

import (
	"context"
	"errors"
	"testing"

	"github.com/charisk/newswire/model"
)

func testNews(id int64, title, description, category string) model.News {
	return model.News{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
		Language:    "en",
		Region:      model.RegionGlobal,
	}
}

func TestAddThenRemoveRestoresEmptyState(t *testing.T) {
	ix := New()
	ix.Add(testNews(1, "Election results in Europe", "Vote counting finished overnight", "politics"))

	if len(ix.docs) != 1 {
		t.Fatalf("expected 1 cached document, got %d", len(ix.docs))
	}
	if len(ix.title) == 0 || len(ix.description) == 0 || len(ix.category) == 0 {
		t.Fatal("expected postings in all three field indexes")
	}

	ix.Remove(1)

	if len(ix.docs) != 0 {
		t.Errorf("expected empty document cache, got %d entries", len(ix.docs))
	}
	if len(ix.title) != 0 {
		t.Errorf("expected empty title index, got %d terms", len(ix.title))
	}
	if len(ix.description) != 0 {
		t.Errorf("expected empty description index, got %d terms", len(ix.description))
	}
	if len(ix.category) != 0 {
		t.Errorf("expected empty category index, got %d terms", len(ix.category))
	}
}

func TestRemoveKeepsSharedPostings(t *testing.T) {
	ix := New()
	ix.Add(testNews(1, "Storm warning issued", "", ""))
	ix.Add(testNews(2, "Storm damage reported", "", ""))

	ix.Remove(1)

	ids, ok := ix.title["storm"]
	if !ok {
		t.Fatal("expected 'storm' posting list to survive")
	}
	if _, ok := ids[2]; !ok {
		t.Error("expected document 2 to remain in 'storm' posting list")
	}
	if _, ok := ids[1]; ok {
		t.Error("document 1 should have been discarded from 'storm' posting list")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	ix := New()
	ix.Add(testNews(1, "Election results", "", ""))

	ix.Remove(1)
	ix.Remove(1) // second call must be a no-op

	if len(ix.docs) != 0 || len(ix.title) != 0 {
		t.Error("repeated remove left residual state")
	}
}

func TestUpdateReindexesEditedFields(t *testing.T) {
	ix := New()
	ix.Add(testNews(1, "Election results", "", ""))

	ix.Update(testNews(1, "Football highlights", "", ""))

	if _, ok := ix.title["election"]; ok {
		t.Error("stale posting for 'election' survived the update")
	}
	if ids, ok := ix.title["football"]; !ok {
		t.Error("expected posting for 'football' after update")
	} else if _, ok := ids[1]; !ok {
		t.Error("expected document 1 in 'football' posting list")
	}
	if ix.docs[1].Title != "Football highlights" {
		t.Errorf("cache entry not refreshed: %q", ix.docs[1].Title)
	}
}

func TestInitializeSuccess(t *testing.T) {
	ix := New()
	loader := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return []model.News{
			testNews(1, "Election results in Europe", "", "politics"),
			testNews(2, "Football match highlights", "", "sports"),
		}, nil
	})

	if err := ix.Initialize(context.Background(), loader); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if !ix.Ready() {
		t.Fatal("expected index to be ready after successful Initialize")
	}

	stats := ix.Stats()
	if stats.TotalDocuments != 2 {
		t.Errorf("expected 2 documents, got %d", stats.TotalDocuments)
	}
}

func TestInitializeFailureLeavesIndexNotReady(t *testing.T) {
	ix := New()
	loadErr := errors.New("store unavailable")
	loader := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return nil, loadErr
	})

	err := ix.Initialize(context.Background(), loader)
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected load error to propagate, got %v", err)
	}
	if ix.Ready() {
		t.Fatal("index must stay not-ready after a failed bulk load")
	}
}

func TestRebuildReplacesDriftedState(t *testing.T) {
	ix := New()
	loader := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return []model.News{testNews(1, "Election results", "", "")}, nil
	})
	if err := ix.Initialize(context.Background(), loader); err != nil {
		t.Fatal(err)
	}

	// Simulate drift: an edit that never hit the index maintenance hooks.
	ix.Add(testNews(99, "Phantom entry", "", ""))

	if err := ix.Rebuild(context.Background(), loader); err != nil {
		t.Fatalf("Rebuild returned error: %v", err)
	}
	if _, ok := ix.docs[99]; ok {
		t.Error("rebuild did not discard drifted document")
	}
	if stats := ix.Stats(); stats.TotalDocuments != 1 {
		t.Errorf("expected 1 document after rebuild, got %d", stats.TotalDocuments)
	}
}

func TestRebuildFailureKeepsPreviousState(t *testing.T) {
	ix := New()
	good := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return []model.News{testNews(1, "Election results", "", "")}, nil
	})
	if err := ix.Initialize(context.Background(), good); err != nil {
		t.Fatal(err)
	}

	bad := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return nil, errors.New("store unavailable")
	})
	if err := ix.Rebuild(context.Background(), bad); err == nil {
		t.Fatal("expected rebuild error")
	}

	if !ix.Ready() {
		t.Error("failed rebuild should not flip an initialized index to not-ready")
	}
	if stats := ix.Stats(); stats.TotalDocuments != 1 {
		t.Errorf("failed rebuild should keep previous state, got %d documents", stats.TotalDocuments)
	}
}

func TestStats(t *testing.T) {
	ix := New()
	ix.Add(testNews(1, "Election results", "Vote counting finished", "politics"))

	stats := ix.Stats()
	if stats.TotalDocuments != 1 {
		t.Errorf("TotalDocuments = %d, want 1", stats.TotalDocuments)
	}
	if stats.TitleTerms != 2 {
		t.Errorf("TitleTerms = %d, want 2", stats.TitleTerms)
	}
	if stats.TotalTerms != stats.TitleTerms+stats.DescriptionTerms+stats.CategoryTerms {
		t.Error("TotalTerms is not the sum of the per-field term counts")
	}
}
