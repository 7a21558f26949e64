package index

import (
	"context"
	"errors"
	"math"
	"testing"

	newserrors "github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
)

func readyIndex(t *testing.T, items ...model.News) *Index {
	t.Helper()
	ix := New()
	loader := LoaderFunc(func(ctx context.Context) ([]model.News, error) {
		return items, nil
	})
	if err := ix.Initialize(context.Background(), loader); err != nil {
		t.Fatalf("failed to initialize index: %v", err)
	}
	return ix
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSearchNotReady(t *testing.T) {
	ix := New()
	_, err := ix.Search("election", 10)
	if !errors.Is(err, newserrors.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady before initialization, got %v", err)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ix := readyIndex(t, testNews(1, "Election results", "", ""))

	for _, query := range []string{"", "   ", "\t\n", "a of by", "!!??"} {
		results, err := ix.Search(query, 10)
		if err != nil {
			t.Fatalf("Search(%q) returned error: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("Search(%q) = %v, want empty", query, results)
		}
	}
}

func TestSearchUnmatchedQuery(t *testing.T) {
	ix := readyIndex(t, testNews(1, "Election results", "", ""))

	results, err := ix.Search("xyzzyunmatched", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	ix := readyIndex(t)

	results, err := ix.Search("election", 10)
	if err != nil {
		t.Fatalf("query against an empty initialized index must not fail: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %v", results)
	}
}

func TestSearchElectionEuropeRanking(t *testing.T) {
	ix := readyIndex(t,
		testNews(1, "Election results in Europe", "filler text here", "general"),
		testNews(2, "Football match highlights", "filler text here", "general"),
		testNews(3, "European election fraud claims", "filler text here", "general"),
	)

	results, err := ix.Search("election europe", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d: %v", len(results), results)
	}

	// doc1 matches both terms in its title (6.0); doc3 only "election"
	// (3.0, "european" is a different term); doc2 never surfaces.
	if results[0].ID != 1 || results[1].ID != 3 {
		t.Errorf("ranking = [%d, %d], want [1, 3]", results[0].ID, results[1].ID)
	}
	if !almostEqual(results[0].Score, 6.0) {
		t.Errorf("doc1 score = %v, want 6.0", results[0].Score)
	}
	if !almostEqual(results[1].Score, 3.0) {
		t.Errorf("doc3 score = %v, want 3.0", results[1].Score)
	}
}

func TestSearchFieldWeights(t *testing.T) {
	ix := readyIndex(t,
		testNews(1, "Economy update", "", ""),
		testNews(2, "Morning briefing", "economy shrinks again", ""),
		testNews(3, "Evening briefing", "", "economy"),
	)

	results, err := ix.Search("economy", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(results))
	}

	// Title match 3.0 + title substring bonus 2.0; description 1.0 + 1.0;
	// category 0.5 + 0.5.
	want := []struct {
		id    int64
		score float64
	}{{1, 5.0}, {2, 2.0}, {3, 1.0}}
	for i, w := range want {
		if results[i].ID != w.id || !almostEqual(results[i].Score, w.score) {
			t.Errorf("results[%d] = (%d, %v), want (%d, %v)",
				i, results[i].ID, results[i].Score, w.id, w.score)
		}
	}
}

func TestSearchExactSubstringBonusIsExclusive(t *testing.T) {
	// Query appears verbatim in both title and description; only the
	// title bonus may apply.
	ix := readyIndex(t,
		testNews(1, "Storm warning", "Storm warning for the coast", ""),
	)

	results, err := ix.Search("storm warning", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(results))
	}

	// Two title term matches (6.0) + two description term matches (2.0)
	// + title substring bonus only (2.0).
	if !almostEqual(results[0].Score, 10.0) {
		t.Errorf("score = %v, want 10.0", results[0].Score)
	}
}

func TestSearchAccumulatesAcrossQueryTerms(t *testing.T) {
	ix := readyIndex(t,
		testNews(1, "Election fraud claims spread", "", ""),
	)

	one, err := ix.Search("election", 10)
	if err != nil {
		t.Fatal(err)
	}
	two, err := ix.Search("election fraud", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !(two[0].Score > one[0].Score) {
		t.Errorf("two-term score %v should exceed one-term score %v", two[0].Score, one[0].Score)
	}
}

func TestSearchLimitAndOrdering(t *testing.T) {
	items := []model.News{
		testNews(1, "Budget vote", "", ""),
		testNews(2, "Budget vote delayed", "", ""),
		testNews(3, "Budget vote delayed again today", "budget vote", ""),
		testNews(4, "Weather report", "budget vote mentioned", ""),
		testNews(5, "Budget", "", "vote"),
	}
	ix := readyIndex(t, items...)

	for _, limit := range []int{1, 2, 3, 10} {
		results, err := ix.Search("budget vote", limit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) > limit {
			t.Errorf("limit %d exceeded: got %d results", limit, len(results))
		}
		for i := 1; i < len(results); i++ {
			if results[i].Score > results[i-1].Score {
				t.Errorf("results not sorted by non-increasing score: %v", results)
			}
		}
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	items := make([]model.News, 0, 15)
	for i := int64(1); i <= 15; i++ {
		items = append(items, testNews(i, "Election update", "", ""))
	}
	ix := readyIndex(t, items...)

	results, err := ix.Search("election", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != defaultLimit {
		t.Errorf("expected default limit of %d results, got %d", defaultLimit, len(results))
	}
}

func TestSearchTieBreakIsFirstEncounterOrder(t *testing.T) {
	// Identical titles produce identical scores; ties keep the ascending-ID
	// encounter order of the posting walk.
	ix := readyIndex(t,
		testNews(3, "Election update", "", ""),
		testNews(1, "Election update", "", ""),
		testNews(2, "Election update", "", ""),
	)

	results, err := ix.Search("election", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %d, want %d", i, results[i].ID, want)
		}
	}
}
