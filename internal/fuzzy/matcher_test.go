package fuzzy

import (
	"math"
	"testing"

	"github.com/charisk/newswire/model"
)

func ratioNear(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "storm warning", "storm warning", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "storm", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"shared block", "abcd", "bcde", 0.75},       // block "bcd", 2*3/8
		{"prefix", "election", "selection", 16.0 / 17.0}, // whole a matches inside b
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if !ratioNear(got, tt.want) {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"storm hits coastal city", "storm warning issued"},
		{"abcd", "bcde"},
		{"election", "selection"},
	}
	for _, p := range pairs {
		if !ratioNear(Ratio(p[0], p[1]), Ratio(p[1], p[0])) {
			t.Errorf("Ratio(%q, %q) is not symmetric", p[0], p[1])
		}
	}
}

func TestRatioCountsAllMatchingBlocks(t *testing.T) {
	// "abxcd" vs "abycd": blocks "ab" and "cd", M=4, T=10.
	if got := Ratio("abxcd", "abycd"); !ratioNear(got, 0.8) {
		t.Errorf("Ratio = %v, want 0.8", got)
	}
}

func TestIsSimilar(t *testing.T) {
	storm := model.News{
		Title:       "Storm hits coastal city",
		Description: "Severe storm causes flooding",
	}
	stormLonger := model.News{
		Title:       "Storm hits coastal city",
		Description: "Severe storm causes flooding and damage",
	}
	election := model.News{
		Title:       "Local election results announced",
		Description: "Vote counting finished overnight",
	}

	// Identical titles, description ratio 2*28/67 ≈ 0.836: above 0.80 but
	// not above the strict default threshold.
	if !IsSimilar(storm, stormLonger, 0.80) {
		t.Error("near-identical items should be similar at threshold 0.80")
	}
	if IsSimilar(storm, election, 0.80) {
		t.Error("unrelated items must not be similar")
	}
	if !IsSimilar(storm, storm, DefaultSimilarityThreshold) {
		t.Error("an item must be similar to itself at the default threshold")
	}
	if IsSimilar(storm, election, 0) {
		t.Error("threshold 0 must fall back to the default, not match everything")
	}
}

func TestIsSimilarRequiresBothFields(t *testing.T) {
	a := model.News{Title: "Storm hits coastal city", Description: "Severe storm causes flooding"}
	sameTitleOnly := model.News{Title: "Storm hits coastal city", Description: "Completely unrelated text about markets"}

	if IsSimilar(a, sameTitleOnly, 0.80) {
		t.Error("matching title alone must not trigger the duplicate check")
	}
}

func TestRankAllUnmatchedTermReturnsEmpty(t *testing.T) {
	candidates := []model.News{
		{ID: 1, Title: "1234567890", Description: "0987654321", Category: "555"},
		{ID: 2, Title: "111", Description: "222", Category: "333"},
	}

	results := RankAll("xyzzyunmatched", candidates, 10)
	if len(results) != 0 {
		t.Errorf("expected empty result, got %v", results)
	}
}

func TestRankAllOrdersByScore(t *testing.T) {
	titleHit := model.News{ID: 1, Title: "storm", Description: "filler", Category: "filler"}
	descHit := model.News{ID: 2, Title: "filler", Description: "storm", Category: "filler"}
	catHit := model.News{ID: 3, Title: "filler", Description: "filler", Category: "storm"}

	results := RankAll("storm", []model.News{catHit, descHit, titleHit}, 10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []int64{1, 2, 3} {
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %d, want %d", i, results[i].ID, want)
		}
	}
}

func TestRankAllBonusesAreAdditive(t *testing.T) {
	everywhere := model.News{ID: 1, Title: "storm alert", Description: "storm coming", Category: "storm"}

	score := Score("storm", everywhere)
	// Ratios alone can't reach the sum of all three bonuses plus the
	// per-field minimums unless every bonus applied.
	ratioPart := titleWeight*Ratio("storm", "storm alert") +
		descriptionWeight*Ratio("storm", "storm coming") +
		categoryWeight*Ratio("storm", "storm")
	wantBonus := titleBonus + descriptionBonus + categoryBonus
	if !ratioNear(score, ratioPart+wantBonus) {
		t.Errorf("score = %v, want ratio part %v plus all bonuses %v", score, ratioPart, wantBonus)
	}
}

func TestRankAllRespectsLimit(t *testing.T) {
	candidates := make([]model.News, 0, 20)
	for i := int64(1); i <= 20; i++ {
		candidates = append(candidates, model.News{ID: i, Title: "storm report", Description: "storm", Category: "weather"})
	}

	results := RankAll("storm", candidates, 5)
	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}

	results = RankAll("storm", candidates, 0)
	if len(results) != defaultLimit {
		t.Errorf("limit 0 should fall back to %d results, got %d", defaultLimit, len(results))
	}
}
