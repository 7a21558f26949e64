// Package fuzzy implements the similarity-ratio fallback search used when
// the inverted index is unavailable, and the near-duplicate check applied
// before news items are persisted.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/charisk/newswire/model"
)

// Field weights and containment bonuses for the fallback ranking. Unlike
// the index's exact-match bonus, these bonuses are additive.
const (
	titleWeight       = 0.50
	descriptionWeight = 0.30
	categoryWeight    = 0.20

	titleBonus       = 0.10
	descriptionBonus = 0.05
	categoryBonus    = 0.03

	// minScore filters out candidates that only survived the substring
	// pre-filter by accident.
	minScore = 0.10
)

// DefaultSimilarityThreshold is the ratio both title and description must
// exceed for two items to count as near-duplicates.
const DefaultSimilarityThreshold = 0.85

const defaultLimit = 10

// Ratio returns a similarity measure in [0, 1] between two strings,
// computed as 2*M/T where M is the total length of the matching blocks
// found by a greedy longest-common-substring recursion and T is the
// combined length of both strings. It is symmetric and 1.0 for identical
// inputs; it is not an edit distance.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingTotal(ra, rb)) / float64(total)
}

// matchingTotal sums the lengths of all matching blocks: the longest match
// of the whole strings, then recursively the longest matches of the pieces
// to its left and right.
func matchingTotal(a, b []rune) int {
	type span struct {
		aLo, aHi, bLo, bHi int
	}

	queue := []span{{0, len(a), 0, len(b)}}
	total := 0
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s.aLo, s.aHi, s.bLo, s.bHi)
		if k == 0 {
			continue
		}
		total += k
		queue = append(queue,
			span{s.aLo, i, s.bLo, j},
			span{i + k, s.aHi, j + k, s.bHi},
		)
	}
	return total
}

// longestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi]. Of equally long matches it returns the one starting earliest
// in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, bestk int) {
	b2j := make(map[rune][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestk
}

// Score computes the weighted similarity of one candidate against the
// lowercased search term.
func Score(termLower string, n model.News) float64 {
	titleText := strings.ToLower(n.Title)
	descText := strings.ToLower(n.Description)
	catText := strings.ToLower(n.Category)

	score := titleWeight*Ratio(termLower, titleText) +
		descriptionWeight*Ratio(termLower, descText) +
		categoryWeight*Ratio(termLower, catText)

	if strings.Contains(titleText, termLower) {
		score += titleBonus
	}
	if strings.Contains(descText, termLower) {
		score += descriptionBonus
	}
	if strings.Contains(catText, termLower) {
		score += categoryBonus
	}
	return score
}

// RankAll scores the candidate set against term and returns the survivors
// in descending score order, truncated to limit. Candidates are expected to
// be pre-filtered by the record store's case-insensitive substring search;
// RankAll itself never fails — the worst case is an empty slice.
func RankAll(term string, candidates []model.News, limit int) []model.News {
	if limit <= 0 {
		limit = defaultLimit
	}
	termLower := strings.ToLower(term)

	type scored struct {
		score float64
		item  model.News
	}
	kept := make([]scored, 0, len(candidates))
	for _, item := range candidates {
		if s := Score(termLower, item); s > minScore {
			kept = append(kept, scored{score: s, item: item})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].score > kept[j].score })

	if len(kept) > limit {
		kept = kept[:limit]
	}
	results := make([]model.News, len(kept))
	for i, s := range kept {
		results[i] = s.item
	}
	return results
}

// IsSimilar reports whether two items are near-duplicates: both the title
// ratio and the description ratio must exceed threshold. A threshold <= 0
// falls back to DefaultSimilarityThreshold.
func IsSimilar(a, b model.News, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	titleRatio := Ratio(strings.ToLower(a.Title), strings.ToLower(b.Title))
	descRatio := Ratio(strings.ToLower(a.Description), strings.ToLower(b.Description))
	return titleRatio > threshold && descRatio > threshold
}
