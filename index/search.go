package index

import (
	"sort"
	"strings"

	"github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/internal/tokenizer"
	"github.com/charisk/newswire/services"
)

// Field weights for per-term match counts, and the mutually exclusive
// exact-substring bonuses applied in title > description > category order.
const (
	titleWeight       = 3.0
	descriptionWeight = 1.0
	categoryWeight    = 0.5

	titleBonus       = 2.0
	descriptionBonus = 1.0
	categoryBonus    = 0.5
)

const defaultLimit = 10

// candidate accumulates per-field term-match counts for one news item
// while a query runs. Discarded once the response is built.
type candidate struct {
	id                 int64
	titleMatches       int
	descriptionMatches int
	categoryMatches    int
	totalScore         float64
}

// Search tokenizes the query, walks the posting lists of every term across
// all three field indexes, and returns at most limit (id, score) pairs
// ranked by weighted relevance. An empty or fully-filtered query returns an
// empty result, never an error; a query against an uninitialized index
// returns errors.ErrIndexNotReady so callers know to use the fallback
// matcher instead of reading "no results".
func (ix *Index) Search(query string, limit int) ([]services.ScoredID, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if !ix.initialized {
		return nil, errors.ErrIndexNotReady
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if strings.TrimSpace(query) == "" {
		return []services.ScoredID{}, nil
	}

	terms := tokenizer.Normalize(query)
	if len(terms) == 0 {
		return []services.ScoredID{}, nil
	}

	matches := make(map[int64]*candidate)
	order := make([]int64, 0)

	// Ties are broken by first-encounter order during term iteration, so
	// posting sets are walked in ascending ID order to keep that order
	// deterministic across runs.
	touch := func(id int64) *candidate {
		c, ok := matches[id]
		if !ok {
			c = &candidate{id: id}
			matches[id] = c
			order = append(order, id)
		}
		return c
	}

	for _, term := range terms {
		for _, id := range sortedIDs(ix.title[term]) {
			touch(id).titleMatches++
		}
		for _, id := range sortedIDs(ix.description[term]) {
			touch(id).descriptionMatches++
		}
		for _, id := range sortedIDs(ix.category[term]) {
			touch(id).categoryMatches++
		}
	}

	queryLower := strings.ToLower(query)
	ranked := make([]*candidate, 0, len(order))
	for _, id := range order {
		c := matches[id]
		c.totalScore = float64(c.titleMatches)*titleWeight +
			float64(c.descriptionMatches)*descriptionWeight +
			float64(c.categoryMatches)*categoryWeight

		// Exact-substring bonus against this candidate's own cached text,
		// first matching field wins.
		doc := ix.docs[id]
		switch {
		case strings.Contains(strings.ToLower(doc.Title), queryLower):
			c.totalScore += titleBonus
		case strings.Contains(strings.ToLower(doc.Description), queryLower):
			c.totalScore += descriptionBonus
		case strings.Contains(strings.ToLower(doc.Category), queryLower):
			c.totalScore += categoryBonus
		}

		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].totalScore > ranked[j].totalScore
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]services.ScoredID, len(ranked))
	for i, c := range ranked {
		results[i] = services.ScoredID{ID: c.id, Score: c.totalScore}
	}
	return results, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
