// Package tokenizer turns raw news text into normalized index terms.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// nonWordRegex matches every rune that is not a letter, digit, or underscore.
var nonWordRegex = regexp.MustCompile(`[^\p{L}\p{N}_]`)

// minTermLength is exclusive: surviving terms are strictly longer than this.
const minTermLength = 2

// Normalize converts a string into the sequence of terms eligible for
// indexing. It lowercases the input, collapses punctuation to whitespace,
// splits on whitespace, and drops short tokens and stop words. The result
// preserves the original token order and multiplicity; callers that need
// set semantics deduplicate on their side.
func Normalize(text string) []string {
	if text == "" {
		return []string{}
	}

	lower := strings.ToLower(text)
	spaced := nonWordRegex.ReplaceAllString(lower, " ")

	words := strings.Fields(spaced)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) <= minTermLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// IsStopWord reports whether the given (already lowercased) token is in the
// stop-word set.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}
