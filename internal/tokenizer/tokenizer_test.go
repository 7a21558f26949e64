package tokenizer

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"whitespace only", "   \t\n ", []string{}},
		{"simple words", "election results", []string{"election", "results"}},
		{"uppercase input", "ELECTION Results", []string{"election", "results"}},
		{"punctuation collapsed", "breaking: storm hits!", []string{"breaking", "storm", "hits"}},
		{"punctuation keeps word boundaries", "state-of-the-art", []string{"state", "art"}},
		{"short tokens dropped", "go is ok fine", []string{"fine"}},
		{"stop words dropped", "the election and the results", []string{"election", "results"}},
		{"underscore kept", "market_update today", []string{"market_update", "today"}},
		{"digits kept", "covid19 numbers", []string{"covid19", "numbers"}},
		{"duplicates preserved", "storm after storm", []string{"storm", "storm"}},
		{"order preserved", "fraud claims election", []string{"fraud", "claims", "election"}},
		{"only stop words", "the and with about", []string{}},
		{"only punctuation", "!?... --- ###", []string{}},
		{"mixed garbage", "a!! the?? b12..", []string{"b12"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNeverYieldsShortOrStopTokens(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		"Election results in Europe announced during a storm",
		"a b c dd ee fff and the with between among",
		"123 45 6789 under over out off",
	}

	for _, input := range inputs {
		for _, term := range Normalize(input) {
			if len([]rune(term)) <= minTermLength {
				t.Errorf("Normalize(%q) produced short term %q", input, term)
			}
			if IsStopWord(term) {
				t.Errorf("Normalize(%q) produced stop word %q", input, term)
			}
		}
	}
}

func TestIsStopWord(t *testing.T) {
	if !IsStopWord("the") {
		t.Error("expected 'the' to be a stop word")
	}
	if IsStopWord("election") {
		t.Error("did not expect 'election' to be a stop word")
	}
}
