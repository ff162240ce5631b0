package ingest

import (
	"strings"
	"unicode"
)

// Normalizer handles text cleaning and tokenization.
// Output tokens are lowercase, a-z only, with stopwords removed.
type Normalizer struct {
	stopwords map[string]struct{}
}

// NewNormalizer creates a normalizer with the given stopword list.
// A nil list uses the built-in English stopwords.
func NewNormalizer(stopwords []string) *Normalizer {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopwords: stops}
}

// Combine joins a title and summary into one document text.
func Combine(title, summary string) string {
	return strings.TrimSpace(title) + ". " + strings.TrimSpace(summary)
}

// Normalize cleans text into a canonical form: case-folded, stripped to
// the base alphabet, stopwords removed, tokens rejoined with single spaces.
// An empty string is a valid output; callers must filter empty documents
// before embedding. Malformed input never fails, it collapses to "".
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens splits text into normalized tokens, removing stopwords.
// Characters outside a-z and whitespace are stripped in place, so
// "don't" becomes "dont" and "gpt-4" becomes "gpt".
func (n *Normalizer) Tokens(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()
		if n.isStopword(word) {
			return
		}
		tokens = append(tokens, word)
	}

	for _, r := range text {
		lower := unicode.ToLower(r)
		switch {
		case lower >= 'a' && lower <= 'z':
			current.WriteRune(lower)
		case unicode.IsSpace(r):
			flush()
		}
	}
	flush()

	return tokens
}

func (n *Normalizer) isStopword(word string) bool {
	_, ok := n.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list.
func (n *Normalizer) AddStopword(word string) {
	n.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list.
func (n *Normalizer) RemoveStopword(word string) {
	delete(n.stopwords, strings.ToLower(word))
}
