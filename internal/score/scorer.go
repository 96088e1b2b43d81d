// Package score defines the relevance-scoring capability consumed by the
// search engine, plus the built-in deterministic lexical scorer used when
// no external similarity provider is wired in.
package score

import (
	"context"
	"strings"
)

// Scorer rates how related a piece of text is to a topic. Higher is more
// relevant; implementations must be deterministic for identical inputs
// within one search run. Scores are expected in [0, 1].
type Scorer interface {
	Score(ctx context.Context, text, topic string) (float64, error)
}

// Neutral is the fallback score applied when the scoring capability fails
// for an edge. Relevance is an optimization, not a correctness requirement,
// so a failing scorer never aborts a search.
const Neutral = 0.5

// LexicalScorer is a pure token-overlap scorer. It measures the fraction of
// topic tokens that appear in (or prefix-match tokens of) the text. An
// empty topic scores everything neutrally, which turns relevance pruning
// into a no-op.
type LexicalScorer struct{}

// NewLexicalScorer returns the built-in scorer.
func NewLexicalScorer() LexicalScorer {
	return LexicalScorer{}
}

// Score implements Scorer. Never returns an error.
func (LexicalScorer) Score(_ context.Context, text, topic string) (float64, error) {
	topicTokens := tokenize(topic)
	if len(topicTokens) == 0 {
		return Neutral, nil
	}
	textTokens := tokenize(text)
	if len(textTokens) == 0 {
		return 0, nil
	}

	matched := 0
	for _, want := range topicTokens {
		for _, have := range textTokens {
			if have == want || (len(want) >= 4 && strings.HasPrefix(have, want)) || (len(have) >= 4 && strings.HasPrefix(want, have)) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(topicTokens)), nil
}

// tokenize lowercases and splits on any non-alphanumeric rune, so IRI local
// names like "authoredBy" and phrases compare on the same footing.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
