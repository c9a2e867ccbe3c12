// Package fuzzy implements approximate string matching with a Bitap scorer and a
// multi-field searcher that ranks documents best-first.
package fuzzy

import (
	"sort"
	"strings"
)

// Options tune the matcher. Scores range from 0 (exact) to 1 (no similarity).
type Options struct {
	// Threshold is the highest score still accepted as a match
	Threshold float64
	// Location is where in the text the pattern is expected to be found
	Location int
	// Distance is how far from Location a match may be before it scores 1
	Distance int
	// MaxPatternLength caps Bitap patterns; longer ones match on any word
	MaxPatternLength int
	// MinMatchCharLength is the shortest run reported in MatchResult.Indices
	MinMatchCharLength int
	// FindAllMatches keeps scanning after a perfect match
	FindAllMatches bool
	// Tokenize also matches each word of the pattern against each word of the text
	Tokenize bool
	// MatchAllTokens requires every pattern word to match some word of a field
	MatchAllTokens bool
}

// DefaultOptions returns whole-string matching options
func DefaultOptions() Options {
	return Options{
		Threshold:          0.6,
		Location:           0,
		Distance:           100,
		MaxPatternLength:   32,
		MinMatchCharLength: 1,
	}
}

// Field is one searchable key of a document. Multi-valued keys hold several values.
type Field struct {
	Key    string
	Values []string
}

// Document is the set of fields searched for one record
type Document []Field

// Result references a matched document by its index
type Result struct {
	Index int
	Score float64
}

// Searcher ranks a fixed list of documents against patterns.
// It holds no mutable state and is safe for concurrent use.
type Searcher struct {
	docs []Document
	opts Options
}

// NewSearcher creates a searcher over docs
func NewSearcher(docs []Document, opts Options) *Searcher {
	return &Searcher{docs: docs, opts: opts}
}

// Search returns all matching documents, best score first. Equal scores keep document order.
func (s *Searcher) Search(pattern string) []Result {
	full := NewPattern(pattern, s.opts)

	var tokens []*Pattern
	if s.opts.Tokenize {
		for _, word := range strings.Fields(pattern) {
			tokens = append(tokens, NewPattern(word, s.opts))
		}
	}

	var results []Result
	for idx, doc := range s.docs {
		score := 1.0
		matched := false
		for _, field := range doc {
			for _, value := range field.Values {
				fieldScore, ok := s.analyze(value, full, tokens)
				if !ok {
					continue
				}
				matched = true
				score *= fieldScore
			}
		}
		if matched {
			results = append(results, Result{Index: idx, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

// analyze scores a single field value; ok is false when the value does not match
func (s *Searcher) analyze(value string, full *Pattern, tokens []*Pattern) (float64, bool) {
	main := full.Search(value)

	exists := false
	average := -1.0
	tokensMatched := 0

	if s.opts.Tokenize {
		words := strings.Fields(value)
		var scores []float64
		for _, token := range tokens {
			hit := false
			for _, word := range words {
				r := token.Search(word)
				if r.IsMatch {
					exists = true
					hit = true
					scores = append(scores, r.Score)
				} else if !s.opts.MatchAllTokens {
					scores = append(scores, 1)
				}
			}
			if hit {
				tokensMatched++
			}
		}
		if len(scores) > 0 {
			sum := 0.0
			for _, sc := range scores {
				sum += sc
			}
			average = sum / float64(len(scores))
		}
	}

	score := main.Score
	if average > -1 {
		score = (score + average) / 2
	}

	allTokens := true
	if s.opts.Tokenize && s.opts.MatchAllTokens {
		allTokens = tokensMatched >= len(tokens)
	}

	if (exists || main.IsMatch) && allTokens {
		return score, true
	}
	return 0, false
}
