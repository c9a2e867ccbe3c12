package fuzzy

import (
	"math"
	"regexp"
	"strings"
)

// MatchResult is the outcome of matching one pattern against one text
type MatchResult struct {
	IsMatch bool
	// Score is 0 for an exact match and approaches 1 for no similarity
	Score float64
	// Indices holds inclusive [start, end] rune ranges that matched pattern characters
	Indices [][2]int
}

// Pattern is a compiled Bitap pattern. It is immutable and safe for concurrent use.
type Pattern struct {
	pattern  []rune
	alphabet map[rune]int
	long     *regexp.Regexp
	opts     Options
}

// NewPattern compiles pattern for repeated searches. Matching is case-insensitive.
func NewPattern(pattern string, opts Options) *Pattern {
	p := &Pattern{
		pattern: []rune(strings.ToLower(pattern)),
		opts:    opts,
	}

	if len(p.pattern) <= opts.MaxPatternLength {
		p.alphabet = make(map[rune]int, len(p.pattern))
		n := len(p.pattern)
		for i, r := range p.pattern {
			p.alphabet[r] |= 1 << (n - i - 1)
		}
		return p
	}

	// Patterns longer than a machine word fall back to matching any of their words
	words := strings.Fields(string(p.pattern))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	if len(words) > 0 {
		p.long = regexp.MustCompile(strings.Join(words, "|"))
	}
	return p
}

// Search scores text against the pattern
func (p *Pattern) Search(text string) MatchResult {
	t := []rune(strings.ToLower(text))

	if string(t) == string(p.pattern) {
		return MatchResult{IsMatch: true, Score: 0, Indices: [][2]int{{0, len(t) - 1}}}
	}
	if len(p.pattern) == 0 {
		return MatchResult{Score: 1}
	}
	if len(p.pattern) > p.opts.MaxPatternLength {
		return p.searchLong(string(t))
	}
	return p.bitap(t)
}

func (p *Pattern) searchLong(text string) MatchResult {
	if p.long == nil {
		return MatchResult{Score: 1}
	}
	loc := p.long.FindStringIndex(text)
	if loc == nil {
		return MatchResult{Score: 1}
	}
	start := len([]rune(text[:loc[0]]))
	end := start + len([]rune(text[loc[0]:loc[1]])) - 1
	return MatchResult{IsMatch: true, Score: 0.5, Indices: [][2]int{{start, end}}}
}

func (p *Pattern) bitap(text []rune) MatchResult {
	patternLen := len(p.pattern)
	textLen := len(text)
	expected := p.opts.Location
	threshold := p.opts.Threshold
	matchMask := make([]bool, textLen)

	// An exact occurrence near the expected location tightens the threshold
	if loc := indexRunes(text, p.pattern, expected); loc != -1 {
		threshold = math.Min(p.score(0, loc), threshold)
		if loc = lastIndexRunes(text, p.pattern, expected+patternLen); loc != -1 {
			threshold = math.Min(p.score(0, loc), threshold)
		}
	}

	bestLocation := -1
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := 1 << (patternLen - 1)
	var lastBitArr []int

	for i := 0; i < patternLen; i++ {
		// Binary search for how far from the expected location we can stray at this error level
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if p.score(i, expected+binMid) <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expected-binMid+1)
		finish := min(expected+binMid, textLen) + patternLen
		if p.opts.FindAllMatches {
			finish = textLen
		}

		bitArr := make([]int, finish+2)
		bitArr[finish+1] = (1 << i) - 1

		for j := finish; j >= start; j-- {
			loc := j - 1
			charMatch := 0
			if loc < textLen {
				charMatch = p.alphabet[text[loc]]
				if charMatch != 0 {
					matchMask[loc] = true
				}
			}

			bitArr[j] = ((bitArr[j+1] << 1) | 1) & charMatch
			if i != 0 {
				bitArr[j] |= ((at(lastBitArr, j+1) | at(lastBitArr, j)) << 1) | 1 | at(lastBitArr, j+1)
			}

			if bitArr[j]&mask != 0 {
				finalScore = p.score(i, loc)
				if finalScore <= threshold {
					threshold = finalScore
					bestLocation = loc
					if bestLocation <= expected {
						break
					}
					start = max(1, 2*expected-bestLocation)
				}
			}
		}

		// No hope for a better match at a higher error level
		if p.score(i+1, expected) > threshold {
			break
		}
		lastBitArr = bitArr
	}

	if finalScore == 0 {
		finalScore = 0.001
	}
	return MatchResult{
		IsMatch: bestLocation >= 0,
		Score:   finalScore,
		Indices: matchedIndices(matchMask, p.opts.MinMatchCharLength),
	}
}

// score weighs the error count against the distance from the expected location
func (p *Pattern) score(errors, location int) float64 {
	accuracy := float64(errors) / float64(len(p.pattern))
	proximity := location - p.opts.Location
	if proximity < 0 {
		proximity = -proximity
	}
	if p.opts.Distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(p.opts.Distance)
}

func at(arr []int, i int) int {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}

func indexRunes(text, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for k := from; k+len(pattern) <= len(text); k++ {
		if equalRunes(text[k:k+len(pattern)], pattern) {
			return k
		}
	}
	return -1
}

func lastIndexRunes(text, pattern []rune, from int) int {
	k := min(from, len(text)-len(pattern))
	for ; k >= 0; k-- {
		if equalRunes(text[k:k+len(pattern)], pattern) {
			return k
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func matchedIndices(mask []bool, minLen int) [][2]int {
	var out [][2]int
	start := -1
	for i, m := range mask {
		switch {
		case m && start == -1:
			start = i
		case !m && start != -1:
			if i-start >= minLen {
				out = append(out, [2]int{start, i - 1})
			}
			start = -1
		}
	}
	if start != -1 && len(mask)-start >= minLen {
		out = append(out, [2]int{start, len(mask) - 1})
	}
	return out
}
