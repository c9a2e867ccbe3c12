package catalog

import (
	"errors"
	"strings"

	"poporingbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// ErrNotFound means no item matched the query
var ErrNotFound = errors.New("item not found")

// MatchKind reports which resolution stage produced the item
type MatchKind string

const (
	MatchNone      MatchKind = "none"
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
	MatchFuzzy     MatchKind = "fuzzy"
)

// exactPrefix marks a query as a canonical item name
const exactPrefix = ":"

// Resolver maps free-form queries to catalog items
type Resolver struct {
	catalog *Catalog
}

// NewResolver creates a resolver over an already loaded catalog
func NewResolver(c *Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve finds the best item for query. Stages run in order and the first hit wins:
// exact name (":name"), substring of the combined display names, then fuzzy ranking.
func (r *Resolver) Resolve(query string) (entities.Item, MatchKind, error) {
	lowered := strings.ToLower(strings.TrimSpace(query))
	if lowered == "" {
		return entities.Item{}, MatchNone, ErrNotFound
	}

	if strings.HasPrefix(lowered, exactPrefix) {
		if item, ok := r.exact(lowered); ok {
			return item, MatchExact, nil
		}
		// A missed exact lookup goes straight to fuzzy
		return r.fuzzy(lowered)
	}

	if item, ok := r.substring(lowered); ok {
		return item, MatchSubstring, nil
	}
	return r.fuzzy(lowered)
}

// exact compares the lowered query against canonical names as stored
func (r *Resolver) exact(lowered string) (entities.Item, bool) {
	return r.catalog.ByName(strings.TrimPrefix(lowered, exactPrefix))
}

func (r *Resolver) substring(lowered string) (entities.Item, bool) {
	for _, item := range r.catalog.items {
		if strings.Contains(item.DisplayNameCombined, lowered) {
			return item, true
		}
	}
	return entities.Item{}, false
}

func (r *Resolver) fuzzy(lowered string) (entities.Item, MatchKind, error) {
	searcher := r.catalog.whole
	if strings.Contains(lowered, " ") {
		searcher = r.catalog.tokenized
	}

	results := searcher.Search(lowered)
	if len(results) == 0 {
		return entities.Item{}, MatchNone, ErrNotFound
	}

	best := results[0]
	log.WithFields(log.Fields{
		"query":   lowered,
		"score":   best.Score,
		"matches": len(results),
	}).Debug("Fuzzy match")
	return r.catalog.items[best.Index], MatchFuzzy, nil
}
