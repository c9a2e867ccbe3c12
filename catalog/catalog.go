// Package catalog holds the immutable list of tradable items and resolves
// user-typed queries to a single item.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"poporingbot/domain/entities"
	"poporingbot/fuzzy"

	log "github.com/sirupsen/logrus"
)

// ErrCatalogLoad is returned when the item list cannot be fetched or is unusable
var ErrCatalogLoad = errors.New("catalog load failed")

// ItemFetcher retrieves the raw item list from the upstream API
type ItemFetcher interface {
	FetchItemList(ctx context.Context) ([]entities.Item, error)
}

// Catalog is a read-only snapshot of all items, ordered by display name length.
// A Catalog is never modified after New returns and may be shared between goroutines.
type Catalog struct {
	items     []entities.Item
	byName    map[string]int
	whole     *fuzzy.Searcher
	tokenized *fuzzy.Searcher
}

// Load fetches the item list and builds a catalog from it
func Load(ctx context.Context, fetcher ItemFetcher) (*Catalog, error) {
	items, err := fetcher.FetchItemList(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogLoad, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: item list is empty", ErrCatalogLoad)
	}
	return New(items), nil
}

// New builds a catalog from raw items. Items with a duplicate or empty name are dropped.
func New(raw []entities.Item) *Catalog {
	items := make([]entities.Item, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, item := range raw {
		if item.Name == "" {
			log.WithField("display_name", item.DisplayName).Warn("Skipping catalog item without a name")
			continue
		}
		if _, dup := seen[item.Name]; dup {
			log.WithField("name", item.Name).Warn("Skipping duplicate catalog item")
			continue
		}
		seen[item.Name] = struct{}{}

		item.AltDisplayNames = append([]string(nil), item.AltDisplayNames...)
		item.DisplayNameCombined = item.CombineDisplayNames()
		items = append(items, item)
	}

	// Shorter display names first so the most specific item wins substring ties
	sort.SliceStable(items, func(i, j int) bool {
		return utf8.RuneCountInString(items[i].DisplayName) < utf8.RuneCountInString(items[j].DisplayName)
	})

	byName := make(map[string]int, len(items))
	docs := make([]fuzzy.Document, len(items))
	for i, item := range items {
		byName[item.Name] = i
		docs[i] = fuzzy.Document{
			{Key: "name", Values: []string{item.Name}},
			{Key: "display_name", Values: []string{item.DisplayName}},
			{Key: "alt_display_name_list", Values: item.AltDisplayNames},
		}
	}

	return &Catalog{
		items:     items,
		byName:    byName,
		whole:     fuzzy.NewSearcher(docs, WholeQueryOptions()),
		tokenized: fuzzy.NewSearcher(docs, TokenizedQueryOptions()),
	}
}

// WholeQueryOptions are used for single-word queries
func WholeQueryOptions() fuzzy.Options {
	opts := fuzzy.DefaultOptions()
	opts.MatchAllTokens = true
	return opts
}

// TokenizedQueryOptions are used for queries containing a space
func TokenizedQueryOptions() fuzzy.Options {
	opts := fuzzy.DefaultOptions()
	opts.Tokenize = true
	opts.MatchAllTokens = true
	opts.Distance = 20
	return opts
}

// Len returns the number of items in the catalog
func (c *Catalog) Len() int {
	return len(c.items)
}

// ByName looks up an item by its canonical name
func (c *Catalog) ByName(name string) (entities.Item, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return entities.Item{}, false
	}
	return c.items[idx], true
}
