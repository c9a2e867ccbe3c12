package catalog

import (
	"errors"
	"testing"

	"poporingbot/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(New(testItems()))

	tests := []struct {
		name     string
		query    string
		wantName string
		wantKind MatchKind
	}{
		{
			name:     "exact name beats substring",
			query:    ":item_x",
			wantName: "item_x",
			wantKind: MatchExact,
		},
		{
			name:     "exact name ignores case",
			query:    ":RED_POTION",
			wantName: "red_potion",
			wantKind: MatchExact,
		},
		{
			name:     "substring prefers shortest display name",
			query:    "red potion",
			wantName: "red_potion",
			wantKind: MatchSubstring,
		},
		{
			name:     "substring over alternate names",
			query:    "jelly",
			wantName: "jellopy",
			wantKind: MatchSubstring,
		},
		{
			name:     "substring matches longer item when it is the only hit",
			query:    "potion box",
			wantName: "red_potion_box",
			wantKind: MatchSubstring,
		},
		{
			name:     "misspelled single word falls back to fuzzy",
			query:    "jelopy",
			wantName: "jellopy",
			wantKind: MatchFuzzy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, kind, err := r.Resolve(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, item.Name)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestResolver_TokenizedFuzzy(t *testing.T) {
	r := NewResolver(New([]entities.Item{
		{Name: "apple", DisplayName: "Apple"},
		{Name: "jellopy", DisplayName: "Jellopy"},
		{Name: "red_potion", DisplayName: "Red Potion"},
	}))

	item, kind, err := r.Resolve("potoin red")
	require.NoError(t, err)
	assert.Equal(t, "red_potion", item.Name)
	assert.Equal(t, MatchFuzzy, kind)
}

func TestResolver_NotFound(t *testing.T) {
	r := NewResolver(New(testItems()))

	for _, query := range []string{"qwqwqw", "", "   "} {
		_, kind, err := r.Resolve(query)
		assert.True(t, errors.Is(err, ErrNotFound), query)
		assert.Equal(t, MatchNone, kind)
	}
}

func TestResolver_ExactMissFallsBackToFuzzy(t *testing.T) {
	r := NewResolver(New(testItems()))

	_, kind, err := r.Resolve(":qwqwqw")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, MatchNone, kind)
}

func TestResolver_ExactComparesCanonicalNameAsStored(t *testing.T) {
	r := NewResolver(New([]entities.Item{
		{Name: "Mixed_Case", DisplayName: "Mixed Case Card"},
		{Name: "red_potion", DisplayName: "Red Potion"},
	}))

	_, kind, _ := r.Resolve(":mixed_case")
	assert.NotEqual(t, MatchExact, kind)

	item, kind, err := r.Resolve(":Red_Potion")
	require.NoError(t, err)
	assert.Equal(t, MatchExact, kind)
	assert.Equal(t, "red_potion", item.Name)
}
