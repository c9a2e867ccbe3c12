package pricecheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"poporingbot/catalog"
	"poporingbot/domain/entities"
	"poporingbot/domain/testhelpers"
	"poporingbot/events"
	"poporingbot/poporing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2019, 1, 28, 12, 0, 0, 0, time.UTC)

func newTestFeature(t *testing.T) (*Feature, *testhelpers.RecordingSender, *testhelpers.MockPriceFetcher, *testhelpers.RecordingPublisher) {
	t.Helper()

	c := catalog.New([]entities.Item{
		{Name: "red_potion_box", DisplayName: "Red Potion Box"},
		{Name: "red_potion", DisplayName: "Red Potion", ImageURL: "red_potion.png"},
		{Name: "jellopy", DisplayName: "Jellopy", AltDisplayNames: []string{"Jelly"}},
	})

	sender := &testhelpers.RecordingSender{}
	prices := &testhelpers.MockPriceFetcher{}
	publisher := &testhelpers.RecordingPublisher{}

	f := NewFeature(sender, catalog.NewResolver(c), prices, publisher, nil)
	f.now = func() time.Time { return fixedNow }

	return f, sender, prices, publisher
}

func TestLookup_Found(t *testing.T) {
	t.Parallel()

	f, sender, prices, publisher := newTestFeature(t)
	prices.On("FetchLatestPrice", mock.Anything, entities.RegionSEA, "red_potion").Return(entities.PriceData{
		Price:     100,
		Volume:    50,
		Timestamp: float64(fixedNow.Add(-3 * time.Minute).Unix()),
	}, nil)

	f.Lookup(context.Background(), Request{ChannelID: "c1", GuildID: "g1", Region: entities.RegionSEA, Query: "red potion"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	embed := sent[0].Embed
	require.NotNil(t, embed)

	assert.Equal(t, "c1", sent[0].ChannelID)
	assert.Contains(t, embed.Description, "Price: **100** z")
	assert.Contains(t, embed.Description, "Volume: **50** ea")
	assert.Equal(t, "Price: **100** z\nVolume: **50** ea\n\nLast Update: 3 minutes ago", embed.Description)
	assert.Equal(t, "[SEA] Red Potion", embed.Author.Name)
	assert.Equal(t, "https://poporing.life/?search=:red_potion", embed.Author.URL)
	assert.Equal(t, "https://static.poporing.life/items/red_potion.png", embed.Thumbnail.URL)

	published := publisher.Events()
	require.Len(t, published, 1)
	event, ok := published[0].(events.PriceLookupEvent)
	require.True(t, ok)
	assert.Equal(t, events.OutcomeFound, event.Outcome)
	assert.Equal(t, "red_potion", event.ItemName)
	assert.Equal(t, string(catalog.MatchSubstring), event.MatchKind)
	assert.Equal(t, float64(100), event.Price)

	prices.AssertExpectations(t)
}

func TestLookup_GlobalAuthorLink(t *testing.T) {
	t.Parallel()

	f, sender, prices, _ := newTestFeature(t)
	prices.On("FetchLatestPrice", mock.Anything, entities.RegionGlobal, "jellopy").Return(entities.PriceData{
		Price:     1234567,
		Volume:    -1,
		Timestamp: float64(fixedNow.Unix()),
	}, nil)

	f.Lookup(context.Background(), Request{ChannelID: "c1", Region: entities.RegionGlobal, Query: ":jellopy"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Embed)
	assert.Equal(t, "[Global] Jellopy", sent[0].Embed.Author.Name)
	assert.Equal(t, "https://global.poporing.life/?search=:jellopy", sent[0].Embed.Author.URL)
	assert.Equal(t, entities.PlaceholderImageURL, sent[0].Embed.Thumbnail.URL)
	assert.Contains(t, sent[0].Embed.Description, "Price: **1,234,567** z\nVolume: **Unknown** ea")
}

func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	f, sender, prices, publisher := newTestFeature(t)

	f.Lookup(context.Background(), Request{ChannelID: "c1", Region: entities.RegionSEA, Query: "Qwqwqw"})

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Qwqwqw not found!", sent[0].Content)
	prices.AssertNotCalled(t, "FetchLatestPrice", mock.Anything, mock.Anything, mock.Anything)

	published := publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.OutcomeNotFound, published[0].(events.PriceLookupEvent).Outcome)
}

func TestLookup_ServerError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"upstream failure", poporing.ErrUpstream},
		{"malformed body", poporing.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, sender, prices, publisher := newTestFeature(t)
			prices.On("FetchLatestPrice", mock.Anything, entities.RegionGlobal, "red_potion").
				Return(entities.PriceData{}, errors.Join(tt.err, errors.New("status 500")))

			f.Lookup(context.Background(), Request{ChannelID: "c1", Region: entities.RegionGlobal, Query: "red potion"})

			sent := sender.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, "[Global] Red Potion / Server Error", sent[0].Content)

			published := publisher.Events()
			require.Len(t, published, 1)
			assert.Equal(t, events.OutcomeUpstreamError, published[0].(events.PriceLookupEvent).Outcome)
		})
	}
}

func TestSummarize(t *testing.T) {
	ts := float64(fixedNow.Add(-2 * time.Hour).Unix())
	lastKnown := float64(fixedNow.Add(-72 * time.Hour).Unix())

	tests := []struct {
		name string
		data entities.PriceData
		want priceSummary
	}{
		{
			name: "no data",
			data: entities.PriceData{},
			want: priceSummary{Price: "Unknown", Volume: "Unknown", LastUpdate: "-"},
		},
		{
			name: "current price",
			data: entities.PriceData{Price: 15000, Volume: 1200, Timestamp: ts},
			want: priceSummary{Price: "15,000", Volume: "1,200", LastUpdate: "2 hours ago"},
		},
		{
			name: "stale price uses last known",
			data: entities.PriceData{Volume: 0, Timestamp: ts, LastKnownPrice: 9000, LastKnownTimestamp: lastKnown},
			want: priceSummary{Price: "9,000", Volume: "0", LastUpdate: "2 hours ago", Footnote: "Last Price from: 3 days ago"},
		},
		{
			name: "no price at all",
			data: entities.PriceData{Timestamp: ts},
			want: priceSummary{Price: "Unknown", Volume: "0", LastUpdate: "2 hours ago"},
		},
		{
			name: "negative volume",
			data: entities.PriceData{Price: 10, Volume: -1, Timestamp: ts},
			want: priceSummary{Price: "10", Volume: "Unknown", LastUpdate: "2 hours ago"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summarize(tt.data, fixedNow))
		})
	}
}

func TestDescription_Footnote(t *testing.T) {
	s := priceSummary{Price: "9,000", Volume: "0", LastUpdate: "2 hours ago", Footnote: "Last Price from: 3 days ago"}

	assert.Equal(t, "Price: **9,000** z\nVolume: **0** ea\n\nLast Update: 2 hours ago\nLast Price from: 3 days ago", s.description())
	assert.Equal(t, "[SEA] Red Potion / Price = 9,000 / Volume = 0 / Last Update 2 hours ago / Last Price from: 3 days ago",
		s.logLine(entities.RegionSEA, entities.Item{DisplayName: "Red Potion"}))
}
