package interfaces

import (
	"context"

	"poporingbot/domain/entities"
)

// PreferenceService resolves and stores the default region per channel and guild
type PreferenceService interface {
	// GetDefault returns the channel preference, else the guild preference, else the default region
	GetDefault(ctx context.Context, channelID, guildID string) (entities.Region, error)

	// SetChannelDefault stores the default region for a channel
	SetChannelDefault(ctx context.Context, channelID string, region entities.Region) error

	// SetGuildDefault stores the default region for a guild
	SetGuildDefault(ctx context.Context, guildID string, region entities.Region) error
}

// PriceFetcher retrieves the latest price of an item in a region
type PriceFetcher interface {
	FetchLatestPrice(ctx context.Context, region entities.Region, name string) (entities.PriceData, error)
}
