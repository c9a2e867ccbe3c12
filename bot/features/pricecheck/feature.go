package pricecheck

import (
	"time"

	"poporingbot/bot/common"
	"poporingbot/catalog"
	"poporingbot/domain/entities"
	"poporingbot/domain/interfaces"
	"poporingbot/infrastructure/observability"
)

// Feature answers item queries with the latest market price
type Feature struct {
	sender    common.MessageSender
	resolver  *catalog.Resolver
	prices    interfaces.PriceFetcher
	publisher interfaces.EventPublisher
	metrics   *observability.MetricsProvider
	now       func() time.Time
}

// NewFeature creates a new price check feature instance.
// metrics may be nil when metrics are disabled.
func NewFeature(
	sender common.MessageSender,
	resolver *catalog.Resolver,
	prices interfaces.PriceFetcher,
	publisher interfaces.EventPublisher,
	metrics *observability.MetricsProvider,
) *Feature {
	return &Feature{
		sender:    sender,
		resolver:  resolver,
		prices:    prices,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Request is a single item query already routed to a region
type Request struct {
	ChannelID string
	GuildID   string
	Region    entities.Region
	Query     string
}
