package pricecheck

import (
	"context"
	"errors"
	"strings"
	"time"

	"poporingbot/bot/common"
	"poporingbot/catalog"
	"poporingbot/domain/entities"
	"poporingbot/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Lookup resolves the query, fetches the item's latest price in the request region
// and replies in the channel. Every outcome is replied to, logged, counted and
// published as a PriceLookupEvent.
func (f *Feature) Lookup(ctx context.Context, req Request) {
	start := f.now()
	query := strings.TrimSpace(req.Query)

	event := events.PriceLookupEvent{
		Region:    string(req.Region),
		Query:     query,
		ChannelID: req.ChannelID,
		GuildID:   req.GuildID,
	}

	item, kind, err := f.resolver.Resolve(query)
	event.MatchKind = string(kind)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			log.WithError(err).WithField("query", query).Warn("Unexpected resolver error")
		}
		log.WithFields(log.Fields{
			"query":   query,
			"region":  req.Region,
			"channel": req.ChannelID,
		}).Info("Item not found")

		common.SendText(ctx, f.sender, req.ChannelID, notFoundMessage(query))
		f.finish(event, events.OutcomeNotFound, start)
		return
	}
	event.ItemName = item.Name

	data, err := f.fetchPrice(ctx, req.Region, item)
	if err != nil {
		log.WithFields(log.Fields{
			"item":   item.Name,
			"region": req.Region,
			"error":  err,
		}).Warn("Failed to fetch latest price")

		common.SendText(ctx, f.sender, req.ChannelID, serverErrorMessage(req.Region, item))
		f.finish(event, events.OutcomeUpstreamError, start)
		return
	}

	now := f.now()
	log.Info(summarize(data, now).logLine(req.Region, item))

	embed := BuildPriceEmbed(req.Region, item, data, now)
	if _, err := f.sender.ChannelMessageSendEmbed(req.ChannelID, embed, discordgo.WithContext(ctx)); err != nil {
		log.WithFields(log.Fields{
			"channel": req.ChannelID,
			"item":    item.Name,
			"error":   err,
		}).Error("Failed to send price embed")
	}

	event.Price = data.Price
	event.Volume = data.Volume
	f.finish(event, events.OutcomeFound, start)
}

// fetchPrice calls the price API and records its latency
func (f *Feature) fetchPrice(ctx context.Context, region entities.Region, item entities.Item) (entities.PriceData, error) {
	start := f.now()
	data, err := f.prices.FetchLatestPrice(ctx, region, item.Name)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	f.metrics.RecordUpstreamRequest(string(region), outcome, f.now().Sub(start))

	return data, err
}

// finish records and publishes the lookup outcome
func (f *Feature) finish(event events.PriceLookupEvent, outcome events.LookupOutcome, start time.Time) {
	event.Outcome = outcome
	event.LatencyMs = f.now().Sub(start).Milliseconds()

	f.metrics.RecordLookup(event.Region, string(outcome), event.MatchKind)

	if f.publisher == nil {
		return
	}
	if err := f.publisher.Publish(event); err != nil {
		log.WithError(err).Warn("Failed to publish price lookup event")
	}
}
