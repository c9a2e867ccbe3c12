package bot

import (
	"context"
	"errors"

	"poporingbot/bot/features/pricecheck"
	"poporingbot/bot/features/settings"
	"poporingbot/domain/entities"
	"poporingbot/domain/interfaces"
	"poporingbot/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// ErrUnrecognizedCommand is returned for cmd queries naming no known subcommand
var ErrUnrecognizedCommand = settings.ErrUnrecognizedCommand

// Message is the part of a Discord message the router needs
type Message struct {
	ChannelID string
	GuildID   string
	Content   string
}

// IsDM reports whether the message came from a direct message channel
func (m Message) IsDM() bool {
	return m.GuildID == ""
}

// Router turns messages into price lookups or settings subcommands
type Router struct {
	prices      *pricecheck.Feature
	settings    *settings.Feature
	preferences interfaces.PreferenceService
	throttle    *ChannelThrottle
	metrics     *observability.MetricsProvider
}

// NewRouter creates a router. throttle and metrics may be nil.
func NewRouter(
	prices *pricecheck.Feature,
	settingsFeature *settings.Feature,
	preferences interfaces.PreferenceService,
	throttle *ChannelThrottle,
	metrics *observability.MetricsProvider,
) *Router {
	return &Router{
		prices:      prices,
		settings:    settingsFeature,
		preferences: preferences,
		throttle:    throttle,
		metrics:     metrics,
	}
}

// Route parses msg, fills in the default server and dispatches it.
// Messages not meant for the bot are dropped silently.
func (r *Router) Route(ctx context.Context, msg Message, botUserID string) {
	parsed, ok := ParseMessage(msg.Content, botUserID, msg.IsDM())
	if !ok {
		return
	}

	server := parsed.Server
	if server == "" {
		server = string(r.defaultRegion(ctx, msg))
	}

	r.dispatch(ctx, msg, server, parsed.Query)
}

// defaultRegion reads the stored preference. A failing store never blocks a lookup.
func (r *Router) defaultRegion(ctx context.Context, msg Message) entities.Region {
	region, err := r.preferences.GetDefault(ctx, msg.ChannelID, msg.GuildID)
	if err != nil {
		log.WithFields(log.Fields{
			"channel": msg.ChannelID,
			"guild":   msg.GuildID,
			"error":   err,
		}).Warn("Failed to read default server, using SEA")
		return entities.DefaultRegion
	}
	return region
}

func (r *Router) dispatch(ctx context.Context, msg Message, server, query string) {
	if server == ServerCommand {
		if !r.wait(ctx, msg.ChannelID) {
			return
		}
		err := r.settings.Run(ctx, settings.Request{
			ChannelID: msg.ChannelID,
			GuildID:   msg.GuildID,
			Command:   query,
		})
		if errors.Is(err, ErrUnrecognizedCommand) {
			log.WithFields(log.Fields{
				"channel": msg.ChannelID,
				"command": query,
			}).Info("Ignoring unrecognized command")
			return
		}
		r.metrics.RecordMessageRead(observability.MessageTypeSubcommand)
		return
	}

	region, ok := entities.ParseRegion(server)
	if !ok {
		log.WithFields(log.Fields{
			"channel": msg.ChannelID,
			"server":  server,
			"query":   query,
		}).Info("Invalid server")
		return
	}

	if !r.wait(ctx, msg.ChannelID) {
		return
	}
	r.metrics.RecordMessageRead(observability.MessageTypeQuery)
	r.prices.Lookup(ctx, pricecheck.Request{
		ChannelID: msg.ChannelID,
		GuildID:   msg.GuildID,
		Region:    region,
		Query:     query,
	})
}

// wait applies the per-channel reply throttle
func (r *Router) wait(ctx context.Context, channelID string) bool {
	if r.throttle == nil {
		return true
	}
	if err := r.throttle.Wait(ctx, channelID); err != nil {
		log.WithFields(log.Fields{
			"channel": channelID,
			"error":   err,
		}).Warn("Dropping reply, channel throttled past deadline")
		return false
	}
	return true
}
