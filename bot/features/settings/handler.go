package settings

import (
	"context"
	"fmt"
	"strings"

	"poporingbot/bot/common"
	"poporingbot/domain/entities"
	"poporingbot/events"

	log "github.com/sirupsen/logrus"
)

// HelpText lists the available subcommands
const HelpText = "**cmd/channel=global** Set default server for this channel to Global Server\n" +
	"**cmd/channel=sea** Set default server for this channel to SEA Server\n" +
	"**cmd/default=global** Set default server for this discord to Global Server\n" +
	"**cmd/default=sea** Set default server for this discord to SEA Server\n"

const (
	scopeChannel = "channel"
	scopeGuild   = "guild"
)

type subcommandFunc func(ctx context.Context, req Request) error

func (f *Feature) buildSubcommands() map[string]subcommandFunc {
	return map[string]subcommandFunc{
		"channel=global": f.setChannel(entities.RegionGlobal),
		"channel=sea":    f.setChannel(entities.RegionSEA),
		"default=global": f.setGuild(entities.RegionGlobal),
		"default=sea":    f.setGuild(entities.RegionSEA),
		"help":           f.help,
	}
}

// Run executes the named subcommand. Names match exactly, including case.
// Unknown names return ErrUnrecognizedCommand
// without replying; every other failure is replied to in the channel.
func (f *Feature) Run(ctx context.Context, req Request) error {
	run, ok := f.subcommands[strings.TrimSpace(req.Command)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnrecognizedCommand, req.Command)
	}

	if err := run(ctx, req); err != nil {
		common.HandleError(ctx, f.sender, req.ChannelID, err)
	}
	return nil
}

func (f *Feature) setChannel(region entities.Region) subcommandFunc {
	return func(ctx context.Context, req Request) error {
		if err := f.preferences.SetChannelDefault(ctx, req.ChannelID, region); err != nil {
			return common.NewSystemError(err, "Failed to set channel default")
		}

		f.changed(scopeChannel, req.ChannelID, region)
		common.SendText(ctx, f.sender, req.ChannelID, "Default Server for this Channel set to "+region.Label())
		return nil
	}
}

func (f *Feature) setGuild(region entities.Region) subcommandFunc {
	return func(ctx context.Context, req Request) error {
		if req.GuildID == "" {
			return common.NewUserError("Discord defaults can only be set inside a Discord server", "Guild default requested outside a guild")
		}

		if err := f.preferences.SetGuildDefault(ctx, req.GuildID, region); err != nil {
			return common.NewSystemError(err, "Failed to set guild default")
		}

		f.changed(scopeGuild, req.GuildID, region)
		common.SendText(ctx, f.sender, req.ChannelID, "Default Server for this Discord set to "+region.Label())
		return nil
	}
}

func (f *Feature) help(ctx context.Context, req Request) error {
	common.SendText(ctx, f.sender, req.ChannelID, HelpText)
	return nil
}

// changed logs, counts and publishes a stored preference
func (f *Feature) changed(scope, scopeID string, region entities.Region) {
	log.WithFields(log.Fields{
		"scope":   scope,
		"scopeID": scopeID,
		"region":  region,
	}).Info("Default server updated")

	f.metrics.RecordPreferenceChange(scope, string(region))

	if f.publisher == nil {
		return
	}
	event := events.PreferenceChangedEvent{Scope: scope, ScopeID: scopeID, Region: string(region)}
	if err := f.publisher.Publish(event); err != nil {
		log.WithError(err).Warn("Failed to publish preference changed event")
	}
}
