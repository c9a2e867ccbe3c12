package settings

import (
	"errors"

	"poporingbot/bot/common"
	"poporingbot/domain/interfaces"
	"poporingbot/infrastructure/observability"
)

// ErrUnrecognizedCommand is returned for a cmd query that names no subcommand
var ErrUnrecognizedCommand = errors.New("unrecognized command")

// Feature handles the cmd subcommands that manage default regions
type Feature struct {
	sender      common.MessageSender
	preferences interfaces.PreferenceService
	publisher   interfaces.EventPublisher
	metrics     *observability.MetricsProvider
	subcommands map[string]subcommandFunc
}

// NewFeature creates a new settings feature instance
func NewFeature(
	sender common.MessageSender,
	preferences interfaces.PreferenceService,
	publisher interfaces.EventPublisher,
	metrics *observability.MetricsProvider,
) *Feature {
	f := &Feature{
		sender:      sender,
		preferences: preferences,
		publisher:   publisher,
		metrics:     metrics,
	}
	f.subcommands = f.buildSubcommands()
	return f
}

// Request is a cmd query from a channel
type Request struct {
	ChannelID string
	GuildID   string
	Command   string
}
