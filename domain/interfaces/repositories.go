package interfaces

import (
	"context"

	"poporingbot/events"
)

// KeyValueStore is the persistence contract for server preferences.
// Keys are "c.<channelID>" or "s.<guildID>", values are region names.
type KeyValueStore interface {
	// Get returns the stored value; found is false when the key was never set
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set upserts the value for key. Repeating the same Set is a no-op.
	Set(ctx context.Context, key, value string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
