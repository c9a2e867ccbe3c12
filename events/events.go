package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePriceLookup       EventType = "price_lookup"
	EventTypePreferenceChanged EventType = "preference_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LookupOutcome describes how a price lookup ended
type LookupOutcome string

const (
	OutcomeFound         LookupOutcome = "found"
	OutcomeNotFound      LookupOutcome = "not_found"
	OutcomeUpstreamError LookupOutcome = "upstream_error"
)

// PriceLookupEvent is emitted after every item query, successful or not
type PriceLookupEvent struct {
	Region    string        `json:"region"`
	Query     string        `json:"query"`
	ItemName  string        `json:"item_name,omitempty"`
	MatchKind string        `json:"match_kind"`
	Outcome   LookupOutcome `json:"outcome"`
	Price     float64       `json:"price,omitempty"`
	Volume    float64       `json:"volume,omitempty"`
	ChannelID string        `json:"channel_id"`
	GuildID   string        `json:"guild_id,omitempty"`
	LatencyMs int64         `json:"latency_ms"`
}

func (e PriceLookupEvent) Type() EventType {
	return EventTypePriceLookup
}

// PreferenceChangedEvent is emitted when a channel or guild default region is set
type PreferenceChangedEvent struct {
	Scope   string `json:"scope"`
	ScopeID string `json:"scope_id"`
	Region  string `json:"region"`
}

func (e PreferenceChangedEvent) Type() EventType {
	return EventTypePreferenceChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Publish emits the event to all registered handlers without a caller context
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Emit dispatches an event to all registered handlers. Handlers run asynchronously.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}
