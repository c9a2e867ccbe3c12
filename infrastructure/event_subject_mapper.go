package infrastructure

import (
	"fmt"

	"poporingbot/events"
)

const (
	lookupSubjectPrefix     = "poporing.lookups."
	preferenceSubjectPrefix = "poporing.preferences."
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject.
// Lookups are split by region and preference changes by scope.
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch e := event.(type) {
	case events.PriceLookupEvent:
		return lookupSubjectPrefix + e.Region
	case events.PreferenceChangedEvent:
		return preferenceSubjectPrefix + e.Scope
	default:
		return fmt.Sprintf("poporing.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		lookupSubjectPrefix + "*",
		preferenceSubjectPrefix + "*",
	}
}
