package infrastructure

import (
	"fmt"

	"plushiebot/events"
)

const (
	SubjectDropRecorded    = "plushie.drops.recorded"
	SubjectWinnersRecorded = "plushie.winners.recorded"
	SubjectEventFinalized  = "plushie.event.finalized"
	SubjectPromoChanged    = "plushie.promo.changed"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeDropRecorded:
		return SubjectDropRecorded
	case events.EventTypeWinnersRecorded:
		return SubjectWinnersRecorded
	case events.EventTypeEventFinalized:
		return SubjectEventFinalized
	case events.EventTypePromoChanged:
		return SubjectPromoChanged
	default:
		return fmt.Sprintf("plushie.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectDropRecorded,
		SubjectWinnersRecorded,
		SubjectEventFinalized,
		SubjectPromoChanged,
	}
}
