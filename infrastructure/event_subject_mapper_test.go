package infrastructure

import (
	"testing"

	"plushiebot/events"

	"github.com/stretchr/testify/assert"
)

type strayEvent struct{}

func (strayEvent) Type() events.EventType { return "stray" }

func TestEventSubjectMapper_MapEventToSubject(t *testing.T) {
	t.Parallel()

	m := NewEventSubjectMapper()

	tests := []struct {
		event events.Event
		want  string
	}{
		{events.DropRecordedEvent{}, SubjectDropRecorded},
		{events.WinnersRecordedEvent{}, SubjectWinnersRecorded},
		{events.EventFinalizedEvent{}, SubjectEventFinalized},
		{events.PromoChangedEvent{}, SubjectPromoChanged},
		{strayEvent{}, "plushie.unknown.stray"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.MapEventToSubject(tt.event))
	}

	// Every known subject is covered by the stream
	for _, tt := range tests[:4] {
		assert.Contains(t, m.GetAllSubjects(), tt.want)
	}
}
