package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"plushiebot/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	sourceService = "plushiebot"
	streamName    = "plushie_events"
)

// EventEnvelope wraps every event published to NATS. The timestamp goes on
// the wire in its protobuf JSON form, an RFC 3339 string.
type EventEnvelope struct {
	EventID       string
	EventType     string
	Timestamp     *timestamppb.Timestamp
	SourceService string
	Payload       json.RawMessage
}

type envelopeJSON struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     json.RawMessage `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// MarshalJSON encodes the envelope with a protojson timestamp
func (e EventEnvelope) MarshalJSON() ([]byte, error) {
	out := envelopeJSON{
		EventID:       e.EventID,
		EventType:     e.EventType,
		SourceService: e.SourceService,
		Payload:       e.Payload,
	}
	if e.Timestamp != nil {
		ts, err := protojson.Marshal(e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal envelope timestamp: %w", err)
		}
		out.Timestamp = ts
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes an envelope written by MarshalJSON
func (e *EventEnvelope) UnmarshalJSON(data []byte) error {
	var in envelopeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = EventEnvelope{
		EventID:       in.EventID,
		EventType:     in.EventType,
		SourceService: in.SourceService,
		Payload:       in.Payload,
	}
	if len(in.Timestamp) > 0 && string(in.Timestamp) != "null" {
		e.Timestamp = &timestamppb.Timestamp{}
		if err := protojson.Unmarshal(in.Timestamp, e.Timestamp); err != nil {
			return fmt.Errorf("failed to unmarshal envelope timestamp: %w", err)
		}
	}
	return nil
}

// messageSink is the publishing half of the NATS client
type messageSink interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSEventPublisher delivers events to local bus handlers and then to NATS
type NATSEventPublisher struct {
	natsClient    messageSink
	subjectMapper *EventSubjectMapper
	localBus      *events.Bus
	onPublished   func(eventType string)
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(natsClient messageSink, subjectMapper *EventSubjectMapper, localBus *events.Bus) *NATSEventPublisher {
	if localBus == nil {
		localBus = events.NewBus()
	}
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		localBus:      localBus,
	}
}

// OnPublished sets a callback run after each successful NATS publish
func (p *NATSEventPublisher) OnPublished(fn func(eventType string)) {
	p.onPublished = fn
}

// Publish runs local handlers, then publishes the event envelope to NATS
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()

	p.localBus.Emit(ctx, event)

	subject := p.subjectMapper.MapEventToSubject(event)
	envelopeData, envelopeID, err := encodeEnvelope(event)
	if err != nil {
		return err
	}

	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		// No stream bound to the subject; nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.onPublished != nil {
		p.onPublished(string(event.Type()))
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelopeID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// EnsureStream creates the JetStream stream covering all event subjects
func (p *NATSEventPublisher) EnsureStream(client *NATSClient) error {
	return client.EnsureStream(streamName, p.subjectMapper.GetAllSubjects())
}

func encodeEnvelope(event events.Event) ([]byte, string, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     timestamppb.Now(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope.EventID, nil
}
