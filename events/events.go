package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDropRecorded    EventType = "drop_recorded"
	EventTypeWinnersRecorded EventType = "winners_recorded"
	EventTypeEventFinalized  EventType = "event_finalized"
	EventTypePromoChanged    EventType = "promo_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Publisher accepts events for delivery
type Publisher interface {
	Publish(event Event) error
}

// DropRecordedEvent is emitted after a drop has been committed
type DropRecordedEvent struct {
	UserID    int64     `json:"user_id"`
	Method    string    `json:"method"`
	DayNumber int       `json:"day_number"`
	DropTime  time.Time `json:"drop_time"`
	Manual    bool      `json:"manual"`
}

func (e DropRecordedEvent) Type() EventType {
	return EventTypeDropRecorded
}

// WinnerSummary is one winner in a WinnersRecordedEvent
type WinnerSummary struct {
	UserID int64 `json:"user_id"`
	Drops  int64 `json:"drops"`
}

// WinnersRecordedEvent is emitted after a cycle committed its winners
type WinnersRecordedEvent struct {
	CycleID   string          `json:"cycle_id"`
	DayNumber int             `json:"day_number"`
	Winners   []WinnerSummary `json:"winners"`
}

func (e WinnersRecordedEvent) Type() EventType {
	return EventTypeWinnersRecorded
}

// EventFinalizedEvent is emitted once the final standings are announced
type EventFinalizedEvent struct {
	CycleID   string          `json:"cycle_id"`
	DayNumber int             `json:"day_number"`
	Standings []WinnerSummary `json:"standings"`
}

func (e EventFinalizedEvent) Type() EventType {
	return EventTypeEventFinalized
}

// PromoChangedEvent is emitted when staff change or reset the promo
type PromoChangedEvent struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

func (e PromoChangedEvent) Type() EventType {
	return EventTypePromoChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus dispatches events to in-process handlers
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

// Publish runs all handlers for the event synchronously
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Emit calls every handler registered for the event type, recovering panics
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		func(h Handler, handlerIndex int) {
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
