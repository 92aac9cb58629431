package interfaces

import (
	"context"
	"time"

	"plushiebot/domain/entities"
	"plushiebot/events"
)

// PromoRepository defines the interface for promo configuration access
type PromoRepository interface {
	// GetActive returns the single active promo, or nil if none is set
	GetActive(ctx context.Context) (*entities.Promo, error)

	// Upsert stores the promo by name, replacing any other active promo
	Upsert(ctx context.Context, promo *entities.Promo) error

	// Delete removes the active promo
	Delete(ctx context.Context) error
}

// DropRepository defines the interface for drop record access
type DropRepository interface {
	// Record inserts a drop tagged with the current day number, read atomically
	Record(ctx context.Context, userID int64, method entities.DropMethod, at time.Time) (*entities.DropRecord, error)

	// RecordForDay inserts a drop for an explicit day number
	RecordForDay(ctx context.Context, userID int64, method entities.DropMethod, at time.Time, dayNumber int) (*entities.DropRecord, error)

	// CountByUser returns the all-time drop count of a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// CountByUserForCurrentDay returns the user's drop count for the current day number
	CountByUserForCurrentDay(ctx context.Context, userID int64) (int64, error)

	// TopForCurrentDay returns counts for the current day, by count desc then user id asc
	TopForCurrentDay(ctx context.Context, limit int) ([]entities.DropCount, error)

	// TopSince returns counts for drops at or after since, by count desc then user id asc
	TopSince(ctx context.Context, since time.Time, limit int) ([]entities.DropCount, error)

	// DeleteAll removes every drop record
	DeleteAll(ctx context.Context) error
}

// DayCycleRepository defines the interface for the event day counter
type DayCycleRepository interface {
	// Get returns the day cycle without locking
	Get(ctx context.Context) (*entities.DayCycle, error)

	// GetForUpdate returns the day cycle and locks it until the transaction ends
	GetForUpdate(ctx context.Context) (*entities.DayCycle, error)

	// Advance moves the day from expected to expected+1
	Advance(ctx context.Context, expected int) (*entities.DayCycle, error)

	// MarkFinalized records that the final standings were announced
	MarkFinalized(ctx context.Context) error

	// Reset sets the counter back to day 1
	Reset(ctx context.Context) error
}

// WinnerRepository defines the interface for daily winner records
type WinnerRepository interface {
	// ExistsForDay returns true if any winner is recorded for the day
	ExistsForDay(ctx context.Context, dayNumber int) (bool, error)

	// Upsert stores a winner keyed on (day, user)
	Upsert(ctx context.Context, winner *entities.WinnerRecord) error

	// CountWins returns the lifetime win count of each requested user
	CountWins(ctx context.Context, userIDs []int64) (map[int64]int, error)

	// GetAll returns every winner ordered by day then user
	GetAll(ctx context.Context) ([]*entities.WinnerRecord, error)

	// DeleteAll removes every winner record
	DeleteAll(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the owning transaction ends
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops pending events; called after rollback
	Discard()
}
