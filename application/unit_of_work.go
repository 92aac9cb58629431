package application

import (
	"context"

	"plushiebot/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction and discards queued events
	Rollback() error

	// Repository getters
	PromoRepository() interfaces.PromoRepository
	DropRepository() interfaces.DropRepository
	DayCycleRepository() interfaces.DayCycleRepository
	WinnerRepository() interfaces.WinnerRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
