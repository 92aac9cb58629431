package infrastructure

import (
	"plushiebot/application"
	"plushiebot/database"
	"plushiebot/domain/interfaces"
	"plushiebot/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory. Each unit of
// work gets its own transactional publisher in front of the shared one.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	if eventPublisher == nil {
		eventPublisher = NewNoopEventPublisher()
	}
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewTransactionalPublisher(f.eventPublisher))
}
