package repository

import (
	"context"
	"errors"
	"fmt"

	"plushiebot/application"
	"plushiebot/database"
	"plushiebot/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the application.UnitOfWork interface
type unitOfWork struct {
	db                     *database.DB
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher interfaces.TransactionalEventPublisher
	promoRepo              interfaces.PromoRepository
	dropRepo               interfaces.DropRepository
	dayCycleRepo           interfaces.DayCycleRepository
	winnerRepo             interfaces.WinnerRepository
}

type unitOfWorkFactory struct {
	db *database.DB
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// CreateWithPublisher creates a new UnitOfWork that flushes the given publisher on commit
func (f *unitOfWorkFactory) CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: transactionalPublisher,
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.promoRepo = NewPromoRepository(tx)
	u.dropRepo = NewDropRepository(tx)
	u.dayCycleRepo = NewDayCycleRepository(tx)
	u.winnerRepo = NewWinnerRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Events only leave the process once the data they describe is durable
	if u.transactionalPublisher != nil {
		_ = u.transactionalPublisher.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalPublisher != nil {
		u.transactionalPublisher.Discard()
	}

	return nil
}

// PromoRepository returns the promo repository for this unit of work
func (u *unitOfWork) PromoRepository() interfaces.PromoRepository {
	if u.promoRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.promoRepo
}

// DropRepository returns the drop repository for this unit of work
func (u *unitOfWork) DropRepository() interfaces.DropRepository {
	if u.dropRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dropRepo
}

// DayCycleRepository returns the day cycle repository for this unit of work
func (u *unitOfWork) DayCycleRepository() interfaces.DayCycleRepository {
	if u.dayCycleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.dayCycleRepo
}

// WinnerRepository returns the winner repository for this unit of work
func (u *unitOfWork) WinnerRepository() interfaces.WinnerRepository {
	if u.winnerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.winnerRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalPublisher == nil {
		panic("unit of work has no event publisher")
	}
	return u.transactionalPublisher
}
