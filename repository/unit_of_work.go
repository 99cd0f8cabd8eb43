package repository

import (
	"context"
	"errors"
	"fmt"

	"animalitos/application"
	"animalitos/database"
	"animalitos/domain/interfaces"
	"animalitos/events"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the application.UnitOfWork interface on one pgx transaction
type unitOfWork struct {
	db                     *database.DB
	txOptions              pgx.TxOptions
	tx                     pgx.Tx
	ctx                    context.Context
	transactionalPublisher *events.TransactionalBus
	potRepo                interfaces.PotRepository
	betRepo                interfaces.BetRepository
	distributionRepo       interfaces.DistributionRepository
	transferRepo           interfaces.TransferRepository
	withdrawalRepo         interfaces.WithdrawalRepository
	drawRepo               interfaces.DrawRepository
}

type unitOfWorkFactory struct {
	db  *database.DB
	bus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events raised inside a
// unit of work reach bus only after its transaction commits.
func NewUnitOfWorkFactory(db *database.DB, bus *events.Bus) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:  db,
		bus: bus,
	}
}

// Create creates a new UnitOfWork with its own transactional publisher
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		transactionalPublisher: events.NewTransactionalBus(f.bus),
	}
}

// CreateSnapshot creates a read-only UnitOfWork whose statements all read the
// snapshot taken by its first query
func (f *unitOfWorkFactory) CreateSnapshot() application.UnitOfWork {
	return &unitOfWork{
		db:                     f.db,
		txOptions:              pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly},
		transactionalPublisher: events.NewTransactionalBus(f.bus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, u.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", database.ClassifyError(err))
	}

	u.tx = tx
	u.ctx = ctx

	u.potRepo = newPotRepository(tx)
	u.betRepo = newBetRepository(tx)
	u.distributionRepo = newDistributionRepository(tx)
	u.transferRepo = newTransferRepository(tx)
	u.withdrawalRepo = newWithdrawalRepository(tx)
	u.drawRepo = newDrawRepository(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", database.ClassifyError(err))
	}

	u.tx = nil

	if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Failed to flush events after commit")
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
	u.transactionalPublisher.Discard()

	return nil
}

func (u *unitOfWork) PotRepository() interfaces.PotRepository {
	if u.potRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.potRepo
}

func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

func (u *unitOfWork) DistributionRepository() interfaces.DistributionRepository {
	if u.distributionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.distributionRepo
}

func (u *unitOfWork) TransferRepository() interfaces.TransferRepository {
	if u.transferRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transferRepo
}

func (u *unitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	if u.withdrawalRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.withdrawalRepo
}

func (u *unitOfWork) DrawRepository() interfaces.DrawRepository {
	if u.drawRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.drawRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
