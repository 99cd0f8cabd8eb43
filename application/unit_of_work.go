package application

import (
	"context"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
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
	PotRepository() interfaces.PotRepository
	BetRepository() interfaces.BetRepository
	DistributionRepository() interfaces.DistributionRepository
	TransferRepository() interfaces.TransferRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	DrawRepository() interfaces.DrawRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// SnapshotFactory is implemented by factories that can open a read-only
// UnitOfWork over one consistent snapshot of the store
type SnapshotFactory interface {
	CreateSnapshot() UnitOfWork
}

type snapshotFactory struct {
	SnapshotFactory
}

func (f snapshotFactory) Create() UnitOfWork {
	return f.CreateSnapshot()
}

// snapshotOf returns a factory of snapshot units of work when factory supports
// them and factory itself otherwise
func snapshotOf(factory UnitOfWorkFactory) UnitOfWorkFactory {
	if sf, ok := factory.(SnapshotFactory); ok {
		return snapshotFactory{sf}
	}
	return factory
}

// LocalJournal is the bookkeeping side of the offline store
type LocalJournal interface {
	// PendingEntries returns unsynced entries in creation order
	PendingEntries(ctx context.Context) ([]*entities.JournalEntry, error)

	// MarkEntry records the outcome of replaying an entry
	MarkEntry(ctx context.Context, seq int64, status entities.JournalStatus, reason string) error

	// DiscardEntry drops a conflicting entry after operator review
	DiscardEntry(ctx context.Context, seq int64) error

	// JournalStats returns pending and conflict counts plus unsynced balance deltas per pot
	JournalStats(ctx context.Context) (*entities.JournalStats, error)

	// ReplaceSnapshot overwrites the local pot snapshot with authoritative pots
	ReplaceSnapshot(ctx context.Context, pots []*entities.Pot) error
}
