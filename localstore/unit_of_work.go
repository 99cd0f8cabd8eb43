package localstore

import (
	"context"
	"fmt"

	"animalitos/domain/interfaces"
	"animalitos/events"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// unitOfWork runs one gorm transaction while holding the store lock
type unitOfWork struct {
	store                  *Store
	tx                     *gorm.DB
	ctx                    context.Context
	transactionalPublisher *events.TransactionalBus
	potRepo                *potRepository
	betRepo                *betRepository
	distributionRepo       *distributionRepository
	transferRepo           *transferRepository
	withdrawalRepo         *withdrawalRepository
	drawRepo               *drawRepository
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	u.store.mu.Lock()
	tx := u.store.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		u.store.mu.Unlock()
		return fmt.Errorf("failed to begin local transaction: %w", tx.Error)
	}

	u.tx = tx
	u.ctx = ctx

	u.potRepo = &potRepository{db: tx}
	u.betRepo = &betRepository{db: tx}
	u.distributionRepo = &distributionRepository{db: tx}
	u.transferRepo = &transferRepository{db: tx}
	u.withdrawalRepo = &withdrawalRepository{db: tx}
	u.drawRepo = &drawRepository{db: tx}

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit().Error
	u.tx = nil
	u.store.mu.Unlock()
	if err != nil {
		u.transactionalPublisher.Discard()
		return fmt.Errorf("failed to commit local transaction: %w", err)
	}

	if err := u.transactionalPublisher.Flush(u.ctx); err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Failed to flush events after local commit")
	}
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback().Error
	u.tx = nil
	u.store.mu.Unlock()
	u.transactionalPublisher.Discard()
	if err != nil {
		return fmt.Errorf("failed to rollback local transaction: %w", err)
	}
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

func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalPublisher
}
