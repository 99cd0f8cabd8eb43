package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"animalitos/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Sync replays unsynced local journal entries against the authoritative store
// in creation order. A business rejection marks the entry as a conflict for
// operator review; an unavailable store stops the pass with the rest left
// pending. The local snapshot is refreshed once nothing is left to replay.
func (l *Ledger) Sync(ctx context.Context) (*entities.SyncReport, error) {
	report := &entities.SyncReport{}
	if l.journal == nil {
		return report, nil
	}

	l.syncMu.Lock()
	defer l.syncMu.Unlock()

	entries, err := l.journal.PendingEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending journal entries: %w", err)
	}

	for i, entry := range entries {
		err := l.replay(ctx, entry)
		switch {
		case err == nil:
			if err := l.journal.MarkEntry(ctx, entry.Seq, entities.JournalStatusSynced, ""); err != nil {
				return nil, fmt.Errorf("failed to mark entry %d synced: %w", entry.Seq, err)
			}
			report.Synced++

		case isBusinessRejection(err):
			if err := l.journal.MarkEntry(ctx, entry.Seq, entities.JournalStatusConflict, err.Error()); err != nil {
				return nil, fmt.Errorf("failed to mark entry %d in conflict: %w", entry.Seq, err)
			}
			report.Conflicts++
			log.WithFields(log.Fields{
				"seq":   entry.Seq,
				"kind":  entry.Kind,
				"refId": entry.RefID,
				"error": err,
			}).Warn("Journal entry rejected by authoritative store")

		default:
			report.Remaining = len(entries) - i
			log.WithFields(log.Fields{
				"seq":       entry.Seq,
				"remaining": report.Remaining,
				"error":     err,
			}).Warn("Stopping sync, authoritative store did not accept entry")
			l.record(ctx, "sync", outcomeOfError(err))
			return report, nil
		}
	}

	stats, err := l.journal.JournalStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local journal: %w", err)
	}
	if stats.Pending == 0 && stats.Conflicts == 0 {
		err := l.RefreshSnapshot(ctx)
		switch {
		case err == nil:
			report.SnapshotRefreshed = true
		case errors.Is(err, entities.ErrStorageUnavailable):
			log.WithFields(log.Fields{
				"error": err,
			}).Debug("Skipping snapshot refresh, authoritative store unavailable")
		default:
			return nil, err
		}
	}

	if report.Synced > 0 || report.Conflicts > 0 {
		log.WithFields(log.Fields{
			"synced":    report.Synced,
			"conflicts": report.Conflicts,
			"refreshed": report.SnapshotRefreshed,
		}).Info("Local journal synchronized")
	}
	l.record(ctx, "sync", OutcomeSuccess)
	return report, nil
}

// RefreshSnapshot copies the authoritative pots into the local store
func (l *Ledger) RefreshSnapshot(ctx context.Context) error {
	if l.journal == nil {
		return nil
	}

	var pots []*entities.Pot
	err := l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
		var err error
		pots, err = uow.PotRepository().List(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to read authoritative pots: %w", err)
	}

	if err := l.journal.ReplaceSnapshot(ctx, pots); err != nil {
		return fmt.Errorf("failed to refresh local snapshot: %w", err)
	}
	return nil
}

// DiscardConflict drops a conflicting journal entry after operator review
func (l *Ledger) DiscardConflict(ctx context.Context, seq int64) error {
	if l.journal == nil {
		return entities.NewValidationError("no local journal configured")
	}
	return l.journal.DiscardEntry(ctx, seq)
}

func (l *Ledger) replay(ctx context.Context, entry *entities.JournalEntry) error {
	switch entry.Kind {
	case entities.JournalKindBet:
		var intake entities.BetIntake
		if err := json.Unmarshal(entry.Payload, &intake); err != nil {
			return entities.NewValidationError("malformed bet entry %d: %v", entry.Seq, err)
		}
		return l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
			_, err := distributionService(uow).Distribute(ctx, intake)
			return err
		})

	case entities.JournalKindTransfer:
		var req entities.TransferRequest
		if err := json.Unmarshal(entry.Payload, &req); err != nil {
			return entities.NewValidationError("malformed transfer entry %d: %v", entry.Seq, err)
		}
		return l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
			_, err := transferService(uow).Transfer(ctx, req)
			return err
		})

	case entities.JournalKindWithdrawal:
		var req entities.WithdrawalRequest
		if err := json.Unmarshal(entry.Payload, &req); err != nil {
			return entities.NewValidationError("malformed withdrawal entry %d: %v", entry.Seq, err)
		}
		return l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
			_, err := withdrawalService(uow).Withdraw(ctx, req)
			return err
		})

	default:
		return entities.NewValidationError("unknown journal entry kind %q", entry.Kind)
	}
}

func isBusinessRejection(err error) bool {
	return errors.Is(err, entities.ErrValidation) || errors.Is(err, entities.ErrInsufficientFunds)
}
