package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrUnsyncedEntries is returned when the snapshot cannot be replaced because
// local work has not reached the authoritative store yet.
var ErrUnsyncedEntries = errors.New("local journal has unsynced entries")

func appendJournal(ctx context.Context, db *gorm.DB, kind entities.JournalKind, refID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode journal payload: %w", err)
	}
	row := journalRow{
		Kind:      string(kind),
		RefID:     refID,
		Payload:   data,
		Status:    string(entities.JournalStatusPending),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append journal entry: %w", err)
	}
	log.WithFields(log.Fields{
		"seq":   row.Seq,
		"kind":  kind,
		"refId": refID,
	}).Debug("Journaled local operation")
	return nil
}

// PendingEntries returns unsynced entries in creation order
func (s *Store) PendingEntries(ctx context.Context) ([]*entities.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []journalRow
	err := s.db.WithContext(ctx).
		Where("status = ?", string(entities.JournalStatusPending)).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending journal entries: %w", err)
	}
	entries := make([]*entities.JournalEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toEntity())
	}
	return entries, nil
}

// Entries returns journal entries with the given status in creation order
func (s *Store) Entries(ctx context.Context, status entities.JournalStatus) ([]*entities.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []journalRow
	if err := s.db.WithContext(ctx).Where("status = ?", string(status)).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	entries := make([]*entities.JournalEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toEntity())
	}
	return entries, nil
}

// MarkEntry records the outcome of replaying an entry
func (s *Store) MarkEntry(ctx context.Context, seq int64, status entities.JournalStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates := map[string]any{
		"status": string(status),
		"error":  reason,
	}
	if status == entities.JournalStatusSynced {
		updates["synced_at"] = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Model(&journalRow{}).Where("seq = ?", seq).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to mark journal entry %d: %w", seq, res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.NewValidationError("journal entry %d not found", seq)
	}
	return nil
}

// DiscardEntry drops a conflicting entry after operator review
func (s *Store) DiscardEntry(ctx context.Context, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Model(&journalRow{}).
		Where("seq = ? AND status = ?", seq, string(entities.JournalStatusConflict)).
		Update("status", string(entities.JournalStatusDiscarded))
	if res.Error != nil {
		return fmt.Errorf("failed to discard journal entry %d: %w", seq, res.Error)
	}
	if res.RowsAffected == 0 {
		return entities.NewValidationError("journal entry %d is not in conflict", seq)
	}

	log.WithFields(log.Fields{
		"seq": seq,
	}).Warn("Discarded conflicting journal entry")
	return nil
}

// JournalStats returns pending and conflict counts plus unsynced balance deltas per pot
func (s *Store) JournalStats(ctx context.Context) (*entities.JournalStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return journalStats(ctx, s.db)
}

func journalStats(ctx context.Context, db *gorm.DB) (*entities.JournalStats, error) {
	var pending, conflicts int64
	if err := db.WithContext(ctx).Model(&journalRow{}).
		Where("status = ?", string(entities.JournalStatusPending)).Count(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending journal entries: %w", err)
	}
	if err := db.WithContext(ctx).Model(&journalRow{}).
		Where("status = ?", string(entities.JournalStatusConflict)).Count(&conflicts).Error; err != nil {
		return nil, fmt.Errorf("failed to count conflicting journal entries: %w", err)
	}

	var pots []potRow
	if err := db.WithContext(ctx).Order("name").Find(&pots).Error; err != nil {
		return nil, fmt.Errorf("failed to read local pots: %w", err)
	}
	unsynced := make(map[string]decimal.Decimal)
	for _, pot := range pots {
		if delta := pot.Balance.Sub(pot.SnapshotBalance); !delta.IsZero() {
			unsynced[pot.Name] = delta
		}
	}

	return &entities.JournalStats{
		Pending:   int(pending),
		Conflicts: int(conflicts),
		Unsynced:  unsynced,
	}, nil
}

// ReplaceSnapshot overwrites the local pots with authoritative ones. It refuses
// while pending or conflicting entries exist.
func (s *Store) ReplaceSnapshot(ctx context.Context, pots []*entities.Pot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := journalStats(ctx, tx)
		if err != nil {
			return err
		}
		if stats.Pending > 0 || stats.Conflicts > 0 {
			return fmt.Errorf("%w: %d pending, %d in conflict", ErrUnsyncedEntries, stats.Pending, stats.Conflicts)
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&potRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear local pots: %w", err)
		}
		for _, pot := range pots {
			row := potRow{
				ID:              pot.ID,
				Name:            pot.Name,
				Percentage:      pot.Percentage,
				Balance:         pot.Balance,
				SnapshotBalance: pot.Balance,
				Color:           pot.Color,
				Description:     pot.Description,
				Active:          pot.Active,
				Version:         pot.Version,
				CreatedAt:       pot.CreatedAt,
				UpdatedAt:       pot.UpdatedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to store snapshot of pot %s: %w", pot.Name, err)
			}
		}

		log.WithFields(log.Fields{
			"potCount": len(pots),
		}).Info("Replaced local pot snapshot")
		return nil
	})
}
