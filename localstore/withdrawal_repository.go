package localstore

import (
	"context"
	"errors"
	"fmt"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type withdrawalRepository struct {
	db *gorm.DB
}

// Create inserts the withdrawal and journals it for replay
func (r *withdrawalRepository) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	row := withdrawalRow{
		ID:        withdrawal.ID,
		FromPot:   withdrawal.FromPot,
		Amount:    withdrawal.Amount,
		CreatedBy: withdrawal.CreatedBy,
		CreatedAt: withdrawal.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create local withdrawal: %w", err)
	}
	req := entities.WithdrawalRequest{
		ID:        withdrawal.ID,
		FromPot:   withdrawal.FromPot,
		Amount:    withdrawal.Amount,
		CreatedBy: withdrawal.CreatedBy,
	}
	return appendJournal(ctx, r.db, entities.JournalKindWithdrawal, withdrawal.ID, req)
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id string) (*entities.Withdrawal, error) {
	var row withdrawalRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local withdrawal %s: %w", id, err)
	}
	return row.toEntity(), nil
}

func (r *withdrawalRepository) List(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	var rows []withdrawalRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list local withdrawals: %w", err)
	}
	withdrawals := make([]*entities.Withdrawal, 0, len(rows))
	for i := range rows {
		withdrawals = append(withdrawals, rows[i].toEntity())
	}
	return withdrawals, nil
}

func (r *withdrawalRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []withdrawalRow
	if err := r.db.WithContext(ctx).Select("from_pot", "amount").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum local withdrawals: %w", err)
	}
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		addTo(sums, row.FromPot, row.Amount)
	}
	return sums, nil
}
