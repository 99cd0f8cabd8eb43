package localstore

import (
	"context"
	"errors"
	"fmt"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transferRepository struct {
	db *gorm.DB
}

// Create inserts the transfer and journals it for replay
func (r *transferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	row := transferRow{
		ID:        transfer.ID,
		FromPot:   transfer.FromPot,
		ToPot:     transfer.ToPot,
		Amount:    transfer.Amount,
		CreatedBy: transfer.CreatedBy,
		CreatedAt: transfer.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create local transfer: %w", err)
	}
	req := entities.TransferRequest{
		ID:        transfer.ID,
		FromPot:   transfer.FromPot,
		ToPot:     transfer.ToPot,
		Amount:    transfer.Amount,
		CreatedBy: transfer.CreatedBy,
	}
	return appendJournal(ctx, r.db, entities.JournalKindTransfer, transfer.ID, req)
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	var row transferRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local transfer %s: %w", id, err)
	}
	return row.toEntity(), nil
}

func (r *transferRepository) List(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	var rows []transferRow
	if err := r.db.WithContext(ctx).Order("created_at DESC, id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list local transfers: %w", err)
	}
	transfers := make([]*entities.Transfer, 0, len(rows))
	for i := range rows {
		transfers = append(transfers, rows[i].toEntity())
	}
	return transfers, nil
}

func (r *transferRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, map[string]decimal.Decimal, error) {
	var rows []transferRow
	if err := r.db.WithContext(ctx).Select("from_pot", "to_pot", "amount").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to sum local transfers: %w", err)
	}
	in := make(map[string]decimal.Decimal)
	out := make(map[string]decimal.Decimal)
	for _, row := range rows {
		addTo(in, row.ToPot, row.Amount)
		addTo(out, row.FromPot, row.Amount)
	}
	return in, out, nil
}
