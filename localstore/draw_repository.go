package localstore

import (
	"context"
	"errors"
	"fmt"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// drawRepository stores draws locally. Draws are never journaled: settlement
// only runs against the authoritative store.
type drawRepository struct {
	db *gorm.DB
}

func (r *drawRepository) CreateIfAbsent(ctx context.Context, draw *entities.Draw) (bool, error) {
	row := drawRow{
		ID:                  draw.ID,
		LotteryID:           draw.LotteryID,
		WinningAnimalNumber: draw.WinningAnimalNumber,
		DrawTime:            draw.DrawTime,
		Status:              string(draw.Status),
		PayoutPot:           draw.PayoutPot,
		TotalPayout:         draw.TotalPayout,
		WinnersCount:        draw.WinnersCount,
		CreatedAt:           draw.CreatedAt,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "lottery_id"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create local draw: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *drawRepository) getOne(ctx context.Context, column, value string) (*entities.Draw, error) {
	var row drawRow
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local draw %s: %w", value, err)
	}
	return row.toEntity(), nil
}

func (r *drawRepository) GetByID(ctx context.Context, id string) (*entities.Draw, error) {
	return r.getOne(ctx, "id", id)
}

func (r *drawRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Draw, error) {
	return r.getOne(ctx, "id", id)
}

func (r *drawRepository) GetByLotteryID(ctx context.Context, lotteryID string) (*entities.Draw, error) {
	return r.getOne(ctx, "lottery_id", lotteryID)
}

func (r *drawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	res := r.db.WithContext(ctx).Model(&drawRow{}).Where("id = ?", draw.ID).Updates(map[string]any{
		"status":         string(draw.Status),
		"total_payout":   draw.TotalPayout,
		"winners_count":  draw.WinnersCount,
		"failure_reason": draw.FailureReason,
		"settled_at":     draw.SettledAt,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update local draw %s: %w", draw.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", entities.ErrDrawNotFound, draw.ID)
	}
	return nil
}

func (r *drawRepository) SumPayoutsByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []drawRow
	err := r.db.WithContext(ctx).
		Select("payout_pot", "total_payout").
		Where("status = ?", string(entities.DrawStatusSettled)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum local payouts: %w", err)
	}
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		addTo(sums, row.PayoutPot, row.TotalPayout)
	}
	return sums, nil
}
