package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type betRepository struct {
	db *gorm.DB
}

// CreateIfAbsent inserts the bet and journals it for replay
func (r *betRepository) CreateIfAbsent(ctx context.Context, bet *entities.Bet) (bool, error) {
	row := betRow{
		ID:           bet.ID,
		LotteryID:    bet.LotteryID,
		AnimalNumber: bet.AnimalNumber,
		Amount:       bet.Amount,
		PotentialWin: bet.PotentialWin,
		Outcome:      string(bet.Outcome),
		DrawID:       bet.DrawID,
		CreatedAt:    bet.CreatedAt,
		SettledAt:    bet.SettledAt,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create local bet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	intake := entities.BetIntake{
		BetID:        bet.ID,
		LotteryID:    bet.LotteryID,
		AnimalNumber: bet.AnimalNumber,
		Amount:       bet.Amount,
		PotentialWin: bet.PotentialWin,
	}
	if err := appendJournal(ctx, r.db, entities.JournalKindBet, bet.ID, intake); err != nil {
		return false, err
	}
	return true, nil
}

func (r *betRepository) GetByID(ctx context.Context, id string) (*entities.Bet, error) {
	var row betRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get local bet %s: %w", id, err)
	}
	return row.toEntity(), nil
}

func (r *betRepository) GetPendingByLottery(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	var rows []betRow
	err := r.db.WithContext(ctx).
		Where("lottery_id = ? AND outcome = ?", lotteryID, string(entities.BetOutcomePending)).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get local pending bets: %w", err)
	}
	bets := make([]*entities.Bet, 0, len(rows))
	for i := range rows {
		bets = append(bets, rows[i].toEntity())
	}
	return bets, nil
}

func (r *betRepository) GetPendingByLotteryForUpdate(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	return r.GetPendingByLottery(ctx, lotteryID)
}

func (r *betRepository) MarkSettled(ctx context.Context, betIDs []string, outcome entities.BetOutcome, drawID string, settledAt time.Time) (int64, error) {
	if len(betIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&betRow{}).
		Where("id IN ? AND outcome = ?", betIDs, string(entities.BetOutcomePending)).
		Updates(map[string]any{
			"outcome":    string(outcome),
			"draw_id":    drawID,
			"settled_at": settledAt,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to settle local bets: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *betRepository) SumAmounts(ctx context.Context) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	if err := r.db.WithContext(ctx).Model(&betRow{}).Pluck("amount", &amounts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum local bets: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}
