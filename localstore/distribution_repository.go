package localstore

import (
	"context"
	"fmt"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type distributionRepository struct {
	db *gorm.DB
}

func (r *distributionRepository) CreateLines(ctx context.Context, lines []entities.DistributionLine) error {
	if len(lines) == 0 {
		return nil
	}
	rows := make([]distributionLineRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, distributionLineRow{
			BetID:     line.BetID,
			PotName:   line.PotName,
			Amount:    line.Amount,
			CreatedAt: line.CreatedAt,
		})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert local distribution lines: %w", err)
	}
	return nil
}

func (r *distributionRepository) GetByBet(ctx context.Context, betID string) ([]*entities.DistributionLine, error) {
	var rows []distributionLineRow
	if err := r.db.WithContext(ctx).Where("bet_id = ?", betID).Order("pot_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get local distribution lines: %w", err)
	}
	lines := make([]*entities.DistributionLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, &entities.DistributionLine{
			BetID:     row.BetID,
			PotName:   row.PotName,
			Amount:    row.Amount,
			CreatedAt: row.CreatedAt,
		})
	}
	return lines, nil
}

func (r *distributionRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	var rows []distributionLineRow
	if err := r.db.WithContext(ctx).Select("pot_name", "amount").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum local distribution lines: %w", err)
	}
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		addTo(sums, row.PotName, row.Amount)
	}
	return sums, nil
}

// addTo accumulates in Go; SUM over text columns would go through floats
func addTo(sums map[string]decimal.Decimal, key string, amount decimal.Decimal) {
	sums[key] = sums[key].Add(amount)
}
