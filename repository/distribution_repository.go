package repository

import (
	"context"
	"fmt"

	"animalitos/database"
	"animalitos/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DistributionRepository implements distribution line data access on Postgres
type DistributionRepository struct {
	q Queryable
}

func newDistributionRepository(q Queryable) *DistributionRepository {
	return &DistributionRepository{q: q}
}

// CreateLines inserts every line of one distribution in a single round trip
func (r *DistributionRepository) CreateLines(ctx context.Context, lines []entities.DistributionLine) error {
	if len(lines) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(`
			INSERT INTO distribution_lines (bet_id, pot_name, amount, created_at)
			VALUES ($1, $2, $3, $4)
		`, line.BetID, line.PotName, line.Amount, line.CreatedAt)
	}

	results := r.q.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert distribution line: %w", database.ClassifyError(err))
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close distribution batch: %w", database.ClassifyError(err))
	}
	return nil
}

// GetByBet returns the lines of one bet ordered by pot name
func (r *DistributionRepository) GetByBet(ctx context.Context, betID string) ([]*entities.DistributionLine, error) {
	query := `
		SELECT bet_id, pot_name, amount, created_at
		FROM distribution_lines
		WHERE bet_id = $1
		ORDER BY pot_name
	`
	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution lines: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var lines []*entities.DistributionLine
	for rows.Next() {
		var line entities.DistributionLine
		if err := rows.Scan(&line.BetID, &line.PotName, &line.Amount, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan distribution line: %w", database.ClassifyError(err))
		}
		lines = append(lines, &line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate distribution lines: %w", database.ClassifyError(err))
	}
	return lines, nil
}

// SumByPot returns the total credited to each pot
func (r *DistributionRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	return sumByKey(ctx, r.q, `SELECT pot_name, SUM(amount) FROM distribution_lines GROUP BY pot_name`)
}

// sumByKey runs a two column (key, sum) aggregate query into a map
func sumByKey(ctx context.Context, q Queryable, query string, args ...any) (map[string]decimal.Decimal, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run aggregate: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key string
		var sum decimal.Decimal
		if err := rows.Scan(&key, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", database.ClassifyError(err))
		}
		sums[key] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregate: %w", database.ClassifyError(err))
	}
	return sums, nil
}
