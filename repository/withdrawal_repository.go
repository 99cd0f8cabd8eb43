package repository

import (
	"context"
	"errors"
	"fmt"

	"animalitos/database"
	"animalitos/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const withdrawalColumns = `id, from_pot, amount, created_by, created_at`

// WithdrawalRepository implements withdrawal data access on Postgres
type WithdrawalRepository struct {
	q Queryable
}

func newWithdrawalRepository(q Queryable) *WithdrawalRepository {
	return &WithdrawalRepository{q: q}
}

func scanWithdrawal(row rowScanner) (*entities.Withdrawal, error) {
	var w entities.Withdrawal
	if err := row.Scan(&w.ID, &w.FromPot, &w.Amount, &w.CreatedBy, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.Exec(ctx, query,
		withdrawal.ID,
		withdrawal.FromPot,
		withdrawal.Amount,
		withdrawal.CreatedBy,
		withdrawal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", database.ClassifyError(err))
	}
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*entities.Withdrawal, error) {
	w, err := scanWithdrawal(r.q.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get withdrawal %s: %w", id, database.ClassifyError(err))
	}
	return w, nil
}

func (r *WithdrawalRepository) List(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals ORDER BY created_at DESC, id LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var withdrawals []*entities.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", database.ClassifyError(err))
		}
		withdrawals = append(withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", database.ClassifyError(err))
	}
	return withdrawals, nil
}

func (r *WithdrawalRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	return sumByKey(ctx, r.q, `SELECT from_pot, SUM(amount) FROM withdrawals GROUP BY from_pot`)
}
