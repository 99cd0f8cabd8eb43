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

const transferColumns = `id, from_pot, to_pot, amount, created_by, created_at`

// TransferRepository implements transfer data access on Postgres
type TransferRepository struct {
	q Queryable
}

func newTransferRepository(q Queryable) *TransferRepository {
	return &TransferRepository{q: q}
}

func scanTransfer(row rowScanner) (*entities.Transfer, error) {
	var t entities.Transfer
	if err := row.Scan(&t.ID, &t.FromPot, &t.ToPot, &t.Amount, &t.CreatedBy, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a transfer record
func (r *TransferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, query,
		transfer.ID,
		transfer.FromPot,
		transfer.ToPot,
		transfer.Amount,
		transfer.CreatedBy,
		transfer.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", database.ClassifyError(err))
	}
	return nil
}

// GetByID retrieves a transfer by id
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer %s: %w", id, database.ClassifyError(err))
	}
	return t, nil
}

// List returns the most recent transfers first
func (r *TransferRepository) List(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers ORDER BY created_at DESC, id LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var transfers []*entities.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", database.ClassifyError(err))
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", database.ClassifyError(err))
	}
	return transfers, nil
}

// SumByPot returns totals received and sent per pot
func (r *TransferRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, map[string]decimal.Decimal, error) {
	in, err := sumByKey(ctx, r.q, `SELECT to_pot, SUM(amount) FROM transfers GROUP BY to_pot`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum incoming transfers: %w", err)
	}
	out, err := sumByKey(ctx, r.q, `SELECT from_pot, SUM(amount) FROM transfers GROUP BY from_pot`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sum outgoing transfers: %w", err)
	}
	return in, out, nil
}
