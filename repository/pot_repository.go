package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"animalitos/database"
	"animalitos/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const potColumns = `id, name, percentage, balance, color, description, active, version, created_at, updated_at`

// PotRepository implements pot data access on Postgres
type PotRepository struct {
	q Queryable
}

// NewPotRepository creates a pot repository on the pool
func NewPotRepository(db *database.DB) *PotRepository {
	return &PotRepository{q: db.Pool}
}

func newPotRepository(q Queryable) *PotRepository {
	return &PotRepository{q: q}
}

func scanPot(row rowScanner) (*entities.Pot, error) {
	var pot entities.Pot
	err := row.Scan(
		&pot.ID,
		&pot.Name,
		&pot.Percentage,
		&pot.Balance,
		&pot.Color,
		&pot.Description,
		&pot.Active,
		&pot.Version,
		&pot.CreatedAt,
		&pot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &pot, nil
}

func (r *PotRepository) queryPots(ctx context.Context, query string, args ...any) ([]*entities.Pot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	defer rows.Close()

	var pots []*entities.Pot
	for rows.Next() {
		pot, err := scanPot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pot: %w", database.ClassifyError(err))
		}
		pots = append(pots, pot)
	}
	if err := rows.Err(); err != nil {
		return nil, database.ClassifyError(err)
	}
	return pots, nil
}

// GetByName retrieves a pot by name
func (r *PotRepository) GetByName(ctx context.Context, name string) (*entities.Pot, error) {
	query := `SELECT ` + potColumns + ` FROM pots WHERE name = $1`

	pot, err := scanPot(r.q.QueryRow(ctx, query, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pot %s: %w", name, database.ClassifyError(err))
	}
	return pot, nil
}

// List returns all pots ordered by name
func (r *PotRepository) List(ctx context.Context) ([]*entities.Pot, error) {
	pots, err := r.queryPots(ctx, `SELECT `+potColumns+` FROM pots ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pots: %w", err)
	}
	return pots, nil
}

// LockByNames takes row locks on the named pots in name order
func (r *PotRepository) LockByNames(ctx context.Context, names []string) ([]*entities.Pot, error) {
	if len(names) == 0 {
		return nil, nil
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	query := `SELECT ` + potColumns + ` FROM pots WHERE name = ANY($1) ORDER BY name FOR UPDATE`
	pots, err := r.queryPots(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pots: %w", err)
	}
	return pots, nil
}

// LockActive takes row locks on every active pot in name order
func (r *PotRepository) LockActive(ctx context.Context) ([]*entities.Pot, error) {
	query := `SELECT ` + potColumns + ` FROM pots WHERE active ORDER BY name FOR UPDATE`
	pots, err := r.queryPots(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to lock active pots: %w", err)
	}
	return pots, nil
}

// Create inserts a new pot
func (r *PotRepository) Create(ctx context.Context, pot *entities.Pot) error {
	query := `
		INSERT INTO pots (id, name, percentage, balance, color, description, active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $8)
		RETURNING version, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		pot.ID,
		pot.Name,
		pot.Percentage,
		pot.Balance,
		pot.Color,
		pot.Description,
		pot.Active,
		pot.CreatedAt,
	).Scan(&pot.Version, &pot.CreatedAt, &pot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create pot %s: %w", pot.Name, database.ClassifyError(err))
	}
	return nil
}

// UpdateConfig overwrites percentage, metadata and active flag
func (r *PotRepository) UpdateConfig(ctx context.Context, pot *entities.Pot) error {
	query := `
		UPDATE pots
		SET percentage = $2,
		    color = $3,
		    description = $4,
		    active = $5,
		    version = version + 1,
		    updated_at = NOW()
		WHERE name = $1
		RETURNING version, updated_at
	`
	err := r.q.QueryRow(ctx, query, pot.Name, pot.Percentage, pot.Color, pot.Description, pot.Active).
		Scan(&pot.Version, &pot.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", entities.ErrPotNotFound, pot.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to update pot %s: %w", pot.Name, database.ClassifyError(err))
	}
	return nil
}

// AdjustBalance adds delta to the balance only if the result stays non-negative.
// The check and the write are the same statement.
func (r *PotRepository) AdjustBalance(ctx context.Context, name string, delta decimal.Decimal) (*entities.Pot, error) {
	query := `
		UPDATE pots
		SET balance = balance + $2,
		    version = version + 1,
		    updated_at = NOW()
		WHERE name = $1 AND balance + $2 >= 0
		RETURNING ` + potColumns

	pot, err := scanPot(r.q.QueryRow(ctx, query, name, delta))
	if err == nil {
		return pot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust pot %s: %w", name, database.ClassifyError(err))
	}

	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrPotNotFound, name)
	}
	return nil, fmt.Errorf("%w: pot %s holds %s, needs %s", entities.ErrInsufficientFunds, name, existing.Balance.String(), delta.Neg().String())
}
