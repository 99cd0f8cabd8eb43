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

const drawColumns = `id, lottery_id, winning_animal_number, draw_time, status, payout_pot,
	total_payout, winners_count, failure_reason, created_at, settled_at`

// DrawRepository implements draw data access on Postgres
type DrawRepository struct {
	q Queryable
}

func newDrawRepository(q Queryable) *DrawRepository {
	return &DrawRepository{q: q}
}

func scanDraw(row rowScanner) (*entities.Draw, error) {
	var d entities.Draw
	var status string
	err := row.Scan(
		&d.ID,
		&d.LotteryID,
		&d.WinningAnimalNumber,
		&d.DrawTime,
		&status,
		&d.PayoutPot,
		&d.TotalPayout,
		&d.WinnersCount,
		&d.FailureReason,
		&d.CreatedAt,
		&d.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	d.Status = entities.DrawStatus(status)
	return &d, nil
}

// CreateIfAbsent inserts the draw unless its lottery already has one
func (r *DrawRepository) CreateIfAbsent(ctx context.Context, draw *entities.Draw) (bool, error) {
	query := `
		INSERT INTO draws (id, lottery_id, winning_animal_number, draw_time, status, payout_pot,
		                   total_payout, winners_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (lottery_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query,
		draw.ID,
		draw.LotteryID,
		draw.WinningAnimalNumber,
		draw.DrawTime,
		string(draw.Status),
		draw.PayoutPot,
		draw.TotalPayout,
		draw.WinnersCount,
		draw.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create draw: %w", database.ClassifyError(err))
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a draw by its ID
func (r *DrawRepository) GetByID(ctx context.Context, id string) (*entities.Draw, error) {
	return r.getOne(ctx, `SELECT `+drawColumns+` FROM draws WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves a draw by ID with row lock for update
func (r *DrawRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Draw, error) {
	return r.getOne(ctx, `SELECT `+drawColumns+` FROM draws WHERE id = $1 FOR UPDATE`, id)
}

// GetByLotteryID retrieves the draw of a lottery
func (r *DrawRepository) GetByLotteryID(ctx context.Context, lotteryID string) (*entities.Draw, error) {
	return r.getOne(ctx, `SELECT `+drawColumns+` FROM draws WHERE lottery_id = $1`, lotteryID)
}

func (r *DrawRepository) getOne(ctx context.Context, query string, arg string) (*entities.Draw, error) {
	d, err := scanDraw(r.q.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %s: %w", arg, database.ClassifyError(err))
	}
	return d, nil
}

// Update updates a draw record
func (r *DrawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	query := `
		UPDATE draws
		SET status = $2,
		    total_payout = $3,
		    winners_count = $4,
		    failure_reason = $5,
		    settled_at = $6
		WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		draw.ID,
		string(draw.Status),
		draw.TotalPayout,
		draw.WinnersCount,
		draw.FailureReason,
		draw.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update draw %s: %w", draw.ID, database.ClassifyError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entities.ErrDrawNotFound, draw.ID)
	}
	return nil
}

// SumPayoutsByPot returns what settled draws paid out of each pot
func (r *DrawRepository) SumPayoutsByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	return sumByKey(ctx, r.q, `SELECT payout_pot, SUM(total_payout) FROM draws WHERE status = 'settled' GROUP BY payout_pot`)
}
