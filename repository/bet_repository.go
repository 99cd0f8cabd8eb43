package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animalitos/database"
	"animalitos/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const betColumns = `id, lottery_id, animal_number, amount, potential_win, outcome, draw_id, created_at, settled_at`

// BetRepository implements bet data access on Postgres
type BetRepository struct {
	q Queryable
}

func newBetRepository(q Queryable) *BetRepository {
	return &BetRepository{q: q}
}

func scanBet(row rowScanner) (*entities.Bet, error) {
	var bet entities.Bet
	var outcome string
	err := row.Scan(
		&bet.ID,
		&bet.LotteryID,
		&bet.AnimalNumber,
		&bet.Amount,
		&bet.PotentialWin,
		&outcome,
		&bet.DrawID,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	bet.Outcome = entities.BetOutcome(outcome)
	return &bet, nil
}

// CreateIfAbsent inserts the bet, doing nothing if the id already exists
func (r *BetRepository) CreateIfAbsent(ctx context.Context, bet *entities.Bet) (bool, error) {
	query := `
		INSERT INTO bets (id, lottery_id, animal_number, amount, potential_win, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.LotteryID,
		bet.AnimalNumber,
		bet.Amount,
		bet.PotentialWin,
		string(bet.Outcome),
		bet.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create bet %s: %w", bet.ID, database.ClassifyError(err))
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a bet by id
func (r *BetRepository) GetByID(ctx context.Context, id string) (*entities.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %s: %w", id, database.ClassifyError(err))
	}
	return bet, nil
}

// GetPendingByLottery returns unsettled bets of a lottery in placement order
func (r *BetRepository) GetPendingByLottery(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE lottery_id = $1 AND outcome = 'pending'
		ORDER BY created_at, id
	`
	return r.queryBets(ctx, query, lotteryID)
}

// GetPendingByLotteryForUpdate is GetPendingByLottery with row locks held until commit
func (r *BetRepository) GetPendingByLotteryForUpdate(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE lottery_id = $1 AND outcome = 'pending'
		ORDER BY created_at, id
		FOR UPDATE
	`
	return r.queryBets(ctx, query, lotteryID)
}

func (r *BetRepository) queryBets(ctx context.Context, query string, args ...any) ([]*entities.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", database.ClassifyError(err))
	}
	defer rows.Close()

	var bets []*entities.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", database.ClassifyError(err))
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", database.ClassifyError(err))
	}
	return bets, nil
}

// MarkSettled records the outcome of still-pending bets
func (r *BetRepository) MarkSettled(ctx context.Context, betIDs []string, outcome entities.BetOutcome, drawID string, settledAt time.Time) (int64, error) {
	query := `
		UPDATE bets
		SET outcome = $2,
		    draw_id = $3,
		    settled_at = $4
		WHERE id = ANY($1) AND outcome = 'pending'
	`
	tag, err := r.q.Exec(ctx, query, betIDs, string(outcome), drawID, settledAt)
	if err != nil {
		return 0, fmt.Errorf("failed to settle bets: %w", database.ClassifyError(err))
	}
	return tag.RowsAffected(), nil
}

// SumAmounts returns the total staked across all bets
func (r *BetRepository) SumAmounts(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM bets`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum bets: %w", database.ClassifyError(err))
	}
	return total, nil
}
