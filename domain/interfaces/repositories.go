package interfaces

import (
	"context"
	"time"

	"animalitos/domain/entities"
	"animalitos/events"

	"github.com/shopspring/decimal"
)

// PotRepository defines the interface for pot data access.
// Getters return nil, nil when the pot does not exist.
type PotRepository interface {
	// GetByName retrieves a pot by its unique name
	GetByName(ctx context.Context, name string) (*entities.Pot, error)

	// List returns all pots, active or not, ordered by name
	List(ctx context.Context) ([]*entities.Pot, error)

	// LockByNames row-locks the named pots in name order and returns the ones that exist
	LockByNames(ctx context.Context, names []string) ([]*entities.Pot, error)

	// LockActive row-locks every active pot in name order
	LockActive(ctx context.Context) ([]*entities.Pot, error)

	// Create inserts a new pot
	Create(ctx context.Context, pot *entities.Pot) error

	// UpdateConfig overwrites percentage, metadata and the active flag. Balance is untouched.
	UpdateConfig(ctx context.Context, pot *entities.Pot) error

	// AdjustBalance adds delta to the balance in one conditional update. It fails with
	// entities.ErrInsufficientFunds when the result would be negative and with
	// entities.ErrPotNotFound when the pot does not exist.
	AdjustBalance(ctx context.Context, name string, delta decimal.Decimal) (*entities.Pot, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// CreateIfAbsent inserts the bet unless one with the same id exists. It reports
	// whether a row was inserted.
	CreateIfAbsent(ctx context.Context, bet *entities.Bet) (bool, error)

	// GetByID retrieves a bet by id
	GetByID(ctx context.Context, id string) (*entities.Bet, error)

	// GetPendingByLottery returns the unsettled bets of a lottery
	GetPendingByLottery(ctx context.Context, lotteryID string) ([]*entities.Bet, error)

	// GetPendingByLotteryForUpdate returns the unsettled bets of a lottery with row locks
	GetPendingByLotteryForUpdate(ctx context.Context, lotteryID string) ([]*entities.Bet, error)

	// MarkSettled sets the outcome of pending bets and returns how many rows changed
	MarkSettled(ctx context.Context, betIDs []string, outcome entities.BetOutcome, drawID string, settledAt time.Time) (int64, error)

	// SumAmounts returns the total staked across all bets
	SumAmounts(ctx context.Context) (decimal.Decimal, error)
}

// DistributionRepository defines the interface for distribution line data access
type DistributionRepository interface {
	CreateLines(ctx context.Context, lines []entities.DistributionLine) error
	GetByBet(ctx context.Context, betID string) ([]*entities.DistributionLine, error)

	// SumByPot returns the total credited per pot
	SumByPot(ctx context.Context) (map[string]decimal.Decimal, error)
}

// TransferRepository defines the interface for transfer data access
type TransferRepository interface {
	Create(ctx context.Context, transfer *entities.Transfer) error
	GetByID(ctx context.Context, id string) (*entities.Transfer, error)

	// List returns the most recent transfers first
	List(ctx context.Context, limit int) ([]*entities.Transfer, error)

	// SumByPot returns the totals received and sent per pot
	SumByPot(ctx context.Context) (in map[string]decimal.Decimal, out map[string]decimal.Decimal, err error)
}

// WithdrawalRepository defines the interface for withdrawal data access
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *entities.Withdrawal) error
	GetByID(ctx context.Context, id string) (*entities.Withdrawal, error)
	List(ctx context.Context, limit int) ([]*entities.Withdrawal, error)
	SumByPot(ctx context.Context) (map[string]decimal.Decimal, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// CreateIfAbsent inserts the draw unless its lottery already has one. It reports
	// whether a row was inserted.
	CreateIfAbsent(ctx context.Context, draw *entities.Draw) (bool, error)

	GetByID(ctx context.Context, id string) (*entities.Draw, error)

	// GetByIDForUpdate retrieves a draw with a row lock
	GetByIDForUpdate(ctx context.Context, id string) (*entities.Draw, error)

	GetByLotteryID(ctx context.Context, lotteryID string) (*entities.Draw, error)

	// Update persists status, totals and settlement timestamps
	Update(ctx context.Context, draw *entities.Draw) error

	// SumPayoutsByPot returns the total paid by settled draws per payout pot
	SumPayoutsByPot(ctx context.Context) (map[string]decimal.Decimal, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}
