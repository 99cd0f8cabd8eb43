package interfaces

import (
	"context"

	"animalitos/domain/entities"

	"github.com/shopspring/decimal"
)

// PotRegistry is the only component allowed to change pot balances
type PotRegistry interface {
	// GetPot returns the named pot or entities.ErrPotNotFound
	GetPot(ctx context.Context, name string) (*entities.Pot, error)

	// ListPots returns every pot ordered by name
	ListPots(ctx context.Context) ([]*entities.Pot, error)

	// AdjustBalance applies delta atomically and stamps the pot's version
	AdjustBalance(ctx context.Context, name string, delta decimal.Decimal, cause entities.BalanceCause) (*entities.Pot, error)

	// ConfigurePots replaces the pot configuration. Percentages of the new set
	// must sum to 100; pots left out are deactivated, never deleted.
	ConfigurePots(ctx context.Context, configs []entities.PotConfig) ([]*entities.Pot, error)
}

// DistributionService splits bet stakes across pots
type DistributionService interface {
	// Distribute credits each active pot its share of the bet, at most once per bet id
	Distribute(ctx context.Context, intake entities.BetIntake) (*entities.DistributionResult, error)

	// GetDistribution returns the stored distribution of a bet
	GetDistribution(ctx context.Context, betID string) (*entities.DistributionResult, error)
}

// TransferService moves balances between pots
type TransferService interface {
	Transfer(ctx context.Context, req entities.TransferRequest) (*entities.TransferResult, error)
	ListTransfers(ctx context.Context, limit int) ([]*entities.Transfer, error)
}

// WithdrawalService takes balances out of the system
type WithdrawalService interface {
	Withdraw(ctx context.Context, req entities.WithdrawalRequest) (*entities.WithdrawalResult, error)
	ListWithdrawals(ctx context.Context, limit int) ([]*entities.Withdrawal, error)
}

// SettlementService records draws and pays out winners
type SettlementService interface {
	// RecordDraw creates the draw of a lottery, or returns the existing one
	RecordDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.Draw, error)

	// Settle pays out a draw at most once. A settled draw returns its stored result.
	Settle(ctx context.Context, draw *entities.Draw) (*entities.SettlementResult, error)

	// LotterySummary reports pending exposure of a lottery before its draw
	LotterySummary(ctx context.Context, lotteryID string) (*entities.LotterySummary, error)
}

// ReconciliationService audits balances against history
type ReconciliationService interface {
	Reconcile(ctx context.Context) (*entities.ReconciliationReport, error)
}
