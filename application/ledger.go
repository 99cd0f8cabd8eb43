package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
	"animalitos/domain/services"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Operation outcomes reported to the OperationRecorder
const (
	OutcomeSuccess     = "success"
	OutcomeReplayed    = "replayed"
	OutcomeLocal       = "local"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// OperationRecorder receives one call per ledger operation
type OperationRecorder interface {
	RecordOperation(ctx context.Context, operation, outcome string)
}

// LedgerConfig wires the optional parts of a Ledger
type LedgerConfig struct {
	// PrizePot is the pot settlements pay out of
	PrizePot string

	// FallbackEnabled lets mutations run against Local when the remote store is unavailable
	FallbackEnabled bool
	Local           UnitOfWorkFactory
	Journal         LocalJournal

	Recorder OperationRecorder
}

// Ledger is the entry point for every ledger operation. Each call runs in its
// own unit of work against the authoritative store, falling back to the local
// store for bets, transfers and withdrawals when the authoritative store is
// unreachable.
type Ledger struct {
	remote   UnitOfWorkFactory
	local    UnitOfWorkFactory
	journal  LocalJournal
	fallback bool
	prizePot string
	recorder OperationRecorder
	syncMu   sync.Mutex
}

// NewLedger creates a ledger over the authoritative unit of work factory
func NewLedger(remote UnitOfWorkFactory, cfg LedgerConfig) *Ledger {
	return &Ledger{
		remote:   remote,
		local:    cfg.Local,
		journal:  cfg.Journal,
		fallback: cfg.FallbackEnabled && cfg.Local != nil,
		prizePot: cfg.PrizePot,
		recorder: cfg.Recorder,
	}
}

// PrizePot returns the pot settlements pay out of
func (l *Ledger) PrizePot() string {
	return l.prizePot
}

// PlaceBet records a bet and distributes its stake across the active pots
func (l *Ledger) PlaceBet(ctx context.Context, intake entities.BetIntake) (*entities.DistributionResult, error) {
	var result *entities.DistributionResult
	locally, err := l.mutate(ctx, "place_bet", func(uow UnitOfWork) error {
		var err error
		result, err = distributionService(uow).Distribute(ctx, intake)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.LocallyApplied = locally
	l.record(ctx, "place_bet", outcomeOf(result.Replayed, locally))

	log.WithFields(log.Fields{
		"betId":          intake.BetID,
		"lotteryId":      intake.LotteryID,
		"amount":         intake.Amount.String(),
		"replayed":       result.Replayed,
		"locallyApplied": locally,
	}).Info("Bet placed")
	return result, nil
}

// Transfer moves balance between two pots
func (l *Ledger) Transfer(ctx context.Context, req entities.TransferRequest) (*entities.TransferResult, error) {
	// A fixed id keeps the operation idempotent across a retry on the local store
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	var result *entities.TransferResult
	locally, err := l.mutate(ctx, "transfer", func(uow UnitOfWork) error {
		var err error
		result, err = transferService(uow).Transfer(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.LocallyApplied = locally
	l.record(ctx, "transfer", outcomeOf(result.Replayed, locally))
	return result, nil
}

// Withdraw removes money from a pot
func (l *Ledger) Withdraw(ctx context.Context, req entities.WithdrawalRequest) (*entities.WithdrawalResult, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	var result *entities.WithdrawalResult
	locally, err := l.mutate(ctx, "withdraw", func(uow UnitOfWork) error {
		var err error
		result, err = withdrawalService(uow).Withdraw(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.LocallyApplied = locally
	l.record(ctx, "withdraw", outcomeOf(result.Replayed, locally))
	return result, nil
}

// ListTransfers returns the most recent transfers
func (l *Ledger) ListTransfers(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	var transfers []*entities.Transfer
	err := l.read(ctx, "list_transfers", func(uow UnitOfWork) error {
		var err error
		transfers, err = transferService(uow).ListTransfers(ctx, limit)
		return err
	})
	return transfers, err
}

// ListWithdrawals returns the most recent withdrawals
func (l *Ledger) ListWithdrawals(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	var withdrawals []*entities.Withdrawal
	err := l.read(ctx, "list_withdrawals", func(uow UnitOfWork) error {
		var err error
		withdrawals, err = withdrawalService(uow).ListWithdrawals(ctx, limit)
		return err
	})
	return withdrawals, err
}

// RecordDraw stores the draw of a lottery. Draws only go to the authoritative store.
func (l *Ledger) RecordDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.Draw, error) {
	var draw *entities.Draw
	err := l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
		var err error
		draw, err = l.settlementService(uow).RecordDraw(ctx, trigger)
		return err
	})
	if err != nil {
		l.record(ctx, "record_draw", outcomeOfError(err))
		return nil, err
	}
	l.record(ctx, "record_draw", OutcomeSuccess)
	return draw, nil
}

// Settle pays out a recorded draw. A prize pool shortfall is persisted as a
// failed draw and returned as entities.ErrPrizePoolInsufficient.
func (l *Ledger) Settle(ctx context.Context, drawID string) (*entities.SettlementResult, error) {
	outcome, err := l.settle(ctx, func(uow UnitOfWork) (*entities.Draw, error) {
		draw, err := uow.DrawRepository().GetByID(ctx, drawID)
		if err != nil {
			return nil, fmt.Errorf("failed to get draw: %w", err)
		}
		if draw == nil {
			return nil, fmt.Errorf("%w: %s", entities.ErrDrawNotFound, drawID)
		}
		return draw, nil
	})
	if err != nil {
		return nil, err
	}
	return outcome.Result, nil
}

// TriggerDraw records the draw and settles it in one transaction
func (l *Ledger) TriggerDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.DrawOutcome, error) {
	return l.settle(ctx, func(uow UnitOfWork) (*entities.Draw, error) {
		return l.settlementService(uow).RecordDraw(ctx, trigger)
	})
}

func (l *Ledger) settle(ctx context.Context, load func(uow UnitOfWork) (*entities.Draw, error)) (*entities.DrawOutcome, error) {
	var outcome *entities.DrawOutcome
	var settleErr error
	err := l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
		draw, err := load(uow)
		if err != nil {
			return err
		}
		result, err := l.settlementService(uow).Settle(ctx, draw)
		if err != nil {
			if !errors.Is(err, entities.ErrPrizePoolInsufficient) {
				return err
			}
			// The failed status has to be committed
			settleErr = err
		}
		outcome = &entities.DrawOutcome{Draw: draw, Result: result}
		return nil
	})
	if err != nil {
		l.record(ctx, "settle", outcomeOfError(err))
		return nil, err
	}
	if settleErr != nil {
		l.record(ctx, "settle", OutcomeRejected)
		return nil, settleErr
	}

	l.record(ctx, "settle", outcomeOf(outcome.Result.Replayed, false))
	log.WithFields(log.Fields{
		"drawId":       outcome.Draw.ID,
		"lotteryId":    outcome.Draw.LotteryID,
		"totalPayout":  outcome.Result.TotalPayout.String(),
		"winnersCount": outcome.Result.WinnersCount,
		"replayed":     outcome.Result.Replayed,
	}).Info("Draw settled")
	return outcome, nil
}

// LotterySummary reports pending exposure of a lottery
func (l *Ledger) LotterySummary(ctx context.Context, lotteryID string) (*entities.LotterySummary, error) {
	var summary *entities.LotterySummary
	err := l.read(ctx, "lottery_summary", func(uow UnitOfWork) error {
		var err error
		summary, err = l.settlementService(uow).LotterySummary(ctx, lotteryID)
		return err
	})
	return summary, err
}

// GetDistribution returns how a recorded bet was split across the pots
func (l *Ledger) GetDistribution(ctx context.Context, betID string) (*entities.DistributionResult, error) {
	var result *entities.DistributionResult
	err := l.read(ctx, "get_distribution", func(uow UnitOfWork) error {
		var err error
		result, err = distributionService(uow).GetDistribution(ctx, betID)
		return err
	})
	return result, err
}

// ListPots returns every pot ordered by name. It reads the local snapshot when
// the authoritative store is unreachable.
func (l *Ledger) ListPots(ctx context.Context) ([]*entities.Pot, error) {
	var pots []*entities.Pot
	err := l.read(ctx, "list_pots", func(uow UnitOfWork) error {
		var err error
		pots, err = potRegistry(uow).ListPots(ctx)
		return err
	})
	return pots, err
}

// GetPot returns one pot by name
func (l *Ledger) GetPot(ctx context.Context, name string) (*entities.Pot, error) {
	var pot *entities.Pot
	err := l.read(ctx, "get_pot", func(uow UnitOfWork) error {
		var err error
		pot, err = potRegistry(uow).GetPot(ctx, name)
		return err
	})
	return pot, err
}

// ConfigurePots replaces the active pot configuration
func (l *Ledger) ConfigurePots(ctx context.Context, configs []entities.PotConfig) ([]*entities.Pot, error) {
	var pots []*entities.Pot
	err := l.inUnitOfWork(ctx, l.remote, func(uow UnitOfWork) error {
		var err error
		pots, err = potRegistry(uow).ConfigurePots(ctx, configs)
		return err
	})
	if err != nil {
		l.record(ctx, "configure_pots", outcomeOfError(err))
		return nil, err
	}
	l.record(ctx, "configure_pots", OutcomeSuccess)

	log.WithFields(log.Fields{
		"potCount": len(configs),
	}).Info("Pots configured")
	return pots, nil
}

// SeedPots configures pots only when the registry is empty. It reports whether
// anything was written.
func (l *Ledger) SeedPots(ctx context.Context, configs []entities.PotConfig) (bool, error) {
	existing, err := l.ListPots(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list pots: %w", err)
	}
	if len(existing) > 0 {
		log.WithFields(log.Fields{
			"potCount": len(existing),
		}).Debug("Pot registry already configured, skipping seed")
		return false, nil
	}
	if _, err := l.ConfigurePots(ctx, configs); err != nil {
		return false, fmt.Errorf("failed to seed pots: %w", err)
	}
	return true, nil
}

// Reconcile recomputes every pot from history and adds the local journal state.
// Balances and history are read from one snapshot so concurrent writes cannot
// show up as drift.
func (l *Ledger) Reconcile(ctx context.Context) (*entities.ReconciliationReport, error) {
	var report *entities.ReconciliationReport
	err := l.inUnitOfWork(ctx, snapshotOf(l.remote), func(uow UnitOfWork) error {
		var err error
		report, err = services.NewReconciliationService(
			uow.PotRepository(),
			uow.BetRepository(),
			uow.DistributionRepository(),
			uow.TransferRepository(),
			uow.WithdrawalRepository(),
			uow.DrawRepository(),
			uow.EventBus(),
		).Reconcile(ctx)
		return err
	})
	if err != nil {
		l.record(ctx, "reconcile", outcomeOfError(err))
		return nil, err
	}

	if l.journal != nil {
		stats, err := l.journal.JournalStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read local journal: %w", err)
		}
		report.Unsynced = stats.Unsynced
		report.PendingEntries = stats.Pending
		report.Conflicts = stats.Conflicts
	}

	l.record(ctx, "reconcile", OutcomeSuccess)
	return report, nil
}

func (l *Ledger) settlementService(uow UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(
		uow.PotRepository(),
		uow.BetRepository(),
		uow.DrawRepository(),
		uow.EventBus(),
		l.prizePot,
	)
}

func potRegistry(uow UnitOfWork) interfaces.PotRegistry {
	return services.NewPotRegistry(uow.PotRepository(), uow.EventBus())
}

func distributionService(uow UnitOfWork) interfaces.DistributionService {
	return services.NewDistributionService(
		uow.PotRepository(),
		uow.BetRepository(),
		uow.DistributionRepository(),
		uow.DrawRepository(),
		uow.EventBus(),
	)
}

func transferService(uow UnitOfWork) interfaces.TransferService {
	return services.NewTransferService(uow.PotRepository(), uow.TransferRepository(), uow.EventBus())
}

func withdrawalService(uow UnitOfWork) interfaces.WithdrawalService {
	return services.NewWithdrawalService(uow.PotRepository(), uow.WithdrawalRepository(), uow.EventBus())
}

// inUnitOfWork runs fn in one transaction of factory, committing when fn succeeds
func (l *Ledger) inUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mutate runs fn against the authoritative store and, when that store is
// unavailable and fallback is on, against the local one
func (l *Ledger) mutate(ctx context.Context, operation string, fn func(uow UnitOfWork) error) (bool, error) {
	err := l.inUnitOfWork(ctx, l.remote, fn)
	if err == nil {
		return false, nil
	}
	if !l.fallback || !errors.Is(err, entities.ErrStorageUnavailable) {
		l.record(ctx, operation, outcomeOfError(err))
		return false, err
	}

	log.WithFields(log.Fields{
		"operation": operation,
		"error":     err,
	}).Warn("Authoritative store unavailable, applying operation locally")

	if localErr := l.inUnitOfWork(ctx, l.local, fn); localErr != nil {
		l.record(ctx, operation, outcomeOfError(localErr))
		return true, fmt.Errorf("failed to apply %s locally: %w", operation, localErr)
	}
	return true, nil
}

// read is mutate for queries: a fallback read serves the local snapshot
func (l *Ledger) read(ctx context.Context, operation string, fn func(uow UnitOfWork) error) error {
	err := l.inUnitOfWork(ctx, l.remote, fn)
	if err == nil || !l.fallback || !errors.Is(err, entities.ErrStorageUnavailable) {
		return err
	}

	log.WithFields(log.Fields{
		"operation": operation,
		"error":     err,
	}).Warn("Authoritative store unavailable, reading local snapshot")

	return l.inUnitOfWork(ctx, l.local, fn)
}

func (l *Ledger) record(ctx context.Context, operation, outcome string) {
	if l.recorder != nil {
		l.recorder.RecordOperation(ctx, operation, outcome)
	}
}

func outcomeOf(replayed, locally bool) string {
	switch {
	case locally:
		return OutcomeLocal
	case replayed:
		return OutcomeReplayed
	default:
		return OutcomeSuccess
	}
}

func outcomeOfError(err error) string {
	switch {
	case errors.Is(err, entities.ErrStorageUnavailable):
		return OutcomeUnavailable
	case errors.Is(err, entities.ErrValidation),
		errors.Is(err, entities.ErrInsufficientFunds),
		errors.Is(err, entities.ErrPrizePoolInsufficient):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
