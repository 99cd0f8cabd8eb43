package services

import (
	"context"
	"fmt"
	"time"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
	"animalitos/events"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// reconciliationService recomputes pot balances from history. It never writes.
type reconciliationService struct {
	potRepo          interfaces.PotRepository
	betRepo          interfaces.BetRepository
	distributionRepo interfaces.DistributionRepository
	transferRepo     interfaces.TransferRepository
	withdrawalRepo   interfaces.WithdrawalRepository
	drawRepo         interfaces.DrawRepository
	eventPublisher   interfaces.EventPublisher
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	potRepo interfaces.PotRepository,
	betRepo interfaces.BetRepository,
	distributionRepo interfaces.DistributionRepository,
	transferRepo interfaces.TransferRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	drawRepo interfaces.DrawRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ReconciliationService {
	return &reconciliationService{
		potRepo:          potRepo,
		betRepo:          betRepo,
		distributionRepo: distributionRepo,
		transferRepo:     transferRepo,
		withdrawalRepo:   withdrawalRepo,
		drawRepo:         drawRepo,
		eventPublisher:   eventPublisher,
	}
}

// Reconcile compares every pot's stored balance with distributions, transfers,
// withdrawals and settled payouts
func (s *reconciliationService) Reconcile(ctx context.Context) (*entities.ReconciliationReport, error) {
	pots, err := s.potRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pots: %w", err)
	}
	distributed, err := s.distributionRepo.SumByPot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum distributions: %w", err)
	}
	transfersIn, transfersOut, err := s.transferRepo.SumByPot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum transfers: %w", err)
	}
	withdrawn, err := s.withdrawalRepo.SumByPot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum withdrawals: %w", err)
	}
	paidOut, err := s.drawRepo.SumPayoutsByPot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payouts: %w", err)
	}
	betTotal, err := s.betRepo.SumAmounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum bets: %w", err)
	}

	history := make(map[string]entities.PotHistory)
	entry := func(name string) entities.PotHistory {
		h, ok := history[name]
		if !ok {
			h = entities.PotHistory{
				Distributed:  decimal.Zero,
				TransfersIn:  decimal.Zero,
				TransfersOut: decimal.Zero,
				Withdrawn:    decimal.Zero,
				PaidOut:      decimal.Zero,
			}
		}
		return h
	}
	for name, v := range distributed {
		h := entry(name)
		h.Distributed = v
		history[name] = h
	}
	for name, v := range transfersIn {
		h := entry(name)
		h.TransfersIn = v
		history[name] = h
	}
	for name, v := range transfersOut {
		h := entry(name)
		h.TransfersOut = v
		history[name] = h
	}
	for name, v := range withdrawn {
		h := entry(name)
		h.Withdrawn = v
		history[name] = h
	}
	for name, v := range paidOut {
		h := entry(name)
		h.PaidOut = v
		history[name] = h
	}

	totals := entities.LedgerTotals{
		BetAmounts:  betTotal,
		Withdrawals: entities.SumMap(withdrawn),
		Payouts:     entities.SumMap(paidOut),
	}
	report := entities.BuildReconciliationReport(pots, history, totals, time.Now().UTC())

	drifted := report.DriftedPots()
	if len(drifted) > 0 || !report.GlobalDrift.IsZero() {
		driftByPot := make(map[string]decimal.Decimal, len(drifted))
		for _, d := range drifted {
			driftByPot[d.Pot] = d.Drift
		}
		if err := s.eventPublisher.Publish(events.ReconciliationDriftDetectedEvent{
			DriftedPots: driftByPot,
			GlobalDrift: report.GlobalDrift,
		}); err != nil {
			log.WithError(err).Error("failed to publish reconciliation drift event")
		}

		log.WithFields(log.Fields{
			"driftedPots": len(drifted),
			"globalDrift": report.GlobalDrift.String(),
		}).Warn("Reconciliation found drift")
	}

	return report, nil
}
