package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
	"animalitos/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// settlementService implements draw settlement
type settlementService struct {
	potRegistry    interfaces.PotRegistry
	potRepo        interfaces.PotRepository
	betRepo        interfaces.BetRepository
	drawRepo       interfaces.DrawRepository
	eventPublisher interfaces.EventPublisher
	prizePot       string
}

// NewSettlementService creates a new settlement service paying winners out of prizePot
func NewSettlementService(
	potRepo interfaces.PotRepository,
	betRepo interfaces.BetRepository,
	drawRepo interfaces.DrawRepository,
	eventPublisher interfaces.EventPublisher,
	prizePot string,
) interfaces.SettlementService {
	return &settlementService{
		potRegistry:    NewPotRegistry(potRepo, eventPublisher),
		potRepo:        potRepo,
		betRepo:        betRepo,
		drawRepo:       drawRepo,
		eventPublisher: eventPublisher,
		prizePot:       prizePot,
	}
}

// RecordDraw creates the open draw of a lottery. A repeated trigger with the
// same winning number returns the draw already recorded.
func (s *settlementService) RecordDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.Draw, error) {
	if err := trigger.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.drawRepo.GetByLotteryID(ctx, trigger.LotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if existing != nil {
		return matchTrigger(existing, trigger)
	}

	draw := &entities.Draw{
		ID:                  uuid.New().String(),
		LotteryID:           trigger.LotteryID,
		WinningAnimalNumber: trigger.WinningAnimalNumber,
		DrawTime:            trigger.DrawTime.UTC(),
		Status:              entities.DrawStatusOpen,
		PayoutPot:           s.prizePot,
		TotalPayout:         decimal.Zero,
		CreatedAt:           time.Now().UTC(),
	}

	created, err := s.drawRepo.CreateIfAbsent(ctx, draw)
	if err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}
	if !created {
		existing, err := s.drawRepo.GetByLotteryID(ctx, trigger.LotteryID)
		if err != nil {
			return nil, fmt.Errorf("failed to get draw: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("draw for lottery %s vanished after conflicting insert", trigger.LotteryID)
		}
		return matchTrigger(existing, trigger)
	}

	log.WithFields(log.Fields{
		"drawId":              draw.ID,
		"lotteryId":           draw.LotteryID,
		"winningAnimalNumber": draw.WinningAnimalNumber,
	}).Info("Draw recorded")

	return draw, nil
}

func matchTrigger(existing *entities.Draw, trigger entities.DrawTrigger) (*entities.Draw, error) {
	if existing.WinningAnimalNumber != trigger.WinningAnimalNumber {
		return nil, entities.NewValidationError("lottery %s already drawn with animal number %s",
			trigger.LotteryID, existing.WinningAnimalNumber)
	}
	return existing, nil
}

// Settle pays the winners of a draw out of its payout pot and closes every
// pending bet of the lottery.
//
// When the payout pot cannot cover the winners the draw is marked failed and an
// error wrapping ErrPrizePoolInsufficient is returned. That status change is the
// only write made, and the caller is expected to commit it.
func (s *settlementService) Settle(ctx context.Context, draw *entities.Draw) (*entities.SettlementResult, error) {
	if draw == nil {
		return nil, entities.NewValidationError("draw is required")
	}
	if draw.IsSettled() {
		return entities.SettlementResultFromDraw(draw), nil
	}

	locked, err := s.drawRepo.GetByIDForUpdate(ctx, draw.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock draw: %w", err)
	}
	if locked == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrDrawNotFound, draw.ID)
	}
	if locked.IsSettled() {
		return entities.SettlementResultFromDraw(locked), nil
	}
	if err := locked.BeginSettling(); err != nil {
		return nil, err
	}

	// Waits for distributions still holding pot locks to commit their bets
	if _, err := s.potRepo.LockByNames(ctx, []string{locked.PayoutPot}); err != nil {
		return nil, fmt.Errorf("failed to lock payout pot: %w", err)
	}

	bets, err := s.betRepo.GetPendingByLotteryForUpdate(ctx, locked.LotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bets: %w", err)
	}
	winners, losers := entities.PartitionBets(bets, locked.WinningAnimalNumber)
	totalPayout := entities.TotalPotentialWin(winners)

	if totalPayout.IsPositive() {
		cause := entities.BalanceCause{Kind: entities.BalanceCausePayout, Reference: locked.ID}
		_, err := s.potRegistry.AdjustBalance(ctx, locked.PayoutPot, totalPayout.Neg(), cause)
		if errors.Is(err, entities.ErrInsufficientFunds) {
			return nil, s.fail(ctx, locked, totalPayout, len(winners))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to debit payout pot %s: %w", locked.PayoutPot, err)
		}
	}

	now := time.Now().UTC()
	if err := s.markBets(ctx, winners, entities.BetOutcomeWinner, locked.ID, now); err != nil {
		return nil, err
	}
	if err := s.markBets(ctx, losers, entities.BetOutcomeLoser, locked.ID, now); err != nil {
		return nil, err
	}

	if err := locked.MarkSettled(totalPayout, len(winners), now); err != nil {
		return nil, err
	}
	if err := s.drawRepo.Update(ctx, locked); err != nil {
		return nil, fmt.Errorf("failed to update draw: %w", err)
	}
	*draw = *locked

	if err := s.eventPublisher.Publish(events.DrawSettledEvent{
		DrawID:              locked.ID,
		LotteryID:           locked.LotteryID,
		WinningAnimalNumber: locked.WinningAnimalNumber,
		PayoutPot:           locked.PayoutPot,
		TotalPayout:         totalPayout,
		WinnersCount:        len(winners),
		LosersCount:         len(losers),
	}); err != nil {
		log.WithError(err).Error("failed to publish draw settled event")
	}

	log.WithFields(log.Fields{
		"drawId":       locked.ID,
		"lotteryId":    locked.LotteryID,
		"totalPayout":  totalPayout.String(),
		"winnersCount": len(winners),
		"losersCount":  len(losers),
	}).Info("Draw settled")

	return &entities.SettlementResult{
		DrawID:       locked.ID,
		TotalPayout:  totalPayout,
		WinnersCount: len(winners),
		LosersCount:  len(losers),
	}, nil
}

// fail persists the failed status and reports the shortfall
func (s *settlementService) fail(ctx context.Context, draw *entities.Draw, required decimal.Decimal, winners int) error {
	reason := fmt.Sprintf("pot %s cannot cover payout of %s to %d winners", draw.PayoutPot, required.String(), winners)
	if err := draw.MarkFailed(reason); err != nil {
		return err
	}
	if err := s.drawRepo.Update(ctx, draw); err != nil {
		return fmt.Errorf("failed to update draw: %w", err)
	}

	if err := s.eventPublisher.Publish(events.DrawSettlementFailedEvent{
		DrawID:         draw.ID,
		LotteryID:      draw.LotteryID,
		PayoutPot:      draw.PayoutPot,
		RequiredPayout: required,
		Reason:         reason,
	}); err != nil {
		log.WithError(err).Error("failed to publish draw settlement failed event")
	}

	log.WithFields(log.Fields{
		"drawId":    draw.ID,
		"lotteryId": draw.LotteryID,
		"payoutPot": draw.PayoutPot,
		"required":  required.String(),
	}).Warn("Draw settlement failed, operator decision required")

	return fmt.Errorf("%w: %s", entities.ErrPrizePoolInsufficient, reason)
}

func (s *settlementService) markBets(ctx context.Context, bets []*entities.Bet, outcome entities.BetOutcome, drawID string, at time.Time) error {
	if len(bets) == 0 {
		return nil
	}
	updated, err := s.betRepo.MarkSettled(ctx, entities.BetIDs(bets), outcome, drawID, at)
	if err != nil {
		return fmt.Errorf("failed to mark %s bets: %w", outcome, err)
	}
	if updated != int64(len(bets)) {
		return fmt.Errorf("expected to settle %d %s bets, settled %d", len(bets), outcome, updated)
	}
	return nil
}

// LotterySummary reports the pending exposure of a lottery
func (s *settlementService) LotterySummary(ctx context.Context, lotteryID string) (*entities.LotterySummary, error) {
	if lotteryID == "" {
		return nil, entities.NewValidationError("lottery id is required")
	}

	bets, err := s.betRepo.GetPendingByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bets: %w", err)
	}
	summary := entities.SummarizePendingBets(lotteryID, bets)

	draw, err := s.drawRepo.GetByLotteryID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	summary.Draw = draw

	return summary, nil
}
