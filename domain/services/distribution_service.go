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

// distributionService implements the distribution engine
type distributionService struct {
	potRegistry      interfaces.PotRegistry
	potRepo          interfaces.PotRepository
	betRepo          interfaces.BetRepository
	distributionRepo interfaces.DistributionRepository
	drawRepo         interfaces.DrawRepository
	eventPublisher   interfaces.EventPublisher
}

// NewDistributionService creates a new distribution service
func NewDistributionService(
	potRepo interfaces.PotRepository,
	betRepo interfaces.BetRepository,
	distributionRepo interfaces.DistributionRepository,
	drawRepo interfaces.DrawRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.DistributionService {
	return &distributionService{
		potRegistry:      NewPotRegistry(potRepo, eventPublisher),
		potRepo:          potRepo,
		betRepo:          betRepo,
		distributionRepo: distributionRepo,
		drawRepo:         drawRepo,
		eventPublisher:   eventPublisher,
	}
}

// Distribute records the bet and credits every active pot its share. All writes
// belong to the caller's transaction; a replay of the same bet credits nothing.
// A new bet is rejected once its lottery has a draw.
func (s *distributionService) Distribute(ctx context.Context, intake entities.BetIntake) (*entities.DistributionResult, error) {
	if err := intake.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.betRepo.GetByID(ctx, intake.BetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if existing != nil {
		return s.replay(ctx, intake, existing)
	}

	now := time.Now().UTC()
	bet := intake.ToBet(now)

	// Inserting first makes a concurrent placement of the same bet wait here
	// instead of double-crediting.
	created, err := s.betRepo.CreateIfAbsent(ctx, bet)
	if err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}
	if !created {
		existing, err := s.betRepo.GetByID(ctx, intake.BetID)
		if err != nil {
			return nil, fmt.Errorf("failed to get bet: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("bet %s vanished after conflicting insert", intake.BetID)
		}
		return s.replay(ctx, intake, existing)
	}

	pots, err := s.potRepo.LockActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pots: %w", err)
	}

	// Settlement takes the payout pot lock before reading pending bets, so this
	// check runs either before the draw's transaction or after it committed.
	draw, err := s.drawRepo.GetByLotteryID(ctx, bet.LotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw != nil {
		return nil, entities.NewValidationError("lottery %s is closed: draw %s already recorded", bet.LotteryID, draw.ID)
	}

	lines, err := entities.ComputeShares(intake.Amount, pots)
	if err != nil {
		return nil, err
	}

	shares := make(map[string]decimal.Decimal, len(lines))
	for i := range lines {
		lines[i].BetID = bet.ID
		lines[i].CreatedAt = now

		cause := entities.BalanceCause{Kind: entities.BalanceCauseDistribution, Reference: bet.ID}
		if _, err := s.potRegistry.AdjustBalance(ctx, lines[i].PotName, lines[i].Amount, cause); err != nil {
			return nil, fmt.Errorf("failed to credit pot %s: %w", lines[i].PotName, err)
		}
		shares[lines[i].PotName] = lines[i].Amount
	}

	if err := s.distributionRepo.CreateLines(ctx, lines); err != nil {
		return nil, fmt.Errorf("failed to record distribution lines: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BetDistributedEvent{
		BetID:     bet.ID,
		LotteryID: bet.LotteryID,
		Amount:    bet.Amount,
		Shares:    shares,
	}); err != nil {
		log.WithError(err).Error("failed to publish bet distributed event")
	}

	log.WithFields(log.Fields{
		"betId":     bet.ID,
		"lotteryId": bet.LotteryID,
		"amount":    bet.Amount.String(),
		"pots":      len(lines),
	}).Info("Bet distributed")

	return &entities.DistributionResult{BetID: bet.ID, Shares: shares}, nil
}

// GetDistribution returns the stored distribution of a bet
func (s *distributionService) GetDistribution(ctx context.Context, betID string) (*entities.DistributionResult, error) {
	lines, err := s.distributionRepo.GetByBet(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", entities.ErrBetNotFound, betID)
	}
	return entities.NewDistributionResult(betID, lines), nil
}

func (s *distributionService) replay(ctx context.Context, intake entities.BetIntake, existing *entities.Bet) (*entities.DistributionResult, error) {
	if !intake.Matches(existing) {
		return nil, entities.NewValidationError("bet %s already recorded with different details", intake.BetID)
	}

	lines, err := s.distributionRepo.GetByBet(ctx, intake.BetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution lines: %w", err)
	}

	log.WithFields(log.Fields{
		"betId": intake.BetID,
	}).Info("Bet already distributed, returning stored result")

	result := entities.NewDistributionResult(intake.BetID, lines)
	result.Replayed = true
	return result, nil
}
