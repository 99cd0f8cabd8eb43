package services

import (
	"context"
	"fmt"
	"time"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
	"animalitos/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// withdrawalService implements the withdrawal ledger
type withdrawalService struct {
	potRegistry    interfaces.PotRegistry
	potRepo        interfaces.PotRepository
	withdrawalRepo interfaces.WithdrawalRepository
	eventPublisher interfaces.EventPublisher
}

// NewWithdrawalService creates a new withdrawal service
func NewWithdrawalService(
	potRepo interfaces.PotRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WithdrawalService {
	return &withdrawalService{
		potRegistry:    NewPotRegistry(potRepo, eventPublisher),
		potRepo:        potRepo,
		withdrawalRepo: withdrawalRepo,
		eventPublisher: eventPublisher,
	}
}

// Withdraw debits the pot and records the withdrawal
func (s *withdrawalService) Withdraw(ctx context.Context, req entities.WithdrawalRequest) (*entities.WithdrawalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ID != "" {
		existing, err := s.withdrawalRepo.GetByID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get withdrawal: %w", err)
		}
		if existing != nil {
			if !req.Matches(existing) {
				return nil, entities.NewValidationError("withdrawal %s already recorded with different details", req.ID)
			}
			return &entities.WithdrawalResult{Withdrawal: existing, Replayed: true}, nil
		}
	}

	if err := lockExisting(ctx, s.potRepo, req.FromPot); err != nil {
		return nil, err
	}

	withdrawal := &entities.Withdrawal{
		ID:        req.ID,
		FromPot:   req.FromPot,
		Amount:    req.Amount,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if withdrawal.ID == "" {
		withdrawal.ID = uuid.New().String()
	}

	cause := entities.BalanceCause{Kind: entities.BalanceCauseWithdrawal, Reference: withdrawal.ID}
	if _, err := s.potRegistry.AdjustBalance(ctx, req.FromPot, req.Amount.Neg(), cause); err != nil {
		return nil, fmt.Errorf("failed to debit pot %s: %w", req.FromPot, err)
	}

	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return nil, fmt.Errorf("failed to record withdrawal: %w", err)
	}

	if err := s.eventPublisher.Publish(events.WithdrawalCreatedEvent{
		WithdrawalID: withdrawal.ID,
		FromPot:      withdrawal.FromPot,
		Amount:       withdrawal.Amount,
		CreatedBy:    withdrawal.CreatedBy,
	}); err != nil {
		log.WithError(err).Error("failed to publish withdrawal created event")
	}

	log.WithFields(log.Fields{
		"withdrawalId": withdrawal.ID,
		"fromPot":      withdrawal.FromPot,
		"amount":       withdrawal.Amount.String(),
		"createdBy":    withdrawal.CreatedBy,
	}).Info("Withdrawal completed")

	return &entities.WithdrawalResult{Withdrawal: withdrawal}, nil
}

func (s *withdrawalService) ListWithdrawals(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	withdrawals, err := s.withdrawalRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return withdrawals, nil
}
