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

// transferService implements the transfer ledger
type transferService struct {
	potRegistry    interfaces.PotRegistry
	potRepo        interfaces.PotRepository
	transferRepo   interfaces.TransferRepository
	eventPublisher interfaces.EventPublisher
}

// NewTransferService creates a new transfer service
func NewTransferService(
	potRepo interfaces.PotRepository,
	transferRepo interfaces.TransferRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.TransferService {
	return &transferService{
		potRegistry:    NewPotRegistry(potRepo, eventPublisher),
		potRepo:        potRepo,
		transferRepo:   transferRepo,
		eventPublisher: eventPublisher,
	}
}

// Transfer debits the source pot and credits the destination in the caller's
// transaction, then records the transfer
func (s *transferService) Transfer(ctx context.Context, req entities.TransferRequest) (*entities.TransferResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ID != "" {
		existing, err := s.transferRepo.GetByID(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get transfer: %w", err)
		}
		if existing != nil {
			if !req.Matches(existing) {
				return nil, entities.NewValidationError("transfer %s already recorded with different details", req.ID)
			}
			return &entities.TransferResult{Transfer: existing, Replayed: true}, nil
		}
	}

	if err := lockExisting(ctx, s.potRepo, req.FromPot, req.ToPot); err != nil {
		return nil, err
	}

	transfer := &entities.Transfer{
		ID:        req.ID,
		FromPot:   req.FromPot,
		ToPot:     req.ToPot,
		Amount:    req.Amount,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if transfer.ID == "" {
		transfer.ID = uuid.New().String()
	}

	outCause := entities.BalanceCause{Kind: entities.BalanceCauseTransferOut, Reference: transfer.ID}
	if _, err := s.potRegistry.AdjustBalance(ctx, req.FromPot, req.Amount.Neg(), outCause); err != nil {
		return nil, fmt.Errorf("failed to debit pot %s: %w", req.FromPot, err)
	}
	inCause := entities.BalanceCause{Kind: entities.BalanceCauseTransferIn, Reference: transfer.ID}
	if _, err := s.potRegistry.AdjustBalance(ctx, req.ToPot, req.Amount, inCause); err != nil {
		return nil, fmt.Errorf("failed to credit pot %s: %w", req.ToPot, err)
	}

	if err := s.transferRepo.Create(ctx, transfer); err != nil {
		return nil, fmt.Errorf("failed to record transfer: %w", err)
	}

	if err := s.eventPublisher.Publish(events.TransferCreatedEvent{
		TransferID: transfer.ID,
		FromPot:    transfer.FromPot,
		ToPot:      transfer.ToPot,
		Amount:     transfer.Amount,
		CreatedBy:  transfer.CreatedBy,
	}); err != nil {
		log.WithError(err).Error("failed to publish transfer created event")
	}

	log.WithFields(log.Fields{
		"transferId": transfer.ID,
		"fromPot":    transfer.FromPot,
		"toPot":      transfer.ToPot,
		"amount":     transfer.Amount.String(),
		"createdBy":  transfer.CreatedBy,
	}).Info("Transfer completed")

	return &entities.TransferResult{Transfer: transfer}, nil
}

// ListTransfers returns the most recent transfers
func (s *transferService) ListTransfers(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	transfers, err := s.transferRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

// lockExisting row-locks the named pots in name order and fails with
// ErrPotNotFound naming the first one missing
func lockExisting(ctx context.Context, potRepo interfaces.PotRepository, names ...string) error {
	locked, err := potRepo.LockByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to lock pots: %w", err)
	}
	found := make(map[string]bool, len(locked))
	for _, pot := range locked {
		found[pot.Name] = true
	}
	for _, name := range names {
		if !found[name] {
			return fmt.Errorf("%w: %s", entities.ErrPotNotFound, name)
		}
	}
	return nil
}
