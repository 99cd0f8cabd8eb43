package services

import (
	"context"
	"fmt"
	"time"

	"animalitos/domain/entities"
	"animalitos/domain/interfaces"
	"animalitos/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// potRegistry implements the pot registry on top of a pot repository
type potRegistry struct {
	potRepo        interfaces.PotRepository
	eventPublisher interfaces.EventPublisher
}

// NewPotRegistry creates a new pot registry
func NewPotRegistry(potRepo interfaces.PotRepository, eventPublisher interfaces.EventPublisher) interfaces.PotRegistry {
	return &potRegistry{
		potRepo:        potRepo,
		eventPublisher: eventPublisher,
	}
}

// GetPot returns the named pot
func (r *potRegistry) GetPot(ctx context.Context, name string) (*entities.Pot, error) {
	pot, err := r.potRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get pot %s: %w", name, err)
	}
	if pot == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrPotNotFound, name)
	}
	return pot, nil
}

// ListPots returns all pots ordered by name
func (r *potRegistry) ListPots(ctx context.Context) ([]*entities.Pot, error) {
	pots, err := r.potRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pots: %w", err)
	}
	entities.SortPotsByName(pots)
	return pots, nil
}

// AdjustBalance applies delta to the pot balance in one conditional update
func (r *potRegistry) AdjustBalance(ctx context.Context, name string, delta decimal.Decimal, cause entities.BalanceCause) (*entities.Pot, error) {
	if !entities.HasMoneyPrecision(delta) {
		return nil, entities.NewValidationError("balance delta %s has more than %d decimal places", delta.String(), entities.MoneyPlaces)
	}
	if delta.IsZero() {
		return r.GetPot(ctx, name)
	}

	pot, err := r.potRepo.AdjustBalance(ctx, name, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust pot %s balance by %s: %w", name, delta.String(), err)
	}

	log.WithFields(log.Fields{
		"pot":        pot.Name,
		"delta":      delta.String(),
		"newBalance": pot.Balance.String(),
		"version":    pot.Version,
		"cause":      cause.Kind,
		"reference":  cause.Reference,
	}).Debug("Adjusted pot balance")

	if err := r.eventPublisher.Publish(events.PotBalanceChangedEvent{
		PotName:    pot.Name,
		OldBalance: pot.Balance.Sub(delta),
		NewBalance: pot.Balance,
		Delta:      delta,
		Version:    pot.Version,
		Cause:      string(cause.Kind),
		Reference:  cause.Reference,
	}); err != nil {
		log.WithError(err).Error("failed to publish pot balance changed event")
	}

	return pot, nil
}

// ConfigurePots creates, updates and deactivates pots so that the active set
// matches configs exactly
func (r *potRegistry) ConfigurePots(ctx context.Context, configs []entities.PotConfig) ([]*entities.Pot, error) {
	if err := entities.ValidatePotConfigs(configs); err != nil {
		return nil, err
	}

	existing, err := r.potRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pots: %w", err)
	}
	names := make([]string, 0, len(existing))
	for _, pot := range existing {
		names = append(names, pot.Name)
	}

	// Lock every known pot so configuration cannot interleave with a distribution
	locked, err := r.potRepo.LockByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to lock pots: %w", err)
	}
	byName := make(map[string]*entities.Pot, len(locked))
	for _, pot := range locked {
		byName[pot.Name] = pot
	}

	now := time.Now().UTC()
	configured := make(map[string]bool, len(configs))
	for _, cfg := range configs {
		configured[cfg.Name] = true

		pot, ok := byName[cfg.Name]
		if !ok {
			pot = &entities.Pot{
				ID:          uuid.New().String(),
				Name:        cfg.Name,
				Percentage:  cfg.Percentage,
				Balance:     decimal.Zero,
				Color:       cfg.Color,
				Description: cfg.Description,
				Active:      true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := r.potRepo.Create(ctx, pot); err != nil {
				return nil, fmt.Errorf("failed to create pot %s: %w", cfg.Name, err)
			}
			byName[cfg.Name] = pot
			continue
		}

		pot.Percentage = cfg.Percentage
		pot.Color = cfg.Color
		pot.Description = cfg.Description
		pot.Active = true
		if err := r.potRepo.UpdateConfig(ctx, pot); err != nil {
			return nil, fmt.Errorf("failed to update pot %s: %w", cfg.Name, err)
		}
	}

	for name, pot := range byName {
		if configured[name] || !pot.Active {
			continue
		}
		pot.Percentage = decimal.Zero
		pot.Active = false
		if err := r.potRepo.UpdateConfig(ctx, pot); err != nil {
			return nil, fmt.Errorf("failed to deactivate pot %s: %w", name, err)
		}
	}

	result := make([]*entities.Pot, 0, len(byName))
	for _, pot := range byName {
		result = append(result, pot)
	}
	entities.SortPotsByName(result)

	log.WithFields(log.Fields{
		"activePots": len(configs),
		"totalPots":  len(result),
	}).Info("Pot configuration applied")

	return result, nil
}
