package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pot is a named fund holding a running balance and a share of incoming bet money.
type Pot struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Percentage  decimal.Decimal `json:"percentage"`
	Balance     decimal.Decimal `json:"balance"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PotConfig is the administrator-editable part of a pot.
type PotConfig struct {
	Name        string          `json:"name" toml:"name"`
	Percentage  decimal.Decimal `json:"percentage" toml:"percentage"`
	Color       string          `json:"color" toml:"color"`
	Description string          `json:"description" toml:"description"`
}

// CanDebit reports whether the pot can give up amount without going negative.
func (p *Pot) CanDebit(amount decimal.Decimal) bool {
	return p.Balance.GreaterThanOrEqual(amount)
}

// ValidatePotConfigs checks a full pot configuration: names unique and non-empty,
// percentages within 0..100 and summing to exactly 100.
func ValidatePotConfigs(configs []PotConfig) error {
	if len(configs) == 0 {
		return NewValidationError("at least one pot is required")
	}

	seen := make(map[string]bool, len(configs))
	total := decimal.Zero
	for _, cfg := range configs {
		name := strings.TrimSpace(cfg.Name)
		if name == "" {
			return NewValidationError("pot name must not be empty")
		}
		if name != cfg.Name {
			return NewValidationError("pot name %q has surrounding whitespace", cfg.Name)
		}
		if seen[name] {
			return NewValidationError("duplicate pot name %q", name)
		}
		seen[name] = true

		if cfg.Percentage.IsNegative() || cfg.Percentage.GreaterThan(hundred) {
			return NewValidationError("pot %q percentage must be between 0 and 100, got %s", name, cfg.Percentage.String())
		}
		if !cfg.Percentage.Equal(cfg.Percentage.Round(PercentPlaces)) {
			return NewValidationError("pot %q percentage must have at most %d decimal places, got %s", name, PercentPlaces, cfg.Percentage.String())
		}
		total = total.Add(cfg.Percentage)
	}

	if !total.Equal(hundred) {
		return NewValidationError("pot percentages must sum to 100, got %s", total.String())
	}
	return nil
}

// BalanceCauseKind names the ledger operation behind a balance adjustment.
type BalanceCauseKind string

const (
	BalanceCauseDistribution BalanceCauseKind = "distribution"
	BalanceCauseTransferOut  BalanceCauseKind = "transfer_out"
	BalanceCauseTransferIn   BalanceCauseKind = "transfer_in"
	BalanceCauseWithdrawal   BalanceCauseKind = "withdrawal"
	BalanceCausePayout       BalanceCauseKind = "payout"
)

// BalanceCause ties an adjustment to the record that caused it.
type BalanceCause struct {
	Kind      BalanceCauseKind
	Reference string
}
