package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal removes balance from a pot and from the system.
type Withdrawal struct {
	ID        string          `json:"id"`
	FromPot   string          `json:"fromPot"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WithdrawalRequest is an operator-initiated withdrawal, idempotent by ID when set.
type WithdrawalRequest struct {
	ID        string          `json:"id,omitempty"`
	FromPot   string          `json:"fromPot"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy string          `json:"createdBy"`
}

func (r WithdrawalRequest) Validate() error {
	if strings.TrimSpace(r.FromPot) == "" {
		return NewValidationError("withdrawal requires a source pot")
	}
	if strings.TrimSpace(r.CreatedBy) == "" {
		return NewValidationError("withdrawal requires an operator")
	}
	return ValidateAmount("withdrawal amount", r.Amount)
}

func (r WithdrawalRequest) Matches(w *Withdrawal) bool {
	return w.FromPot == r.FromPot && w.Amount.Equal(r.Amount)
}

// WithdrawalResult wraps a withdrawal with where it was applied.
type WithdrawalResult struct {
	Withdrawal     *Withdrawal `json:"withdrawal"`
	Replayed       bool        `json:"replayed"`
	LocallyApplied bool        `json:"locallyApplied"`
}
