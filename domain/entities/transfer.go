package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer moves balance between two pots. Total balance is unchanged.
type Transfer struct {
	ID        string          `json:"id"`
	FromPot   string          `json:"fromPot"`
	ToPot     string          `json:"toPot"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TransferRequest is an operator-initiated transfer. ID is optional; when set the
// request is idempotent by it.
type TransferRequest struct {
	ID        string          `json:"id,omitempty"`
	FromPot   string          `json:"fromPot"`
	ToPot     string          `json:"toPot"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedBy string          `json:"createdBy"`
}

// Validate checks everything that can be checked without reading balances.
func (r TransferRequest) Validate() error {
	if strings.TrimSpace(r.FromPot) == "" || strings.TrimSpace(r.ToPot) == "" {
		return NewValidationError("transfer requires both source and destination pots")
	}
	if r.FromPot == r.ToPot {
		return NewValidationError("cannot transfer from pot %q to itself", r.FromPot)
	}
	if strings.TrimSpace(r.CreatedBy) == "" {
		return NewValidationError("transfer requires an operator")
	}
	return ValidateAmount("transfer amount", r.Amount)
}

// Matches reports whether a stored transfer carries the same details as the request.
func (r TransferRequest) Matches(t *Transfer) bool {
	return t.FromPot == r.FromPot && t.ToPot == r.ToPot && t.Amount.Equal(r.Amount)
}

// TransferResult wraps a transfer with where it was applied.
type TransferResult struct {
	Transfer       *Transfer `json:"transfer"`
	Replayed       bool      `json:"replayed"`
	LocallyApplied bool      `json:"locallyApplied"`
}
