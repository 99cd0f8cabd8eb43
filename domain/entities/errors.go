package entities

import (
	"errors"
	"fmt"
)

// Ledger error taxonomy. Callers match with errors.Is.
var (
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("validation error")

	// ErrPotNotFound is a validation error for an unknown pot name.
	ErrPotNotFound = fmt.Errorf("%w: pot not found", ErrValidation)

	// ErrDrawNotFound is a validation error for an unknown draw.
	ErrDrawNotFound = fmt.Errorf("%w: draw not found", ErrValidation)

	// ErrBetNotFound is a validation error for a bet that was never distributed.
	ErrBetNotFound = fmt.Errorf("%w: bet not found", ErrValidation)

	// ErrInsufficientFunds means a balance precondition failed at execution time.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPrizePoolInsufficient means a draw cannot honor its payout obligations.
	// The draw is left Failed and needs an operator decision.
	ErrPrizePoolInsufficient = errors.New("prize pool insufficient")

	// ErrStorageUnavailable is a transient backend failure. Nothing was applied.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvariantViolation is only ever reported by reconciliation.
	ErrInvariantViolation = errors.New("invariant violation")
)

// NewValidationError builds an error that matches ErrValidation.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// RequiresOperatorDecision reports whether err is a business condition that
// must not be retried blindly.
func RequiresOperatorDecision(err error) bool {
	return errors.Is(err, ErrPrizePoolInsufficient)
}

// IsRetryable reports whether the caller may retry the same request safely:
// the failed operation left no effect behind.
func IsRetryable(err error) bool {
	if err == nil || RequiresOperatorDecision(err) {
		return false
	}
	return errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrValidation)
}
