package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BetOutcome is the settlement state of a bet.
type BetOutcome string

const (
	BetOutcomePending BetOutcome = "pending"
	BetOutcomeWinner  BetOutcome = "winner"
	BetOutcomeLoser   BetOutcome = "loser"
)

// Bet is a customer stake on an animal number for one lottery cycle.
type Bet struct {
	ID           string          `json:"id"`
	LotteryID    string          `json:"lotteryId"`
	AnimalNumber string          `json:"animalNumber"`
	Amount       decimal.Decimal `json:"amount"`
	PotentialWin decimal.Decimal `json:"potentialWin"`
	Outcome      BetOutcome      `json:"outcome"`
	DrawID       *string         `json:"drawId,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	SettledAt    *time.Time      `json:"settledAt,omitempty"`
}

// IsPending reports whether the bet still awaits its draw.
func (b *Bet) IsPending() bool {
	return b.Outcome == BetOutcomePending
}

// IsWinner reports the tri-state outcome as an optional boolean. Nil means pending.
func (b *Bet) IsWinner() *bool {
	if b.IsPending() {
		return nil
	}
	won := b.Outcome == BetOutcomeWinner
	return &won
}

// BetIntake is what the betting front end hands to the ledger on placement.
// PotentialWin already carries the catalog multiplier.
type BetIntake struct {
	BetID        string          `json:"betId"`
	LotteryID    string          `json:"lotteryId"`
	AnimalNumber string          `json:"animalNumber"`
	Amount       decimal.Decimal `json:"amount"`
	PotentialWin decimal.Decimal `json:"potentialWin"`
}

// Validate rejects malformed intakes before anything is mutated.
func (in BetIntake) Validate() error {
	if strings.TrimSpace(in.BetID) == "" {
		return NewValidationError("bet id is required")
	}
	if strings.TrimSpace(in.LotteryID) == "" {
		return NewValidationError("lottery id is required")
	}
	if strings.TrimSpace(in.AnimalNumber) == "" {
		return NewValidationError("animal number is required")
	}
	if err := ValidateAmount("bet amount", in.Amount); err != nil {
		return err
	}
	if in.PotentialWin.IsNegative() {
		return NewValidationError("potential win must not be negative, got %s", in.PotentialWin.String())
	}
	if !HasMoneyPrecision(in.PotentialWin) {
		return NewValidationError("potential win must have at most %d decimal places", MoneyPlaces)
	}
	return nil
}

// Matches reports whether a stored bet carries the same details as the intake.
func (in BetIntake) Matches(b *Bet) bool {
	return b.ID == in.BetID &&
		b.LotteryID == in.LotteryID &&
		b.AnimalNumber == in.AnimalNumber &&
		b.Amount.Equal(in.Amount) &&
		b.PotentialWin.Equal(in.PotentialWin)
}

// ToBet builds the pending bet record for the intake.
func (in BetIntake) ToBet(now time.Time) *Bet {
	return &Bet{
		ID:           in.BetID,
		LotteryID:    in.LotteryID,
		AnimalNumber: in.AnimalNumber,
		Amount:       in.Amount,
		PotentialWin: in.PotentialWin,
		Outcome:      BetOutcomePending,
		CreatedAt:    now,
	}
}
