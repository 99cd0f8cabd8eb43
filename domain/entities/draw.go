package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DrawStatus is the settlement state of a draw.
type DrawStatus string

const (
	DrawStatusOpen     DrawStatus = "open"
	DrawStatusSettling DrawStatus = "settling"
	DrawStatusSettled  DrawStatus = "settled"
	DrawStatusFailed   DrawStatus = "failed"
)

// Draw closes one lottery cycle with a winning animal number.
type Draw struct {
	ID                  string          `json:"id"`
	LotteryID           string          `json:"lotteryId"`
	WinningAnimalNumber string          `json:"winningAnimalNumber"`
	DrawTime            time.Time       `json:"drawTime"`
	Status              DrawStatus      `json:"status"`
	PayoutPot           string          `json:"payoutPot"`
	TotalPayout         decimal.Decimal `json:"totalPayout"`
	WinnersCount        int             `json:"winnersCount"`
	FailureReason       *string         `json:"failureReason,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	SettledAt           *time.Time      `json:"settledAt,omitempty"`
}

// IsSettled reports whether the draw reached its terminal state.
func (d *Draw) IsSettled() bool {
	return d.Status == DrawStatusSettled
}

var drawTransitions = map[DrawStatus][]DrawStatus{
	DrawStatusOpen:     {DrawStatusSettling},
	DrawStatusSettling: {DrawStatusSettled, DrawStatusFailed},
	DrawStatusFailed:   {DrawStatusSettling},
}

// CanTransitionTo reports whether next is a legal successor of the current status.
func (d *Draw) CanTransitionTo(next DrawStatus) bool {
	for _, allowed := range drawTransitions[d.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (d *Draw) transition(next DrawStatus) error {
	if !d.CanTransitionTo(next) {
		return fmt.Errorf("invalid draw transition from %s to %s", d.Status, next)
	}
	d.Status = next
	return nil
}

// BeginSettling moves an open or failed draw into settlement.
func (d *Draw) BeginSettling() error {
	if err := d.transition(DrawStatusSettling); err != nil {
		return err
	}
	d.FailureReason = nil
	return nil
}

// MarkSettled records the payout totals and closes the draw.
func (d *Draw) MarkSettled(totalPayout decimal.Decimal, winnersCount int, at time.Time) error {
	if err := d.transition(DrawStatusSettled); err != nil {
		return err
	}
	d.TotalPayout = totalPayout
	d.WinnersCount = winnersCount
	d.SettledAt = &at
	return nil
}

// MarkFailed leaves the draw retryable with the reason recorded.
func (d *Draw) MarkFailed(reason string) error {
	if err := d.transition(DrawStatusFailed); err != nil {
		return err
	}
	d.FailureReason = &reason
	return nil
}

// DrawTrigger is supplied by the scheduler or an operator to close a lottery cycle.
type DrawTrigger struct {
	LotteryID           string    `json:"lotteryId"`
	WinningAnimalNumber string    `json:"winningAnimalNumber"`
	DrawTime            time.Time `json:"drawTime"`
}

func (t DrawTrigger) Validate() error {
	if strings.TrimSpace(t.LotteryID) == "" {
		return NewValidationError("lottery id is required")
	}
	if strings.TrimSpace(t.WinningAnimalNumber) == "" {
		return NewValidationError("winning animal number is required")
	}
	if t.DrawTime.IsZero() {
		return NewValidationError("draw time is required")
	}
	return nil
}
