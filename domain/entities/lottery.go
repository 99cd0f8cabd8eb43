package entities

import (
	"github.com/shopspring/decimal"
)

// LotterySummary is the pre-draw view of one lottery cycle.
type LotterySummary struct {
	LotteryID   string          `json:"lotteryId"`
	PendingBets int             `json:"pendingBets"`
	TotalStaked decimal.Decimal `json:"totalStaked"`
	// Exposure is the payout owed per animal number if it were drawn.
	Exposure    map[string]decimal.Decimal `json:"exposure"`
	MaxExposure decimal.Decimal            `json:"maxExposure"`
	Draw        *Draw                      `json:"draw,omitempty"`
}

// SummarizePendingBets aggregates pending bets of a lottery.
func SummarizePendingBets(lotteryID string, bets []*Bet) *LotterySummary {
	summary := &LotterySummary{
		LotteryID:   lotteryID,
		TotalStaked: decimal.Zero,
		Exposure:    make(map[string]decimal.Decimal),
		MaxExposure: decimal.Zero,
	}
	for _, bet := range bets {
		if !bet.IsPending() {
			continue
		}
		summary.PendingBets++
		summary.TotalStaked = summary.TotalStaked.Add(bet.Amount)
		exposure := summary.Exposure[bet.AnimalNumber].Add(bet.PotentialWin)
		summary.Exposure[bet.AnimalNumber] = exposure
		if exposure.GreaterThan(summary.MaxExposure) {
			summary.MaxExposure = exposure
		}
	}
	return summary
}
