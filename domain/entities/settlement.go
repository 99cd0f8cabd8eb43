package entities

import (
	"github.com/shopspring/decimal"
)

// SettlementResult is what a draw paid out.
type SettlementResult struct {
	DrawID       string          `json:"drawId"`
	TotalPayout  decimal.Decimal `json:"totalPayout"`
	WinnersCount int             `json:"winnersCount"`
	LosersCount  int             `json:"losersCount"`
	// Replayed is set when the draw was already settled and nothing changed.
	Replayed bool `json:"replayed"`
}

// SettlementResultFromDraw rebuilds the stored result of a settled draw.
func SettlementResultFromDraw(d *Draw) *SettlementResult {
	return &SettlementResult{
		DrawID:       d.ID,
		TotalPayout:  d.TotalPayout,
		WinnersCount: d.WinnersCount,
		Replayed:     true,
	}
}

// PartitionBets splits pending bets into winners and losers for a winning number.
func PartitionBets(bets []*Bet, winningAnimalNumber string) (winners, losers []*Bet) {
	for _, bet := range bets {
		if bet.AnimalNumber == winningAnimalNumber {
			winners = append(winners, bet)
		} else {
			losers = append(losers, bet)
		}
	}
	return winners, losers
}

// TotalPotentialWin adds up the potential wins of bets.
func TotalPotentialWin(bets []*Bet) decimal.Decimal {
	total := decimal.Zero
	for _, bet := range bets {
		total = total.Add(bet.PotentialWin)
	}
	return total
}

// BetIDs returns the ids of bets in order.
func BetIDs(bets []*Bet) []string {
	ids := make([]string, len(bets))
	for i, bet := range bets {
		ids[i] = bet.ID
	}
	return ids
}

// DrawOutcome bundles a draw with its settlement, as returned to the draw trigger.
type DrawOutcome struct {
	Draw   *Draw             `json:"draw"`
	Result *SettlementResult `json:"result"`
}
