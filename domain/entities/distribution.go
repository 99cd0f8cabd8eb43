package entities

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DistributionLine is the share of one bet credited to one pot.
type DistributionLine struct {
	BetID     string          `json:"betId"`
	PotName   string          `json:"potName"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// DistributionResult maps pot names to the amount credited for a bet.
type DistributionResult struct {
	BetID  string                     `json:"betId"`
	Shares map[string]decimal.Decimal `json:"shares"`
	// Replayed is set when the bet had already been distributed and nothing was credited.
	Replayed bool `json:"replayed"`
	// LocallyApplied is set when the credits landed in the local fallback store only.
	LocallyApplied bool `json:"locallyApplied"`
}

// Total is the sum of all credited shares.
func (r *DistributionResult) Total() decimal.Decimal {
	return SumMap(r.Shares)
}

// NewDistributionResult rebuilds a result from stored lines.
func NewDistributionResult(betID string, lines []*DistributionLine) *DistributionResult {
	shares := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		shares[line.PotName] = line.Amount
	}
	return &DistributionResult{BetID: betID, Shares: shares}
}

// SortPotsByName orders pots in the fixed order used for distribution and row locking.
func SortPotsByName(pots []*Pot) {
	sort.Slice(pots, func(i, j int) bool {
		return pots[i].Name < pots[j].Name
	})
}

// ComputeShares splits amount across the active pots. Every pot gets
// round(amount * percentage / 100, 2) except the last one in name order with a
// non-zero percentage, which takes what is left so the shares add up to amount
// exactly. Pots at 0% get a zero share.
func ComputeShares(amount decimal.Decimal, pots []*Pot) ([]DistributionLine, error) {
	if err := ValidateAmount("distribution amount", amount); err != nil {
		return nil, err
	}

	active := make([]*Pot, 0, len(pots))
	for _, pot := range pots {
		if pot.Active {
			active = append(active, pot)
		}
	}
	if len(active) == 0 {
		return nil, NewValidationError("no active pots configured")
	}
	SortPotsByName(active)

	absorber := -1
	for i := len(active) - 1; i >= 0; i-- {
		if active[i].Percentage.IsPositive() {
			absorber = i
			break
		}
	}
	if absorber < 0 {
		return nil, NewValidationError("no active pot has a non-zero percentage")
	}

	lines := make([]DistributionLine, len(active))
	allocated := decimal.Zero
	for i, pot := range active {
		if i == absorber {
			continue
		}
		share := RoundMoney(amount.Mul(pot.Percentage).Div(hundred))
		lines[i] = DistributionLine{PotName: pot.Name, Amount: share}
		allocated = allocated.Add(share)
	}

	remainder := amount.Sub(allocated)
	if remainder.IsNegative() {
		// The rounded-up shares of the other pots already exceed the stake.
		return nil, NewValidationError("amount %s is too small to distribute across %d pots", amount.String(), len(active))
	}
	lines[absorber] = DistributionLine{PotName: active[absorber].Name, Amount: remainder}

	return lines, nil
}
