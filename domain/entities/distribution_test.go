package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPot(name, percentage string) *Pot {
	return &Pot{
		Name:       name,
		Percentage: decimal.RequireFromString(percentage),
		Balance:    decimal.Zero,
		Active:     true,
	}
}

func sharesOf(lines []DistributionLine) map[string]string {
	out := make(map[string]string, len(lines))
	for _, line := range lines {
		out[line.PotName] = line.Amount.StringFixed(MoneyPlaces)
	}
	return out
}

func TestComputeShares(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  string
		pots    []*Pot
		want    map[string]string
		wantErr error
	}{
		{
			name:   "even split",
			amount: "100",
			pots:   []*Pot{testPot("Prize", "60"), testPot("Costs", "30"), testPot("Profit", "10")},
			want:   map[string]string{"Costs": "30.00", "Prize": "60.00", "Profit": "10.00"},
		},
		{
			name:   "last pot by name absorbs the remainder",
			amount: "10.01",
			pots:   []*Pot{testPot("C", "33.34"), testPot("A", "33.33"), testPot("B", "33.33")},
			want:   map[string]string{"A": "3.34", "B": "3.34", "C": "3.33"},
		},
		{
			name:   "rounding is half away from zero",
			amount: "0.05",
			pots:   []*Pot{testPot("A", "50"), testPot("B", "50")},
			want:   map[string]string{"A": "0.03", "B": "0.02"},
		},
		{
			name:   "inactive pots are skipped",
			amount: "50",
			pots: []*Pot{
				testPot("Prize", "70"),
				testPot("Costs", "30"),
				{Name: "Legacy", Percentage: decimal.Zero, Active: false},
			},
			want: map[string]string{"Costs": "15.00", "Prize": "35.00"},
		},
		{
			name:   "zero percent pot sorting last gets nothing",
			amount: "10.05",
			pots:   []*Pot{testPot("Costs", "50"), testPot("Prize", "50"), testPot("Reserve", "0")},
			want:   map[string]string{"Costs": "5.03", "Prize": "5.02", "Reserve": "0.00"},
		},
		{
			name:   "zero percent pot with odd cents",
			amount: "1.01",
			pots:   []*Pot{testPot("Costs", "50"), testPot("Prize", "50"), testPot("Reserve", "0")},
			want:   map[string]string{"Costs": "0.51", "Prize": "0.50", "Reserve": "0.00"},
		},
		{
			name:   "zero percent pots on both ends",
			amount: "0.03",
			pots:   []*Pot{testPot("Zzz", "0"), testPot("Costs", "50"), testPot("Aux", "0"), testPot("Prize", "50")},
			want:   map[string]string{"Aux": "0.00", "Costs": "0.02", "Prize": "0.01", "Zzz": "0.00"},
		},
		{
			name:    "only zero percent pots active",
			amount:  "5",
			pots:    []*Pot{testPot("A", "0"), testPot("B", "0")},
			wantErr: ErrValidation,
		},
		{
			name:    "sub-cent stake over many pots cannot be split",
			amount:  "0.02",
			pots:    []*Pot{testPot("A", "25"), testPot("B", "25"), testPot("C", "25"), testPot("D", "25")},
			wantErr: ErrValidation,
		},
		{
			name:    "zero amount",
			amount:  "0",
			pots:    []*Pot{testPot("A", "100")},
			wantErr: ErrValidation,
		},
		{
			name:    "too many decimals",
			amount:  "1.005",
			pots:    []*Pot{testPot("A", "100")},
			wantErr: ErrValidation,
		},
		{
			name:    "no active pots",
			amount:  "1",
			pots:    []*Pot{{Name: "A", Percentage: decimal.Zero}},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lines, err := ComputeShares(decimal.RequireFromString(tt.amount), tt.pots)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sharesOf(lines))
		})
	}
}

func TestComputeShares_Conservation(t *testing.T) {
	t.Parallel()

	configs := [][]*Pot{
		{testPot("Prize", "60"), testPot("Costs", "30"), testPot("Profit", "10")},
		{testPot("Prize", "70"), testPot("Costs", "20"), testPot("Profit", "10")},
		{testPot("A", "33.33"), testPot("B", "33.33"), testPot("C", "33.34")},
		{testPot("Zeta", "12.5"), testPot("Alpha", "37.5"), testPot("Mid", "49.99"), testPot("Tail", "0.01")},
		{testPot("Costs", "50"), testPot("Prize", "50"), testPot("Reserve", "0")},
		{testPot("Aux", "0"), testPot("Prize", "60"), testPot("Costs", "40"), testPot("Zzz", "0")},
	}

	for _, pots := range configs {
		for cents := int64(1); cents <= 20000; cents += 7 {
			amount := decimal.New(cents, -MoneyPlaces)
			lines, err := ComputeShares(amount, pots)
			if err != nil {
				assert.True(t, errors.Is(err, ErrValidation))
				assert.True(t, amount.LessThan(decimal.NewFromInt(1)), "only sub-unit stakes may be rejected, got %s", amount)
				continue
			}

			total := decimal.Zero
			for _, line := range lines {
				assert.False(t, line.Amount.IsNegative(), "negative share for %s on %s", line.PotName, amount)
				assert.True(t, HasMoneyPrecision(line.Amount))
				total = total.Add(line.Amount)
			}
			assert.True(t, total.Equal(amount), "shares of %s sum to %s", amount, total)
		}
	}
}

func TestComputeShares_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	pots := []*Pot{testPot("Prize", "60"), testPot("Costs", "30"), testPot("Profit", "10")}
	_, err := ComputeShares(decimal.NewFromInt(100), pots)
	require.NoError(t, err)

	assert.Equal(t, "Prize", pots[0].Name)
	assert.Equal(t, "Costs", pots[1].Name)
}
