package entities

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits balances are kept at.
const MoneyPlaces = 2

// PercentPlaces matches the scale of the pots.percentage column.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds d half away from zero to MoneyPlaces.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// HasMoneyPrecision reports whether d carries no more than MoneyPlaces digits.
func HasMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// ValidateAmount checks that a money amount is strictly positive and representable.
func ValidateAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("%s must be positive, got %s", field, amount.String())
	}
	if !HasMoneyPrecision(amount) {
		return NewValidationError("%s must have at most %d decimal places, got %s", field, MoneyPlaces, amount.String())
	}
	return nil
}

// SumMap adds up every value of m.
func SumMap(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
