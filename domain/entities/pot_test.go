package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidatePotConfigs(t *testing.T) {
	t.Parallel()

	cfg := func(name, percentage string) PotConfig {
		return PotConfig{Name: name, Percentage: decimal.RequireFromString(percentage)}
	}

	tests := []struct {
		name        string
		configs     []PotConfig
		wantErr     bool
		errContains string
	}{
		{
			name:    "sums to 100",
			configs: []PotConfig{cfg("Prize", "60"), cfg("Costs", "30"), cfg("Profit", "10")},
		},
		{
			name:    "fractional percentages",
			configs: []PotConfig{cfg("A", "33.33"), cfg("B", "33.33"), cfg("C", "33.34")},
		},
		{
			name:        "sums below 100",
			configs:     []PotConfig{cfg("Prize", "60"), cfg("Costs", "30")},
			wantErr:     true,
			errContains: "must sum to 100",
		},
		{
			name:        "sums above 100",
			configs:     []PotConfig{cfg("Prize", "70"), cfg("Costs", "30"), cfg("Profit", "10")},
			wantErr:     true,
			errContains: "must sum to 100",
		},
		{
			name:        "duplicate name",
			configs:     []PotConfig{cfg("Prize", "50"), cfg("Prize", "50")},
			wantErr:     true,
			errContains: "duplicate pot name",
		},
		{
			name:        "empty name",
			configs:     []PotConfig{cfg(" ", "100")},
			wantErr:     true,
			errContains: "must not be empty",
		},
		{
			name:        "negative percentage",
			configs:     []PotConfig{cfg("A", "110"), cfg("B", "-10")},
			wantErr:     true,
			errContains: "between 0 and 100",
		},
		{
			name:    "zero percent pot",
			configs: []PotConfig{cfg("Costs", "50"), cfg("Prize", "50"), cfg("Reserve", "0")},
		},
		{
			name:        "more than two decimal places",
			configs:     []PotConfig{cfg("A", "33.333"), cfg("B", "33.333"), cfg("C", "33.334")},
			wantErr:     true,
			errContains: "at most 2 decimal places",
		},
		{
			name:    "trailing zeros beyond two places are fine",
			configs: []PotConfig{cfg("A", "50.500"), cfg("B", "49.5")},
		},
		{
			name:        "empty set",
			configs:     nil,
			wantErr:     true,
			errContains: "at least one pot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidatePotConfigs(tt.configs)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRetryable(ErrStorageUnavailable))
	assert.True(t, IsRetryable(ErrInsufficientFunds))
	assert.True(t, IsRetryable(ErrPotNotFound))
	assert.False(t, IsRetryable(ErrPrizePoolInsufficient))
	assert.False(t, IsRetryable(nil))
	assert.True(t, RequiresOperatorDecision(errors.Join(errors.New("draw d1"), ErrPrizePoolInsufficient)))
	assert.True(t, errors.Is(ErrPotNotFound, ErrValidation))
}
