package testutil

import (
	"time"

	"animalitos/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTestPot creates an active pot with the given percentage and balance
func CreateTestPot(name, percentage, balance string) *entities.Pot {
	now := time.Now().UTC()
	return &entities.Pot{
		ID:         uuid.NewString(),
		Name:       name,
		Percentage: decimal.RequireFromString(percentage),
		Balance:    decimal.RequireFromString(balance),
		Color:      "#000000",
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CreateTestBet creates a pending bet
func CreateTestBet(id, lotteryID, animal, amount, potentialWin string) *entities.Bet {
	return &entities.Bet{
		ID:           id,
		LotteryID:    lotteryID,
		AnimalNumber: animal,
		Amount:       decimal.RequireFromString(amount),
		PotentialWin: decimal.RequireFromString(potentialWin),
		Outcome:      entities.BetOutcomePending,
		CreatedAt:    time.Now().UTC(),
	}
}

// CreateTestDraw creates an open draw paying out of payoutPot
func CreateTestDraw(lotteryID, winningAnimal, payoutPot string) *entities.Draw {
	now := time.Now().UTC()
	return &entities.Draw{
		ID:                  uuid.NewString(),
		LotteryID:           lotteryID,
		WinningAnimalNumber: winningAnimal,
		DrawTime:            now,
		Status:              entities.DrawStatusOpen,
		PayoutPot:           payoutPot,
		TotalPayout:         decimal.Zero,
		CreatedAt:           now,
	}
}
