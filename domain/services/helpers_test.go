package services

import (
	"time"

	"animalitos/domain/entities"
	"animalitos/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// createTestPot builds an active pot with the given balance
func createTestPot(name, percentage, balance string) *entities.Pot {
	return &entities.Pot{
		ID:         "pot-" + name,
		Name:       name,
		Percentage: dec(percentage),
		Balance:    dec(balance),
		Active:     true,
		Version:    1,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// standardPots is the 60/30/10 configuration used across tests
func standardPots() []*entities.Pot {
	return []*entities.Pot{
		createTestPot("Costs", "30", "0"),
		createTestPot("Prize", "60", "0"),
		createTestPot("Profit", "10", "0"),
	}
}

// expectAdjust sets up a successful balance adjustment returning the new balance
func expectAdjust(potRepo *testhelpers.MockPotRepository, name, delta, newBalance string) *mock.Call {
	return potRepo.On("AdjustBalance", mock.Anything, name, testhelpers.DecimalEq(delta)).
		Return(createTestPot(name, "0", newBalance), nil).Once()
}

// expectPayoutLock sets up the row lock settlement takes on the Prize pot
func expectPayoutLock(potRepo *testhelpers.MockPotRepository) *mock.Call {
	return potRepo.On("LockByNames", mock.Anything, []string{"Prize"}).
		Return([]*entities.Pot{createTestPot("Prize", "60", "80")}, nil).Once()
}

func testBet(id, lotteryID, animal, amount, potentialWin string) *entities.Bet {
	return &entities.Bet{
		ID:           id,
		LotteryID:    lotteryID,
		AnimalNumber: animal,
		Amount:       dec(amount),
		PotentialWin: dec(potentialWin),
		Outcome:      entities.BetOutcomePending,
		CreatedAt:    time.Now(),
	}
}
