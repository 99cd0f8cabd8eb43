package services

import (
	"context"
	"errors"
	"testing"

	"animalitos/domain/entities"
	"animalitos/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupDistributionMocks() (
	*testhelpers.MockPotRepository,
	*testhelpers.MockBetRepository,
	*testhelpers.MockDistributionRepository,
	*testhelpers.MockDrawRepository,
	*testhelpers.MockEventPublisher,
) {
	return new(testhelpers.MockPotRepository),
		new(testhelpers.MockBetRepository),
		new(testhelpers.MockDistributionRepository),
		new(testhelpers.MockDrawRepository),
		new(testhelpers.MockEventPublisher)
}

func validIntake() entities.BetIntake {
	return entities.BetIntake{
		BetID:        "bet-1",
		LotteryID:    "lottery-1",
		AnimalNumber: "07",
		Amount:       dec("100"),
		PotentialWin: dec("3000"),
	}
}

func TestDistributionService_Distribute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	potRepo, betRepo, distRepo, drawRepo, publisher := setupDistributionMocks()

	betRepo.On("GetByID", mock.Anything, "bet-1").Return(nil, nil).Once()
	betRepo.On("CreateIfAbsent", mock.Anything, mock.MatchedBy(func(b *entities.Bet) bool {
		return b.ID == "bet-1" && b.IsPending() && b.Amount.Equal(dec("100"))
	})).Return(true, nil)
	potRepo.On("LockActive", mock.Anything).Return(standardPots(), nil)
	drawRepo.On("GetByLotteryID", mock.Anything, "lottery-1").Return(nil, nil)
	expectAdjust(potRepo, "Costs", "30", "30")
	expectAdjust(potRepo, "Prize", "60", "60")
	expectAdjust(potRepo, "Profit", "10", "10")
	distRepo.On("CreateLines", mock.Anything, mock.MatchedBy(func(lines []entities.DistributionLine) bool {
		if len(lines) != 3 {
			return false
		}
		for _, line := range lines {
			if line.BetID != "bet-1" || line.CreatedAt.IsZero() {
				return false
			}
		}
		return true
	})).Return(nil)
	publisher.On("Publish", mock.Anything).Return(nil)

	service := NewDistributionService(potRepo, betRepo, distRepo, drawRepo, publisher)
	result, err := service.Distribute(ctx, validIntake())

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.True(t, result.Shares["Costs"].Equal(dec("30")))
	assert.True(t, result.Shares["Prize"].Equal(dec("60")))
	assert.True(t, result.Shares["Profit"].Equal(dec("10")))
	assert.True(t, result.Total().Equal(dec("100")))

	// three balance changes and one distribution event
	publisher.AssertNumberOfCalls(t, "Publish", 4)
	potRepo.AssertExpectations(t)
	betRepo.AssertExpectations(t)
	distRepo.AssertExpectations(t)
	drawRepo.AssertExpectations(t)
}

func TestDistributionService_Distribute_Replay(t *testing.T) {
	t.Parallel()

	stored := []*entities.DistributionLine{
		{BetID: "bet-1", PotName: "Costs", Amount: dec("30")},
		{BetID: "bet-1", PotName: "Prize", Amount: dec("60")},
		{BetID: "bet-1", PotName: "Profit", Amount: dec("10")},
	}

	tests := []struct {
		name        string
		setupMocks  func(*testhelpers.MockBetRepository, *testhelpers.MockDistributionRepository)
		intake      entities.BetIntake
		wantErr     error
		errContains string
	}{
		{
			name: "already distributed",
			setupMocks: func(betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(testBet("bet-1", "lottery-1", "07", "100", "3000"), nil)
				distRepo.On("GetByBet", mock.Anything, "bet-1").Return(stored, nil)
			},
			intake: validIntake(),
		},
		{
			name: "lost a concurrent insert",
			setupMocks: func(betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(nil, nil).Once()
				betRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(false, nil)
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(testBet("bet-1", "lottery-1", "07", "100", "3000"), nil).Once()
				distRepo.On("GetByBet", mock.Anything, "bet-1").Return(stored, nil)
			},
			intake: validIntake(),
		},
		{
			name: "same id with different amount",
			setupMocks: func(betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(testBet("bet-1", "lottery-1", "07", "50", "3000"), nil)
			},
			intake:      validIntake(),
			wantErr:     entities.ErrValidation,
			errContains: "different details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			potRepo, betRepo, distRepo, drawRepo, publisher := setupDistributionMocks()
			tt.setupMocks(betRepo, distRepo)

			service := NewDistributionService(potRepo, betRepo, distRepo, drawRepo, publisher)
			result, err := service.Distribute(context.Background(), tt.intake)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.True(t, result.Replayed)
				assert.True(t, result.Total().Equal(dec("100")))
			}

			potRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
			drawRepo.AssertNotCalled(t, "GetByLotteryID", mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "Publish", mock.Anything)
			betRepo.AssertExpectations(t)
			distRepo.AssertExpectations(t)
		})
	}
}

func TestDistributionService_Distribute_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		intake      func() entities.BetIntake
		setupMocks  func(*testhelpers.MockPotRepository, *testhelpers.MockBetRepository, *testhelpers.MockDistributionRepository, *testhelpers.MockEventPublisher)
		draw        *entities.Draw
		wantErr     error
		errContains string
	}{
		{
			name: "invalid amount",
			intake: func() entities.BetIntake {
				in := validIntake()
				in.Amount = dec("-5")
				return in
			},
			setupMocks: func(*testhelpers.MockPotRepository, *testhelpers.MockBetRepository, *testhelpers.MockDistributionRepository, *testhelpers.MockEventPublisher) {
			},
			wantErr:     entities.ErrValidation,
			errContains: "must be positive",
		},
		{
			name:   "storage failure on credit",
			intake: validIntake,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository, publisher *testhelpers.MockEventPublisher) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(nil, nil)
				betRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
				potRepo.On("LockActive", mock.Anything).Return(standardPots(), nil)
				expectAdjust(potRepo, "Costs", "30", "30")
				potRepo.On("AdjustBalance", mock.Anything, "Prize", mock.Anything).
					Return(nil, entities.ErrStorageUnavailable)
				publisher.On("Publish", mock.Anything).Return(nil)
			},
			wantErr:     entities.ErrStorageUnavailable,
			errContains: "failed to credit pot Prize",
		},
		{
			name:   "lottery already drawn",
			intake: validIntake,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository, publisher *testhelpers.MockEventPublisher) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(nil, nil)
				betRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
				potRepo.On("LockActive", mock.Anything).Return(standardPots(), nil)
			},
			draw:        createTestDraw(),
			wantErr:     entities.ErrValidation,
			errContains: "lottery lottery-1 is closed",
		},
		{
			name:   "no active pots",
			intake: validIntake,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, betRepo *testhelpers.MockBetRepository, distRepo *testhelpers.MockDistributionRepository, publisher *testhelpers.MockEventPublisher) {
				betRepo.On("GetByID", mock.Anything, "bet-1").Return(nil, nil)
				betRepo.On("CreateIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
				potRepo.On("LockActive", mock.Anything).Return([]*entities.Pot{}, nil)
			},
			wantErr:     entities.ErrValidation,
			errContains: "no active pots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			potRepo, betRepo, distRepo, drawRepo, publisher := setupDistributionMocks()
			tt.setupMocks(potRepo, betRepo, distRepo, publisher)
			drawRepo.On("GetByLotteryID", mock.Anything, "lottery-1").Return(tt.draw, nil).Maybe()

			service := NewDistributionService(potRepo, betRepo, distRepo, drawRepo, publisher)
			result, err := service.Distribute(context.Background(), tt.intake())

			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Contains(t, err.Error(), tt.errContains)

			distRepo.AssertNotCalled(t, "CreateLines", mock.Anything, mock.Anything)
			if tt.draw != nil {
				potRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
			}
			potRepo.AssertExpectations(t)
			betRepo.AssertExpectations(t)
		})
	}
}
