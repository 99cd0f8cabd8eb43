package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"animalitos/domain/entities"
	"animalitos/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransferService_Transfer(t *testing.T) {
	t.Parallel()

	request := entities.TransferRequest{
		FromPot:   "Costs",
		ToPot:     "Prize",
		Amount:    dec("20"),
		CreatedBy: "operator-1",
	}

	tests := []struct {
		name        string
		req         entities.TransferRequest
		setupMocks  func(*testhelpers.MockPotRepository, *testhelpers.MockTransferRepository, *testhelpers.MockEventPublisher)
		wantErr     error
		errContains string
	}{
		{
			name: "successful transfer",
			req:  request,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, transferRepo *testhelpers.MockTransferRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Costs", "Prize"}).
					Return([]*entities.Pot{createTestPot("Costs", "30", "30"), createTestPot("Prize", "60", "60")}, nil)
				expectAdjust(potRepo, "Costs", "-20", "10")
				expectAdjust(potRepo, "Prize", "20", "80")
				transferRepo.On("Create", mock.Anything, mock.MatchedBy(func(tr *entities.Transfer) bool {
					return tr.ID != "" && tr.FromPot == "Costs" && tr.ToPot == "Prize" && tr.Amount.Equal(dec("20"))
				})).Return(nil)
				publisher.On("Publish", mock.Anything).Return(nil).Times(3)
			},
		},
		{
			name: "same pot",
			req: entities.TransferRequest{
				FromPot: "Prize", ToPot: "Prize", Amount: dec("1"), CreatedBy: "operator-1",
			},
			setupMocks:  func(*testhelpers.MockPotRepository, *testhelpers.MockTransferRepository, *testhelpers.MockEventPublisher) {},
			wantErr:     entities.ErrValidation,
			errContains: "to itself",
		},
		{
			name: "non-positive amount",
			req: entities.TransferRequest{
				FromPot: "Costs", ToPot: "Prize", Amount: dec("0"), CreatedBy: "operator-1",
			},
			setupMocks:  func(*testhelpers.MockPotRepository, *testhelpers.MockTransferRepository, *testhelpers.MockEventPublisher) {},
			wantErr:     entities.ErrValidation,
			errContains: "must be positive",
		},
		{
			name: "unknown destination",
			req:  request,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, transferRepo *testhelpers.MockTransferRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Costs", "Prize"}).
					Return([]*entities.Pot{createTestPot("Costs", "30", "30")}, nil)
			},
			wantErr:     entities.ErrPotNotFound,
			errContains: "Prize",
		},
		{
			name: "insufficient funds at execution time",
			req:  request,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, transferRepo *testhelpers.MockTransferRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Costs", "Prize"}).
					Return([]*entities.Pot{createTestPot("Costs", "30", "5"), createTestPot("Prize", "60", "60")}, nil)
				potRepo.On("AdjustBalance", mock.Anything, "Costs", testhelpers.DecimalEq("-20")).
					Return(nil, fmt.Errorf("pot Costs: %w", entities.ErrInsufficientFunds))
			},
			wantErr:     entities.ErrInsufficientFunds,
			errContains: "failed to debit pot Costs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			potRepo := new(testhelpers.MockPotRepository)
			transferRepo := new(testhelpers.MockTransferRepository)
			publisher := new(testhelpers.MockEventPublisher)
			tt.setupMocks(potRepo, transferRepo, publisher)

			service := NewTransferService(potRepo, transferRepo, publisher)
			result, err := service.Transfer(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, result)
				transferRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.False(t, result.Replayed)
				assert.Equal(t, "operator-1", result.Transfer.CreatedBy)
			}

			potRepo.AssertExpectations(t)
			transferRepo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestTransferService_Transfer_IdempotentByID(t *testing.T) {
	t.Parallel()

	stored := &entities.Transfer{ID: "t-1", FromPot: "Costs", ToPot: "Prize", Amount: dec("20"), CreatedBy: "operator-1"}

	t.Run("replay returns stored transfer", func(t *testing.T) {
		t.Parallel()

		potRepo := new(testhelpers.MockPotRepository)
		transferRepo := new(testhelpers.MockTransferRepository)
		publisher := new(testhelpers.MockEventPublisher)
		transferRepo.On("GetByID", mock.Anything, "t-1").Return(stored, nil)

		service := NewTransferService(potRepo, transferRepo, publisher)
		result, err := service.Transfer(context.Background(), entities.TransferRequest{
			ID: "t-1", FromPot: "Costs", ToPot: "Prize", Amount: dec("20.00"), CreatedBy: "operator-2",
		})

		require.NoError(t, err)
		assert.True(t, result.Replayed)
		assert.Same(t, stored, result.Transfer)
		potRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reused id with other details", func(t *testing.T) {
		t.Parallel()

		potRepo := new(testhelpers.MockPotRepository)
		transferRepo := new(testhelpers.MockTransferRepository)
		publisher := new(testhelpers.MockEventPublisher)
		transferRepo.On("GetByID", mock.Anything, "t-1").Return(stored, nil)

		service := NewTransferService(potRepo, transferRepo, publisher)
		_, err := service.Transfer(context.Background(), entities.TransferRequest{
			ID: "t-1", FromPot: "Costs", ToPot: "Prize", Amount: dec("25"), CreatedBy: "operator-1",
		})

		assert.ErrorIs(t, err, entities.ErrValidation)
	})
}

func TestWithdrawalService_Withdraw(t *testing.T) {
	t.Parallel()

	request := entities.WithdrawalRequest{FromPot: "Profit", Amount: dec("5"), CreatedBy: "operator-1"}

	tests := []struct {
		name        string
		req         entities.WithdrawalRequest
		setupMocks  func(*testhelpers.MockPotRepository, *testhelpers.MockWithdrawalRepository, *testhelpers.MockEventPublisher)
		wantErr     error
		errContains string
	}{
		{
			name: "successful withdrawal",
			req:  request,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, withdrawalRepo *testhelpers.MockWithdrawalRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Profit"}).
					Return([]*entities.Pot{createTestPot("Profit", "10", "10")}, nil)
				expectAdjust(potRepo, "Profit", "-5", "5")
				withdrawalRepo.On("Create", mock.Anything, mock.MatchedBy(func(w *entities.Withdrawal) bool {
					return w.ID != "" && w.FromPot == "Profit" && w.Amount.Equal(dec("5"))
				})).Return(nil)
				publisher.On("Publish", mock.Anything).Return(nil).Times(2)
			},
		},
		{
			name: "unknown pot",
			req:  request,
			setupMocks: func(potRepo *testhelpers.MockPotRepository, withdrawalRepo *testhelpers.MockWithdrawalRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Profit"}).Return([]*entities.Pot{}, nil)
			},
			wantErr:     entities.ErrPotNotFound,
			errContains: "Profit",
		},
		{
			name: "insufficient funds",
			req:  entities.WithdrawalRequest{FromPot: "Profit", Amount: dec("500"), CreatedBy: "operator-1"},
			setupMocks: func(potRepo *testhelpers.MockPotRepository, withdrawalRepo *testhelpers.MockWithdrawalRepository, publisher *testhelpers.MockEventPublisher) {
				potRepo.On("LockByNames", mock.Anything, []string{"Profit"}).
					Return([]*entities.Pot{createTestPot("Profit", "10", "10")}, nil)
				potRepo.On("AdjustBalance", mock.Anything, "Profit", testhelpers.DecimalEq("-500")).
					Return(nil, entities.ErrInsufficientFunds)
			},
			wantErr:     entities.ErrInsufficientFunds,
			errContains: "failed to debit pot Profit",
		},
		{
			name:        "missing operator",
			req:         entities.WithdrawalRequest{FromPot: "Profit", Amount: dec("5")},
			setupMocks:  func(*testhelpers.MockPotRepository, *testhelpers.MockWithdrawalRepository, *testhelpers.MockEventPublisher) {},
			wantErr:     entities.ErrValidation,
			errContains: "requires an operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			potRepo := new(testhelpers.MockPotRepository)
			withdrawalRepo := new(testhelpers.MockWithdrawalRepository)
			publisher := new(testhelpers.MockEventPublisher)
			tt.setupMocks(potRepo, withdrawalRepo, publisher)

			service := NewWithdrawalService(potRepo, withdrawalRepo, publisher)
			result, err := service.Withdraw(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, result)
				withdrawalRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Profit", result.Withdrawal.FromPot)
			}

			potRepo.AssertExpectations(t)
			withdrawalRepo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}
