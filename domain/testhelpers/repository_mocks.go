package testhelpers

import (
	"context"
	"time"

	"animalitos/domain/entities"
	"animalitos/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPotRepository is a mock implementation of PotRepository
type MockPotRepository struct {
	mock.Mock
}

func (m *MockPotRepository) GetByName(ctx context.Context, name string) (*entities.Pot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pot), args.Error(1)
}

func (m *MockPotRepository) List(ctx context.Context) ([]*entities.Pot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pot), args.Error(1)
}

func (m *MockPotRepository) LockByNames(ctx context.Context, names []string) ([]*entities.Pot, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pot), args.Error(1)
}

func (m *MockPotRepository) LockActive(ctx context.Context) ([]*entities.Pot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pot), args.Error(1)
}

func (m *MockPotRepository) Create(ctx context.Context, pot *entities.Pot) error {
	args := m.Called(ctx, pot)
	return args.Error(0)
}

func (m *MockPotRepository) UpdateConfig(ctx context.Context, pot *entities.Pot) error {
	args := m.Called(ctx, pot)
	return args.Error(0)
}

func (m *MockPotRepository) AdjustBalance(ctx context.Context, name string, delta decimal.Decimal) (*entities.Pot, error) {
	args := m.Called(ctx, name, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pot), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) CreateIfAbsent(ctx context.Context, bet *entities.Bet) (bool, error) {
	args := m.Called(ctx, bet)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id string) (*entities.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetPendingByLottery(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) GetPendingByLotteryForUpdate(ctx context.Context, lotteryID string) ([]*entities.Bet, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Bet), args.Error(1)
}

func (m *MockBetRepository) MarkSettled(ctx context.Context, betIDs []string, outcome entities.BetOutcome, drawID string, settledAt time.Time) (int64, error) {
	args := m.Called(ctx, betIDs, outcome, drawID, settledAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBetRepository) SumAmounts(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDistributionRepository is a mock implementation of DistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) CreateLines(ctx context.Context, lines []entities.DistributionLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *MockDistributionRepository) GetByBet(ctx context.Context, betID string) ([]*entities.DistributionLine, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DistributionLine), args.Error(1)
}

func (m *MockDistributionRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, transfer *entities.Transfer) error {
	args := m.Called(ctx, transfer)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*entities.Transfer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transfer), args.Error(1)
}

func (m *MockTransferRepository) List(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transfer), args.Error(1)
}

func (m *MockTransferRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	var in, out map[string]decimal.Decimal
	if args.Get(0) != nil {
		in = args.Get(0).(map[string]decimal.Decimal)
	}
	if args.Get(1) != nil {
		out = args.Get(1).(map[string]decimal.Decimal)
	}
	return in, out, args.Error(2)
}

// MockWithdrawalRepository is a mock implementation of WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *entities.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id string) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) List(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) SumByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) CreateIfAbsent(ctx context.Context, draw *entities.Draw) (bool, error) {
	args := m.Called(ctx, draw)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id string) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByIDForUpdate(ctx context.Context, id string) (*entities.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByLotteryID(ctx context.Context, lotteryID string) (*entities.Draw, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Draw), args.Error(1)
}

func (m *MockDrawRepository) Update(ctx context.Context, draw *entities.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) SumPayoutsByPot(ctx context.Context) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// DecimalEq matches a decimal argument by value, ignoring its internal exponent
func DecimalEq(want string) interface{} {
	expected := decimal.RequireFromString(want)
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(expected)
	})
}
