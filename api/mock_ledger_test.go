package api

import (
	"context"
	"time"

	"animalitos/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockLedger is a mock implementation of LedgerAPI
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) ListPots(ctx context.Context) ([]*entities.Pot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pot), args.Error(1)
}

func (m *MockLedger) GetPot(ctx context.Context, name string) (*entities.Pot, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Pot), args.Error(1)
}

func (m *MockLedger) ConfigurePots(ctx context.Context, configs []entities.PotConfig) ([]*entities.Pot, error) {
	args := m.Called(ctx, configs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Pot), args.Error(1)
}

func (m *MockLedger) PlaceBet(ctx context.Context, intake entities.BetIntake) (*entities.DistributionResult, error) {
	args := m.Called(ctx, intake)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DistributionResult), args.Error(1)
}

func (m *MockLedger) Transfer(ctx context.Context, req entities.TransferRequest) (*entities.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransferResult), args.Error(1)
}

func (m *MockLedger) Withdraw(ctx context.Context, req entities.WithdrawalRequest) (*entities.WithdrawalResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.WithdrawalResult), args.Error(1)
}

func (m *MockLedger) ListTransfers(ctx context.Context, limit int) ([]*entities.Transfer, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transfer), args.Error(1)
}

func (m *MockLedger) ListWithdrawals(ctx context.Context, limit int) ([]*entities.Withdrawal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Withdrawal), args.Error(1)
}

func (m *MockLedger) TriggerDraw(ctx context.Context, trigger entities.DrawTrigger) (*entities.DrawOutcome, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawOutcome), args.Error(1)
}

func (m *MockLedger) Settle(ctx context.Context, drawID string) (*entities.SettlementResult, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SettlementResult), args.Error(1)
}

func (m *MockLedger) GetDistribution(ctx context.Context, betID string) (*entities.DistributionResult, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DistributionResult), args.Error(1)
}

func (m *MockLedger) LotterySummary(ctx context.Context, lotteryID string) (*entities.LotterySummary, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotterySummary), args.Error(1)
}

func (m *MockLedger) Reconcile(ctx context.Context) (*entities.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ReconciliationReport), args.Error(1)
}

func (m *MockLedger) Sync(ctx context.Context) (*entities.SyncReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SyncReport), args.Error(1)
}

func (m *MockLedger) DiscardConflict(ctx context.Context, seq int64) error {
	args := m.Called(ctx, seq)
	return args.Error(0)
}

// recordedRequest is one RecordHTTPRequest call
type recordedRequest struct {
	method string
	route  string
	status int
}

type fakeRequestRecorder struct {
	requests []recordedRequest
}

func (f *fakeRequestRecorder) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	f.requests = append(f.requests, recordedRequest{method: method, route: route, status: status})
}
