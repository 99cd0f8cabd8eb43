package events

import (
	"github.com/shopspring/decimal"
)

const (
	EventTypePotBalanceChanged        EventType = "pot.balance_changed"
	EventTypeBetDistributed           EventType = "bet.distributed"
	EventTypeTransferCreated          EventType = "transfer.created"
	EventTypeWithdrawalCreated        EventType = "withdrawal.created"
	EventTypeDrawSettled              EventType = "draw.settled"
	EventTypeDrawSettlementFailed     EventType = "draw.settlement_failed"
	EventTypeReconciliationDriftFound EventType = "reconciliation.drift_detected"
)

// AllEventTypes lists every event the ledger emits
var AllEventTypes = []EventType{
	EventTypePotBalanceChanged,
	EventTypeBetDistributed,
	EventTypeTransferCreated,
	EventTypeWithdrawalCreated,
	EventTypeDrawSettled,
	EventTypeDrawSettlementFailed,
	EventTypeReconciliationDriftFound,
}

// PotBalanceChangedEvent is raised for every successful balance adjustment
type PotBalanceChangedEvent struct {
	PotName    string          `json:"potName"`
	OldBalance decimal.Decimal `json:"oldBalance"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Delta      decimal.Decimal `json:"delta"`
	Version    int64           `json:"version"`
	Cause      string          `json:"cause"`
	Reference  string          `json:"reference"`
}

func (e PotBalanceChangedEvent) Type() EventType {
	return EventTypePotBalanceChanged
}

// BetDistributedEvent is raised once per bet when its stake is split across pots
type BetDistributedEvent struct {
	BetID     string                     `json:"betId"`
	LotteryID string                     `json:"lotteryId"`
	Amount    decimal.Decimal            `json:"amount"`
	Shares    map[string]decimal.Decimal `json:"shares"`
}

func (e BetDistributedEvent) Type() EventType {
	return EventTypeBetDistributed
}

type TransferCreatedEvent struct {
	TransferID string          `json:"transferId"`
	FromPot    string          `json:"fromPot"`
	ToPot      string          `json:"toPot"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedBy  string          `json:"createdBy"`
}

func (e TransferCreatedEvent) Type() EventType {
	return EventTypeTransferCreated
}

type WithdrawalCreatedEvent struct {
	WithdrawalID string          `json:"withdrawalId"`
	FromPot      string          `json:"fromPot"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedBy    string          `json:"createdBy"`
}

func (e WithdrawalCreatedEvent) Type() EventType {
	return EventTypeWithdrawalCreated
}

type DrawSettledEvent struct {
	DrawID              string          `json:"drawId"`
	LotteryID           string          `json:"lotteryId"`
	WinningAnimalNumber string          `json:"winningAnimalNumber"`
	PayoutPot           string          `json:"payoutPot"`
	TotalPayout         decimal.Decimal `json:"totalPayout"`
	WinnersCount        int             `json:"winnersCount"`
	LosersCount         int             `json:"losersCount"`
}

func (e DrawSettledEvent) Type() EventType {
	return EventTypeDrawSettled
}

// DrawSettlementFailedEvent needs an operator: the prize pot could not cover the payout
type DrawSettlementFailedEvent struct {
	DrawID         string          `json:"drawId"`
	LotteryID      string          `json:"lotteryId"`
	PayoutPot      string          `json:"payoutPot"`
	RequiredPayout decimal.Decimal `json:"requiredPayout"`
	Reason         string          `json:"reason"`
}

func (e DrawSettlementFailedEvent) Type() EventType {
	return EventTypeDrawSettlementFailed
}

type ReconciliationDriftDetectedEvent struct {
	DriftedPots map[string]decimal.Decimal `json:"driftedPots"`
	GlobalDrift decimal.Decimal            `json:"globalDrift"`
}

func (e ReconciliationDriftDetectedEvent) Type() EventType {
	return EventTypeReconciliationDriftFound
}
