package observability

// Metric name prefixes
const (
	MetricPrefix = "animalitos"
)

// Metric names
const (
	// Ledger operation metrics
	LedgerOperationsTotal = MetricPrefix + ".ledger.operations_total"

	// Draw metrics
	DrawPayoutTotal          = MetricPrefix + ".draws.payout_total"
	DrawSettlementsTotal     = MetricPrefix + ".draws.settlements_total"
	BetsDistributedTotal     = MetricPrefix + ".bets.distributed_total"
	ReconciliationDriftTotal = MetricPrefix + ".reconciliation.drift_total"

	// HTTP metrics
	HTTPRequestsTotal   = MetricPrefix + ".http.requests_total"
	HTTPRequestDuration = MetricPrefix + ".http.request_duration"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelPot       = "pot"
	LabelStatus    = "status"
	LabelMethod    = "method"
	LabelRoute     = "route"
)

// Settlement statuses
const (
	SettlementStatusSettled = "settled"
	SettlementStatusFailed  = "failed"
)
