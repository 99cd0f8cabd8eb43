package entities

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PotHistory is what the append-only history says flowed through one pot.
type PotHistory struct {
	Distributed  decimal.Decimal
	TransfersIn  decimal.Decimal
	TransfersOut decimal.Decimal
	Withdrawn    decimal.Decimal
	PaidOut      decimal.Decimal
}

// Expected is the balance the pot should hold given its history.
func (h PotHistory) Expected() decimal.Decimal {
	return h.Distributed.
		Add(h.TransfersIn).
		Sub(h.TransfersOut).
		Sub(h.Withdrawn).
		Sub(h.PaidOut)
}

// LedgerTotals are the system-wide sums the global invariant is checked against.
type LedgerTotals struct {
	BetAmounts  decimal.Decimal
	Withdrawals decimal.Decimal
	Payouts     decimal.Decimal
}

// Expected is sum(bets) - sum(withdrawals) - sum(payouts).
func (t LedgerTotals) Expected() decimal.Decimal {
	return t.BetAmounts.Sub(t.Withdrawals).Sub(t.Payouts)
}

// PotDrift compares a pot's stored balance with the one derived from history.
type PotDrift struct {
	Pot      string          `json:"pot"`
	Expected decimal.Decimal `json:"expected"`
	Actual   decimal.Decimal `json:"actual"`
	Drift    decimal.Decimal `json:"drift"`
}

// HasDrift reports a non-zero difference.
func (d PotDrift) HasDrift() bool {
	return !d.Drift.IsZero()
}

// ReconciliationReport is the read-only audit of the ledger. Drift is reported,
// never corrected.
type ReconciliationReport struct {
	Pots           []PotDrift      `json:"pots"`
	GlobalExpected decimal.Decimal `json:"globalExpected"`
	GlobalActual   decimal.Decimal `json:"globalActual"`
	GlobalDrift    decimal.Decimal `json:"globalDrift"`
	// Unsynced holds per-pot balance deltas applied in the local store and not
	// yet replayed against the authoritative one.
	Unsynced       map[string]decimal.Decimal `json:"unsynced"`
	PendingEntries int                        `json:"pendingEntries"`
	Conflicts      int                        `json:"conflicts"`
	GeneratedAt    time.Time                  `json:"generatedAt"`
}

// BuildReconciliationReport compares stored pots with history. Pots that only
// appear in history are reported with an actual balance of zero.
func BuildReconciliationReport(pots []*Pot, history map[string]PotHistory, totals LedgerTotals, now time.Time) *ReconciliationReport {
	actual := make(map[string]decimal.Decimal, len(pots))
	for _, pot := range pots {
		actual[pot.Name] = pot.Balance
	}

	names := make([]string, 0, len(actual))
	for name := range actual {
		names = append(names, name)
	}
	for name := range history {
		if _, ok := actual[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	report := &ReconciliationReport{
		Pots:           make([]PotDrift, 0, len(names)),
		GlobalExpected: totals.Expected(),
		GlobalActual:   decimal.Zero,
		Unsynced:       make(map[string]decimal.Decimal),
		GeneratedAt:    now,
	}
	for _, name := range names {
		expected := history[name].Expected()
		got := actual[name]
		report.Pots = append(report.Pots, PotDrift{
			Pot:      name,
			Expected: expected,
			Actual:   got,
			Drift:    got.Sub(expected),
		})
		report.GlobalActual = report.GlobalActual.Add(got)
	}
	report.GlobalDrift = report.GlobalActual.Sub(report.GlobalExpected)

	return report
}

// DriftedPots returns the pots whose stored balance disagrees with history.
func (r *ReconciliationReport) DriftedPots() []PotDrift {
	var drifted []PotDrift
	for _, d := range r.Pots {
		if d.HasDrift() {
			drifted = append(drifted, d)
		}
	}
	return drifted
}

// Violation returns an ErrInvariantViolation describing any drift, or nil.
func (r *ReconciliationReport) Violation() error {
	drifted := r.DriftedPots()
	if len(drifted) == 0 && r.GlobalDrift.IsZero() {
		return nil
	}
	return fmt.Errorf("%w: %d pots drifted, global drift %s", ErrInvariantViolation, len(drifted), r.GlobalDrift.String())
}
