package observability

import (
	"context"

	"animalitos/events"
)

// RegisterEventMetrics derives settlement, bet and drift metrics from ledger events
func RegisterEventMetrics(bus *events.Bus, mp *MetricsProvider) {
	bus.Subscribe(events.EventTypeBetDistributed, func(ctx context.Context, event events.Event) {
		mp.RecordBetDistributed(ctx)
	})

	bus.Subscribe(events.EventTypeDrawSettled, func(ctx context.Context, event events.Event) {
		settled, ok := event.(events.DrawSettledEvent)
		if !ok {
			return
		}
		mp.RecordSettlement(ctx, settled.PayoutPot, SettlementStatusSettled, settled.TotalPayout.InexactFloat64())
	})

	bus.Subscribe(events.EventTypeDrawSettlementFailed, func(ctx context.Context, event events.Event) {
		failed, ok := event.(events.DrawSettlementFailedEvent)
		if !ok {
			return
		}
		mp.RecordSettlement(ctx, failed.PayoutPot, SettlementStatusFailed, 0)
	})

	bus.Subscribe(events.EventTypeReconciliationDriftFound, func(ctx context.Context, event events.Event) {
		mp.RecordDrift(ctx)
	})
}
