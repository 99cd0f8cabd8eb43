package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan PotBalanceChangedEvent, 1)
	mainBus.Subscribe(EventTypePotBalanceChanged, func(ctx context.Context, event Event) {
		if balanceEvent, ok := event.(PotBalanceChangedEvent); ok {
			eventReceived <- balanceEvent
		} else {
			t.Errorf("Expected PotBalanceChangedEvent, got %T", event)
		}
	})

	testEvent := PotBalanceChangedEvent{
		PotName:    "Prize",
		OldBalance: decimal.RequireFromString("60.00"),
		NewBalance: decimal.RequireFromString("23.00"),
		Delta:      decimal.RequireFromString("-37.00"),
		Version:    3,
		Cause:      "payout",
		Reference:  "draw-1",
	}

	require.NoError(t, transactionalBus.Publish(testEvent))
	assert.Equal(t, 1, transactionalBus.Pending())

	// Nothing is delivered before commit
	select {
	case <-eventReceived:
		t.Fatal("Event delivered before flush")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent.PotName, receivedEvent.PotName)
		assert.True(t, testEvent.NewBalance.Equal(receivedEvent.NewBalance))
		assert.True(t, testEvent.Delta.Equal(receivedEvent.Delta))
		assert.Equal(t, testEvent.Version, receivedEvent.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestDiscardDropsEvents tests that a rolled back unit of work publishes nothing
func TestDiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypeTransferCreated, func(ctx context.Context, event Event) {
		delivered <- event
	})

	require.NoError(t, transactionalBus.Publish(TransferCreatedEvent{TransferID: "t1"}))
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-delivered:
		t.Fatal("Discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

// TestFlushIgnoresCanceledContext tests delivery after the owning request finished
func TestFlushIgnoresCanceledContext(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	ctxErr := make(chan error, 1)
	mainBus.Subscribe(EventTypeDrawSettled, func(ctx context.Context, event Event) {
		ctxErr <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, transactionalBus.Publish(DrawSettledEvent{DrawID: "d1"}))
	require.NoError(t, transactionalBus.Flush(ctx))
	cancel()

	select {
	case err := <-ctxErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestSubscribeAllReceivesEveryType tests that a forwarder sees each ledger event type
func TestSubscribeAllReceivesEveryType(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := map[EventType]bool{}
	var wg sync.WaitGroup
	wg.Add(len(AllEventTypes))

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
		wg.Done()
	})

	all := []Event{
		PotBalanceChangedEvent{},
		BetDistributedEvent{},
		TransferCreatedEvent{},
		WithdrawalCreatedEvent{},
		DrawSettledEvent{},
		DrawSettlementFailedEvent{},
		ReconciliationDriftDetectedEvent{},
	}
	require.Len(t, all, len(AllEventTypes))
	for _, ev := range all {
		bus.Emit(context.Background(), ev)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not every event type was delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	for _, eventType := range AllEventTypes {
		assert.True(t, seen[eventType], "missing %s", eventType)
	}
}

// TestHandlerPanicIsContained tests that a panicking subscriber does not stop others
func TestHandlerPanicIsContained(t *testing.T) {
	bus := NewBus()
	received := make(chan struct{}, 1)

	bus.Subscribe(EventTypeWithdrawalCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeWithdrawalCreated, func(ctx context.Context, event Event) {
		received <- struct{}{}
	})

	bus.Emit(context.Background(), WithdrawalCreatedEvent{WithdrawalID: "w1"})

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("Second handler did not run")
	}
}
