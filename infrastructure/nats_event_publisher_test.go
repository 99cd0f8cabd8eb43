package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"animalitos/events"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, publishedMessage{subject: subject, data: data})
	return nil
}

func (p *recordingPublisher) snapshot() []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedMessage, len(p.messages))
	copy(out, p.messages)
	return out
}

func TestNATSEventPublisher_Envelope(t *testing.T) {
	recorder := &recordingPublisher{}
	publisher := NewNATSEventPublisher(recorder)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	err := publisher.Publish(events.DrawSettledEvent{
		DrawID:              "draw-1",
		LotteryID:           "lottery-1",
		WinningAnimalNumber: "07",
		PayoutPot:           "Prize",
		TotalPayout:         decimal.RequireFromString("37.00"),
		WinnersCount:        1,
		LosersCount:         1,
	})
	require.NoError(t, err)

	messages := recorder.snapshot()
	require.Len(t, messages, 1)
	assert.Equal(t, "ledger.draw.settled", messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(messages[0].data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "draw.settled", envelope.EventType)
	assert.Equal(t, "animalitos-ledger", envelope.SourceService)
	assert.True(t, envelope.Timestamp.Equal(fixed))

	var payload events.DrawSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "draw-1", payload.DrawID)
	assert.True(t, payload.TotalPayout.Equal(decimal.NewFromInt(37)))
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Run("no stream is ignored", func(t *testing.T) {
		recorder := &recordingPublisher{err: fmt.Errorf("failed to publish message to subject x: %w", nats.ErrNoStreamResponse)}
		publisher := NewNATSEventPublisher(recorder)
		assert.NoError(t, publisher.Publish(events.TransferCreatedEvent{TransferID: "t1"}))
	})

	t.Run("other errors are returned", func(t *testing.T) {
		recorder := &recordingPublisher{err: errors.New("connection closed")}
		publisher := NewNATSEventPublisher(recorder)
		assert.Error(t, publisher.Publish(events.TransferCreatedEvent{TransferID: "t1"}))
	})
}

func TestSubjectFor(t *testing.T) {
	for _, eventType := range events.AllEventTypes {
		assert.Equal(t, "ledger."+string(eventType), SubjectFor(eventType))
	}
}

func TestForwardEvents(t *testing.T) {
	bus := events.NewBus()
	recorder := &recordingPublisher{}
	ForwardEvents(bus, NewNATSEventPublisher(recorder))

	ctx := context.Background()
	bus.Emit(ctx, events.WithdrawalCreatedEvent{WithdrawalID: "w1", FromPot: "Profit", Amount: decimal.NewFromInt(5)})
	bus.Emit(ctx, events.PotBalanceChangedEvent{PotName: "Profit", Delta: decimal.NewFromInt(-5)})

	assert.Eventually(t, func() bool {
		return len(recorder.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	subjects := map[string]bool{}
	for _, m := range recorder.snapshot() {
		subjects[m.subject] = true
	}
	assert.True(t, subjects["ledger.withdrawal.created"])
	assert.True(t, subjects["ledger.pot.balance_changed"])
}

func TestNoopEventPublisher(t *testing.T) {
	assert.NoError(t, NewNoopEventPublisher().Publish(events.DrawSettledEvent{}))
}
