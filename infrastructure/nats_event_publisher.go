package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"animalitos/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const sourceService = "animalitos-ledger"

// EventEnvelope wraps every event published to the LEDGER stream
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Payload       json.RawMessage `json:"payload"`
}

// SubjectFor maps an event to its NATS subject
func SubjectFor(eventType events.EventType) string {
	return LedgerSubjectPrefix + string(eventType)
}

// NATSEventPublisher implements the EventPublisher interface using NATS
type NATSEventPublisher struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(publisher MessagePublisher) *NATSEventPublisher {
	return &NATSEventPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// Publish publishes an event to NATS using the subject of its type
func (p *NATSEventPublisher) Publish(event events.Event) error {
	return p.PublishContext(context.Background(), event)
}

// PublishContext is Publish with a caller supplied context
func (p *NATSEventPublisher) PublishContext(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     p.now().UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectFor(event.Type())
	if err := p.publisher.Publish(ctx, subject, envelopeData); err != nil {
		// No stream bound to the subject, nobody is listening
		if errors.Is(err, nats.ErrNoStreamResponse) || strings.Contains(err.Error(), "no response from stream") {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"subject":   subject,
			}).Debug("No stream for subject, event dropped")
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}
