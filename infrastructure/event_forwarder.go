package infrastructure

import (
	"context"

	"animalitos/domain/interfaces"
	"animalitos/events"

	log "github.com/sirupsen/logrus"
)

// ForwardEvents subscribes publisher to every ledger event on bus.
// Publish failures are logged; committed ledger state is never rolled back for them.
func ForwardEvents(bus *events.Bus, publisher interfaces.EventPublisher) {
	bus.SubscribeAll(func(ctx context.Context, event events.Event) {
		if err := publisher.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to forward ledger event")
		}
	})
	log.WithField("eventTypeCount", len(events.AllEventTypes)).Info("Forwarding ledger events to message bus")
}
