package application

import (
	"context"
	"time"

	"animalitos/domain/entities"

	log "github.com/sirupsen/logrus"
)

// Syncer replays local work against the authoritative store
type Syncer interface {
	Sync(ctx context.Context) (*entities.SyncReport, error)
}

// SyncWorker runs Sync on a fixed interval
type SyncWorker struct {
	syncer   Syncer
	interval time.Duration
}

// NewSyncWorker creates a new sync worker
func NewSyncWorker(syncer Syncer, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		syncer:   syncer,
		interval: interval,
	}
}

// Start runs one pass immediately and then every interval. The returned
// function stops the worker.
func (w *SyncWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		log.WithFields(log.Fields{
			"interval": w.interval.String(),
		}).Info("Sync worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			w.runOnce(ctx)

			select {
			case <-ctx.Done():
				log.Info("Sync worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Sync worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
		<-done
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	report, err := w.syncer.Sync(ctx)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Sync pass failed")
		return
	}
	if report.Remaining > 0 {
		log.WithFields(log.Fields{
			"remaining": report.Remaining,
		}).Debug("Sync pass left entries pending")
	}
}
