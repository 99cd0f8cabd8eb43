package application

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"animalitos/domain/entities"

	"github.com/stretchr/testify/assert"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *countingSyncer) Sync(context.Context) (*entities.SyncReport, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &entities.SyncReport{Remaining: 1}, nil
}

func TestSyncWorker_RunsUntilStopped(t *testing.T) {
	t.Parallel()

	syncer := &countingSyncer{}
	stop := NewSyncWorker(syncer, 10*time.Millisecond).Start(context.Background())

	assert.Eventually(t, func() bool {
		return syncer.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	stop()
	after := syncer.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, syncer.calls.Load())
}

func TestSyncWorker_SurvivesErrorsAndCancellation(t *testing.T) {
	t.Parallel()

	syncer := &countingSyncer{err: errors.New("boom")}
	ctx, cancel := context.WithCancel(context.Background())
	stop := NewSyncWorker(syncer, 10*time.Millisecond).Start(ctx)

	assert.Eventually(t, func() bool {
		return syncer.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	// stop waits for the goroutine, which has already exited on cancellation
	done := make(chan struct{})
	go func() {
		defer close(done)
		stop()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
