package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"animalitos/api"
	"animalitos/application"
	"animalitos/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger with its admin HTTP API and sync worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), config.Get())
		},
	}
}

// runServe blocks until ctx is canceled or the HTTP server fails
func runServe(ctx context.Context, cfg *config.Config) error {
	log.WithField("environment", cfg.Environment).Info("Starting animalitos ledger...")

	a, err := newApp(ctx, cfg, appOptions{publish: true})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Close(shutdownCtx)
		log.Info("Shutdown completed")
	}()

	if err := a.seedPots(ctx); err != nil {
		return err
	}

	var stopWorker func()
	if a.local != nil {
		stopWorker = application.NewSyncWorker(a.ledger, cfg.SyncInterval).Start(ctx)
	}

	srv := api.NewServer(cfg.HTTPPort, a.ledger, a.metrics)
	errCh := make(chan error, 1)
	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}
		errCh <- nil
	}()
	log.WithField("addr", srv.Addr).Info("Admin API started")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down gracefully...")
	case serr := <-errCh:
		if serr != nil {
			runErr = fmt.Errorf("server error: %w", serr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to shut down HTTP server")
	}
	if stopWorker != nil {
		stopWorker()
	}
	return runErr
}
