package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"animalitos/application"
	"animalitos/config"
	"animalitos/database"
	"animalitos/domain/entities"
	"animalitos/events"
	"animalitos/infrastructure"
	"animalitos/infrastructure/observability"
	"animalitos/localstore"
	"animalitos/repository"

	log "github.com/sirupsen/logrus"
)

// app holds the wired ledger and everything it needs to shut down
type app struct {
	cfg     *config.Config
	db      *database.DB
	local   *localstore.Store
	bus     *events.Bus
	ledger  *application.Ledger
	metrics *observability.MetricsProvider
	nats    *infrastructure.NATSClient
}

type appOptions struct {
	// publish forwards ledger events to NATS and metrics
	publish bool
}

// newApp connects the stores and builds the ledger facade
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, bus: events.NewBus()}

	databaseURL := cfg.GetDatabaseURL()
	log.WithField("database", database.RedactURL(databaseURL)).Info("Connecting to database...")
	db, err := connectDatabase(ctx, cfg, databaseURL)
	if err != nil {
		return nil, err
	}
	a.db = db

	if cfg.LocalFallbackEnabled {
		local, err := localstore.Open(cfg.LocalStorePath)
		if err != nil {
			a.db.Close()
			return nil, fmt.Errorf("failed to open local store: %w", err)
		}
		a.local = local
		log.WithField("path", local.Path()).Info("Local fallback store opened")
	}

	if opts.publish {
		if err := a.setupPublishing(ctx); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}

	ledgerCfg := application.LedgerConfig{
		PrizePot:        cfg.PrizePot,
		FallbackEnabled: cfg.LocalFallbackEnabled,
	}
	if a.metrics != nil {
		ledgerCfg.Recorder = a.metrics
	}
	if a.local != nil {
		ledgerCfg.Local = a.local.UnitOfWorkFactory(a.bus)
		ledgerCfg.Journal = a.local
	}
	a.ledger = application.NewLedger(repository.NewUnitOfWorkFactory(a.db, a.bus), ledgerCfg)

	return a, nil
}

// connectDatabase pings Postgres. When it is down and the local fallback is on,
// the pool is created lazily so the service can start offline.
func connectDatabase(ctx context.Context, cfg *config.Config, databaseURL string) (*database.DB, error) {
	opts := database.PoolOptions{ConnectTimeout: cfg.DatabaseConnectTimeout}
	db, err := database.NewConnectionWithOptions(ctx, databaseURL, opts)
	if err == nil {
		log.Info("Database connection established successfully")
		return db, nil
	}
	if !errors.Is(err, entities.ErrStorageUnavailable) || !cfg.LocalFallbackEnabled {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.WithError(err).Warn("Database unavailable, starting with local fallback")
	opts.Lazy = true
	db, err = database.NewConnectionWithOptions(ctx, databaseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return db, nil
}

// setupPublishing starts metrics and, when NATS_SERVERS is set, event forwarding
func (a *app) setupPublishing(ctx context.Context) error {
	if err := observability.InitializeGlobalMetrics(ctx, a.cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	a.metrics = observability.GetMetrics()
	observability.RegisterEventMetrics(a.bus, a.metrics)

	if a.cfg.NATSServers == "" {
		log.Info("NATS_SERVERS not set, ledger events stay in process")
		infrastructure.ForwardEvents(a.bus, infrastructure.NewNoopEventPublisher())
		return nil
	}

	client := infrastructure.NewNATSClient(a.cfg.NATSServers)
	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := client.EnsureLedgerStream(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to ensure ledger stream: %w", err)
	}
	a.nats = client
	infrastructure.ForwardEvents(a.bus, infrastructure.NewNATSEventPublisher(client))
	return nil
}

// seedPots creates the configured pots when the registry is empty
func (a *app) seedPots(ctx context.Context) error {
	if a.cfg.PotsFile == "" {
		return nil
	}
	if _, err := os.Stat(a.cfg.PotsFile); errors.Is(err, os.ErrNotExist) {
		log.WithField("potsFile", a.cfg.PotsFile).Info("No pot configuration file, skipping seed")
		return nil
	}

	configs, err := config.LoadPotConfigs(a.cfg.PotsFile)
	if err != nil {
		return err
	}
	seeded, err := a.ledger.SeedPots(ctx, configs)
	if err != nil {
		if errors.Is(err, entities.ErrStorageUnavailable) {
			log.WithError(err).Warn("Could not seed pots, database unavailable")
			return nil
		}
		return fmt.Errorf("failed to seed pots: %w", err)
	}
	log.WithFields(log.Fields{
		"potsFile": a.cfg.PotsFile,
		"seeded":   seeded,
		"potCount": len(configs),
	}).Info("Pot registry checked")
	return nil
}

// Close releases every connection the app opened
func (a *app) Close(ctx context.Context) {
	if a.nats != nil {
		_ = a.nats.Close()
	}
	if a.metrics != nil {
		if err := observability.ShutdownGlobalMetrics(ctx); err != nil {
			log.WithError(err).Warn("Failed to shut down metrics")
		}
	}
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			log.WithError(err).Warn("Failed to close local store")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
