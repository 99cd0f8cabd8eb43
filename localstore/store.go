// Package localstore keeps the ledger running on a local SQLite file while the
// authoritative Postgres store is unreachable. Every mutation written here is
// journaled so it can be replayed later.
package localstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"animalitos/application"
	"animalitos/events"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the local SQLite ledger. One unit of work runs at a time.
type Store struct {
	db   *gorm.DB
	mu   sync.Mutex
	path string
}

// Open opens or creates the SQLite file at path and migrates its tables
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create local store directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get local store handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(allModels...); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	log.WithFields(log.Fields{
		"path": path,
	}).Info("Opened local store")

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Path returns the SQLite file path
func (s *Store) Path() string {
	return s.path
}

type unitOfWorkFactory struct {
	store *Store
	bus   *events.Bus
}

// UnitOfWorkFactory returns a factory for local units of work publishing to bus
func (s *Store) UnitOfWorkFactory(bus *events.Bus) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{store: s, bus: bus}
}

func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return &unitOfWork{
		store:                  f.store,
		transactionalPublisher: events.NewTransactionalBus(f.bus),
	}
}
