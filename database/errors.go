package database

import (
	"context"
	"errors"
	"fmt"
	"net"

	"animalitos/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes that mean the server went away or the transaction lost a race
// and can be retried in full.
var unavailableCodes = map[string]bool{
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
}

// ClassifyError marks connection level failures as entities.ErrStorageUnavailable.
// Everything else is returned unchanged.
func ClassifyError(err error) error {
	if err == nil || errors.Is(err, entities.ErrStorageUnavailable) {
		return err
	}
	if IsUnavailable(err) {
		return fmt.Errorf("%w: %w", entities.ErrStorageUnavailable, err)
	}
	return err
}

// IsUnavailable reports whether err means the database could not be reached or
// dropped the connection before the statement took effect.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, entities.ErrStorageUnavailable) {
		return true
	}
	// A canceled caller is not a backend outage
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
		return unavailableCodes[pgErr.Code]
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
