package api

import (
	"errors"
	"net/http"

	"animalitos/domain/entities"

	log "github.com/sirupsen/logrus"
)

// statusFor maps the ledger error taxonomy to HTTP status codes.
// Not-found errors also match ErrValidation, so they are checked first.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrPotNotFound),
		errors.Is(err, entities.ErrDrawNotFound),
		errors.Is(err, entities.ErrBetNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrInsufficientFunds):
		return http.StatusConflict
	case errors.Is(err, entities.ErrPrizePoolInsufficient):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entities.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Ledger operation failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
