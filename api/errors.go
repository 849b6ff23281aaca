package api

import (
	"errors"
	"net/http"

	"gambler/challenge-service/domain/entities"

	log "github.com/sirupsen/logrus"
)

var errUnauthorized = errors.New("unauthorized")

// respondError maps the domain error taxonomy onto HTTP statuses
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entities.ErrCompensationFailure),
		errors.Is(err, entities.ErrPersistenceFailure),
		errors.Is(err, entities.ErrRatingUpdateFailure):
		status = http.StatusInternalServerError
	case errors.Is(err, entities.ErrAlreadySettled):
		h.ok(w, map[string]bool{"alreadySettled": true})
		return
	case errors.Is(err, errUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, entities.ErrInsufficientFunds), errors.Is(err, entities.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
	case errors.Is(err, entities.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entities.ErrInvalidInput),
		errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrInvalidOdds):
		status = http.StatusBadRequest
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		message = "internal error"
	}

	h.CreateResponse(w, Response{Code: status, Error: message})
}
