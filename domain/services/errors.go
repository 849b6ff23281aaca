package services

import (
	"errors"
	"fmt"

	"gambler/challenge-service/domain/entities"
)

// persistenceError wraps a store error as a persistence failure unless it already
// carries a domain classification
func persistenceError(action string, err error) error {
	if isDomainError(err) {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return fmt.Errorf("%w: failed to %s: %w", entities.ErrPersistenceFailure, action, err)
}

func isDomainError(err error) bool {
	return errors.Is(err, entities.ErrInsufficientFunds) ||
		errors.Is(err, entities.ErrNotFound) ||
		errors.Is(err, entities.ErrInvalidTransition) ||
		errors.Is(err, entities.ErrAlreadySettled) ||
		errors.Is(err, entities.ErrPersistenceFailure) ||
		errors.Is(err, entities.ErrRatingUpdateFailure) ||
		errors.Is(err, entities.ErrCompensationFailure) ||
		errors.Is(err, entities.ErrInvalidInput) ||
		errors.Is(err, entities.ErrInvalidAmount) ||
		errors.Is(err, entities.ErrInvalidOdds)
}
