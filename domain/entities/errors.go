package entities

import "errors"

// Error taxonomy shared by every layer. Wrap with fmt.Errorf("...: %w") and classify with errors.Is.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrAlreadySettled      = errors.New("already settled")
	ErrPersistenceFailure  = errors.New("persistence failure")
	ErrRatingUpdateFailure = errors.New("rating update failure")
	ErrCompensationFailure = errors.New("compensation failure")

	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidOdds     = errors.New("invalid odds")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrStaleRating     = errors.New("rating changed concurrently")
)
