package service

import "errors"

var (
	// ErrNotFound is returned when a referenced row (event totals, player, event, medal) does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for requests that fail validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientPot is returned when a raffle payout exceeds what remains of the pot
	ErrInsufficientPot = errors.New("insufficient pot")

	// ErrInvariantViolation signals a settlement that would overspend the pot.
	// It always indicates a bug and aborts the transaction.
	ErrInvariantViolation = errors.New("settlement invariant violated")
)
