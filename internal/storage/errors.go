package storage

import "errors"

// Storage errors.
var (
	// ErrDuplicateKey is returned when attempting to insert an event whose
	// victim_tx_hash already exists. Events are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key: event already recorded")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
