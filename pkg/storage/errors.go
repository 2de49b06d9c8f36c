package storage

import "errors"

// Common errors returned by storage implementations.
var (
	// ErrAlreadyInTx is returned when an operation requiring a non-transactional
	// context is attempted while already inside a transaction.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned when a transaction-specific operation is attempted
	// while not currently inside a transaction.
	ErrNotInTx = errors.New("not in tx")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint,
	// e.g. a second submission referencing the same payment intent.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNoJobRunner is returned by AddJob when the backend has nothing that
	// could run the job.
	ErrNoJobRunner = errors.New("no job runner configured")
)
