package domain

import "errors"

var (
	// ErrInvalidPartition is returned when a partition key is malformed
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrCollectionNotFound is returned when a collection is not tracked
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrGrantNotFound is returned when a grant does not exist
	ErrGrantNotFound = errors.New("grant not found")

	// ErrLockLost is returned when a fenced update affects no rows because another worker owns the lock
	ErrLockLost = errors.New("snapshot lock lost")

	// ErrSupplyTooLarge is returned when a collection is too large to be snapshotted automatically
	ErrSupplyTooLarge = errors.New("collection supply too large")

	// ErrNotRequeueable is returned when a collection is not in a failed state
	ErrNotRequeueable = errors.New("collection is not in a failed state")

	// ErrBadRequest marks an invalid client request
	ErrBadRequest = errors.New("bad request")
)
