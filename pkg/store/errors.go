package store

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a key does not exist or has expired.
	ErrNotFound = errors.New("store: record not found")

	// ErrClosed is returned when an operation is attempted on a closed backend.
	// Callers must treat this as "store down", never as an empty store.
	ErrClosed = errors.New("store: backend closed")

	// ErrNoBackend is returned when a Config carries no backend.
	ErrNoBackend = errors.New("store: no backend configured")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("store: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("store: failed to unmarshal value")
)
