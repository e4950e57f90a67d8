package credentials

import "errors"

// Credentials cache errors.
var (
	// ErrNotFound is returned when a session does not exist, has
	// expired, or its user record has already expired. The composed
	// session+user lookup is both-or-nothing.
	ErrNotFound = errors.New("credentials: session not found")
)
