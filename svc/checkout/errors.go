package checkout

import "errors"

var (
	// ErrUserNotFound covers both an unknown id and an id/email mismatch.
	ErrUserNotFound = errors.New("user not found")
	ErrUserLookup   = errors.New("failed to look up user")
	ErrNoSession    = errors.New("provider returned no session")
	ErrNoTargets    = errors.New("at least one write target is required")
)
