package inventory

import "errors"

var (
	// ErrNotFound means no record matched the lookup.
	ErrNotFound = errors.New("no inventory record found")
	// ErrExpired means records matched but none is inside its validity window.
	ErrExpired = errors.New("inventory details not found")
	// ErrStoreUnavailable wraps any failure talking to the persistent store.
	ErrStoreUnavailable = errors.New("inventory store unavailable")
	// ErrMissingField means a required form field was absent or malformed.
	ErrMissingField = errors.New("one or more form fields are missing or malformed")
	// ErrPublishFailure is only returned when strict publishing is enabled.
	ErrPublishFailure = errors.New("failed to publish inventory event")
)
