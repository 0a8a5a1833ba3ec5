package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks an authenticated caller acting on something they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks uniqueness violations (duplicate like, already following, ...).
	ErrConflict = errors.New("conflict")
	// ErrLimitExceeded marks quota checks such as the per-user conversation cap.
	ErrLimitExceeded = errors.New("limit exceeded")
)
