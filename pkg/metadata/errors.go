package metadata

import "errors"

// StoreError represents a domain error from metadata store operations.
//
// These are business logic errors (path not found, directory conflict, commit
// on a non-pending entry) as opposed to infrastructure errors (network
// failure, disk error). The protocol layer translates Code to HTTP statuses;
// infrastructure errors surface as wrapped plain errors and map to 5xx.
type StoreError struct {
	// Code is the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the path related to the error, if applicable.
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode categorizes a StoreError.
type ErrorCode int

const (
	// ErrNotFound indicates the requested sandbox, path, or entry doesn't exist.
	ErrNotFound ErrorCode = iota

	// ErrConflict indicates the operation collides with an existing entry of
	// an incompatible kind (e.g. MKCOL over a ready file).
	ErrConflict

	// ErrInvalidState indicates a lifecycle violation, such as committing a
	// write whose entry is not pending.
	ErrInvalidState

	// ErrInvalidArgument indicates malformed input (bad slug, empty path).
	ErrInvalidArgument

	// ErrAlreadyExists indicates a uniqueness violation (duplicate slug).
	ErrAlreadyExists

	// ErrIOError indicates the backing store failed.
	ErrIOError
)

// CodeOf extracts the ErrorCode from err, or ErrIOError if err is not a
// StoreError. Returns ok=false for nil.
func CodeOf(err error) (ErrorCode, bool) {
	if err == nil {
		return 0, false
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return ErrIOError, true
}

// IsNotFound reports whether err is a StoreError with ErrNotFound.
func IsNotFound(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrNotFound
}
