// Package errclass defines the stable error classes returned by the store.
//
// Every fallible operation surfaces one of these classes, usually wrapped
// with call-site context via fmt.Errorf("...: %w", err). Callers match with
// errors.Is against the exported class values.
package errclass

import "fmt"

// KVSError is a stable, machine-readable error class.
type KVSError struct {
	Code    string
	Message string
}

func (e *KVSError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *KVSError) Is(target error) bool {
	t, ok := target.(*KVSError)
	return ok && e.Code == t.Code
}

// WithMessage returns a new KVSError with the same Code but a specific message.
func (e *KVSError) WithMessage(msg string) *KVSError {
	return &KVSError{Code: e.Code, Message: msg}
}

// WithMessagef returns a new KVSError with a formatted message.
func (e *KVSError) WithMessagef(format string, args ...any) *KVSError {
	return &KVSError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// The closed set of error classes (5 total).
var (
	// ErrNotFound: a key or snapshot is absent, or required on-disk state
	// (store, defaults) does not exist.
	ErrNotFound = &KVSError{Code: "E_NOT_FOUND"}
	// ErrIO: a read, write, or create failed on the instance directory or
	// one of its files.
	ErrIO = &KVSError{Code: "E_IO"}
	// ErrInvalidConfig: contradictory or missing construction or settings
	// parameters.
	ErrInvalidConfig = &KVSError{Code: "E_INVALID_CONFIG"}
	// ErrIntegrity: a digest mismatch, a missing digest, or a stored
	// payload that cannot be decoded.
	ErrIntegrity = &KVSError{Code: "E_INTEGRITY"}
	// ErrTypeMismatch: a declared type tag does not match the parsed value.
	ErrTypeMismatch = &KVSError{Code: "E_TYPE_MISMATCH"}
)
