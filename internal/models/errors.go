package models

import (
	"errors"
	"fmt"
)

// ErrorType identifies the category of error that occurred.
type ErrorType string

const (
	// Local validation, returned synchronously without touching state
	ErrUnknownEntry      ErrorType = "unknown_entry"
	ErrUnknownInstance   ErrorType = "unknown_instance"
	ErrOperationConflict ErrorType = "operation_conflict"

	// Transport or non-2xx response from the remote service
	ErrRemoteFailure ErrorType = "remote_failure"
)

// RegistryError is returned by registry operations.
type RegistryError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// IsType reports whether err, or any error it wraps, is a RegistryError of type t.
func IsType(err error, t ErrorType) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Type == t
}
