package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrInvalidIdentifier ErrorType = iota
	ErrFileOp
	ErrUnsupportedPlatform
	ErrInvalidConfig
	ErrChangesPending
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrInvalidIdentifier:
		return "InvalidIdentifier"
	case ErrFileOp:
		return "IOError"
	case ErrUnsupportedPlatform:
		return "UnsupportedPlatform"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrChangesPending:
		return "ChangesPending"
	default:
		return "Unknown"
	}
}

// CoprError represents an error while managing a COPR repository definition
type CoprError struct {
	Type       ErrorType
	Repository string
	Err        error
}

// Error implements the error interface
func (e *CoprError) Error() string {
	if e.Repository != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Repository, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *CoprError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether err is, or wraps, a CoprError of type t
func IsErrorType(err error, t ErrorType) bool {
	var ce *CoprError
	if errors.As(err, &ce) {
		return ce.Type == t
	}
	return false
}
