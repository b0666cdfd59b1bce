// Package errors defines the typed errors shared by the collector pipeline.
// Callers import it as apperrors to keep the standard library name free.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown        = "UNKNOWN"
	CodeValidation     = "VALIDATION"
	CodeStore          = "STORE"
	CodeExternalIO     = "EXTERNAL_IO"
	CodeAmbiguousMerge = "AMBIGUOUS_MERGE"
	CodeConfig         = "CONFIG"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error represents a basic application error.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if there is none.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// ValidationError marks an event that was dropped before any persistence.
type ValidationError struct {
	base Error
}

func (e *ValidationError) Error() string { return e.base.Error() }
func (e *ValidationError) Code() string  { return e.base.Code() }
func (e *ValidationError) Unwrap() error { return e.base.Unwrap() }

func NewValidationError(message string, cause error) error {
	return &ValidationError{base: Error{code: CodeValidation, message: message, err: cause}}
}

// StoreError wraps a failed store transaction. Nothing from the failed call
// was committed.
type StoreError struct {
	base Error
}

func (e *StoreError) Error() string { return e.base.Error() }
func (e *StoreError) Code() string  { return e.base.Code() }
func (e *StoreError) Unwrap() error { return e.base.Unwrap() }

func NewStoreError(message string, cause error) error {
	return &StoreError{base: Error{code: CodeStore, message: message, err: cause}}
}

// ExternalIOError covers media download and upload failures.
type ExternalIOError struct {
	base Error
}

func (e *ExternalIOError) Error() string { return e.base.Error() }
func (e *ExternalIOError) Code() string  { return e.base.Code() }
func (e *ExternalIOError) Unwrap() error { return e.base.Unwrap() }

func NewExternalIOError(message string, cause error) error {
	return &ExternalIOError{base: Error{code: CodeExternalIO, message: message, err: cause}}
}

// AmbiguousMergeError is reported when a supergroup matches several stale
// group rows. It is logged, never returned to store callers.
type AmbiguousMergeError struct {
	base       Error
	Candidates []int64
}

func (e *AmbiguousMergeError) Error() string { return e.base.Error() }
func (e *AmbiguousMergeError) Code() string  { return e.base.Code() }
func (e *AmbiguousMergeError) Unwrap() error { return e.base.Unwrap() }

func NewAmbiguousMergeError(title string, candidates []int64) error {
	return &AmbiguousMergeError{
		base: Error{
			code:    CodeAmbiguousMerge,
			message: fmt.Sprintf("%d group chats titled %q match supergroup", len(candidates), title),
		},
		Candidates: candidates,
	}
}

type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string { return e.base.Error() }
func (e *ConfigError) Code() string  { return e.base.Code() }
func (e *ConfigError) Unwrap() error { return e.base.Unwrap() }

func NewConfigError(message string, cause error) error {
	return &ConfigError{base: Error{code: CodeConfig, message: message, err: cause}}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsStore reports whether err carries a StoreError.
func IsStore(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
