// Package errors defines the error taxonomy shared by the chat front-end.
// Every remote failure is classified into one of these types at the point of
// the call so the surfaces can decide how to render it.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown    = "UNKNOWN"
	CodeConfig     = "CONFIG"
	CodeAuth       = "AUTH"
	CodeGeneration = "GENERATION"
	CodeLogging    = "LOGGING"
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
// or CodeUnknown if it doesn't contain one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// ConfigError reports a missing or invalid configuration value. It is fatal
// at startup.
type ConfigError struct {
	base Error
}

func (e *ConfigError) Error() string { return e.base.Error() }
func (e *ConfigError) Code() string  { return e.base.Code() }
func (e *ConfigError) Unwrap() error { return e.base.Unwrap() }

func NewConfigError(message string, cause error) error {
	return &ConfigError{base: Error{code: CodeConfig, message: message, err: cause}}
}

// AuthError reports a credential rejected by the generation or the
// spreadsheet service.
type AuthError struct {
	service string
	base    Error
}

func (e *AuthError) Error() string { return e.base.Error() }
func (e *AuthError) Code() string  { return e.base.Code() }
func (e *AuthError) Unwrap() error { return e.base.Unwrap() }

// Service names the remote service that rejected the credential.
func (e *AuthError) Service() string { return e.service }

func NewAuthError(service, message string, cause error) error {
	return &AuthError{service: service, base: Error{code: CodeAuth, message: message, err: cause}}
}

// GenerationError reports a failed or malformed completion.
type GenerationError struct {
	base Error
}

func (e *GenerationError) Error() string { return e.base.Error() }
func (e *GenerationError) Code() string  { return e.base.Code() }
func (e *GenerationError) Unwrap() error { return e.base.Unwrap() }

func NewGenerationError(message string, cause error) error {
	return &GenerationError{base: Error{code: CodeGeneration, message: message, err: cause}}
}

// LoggingError reports a failure to open the spreadsheet or append a row.
type LoggingError struct {
	base Error
}

func (e *LoggingError) Error() string { return e.base.Error() }
func (e *LoggingError) Code() string  { return e.base.Code() }
func (e *LoggingError) Unwrap() error { return e.base.Unwrap() }

func NewLoggingError(message string, cause error) error {
	return &LoggingError{base: Error{code: CodeLogging, message: message, err: cause}}
}

// IsConfig reports whether err contains a ConfigError.
func IsConfig(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsAuth reports whether err contains an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsGeneration reports whether err contains a GenerationError.
func IsGeneration(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// IsLogging reports whether err contains a LoggingError.
func IsLogging(err error) bool {
	var target *LoggingError
	return errors.As(err, &target)
}
