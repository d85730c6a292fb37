// Package errors defines the error taxonomy of the vocabulary pipeline:
// configuration misuse is detected fail-fast before any aggregation work,
// while runtime I/O failures surface as wrapped sentinel errors so callers
// can tell the two apart with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrLabelNotBinary = errors.New("label is not binary")
	ErrShapeMismatch  = errors.New("record shape mismatch")
	ErrNameTaken      = errors.New("output name already reserved")
	ErrWriteFailed    = errors.New("vocabulary write failed")
	ErrEmptyInput     = errors.New("no valid tokens in input")
)

// ConfigError reports which configuration option was misused. It unwraps to
// ErrInvalidConfig.
type ConfigError struct {
	Option  string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Option, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// NewConfig creates a ConfigError for the given option.
func NewConfig(option, format string, args ...any) *ConfigError {
	return &ConfigError{
		Option:  option,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsConfig reports whether err originates from configuration misuse rather
// than a runtime failure.
func IsConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrLabelNotBinary) ||
		errors.Is(err, ErrShapeMismatch)
}
