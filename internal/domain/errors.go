package domain

import (
	"errors"
	"fmt"
)

// InvariantError reports a failed self-consistency check over a finished
// generation run. Generation is a pure function of seed and configuration,
// so an invariant failure always indicates a logic defect, never a
// transient condition. There is no retry policy.
type InvariantError struct {
	Check  string // which invariant failed (e.g. "event_count")
	Detail string // observed values
}

func (e *InvariantError) Error() string {
	return "invariant violated [" + e.Check + "]: " + e.Detail
}

// IsInvariant checks if an error is an invariant violation.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// ConfigError represents a configuration error (never recoverable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a field-level configuration error.
func NewConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

var (
	// ErrNoActiveOrders is returned when a phase driver exhausts its
	// skip budget because no order is resting in the tracker.
	ErrNoActiveOrders = errors.New("no active orders")

	// ErrConfigNotFound is returned when the configuration file is missing
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrInputNotFound is returned when an ingest input file is missing.
	// This is an operator error, not a defect.
	ErrInputNotFound = errors.New("input file not found")
)
