package types

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrConfiguration is the category for invalid connection settings.
	ErrConfiguration = errors.New("cassorm: invalid configuration")

	// ErrConnection is the category for failures to reach the cluster.
	ErrConnection = errors.New("cassorm: connection failed")

	// ErrStatement is the category for statements rejected or failed by the store.
	ErrStatement = errors.New("cassorm: statement failed")

	// ErrTimeout is the category for driver or context deadlines.
	ErrTimeout = errors.New("cassorm: statement timed out")

	// ErrNilSession indicates that a nil session was provided.
	ErrNilSession = errors.New("cassorm: session cannot be nil")

	// ErrBindingCount indicates that the number of bindings does not match
	// the placeholders of a statement.
	ErrBindingCount = errors.New("cassorm: binding count does not match placeholders")

	// ErrNoMorePages is returned when asking for the page after the last one.
	ErrNoMorePages = errors.New("cassorm: no more pages")

	// ErrModelNotFound indicates that a lookup by key matched no row.
	ErrModelNotFound = errors.New("cassorm: model not found")

	// ErrMissingKey indicates an update or delete on a model without a key value.
	ErrMissingKey = errors.New("cassorm: model has no key value")

	// ErrNotSoftDeletable indicates a soft-delete operation on a definition
	// without the soft-delete capability.
	ErrNotSoftDeletable = errors.New("cassorm: model does not support soft deletes")

	// ErrDispatcherClosed indicates a dispatch after the dispatcher was closed.
	ErrDispatcherClosed = errors.New("cassorm: event dispatcher is closed")
)

// ConfigError reports an invalid connection setting.
type ConfigError struct {
	// Field is the configuration key that failed validation.
	Field string

	// Reason describes the violation.
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "cassorm: invalid configuration " + e.Field + ": " + e.Reason
}

// Unwrap returns ErrConfiguration for errors.Is compatibility.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// ConnectionError reports a failure to open a session.
type ConnectionError struct {
	// Hosts are the contact points that were dialed.
	Hosts []string

	// Keyspace is the keyspace the session was bound to.
	Keyspace string

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return "cassorm: connect to [" + strings.Join(e.Hosts, ",") + "] keyspace " +
		e.Keyspace + " failed: " + e.Cause.Error()
}

// Unwrap returns the category and the underlying cause.
func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Cause}
}

// StatementError reports a failed statement.
type StatementError struct {
	// Statement is the CQL text that failed.
	Statement string

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *StatementError) Error() string {
	return "cassorm: statement failed [" + truncate(e.Statement, 120) + "]: " + e.Cause.Error()
}

// Unwrap returns the category and the underlying cause.
func (e *StatementError) Unwrap() []error {
	return []error{ErrStatement, e.Cause}
}

// TimeoutError reports a statement that exceeded its deadline.
type TimeoutError struct {
	// Statement is the CQL text that timed out.
	Statement string

	// Cause is the underlying driver or context error.
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return "cassorm: statement timed out [" + truncate(e.Statement, 120) + "]: " + e.Cause.Error()
}

// Unwrap returns the category and the underlying cause.
func (e *TimeoutError) Unwrap() []error {
	return []error{ErrTimeout, e.Cause}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
