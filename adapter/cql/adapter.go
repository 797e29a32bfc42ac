// Package cql provides CQL-specific adapter interfaces for different gocql versions.
package cql

import (
	"context"
	"time"

	"github.com/arloliu/cassorm/types"
)

// Consistency is re-exported from the types package for convenience.
type Consistency = types.Consistency

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Session represents a raw CQL session from the underlying driver.
//
// This interface is implemented by adapters for gocql v1 and v2.
// It provides the low-level operations the connection layer orchestrates.
type Session interface {
	// Query creates a new query for the given statement.
	//
	// Parameters:
	//   - stmt: CQL statement with ? placeholders
	//   - values: Values to bind to placeholders
	//
	// Returns:
	//   - Query: A query builder
	Query(stmt string, values ...any) Query

	// Close terminates the session.
	Close()
}

// TimeoutClassifier is implemented by sessions that can recognize
// driver-specific timeout errors.
type TimeoutClassifier interface {
	// IsTimeout reports whether err represents a request timeout.
	IsTimeout(err error) bool
}

// Query represents a raw CQL query from the underlying driver.
type Query interface {
	// Consistency sets the consistency level.
	Consistency(c Consistency) Query

	// PageSize sets the page size.
	PageSize(n int) Query

	// PageState sets the pagination state.
	//
	// Setting a page state (nil included) disables driver auto-paging, so
	// one IterContext call yields exactly one page.
	PageState(state []byte) Query

	// ExecContext executes the query with context.
	ExecContext(ctx context.Context) error

	// IterContext returns an iterator for results with context.
	IterContext(ctx context.Context) Iter

	// Statement returns the CQL statement.
	Statement() string

	// Values returns the bound values.
	Values() []any
}

// Iter represents a raw CQL iterator from the underlying driver.
type Iter interface {
	// MapScan reads the next row into a map.
	MapScan(m map[string]any) bool

	// Close closes the iterator and reports any error from execution.
	Close() error

	// PageState returns the pagination token, empty on the last page.
	PageState() []byte

	// NumRows returns the number of rows in the current page.
	NumRows() int

	// Columns returns metadata about the columns in the result set.
	Columns() []ColumnInfo

	// Warnings returns any warnings from the Cassandra server.
	Warnings() []string
}

// ColumnInfo holds metadata about a column in query results.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string

	// Type is the lower-case CQL type name, such as "timeuuid" or "decimal".
	Type string
}

// ClusterSpec is the resolved, driver-neutral description of a session.
//
// Zero values mean "not configured": the dialer leaves the driver default
// in place for every field that is zero or nil.
type ClusterSpec struct {
	// Hosts are the contact points.
	Hosts []string

	// Port is the native protocol port.
	Port int

	// Keyspace is the keyspace the session is bound to.
	Keyspace string

	// Consistency overrides the driver default consistency when non-nil.
	Consistency *Consistency

	// PageSize overrides the driver default page size when positive.
	PageSize int

	// ConnectTimeout bounds the initial connection when positive.
	ConnectTimeout time.Duration

	// RequestTimeout bounds each request when positive.
	RequestTimeout time.Duration

	// Username and Password are applied only when Credentials is true.
	Username    string
	Password    string
	Credentials bool
}

// Dialer opens sessions from a ClusterSpec.
type Dialer interface {
	// Dial opens a session bound to spec.Keyspace.
	//
	// Parameters:
	//   - ctx: Context for the dial
	//   - spec: Resolved cluster description
	//
	// Returns:
	//   - Session: The opened session
	//   - error: Driver error if the session could not be opened
	Dial(ctx context.Context, spec ClusterSpec) (Session, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, spec ClusterSpec) (Session, error)

// Dial calls f(ctx, spec).
func (f DialerFunc) Dial(ctx context.Context, spec ClusterSpec) (Session, error) {
	return f(ctx, spec)
}
