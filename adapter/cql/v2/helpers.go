package v2

import (
	"context"
	"errors"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/arloliu/cassorm/adapter/cql"
)

// ToGocqlConsistency converts a cassorm Consistency to gocql.Consistency.
//
// Parameters:
//   - c: cassorm consistency level
//
// Returns:
//   - gocql.Consistency: The equivalent gocql consistency level
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	cluster.Consistency = v2.ToGocqlConsistency(cql.Quorum)
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// FromGocqlConsistency converts a gocql.Consistency to cassorm Consistency.
func FromGocqlConsistency(c gocql.Consistency) cql.Consistency {
	return cql.Consistency(c)
}

// TypeName returns the lower-case CQL type name of a column.
//
// Returns an empty string when the type information is missing.
func TypeName(info gocql.TypeInfo) string {
	if info == nil {
		return ""
	}

	return NativeTypeName(info.Type())
}

// NativeTypeName maps the driver type constants that need conversion to
// their CQL names. Other types return an empty string.
func NativeTypeName(t gocql.Type) string {
	switch t {
	case gocql.TypeUUID:
		return "uuid"
	case gocql.TypeTimeUUID:
		return "timeuuid"
	case gocql.TypeTimestamp:
		return "timestamp"
	case gocql.TypeDate:
		return "date"
	case gocql.TypeTime:
		return "time"
	case gocql.TypeDecimal:
		return "decimal"
	case gocql.TypeInet:
		return "inet"
	case gocql.TypeFloat:
		return "float"
	default:
		return ""
	}
}

// IsTimeout reports whether err is a gocql read/write timeout, a missing
// response, or a context deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gocql.ErrTimeoutNoResponse) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var writeTimeout *gocql.RequestErrWriteTimeout
	if errors.As(err, &writeTimeout) {
		return true
	}
	var readTimeout *gocql.RequestErrReadTimeout

	return errors.As(err, &readTimeout)
}

// UnwrapSession returns the underlying gocql.Session from a cassorm Session adapter.
//
// Example:
//
//	gocqlSession := v2.UnwrapSession(session)
//	keyspaceMeta, _ := gocqlSession.KeyspaceMetadata("my_keyspace")
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
