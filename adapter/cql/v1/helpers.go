package v1

import (
	"context"
	"errors"

	"github.com/gocql/gocql"

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
//	cluster.Consistency = v1.ToGocqlConsistency(cql.Quorum)
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

	return info.Type().String()
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
//	gocqlSession := v1.UnwrapSession(session)
//	keyspaceMeta, _ := gocqlSession.KeyspaceMetadata("my_keyspace")
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
