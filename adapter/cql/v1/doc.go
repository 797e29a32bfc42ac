// Package v1 provides an adapter for gocql v1.x to work with the cassorm library.
//
// This adapter wraps gocql sessions, queries, and iterators to implement
// the cassorm CQL interfaces, and provides the default Dialer used by
// cassorm.Connect.
//
// # Usage
//
// Connect dials through this package unless another dialer is configured.
// Driver settings cassorm does not model can be set with a hook:
//
//	dialer := v1.NewDialer(func(c *gocql.ClusterConfig) {
//	    c.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
//	})
//	conn, err := cassorm.Connect(ctx, cfg, cassorm.WithDialer(dialer))
//
// An existing gocql session can be wrapped directly:
//
//	session := v1.NewSession(gocqlSession)
//	conn, err := cassorm.FromSession(session, cfg)
//
// # Type Conversions
//
//   - [ToGocqlConsistency]: Converts cassorm Consistency to gocql.Consistency
//   - [FromGocqlConsistency]: Converts gocql.Consistency to cassorm Consistency
//   - [TypeName]: Returns the CQL type name of a column
//   - [IsTimeout]: Recognizes driver timeout errors
//   - [UnwrapSession]: Returns the underlying gocql.Session
//
// # Thread Safety
//
// All adapter types are safe for concurrent use, matching gocql's thread safety guarantees.
package v1
