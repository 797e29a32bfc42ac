// Package v2 provides an adapter for gocql v2 (github.com/apache/cassandra-gocql-driver).
//
// This adapter wraps the Apache Cassandra gocql driver v2 to implement
// the cassorm CQL interfaces.
//
// # Usage
//
// Pass the v2 dialer to Connect to open sessions with the Apache driver:
//
//	conn, err := cassorm.Connect(ctx, cfg, cassorm.WithDialer(v2.NewDialer()))
//
// Or wrap an existing session:
//
//	cluster := gocql.NewCluster("127.0.0.1", "127.0.0.2")
//	cluster.Keyspace = "my_keyspace"
//	gocqlSession, _ := cluster.CreateSession()
//	conn, _ := cassorm.FromSession(v2.NewSession(gocqlSession), cfg)
//
// # Type Conversions
//
//   - [ToGocqlConsistency]: Converts cassorm Consistency to gocql.Consistency
//   - [FromGocqlConsistency]: Converts gocql.Consistency to cassorm Consistency
//   - [TypeName]: Returns the CQL type name of a column
//   - [NativeTypeName]: Maps a driver type constant to its CQL name
//   - [IsTimeout]: Recognizes driver timeout errors
//   - [UnwrapSession]: Returns the underlying gocql.Session
//
// # Thread Safety
//
// All adapter types are safe for concurrent use, matching gocql's thread safety guarantees.
package v2
