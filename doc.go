// Package cassorm connects relational-style models and query builders to
// Apache Cassandra and ScyllaDB.
//
// A Connection is a CQL session bound to one keyspace. It runs the
// statements produced by the query builder and the model layer, translates
// driver values into plain Go values, and pages through large results.
//
// # Key Features
//
//   - Config from maps, YAML files or environment variables
//   - Pluggable drivers: gocql v1 (default) and the Apache gocql v2 driver
//   - Query builder compiling to CQL with ALLOW FILTERING and LIMIT support
//   - Models with casts, dirty tracking, timestamps, soft deletes and relations
//   - Lifecycle events dispatched in-process or published to NATS JetStream
//   - Server-side paging with resumable page state
//
// # Basic Usage
//
//	cfg, err := cassorm.ParseConfig(map[string]any{
//	    "host":     "10.0.0.1,10.0.0.2",
//	    "port":     9042,
//	    "keyspace": "app",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, err := cassorm.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	rows, err := conn.Table("users").Where("status", "=", "active").Limit(10).Get(ctx)
//
// # Models
//
// Definitions are declared once and queried through a connection:
//
//	users := model.Define("users",
//	    model.WithCasts(map[string]string{"settings": "json"}),
//	    model.WithSoftDeletes(),
//	)
//
//	user, err := users.Query(conn).Find(ctx, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
//	if errors.Is(err, types.ErrModelNotFound) {
//	    // no such row
//	}
//
// # Error Handling
//
// Every failure belongs to one of four categories, checked with errors.Is:
//
//   - ErrConfiguration: invalid settings, returned as *ConfigError
//   - ErrConnection: the cluster could not be reached, *ConnectionError
//   - ErrStatement: the store rejected a statement, *StatementError
//   - ErrTimeout: a driver or context deadline passed, *TimeoutError
//
// Statement and timeout errors carry the failing CQL text:
//
//	var stmtErr *cassorm.StatementError
//	if errors.As(err, &stmtErr) {
//	    log.Printf("statement %q failed: %v", stmtErr.Statement, stmtErr.Cause)
//	}
//
// # Reconnects
//
// Disconnect releases the session. The next statement dials again with the
// same configuration. Connections are not safe for concurrent use.
package cassorm
