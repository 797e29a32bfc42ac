// Package testutil provides test doubles and helpers for cassorm tests.
//
// # Test Doubles
//
//   - [MockSession]: scripted cql.Session keyed by statement text
//   - [MockQuery]: records consistency, page size, page state and bindings
//   - [MockIter]: serves rows and a page state from memory
//   - [MockDialer]: hands out MockSessions and records the cluster spec
//   - [SlowSession]: wraps any cql.Session and delays each statement
//   - [TestLogger]: captures log entries for assertions
//   - [TestMetricsCollector]: counts statements, pages and connects
//
// # Usage
//
//	dialer := testutil.NewMockDialer()
//	conn, _ := cassorm.Connect(ctx, cfg, cassorm.WithDialer(dialer))
//
//	session := dialer.LastSession()
//	session.SetResult("SELECT * FROM users WHERE id = ?", testutil.MockResult{
//	    Rows: []map[string]any{{"id": id, "name": "ann"}},
//	})
//
// # Integration Test Helpers
//
//   - [StartEmbeddedNATS]: in-process NATS server with JetStream
//   - [StartCQLCluster]: ScyllaDB or Cassandra container (requires Docker)
package testutil
