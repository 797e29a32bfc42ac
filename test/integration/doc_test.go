// Package integration_test provides end-to-end tests against a real CQL
// database.
//
// # Running Integration Tests
//
// Integration tests are skipped by default when using -short flag:
//
//	go test -short ./...           # Skips integration tests
//	go test ./test/integration/... # Runs integration tests
//
// They require Docker: TestMain starts a single ScyllaDB or Cassandra
// container through testcontainers and every test creates uniquely named
// tables in the shared keyspace. Set SKIP_INTEGRATION_TESTS=1 to skip the
// container setup entirely.
package integration_test
