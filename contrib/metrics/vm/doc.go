// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "cassorm":
//
//	collector := vm.New()
//	conn, _ := cassorm.Connect(ctx, cfg, cassorm.WithMetrics(collector))
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_statements_total{kind="select"}
//   - myapp_statement_duration_seconds{kind="insert"}
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// # Metrics Provided
//
// Statements, labeled by kind (select, insert, update, delete, batch, schema, other):
//   - {prefix}_statements_total{kind} - Counter of executed statements
//   - {prefix}_statement_errors_total{kind} - Counter of failed statements
//   - {prefix}_statement_duration_seconds{kind} - Histogram of statement latencies
//
// Prepared statement cache:
//   - {prefix}_statement_cache_hits_total
//   - {prefix}_statement_cache_misses_total
//
// Session:
//   - {prefix}_connects_total - Counter of sessions opened
//   - {prefix}_connect_errors_total - Counter of failed session opens
//   - {prefix}_reconnects_total - Counter of lazy reconnects
//
// Paging:
//   - {prefix}_page_fetches_total - Counter of follow-up page fetches
//
// All series are pre-created with the NewXXX constructors of a dedicated
// Set, so hot paths never look metrics up by name.
package vm
