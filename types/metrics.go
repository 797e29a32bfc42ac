package types

// StatementKind labels a statement for metrics and logs.
type StatementKind string

// String returns the label value.
func (k StatementKind) String() string {
	return string(k)
}

// Statement kinds derived from the leading CQL keyword.
const (
	KindSelect StatementKind = "select"
	KindInsert StatementKind = "insert"
	KindUpdate StatementKind = "update"
	KindDelete StatementKind = "delete"
	KindBatch  StatementKind = "batch"
	KindSchema StatementKind = "schema"
	KindOther  StatementKind = "other"
)

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/cassorm/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	conn, _ := cassorm.Connect(ctx, cfg, cassorm.WithMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Statements
	// ----------------------

	// IncStatementTotal increments the executed statements counter.
	IncStatementTotal(kind StatementKind)

	// IncStatementError increments the failed statements counter.
	IncStatementError(kind StatementKind)

	// ObserveStatementDuration records a statement duration in seconds.
	ObserveStatementDuration(kind StatementKind, seconds float64)

	// IncStatementCacheHit increments the prepared statement cache hit counter.
	IncStatementCacheHit()

	// IncStatementCacheMiss increments the prepared statement cache miss counter.
	IncStatementCacheMiss()

	// ----------------------
	// Session
	// ----------------------

	// IncConnect increments the successful session open counter.
	IncConnect()

	// IncConnectError increments the failed session open counter.
	IncConnectError()

	// IncReconnect increments the counter for lazy reconnects after a disconnect.
	IncReconnect()

	// ----------------------
	// Paging
	// ----------------------

	// IncPageFetch increments the counter for follow-up page fetches.
	IncPageFetch()
}
