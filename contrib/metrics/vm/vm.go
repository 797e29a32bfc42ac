package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/cassorm/types"
)

// statementKinds lists every kind with pre-created series.
var statementKinds = []types.StatementKind{
	types.KindSelect,
	types.KindInsert,
	types.KindUpdate,
	types.KindDelete,
	types.KindBatch,
	types.KindSchema,
	types.KindOther,
}

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "cassorm"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// statementMetrics holds the series of one statement kind.
type statementMetrics struct {
	total    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time. Thread-safe for
// concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	statements map[types.StatementKind]statementMetrics

	cacheHits   *metrics.Counter
	cacheMisses *metrics.Counter

	connects      *metrics.Counter
	connectErrors *metrics.Counter
	reconnects    *metrics.Counter

	pageFetches *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// Without WithMetricsSet the collector creates its own metrics.Set and
// registers it globally.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	conn, _ := cassorm.Connect(ctx, cfg, cassorm.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "cassorm",
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.statements = make(map[types.StatementKind]statementMetrics, len(statementKinds))
	for _, kind := range statementKinds {
		c.statements[kind] = statementMetrics{
			total:    c.set.NewCounter(fmt.Sprintf(`%s_statements_total{kind="%s"}`, p, kind)),
			errors:   c.set.NewCounter(fmt.Sprintf(`%s_statement_errors_total{kind="%s"}`, p, kind)),
			duration: c.set.NewHistogram(fmt.Sprintf(`%s_statement_duration_seconds{kind="%s"}`, p, kind)),
		}
	}

	c.cacheHits = c.set.NewCounter(p + "_statement_cache_hits_total")
	c.cacheMisses = c.set.NewCounter(p + "_statement_cache_misses_total")

	c.connects = c.set.NewCounter(p + "_connects_total")
	c.connectErrors = c.set.NewCounter(p + "_connect_errors_total")
	c.reconnects = c.set.NewCounter(p + "_reconnects_total")

	c.pageFetches = c.set.NewCounter(p + "_page_fetches_total")
}

// Set returns the metrics set the collector registers with.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to w.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// statement returns the series of kind, counting unknown kinds as other.
func (c *Collector) statement(kind types.StatementKind) statementMetrics {
	if sm, ok := c.statements[kind]; ok {
		return sm
	}

	return c.statements[types.KindOther]
}

// ----------------------
// Statements
// ----------------------

// IncStatementTotal increments the executed statements counter.
func (c *Collector) IncStatementTotal(kind types.StatementKind) {
	c.statement(kind).total.Inc()
}

// IncStatementError increments the failed statements counter.
func (c *Collector) IncStatementError(kind types.StatementKind) {
	c.statement(kind).errors.Inc()
}

// ObserveStatementDuration records a statement duration in seconds.
func (c *Collector) ObserveStatementDuration(kind types.StatementKind, seconds float64) {
	c.statement(kind).duration.Update(seconds)
}

// IncStatementCacheHit increments the prepared statement cache hit counter.
func (c *Collector) IncStatementCacheHit() {
	c.cacheHits.Inc()
}

// IncStatementCacheMiss increments the prepared statement cache miss counter.
func (c *Collector) IncStatementCacheMiss() {
	c.cacheMisses.Inc()
}

// ----------------------
// Session
// ----------------------

// IncConnect increments the successful session open counter.
func (c *Collector) IncConnect() {
	c.connects.Inc()
}

// IncConnectError increments the failed session open counter.
func (c *Collector) IncConnectError() {
	c.connectErrors.Inc()
}

// IncReconnect increments the lazy reconnect counter.
func (c *Collector) IncReconnect() {
	c.reconnects.Inc()
}

// ----------------------
// Paging
// ----------------------

// IncPageFetch increments the follow-up page fetch counter.
func (c *Collector) IncPageFetch() {
	c.pageFetches.Inc()
}
