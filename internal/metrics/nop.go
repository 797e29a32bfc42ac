// Package metrics provides internal metrics utilities for cassorm.
package metrics

import "github.com/arloliu/cassorm/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Statements
// ----------------------

// IncStatementTotal discards the metric.
func (m *NopMetrics) IncStatementTotal(_ types.StatementKind) {}

// IncStatementError discards the metric.
func (m *NopMetrics) IncStatementError(_ types.StatementKind) {}

// ObserveStatementDuration discards the metric.
func (m *NopMetrics) ObserveStatementDuration(_ types.StatementKind, _ float64) {}

// IncStatementCacheHit discards the metric.
func (m *NopMetrics) IncStatementCacheHit() {}

// IncStatementCacheMiss discards the metric.
func (m *NopMetrics) IncStatementCacheMiss() {}

// ----------------------
// Session
// ----------------------

// IncConnect discards the metric.
func (m *NopMetrics) IncConnect() {}

// IncConnectError discards the metric.
func (m *NopMetrics) IncConnectError() {}

// IncReconnect discards the metric.
func (m *NopMetrics) IncReconnect() {}

// ----------------------
// Paging
// ----------------------

// IncPageFetch discards the metric.
func (m *NopMetrics) IncPageFetch() {}

// OrNop returns collector, or a NopMetrics when collector is nil.
func OrNop(collector types.MetricsCollector) types.MetricsCollector {
	if collector == nil {
		return NewNopMetrics()
	}

	return collector
}
