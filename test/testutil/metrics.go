package testutil

import (
	"sync"

	"github.com/arloliu/cassorm/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertions.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Statements
	StatementTotal    map[types.StatementKind]int64
	StatementErrors   map[types.StatementKind]int64
	StatementDuration map[types.StatementKind][]float64
	CacheHits         int64
	CacheMisses       int64

	// Session
	Connects      int64
	ConnectErrors int64
	Reconnects    int64

	// Paging
	PageFetches int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		StatementTotal:    make(map[types.StatementKind]int64),
		StatementErrors:   make(map[types.StatementKind]int64),
		StatementDuration: make(map[types.StatementKind][]float64),
	}
}

// IncStatementTotal increments the statement counter for kind.
func (m *TestMetricsCollector) IncStatementTotal(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementTotal[kind]++
}

// IncStatementError increments the statement error counter for kind.
func (m *TestMetricsCollector) IncStatementError(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementErrors[kind]++
}

// ObserveStatementDuration records a duration for kind.
func (m *TestMetricsCollector) ObserveStatementDuration(kind types.StatementKind, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementDuration[kind] = append(m.StatementDuration[kind], seconds)
}

// IncStatementCacheHit increments the cache hit counter.
func (m *TestMetricsCollector) IncStatementCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

// IncStatementCacheMiss increments the cache miss counter.
func (m *TestMetricsCollector) IncStatementCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// IncConnect increments the connect counter.
func (m *TestMetricsCollector) IncConnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connects++
}

// IncConnectError increments the connect error counter.
func (m *TestMetricsCollector) IncConnectError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectErrors++
}

// IncReconnect increments the reconnect counter.
func (m *TestMetricsCollector) IncReconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reconnects++
}

// IncPageFetch increments the page fetch counter.
func (m *TestMetricsCollector) IncPageFetch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PageFetches++
}

// Statements returns the statement count for kind.
func (m *TestMetricsCollector) Statements(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StatementTotal[kind]
}

// Errors returns the statement error count for kind.
func (m *TestMetricsCollector) Errors(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StatementErrors[kind]
}
