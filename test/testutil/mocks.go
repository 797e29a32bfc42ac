package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/arloliu/cassorm/adapter/cql"
)

// MockResult is the canned response of a MockSession for one statement.
type MockResult struct {
	Columns  []cql.ColumnInfo
	Rows     []map[string]any
	Warnings []string
	Err      error
}

// MockSession is a mock implementation of cql.Session for testing.
//
// Results are keyed by statement text. Paging is simulated: when a query
// sets a page size smaller than the row count, rows are served in pages and
// the page state encodes the row offset.
type MockSession struct {
	mu      sync.RWMutex
	closed  bool
	queries []*MockQuery
	results map[string]MockResult

	// OnQuery overrides the canned results when set.
	OnQuery func(stmt string, values []any) MockResult

	// TimeoutErr is reported as a timeout by IsTimeout.
	TimeoutErr error
}

// Compile-time assertions.
var (
	_ cql.Session           = (*MockSession)(nil)
	_ cql.TimeoutClassifier = (*MockSession)(nil)
	_ cql.Query             = (*MockQuery)(nil)
	_ cql.Iter              = (*MockIter)(nil)
	_ cql.Dialer            = (*MockDialer)(nil)
)

// NewMockSession creates a new mock session.
func NewMockSession() *MockSession {
	return &MockSession{results: make(map[string]MockResult)}
}

// SetResult registers the response for stmt.
func (m *MockSession) SetResult(stmt string, res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[stmt] = res
}

// SetError makes stmt fail with err.
func (m *MockSession) SetError(stmt string, err error) {
	m.SetResult(stmt, MockResult{Err: err})
}

// Query records and returns a mock query for the given statement.
func (m *MockSession) Query(stmt string, values ...any) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := &MockQuery{session: m, statement: stmt, values: values}
	m.queries = append(m.queries, q)

	return q
}

// IsTimeout reports whether err wraps TimeoutErr.
func (m *MockSession) IsTimeout(err error) bool {
	return m.TimeoutErr != nil && errors.Is(err, m.TimeoutErr)
}

// Close marks the session as closed.
func (m *MockSession) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
}

// IsClosed returns whether the session has been closed.
func (m *MockSession) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}

// Queries returns every query created so far.
func (m *MockSession) Queries() []*MockQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*MockQuery(nil), m.queries...)
}

// Statements returns the statement text of every query, in order.
func (m *MockSession) Statements() []string {
	queries := m.Queries()
	stmts := make([]string, len(queries))
	for i, q := range queries {
		stmts[i] = q.statement
	}

	return stmts
}

// LastQuery returns the most recent query, or nil.
func (m *MockSession) LastQuery() *MockQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.queries) == 0 {
		return nil
	}

	return m.queries[len(m.queries)-1]
}

func (m *MockSession) resultFor(stmt string, values []any) MockResult {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.OnQuery != nil {
		return m.OnQuery(stmt, values)
	}

	return m.results[stmt]
}

// MockQuery is a mock implementation of cql.Query that records settings.
type MockQuery struct {
	session      *MockSession
	statement    string
	values       []any
	consistency  *cql.Consistency
	pageSize     int
	pageState    []byte
	pageStateSet bool
}

// Consistency records the consistency level.
func (q *MockQuery) Consistency(c cql.Consistency) cql.Query {
	q.consistency = &c
	return q
}

// PageSize records the page size.
func (q *MockQuery) PageSize(n int) cql.Query {
	q.pageSize = n
	return q
}

// PageState records the page state.
func (q *MockQuery) PageState(state []byte) cql.Query {
	q.pageState = state
	q.pageStateSet = true

	return q
}

// ExecContext runs the query and discards rows.
func (q *MockQuery) ExecContext(ctx context.Context) error {
	return q.IterContext(ctx).Close()
}

// IterContext serves the canned result for the statement.
func (q *MockQuery) IterContext(ctx context.Context) cql.Iter {
	if err := ctx.Err(); err != nil {
		return &MockIter{err: err}
	}

	res := q.session.resultFor(q.statement, q.values)
	if res.Err != nil {
		return &MockIter{err: res.Err}
	}

	offset := 0
	if len(q.pageState) > 0 {
		offset, _ = strconv.Atoi(string(q.pageState))
	}
	if offset > len(res.Rows) {
		offset = len(res.Rows)
	}

	rows := res.Rows[offset:]
	var next []byte
	if q.pageSize > 0 && len(rows) > q.pageSize {
		rows = rows[:q.pageSize]
		next = []byte(strconv.Itoa(offset + q.pageSize))
	}

	return &MockIter{
		columns:   res.Columns,
		rows:      rows,
		pageState: next,
		warnings:  res.Warnings,
	}
}

// Statement returns the CQL statement.
func (q *MockQuery) Statement() string {
	return q.statement
}

// Values returns the bound values.
func (q *MockQuery) Values() []any {
	return q.values
}

// GetConsistency returns the recorded consistency level.
func (q *MockQuery) GetConsistency() (cql.Consistency, bool) {
	if q.consistency == nil {
		return 0, false
	}

	return *q.consistency, true
}

// GetPageSize returns the recorded page size.
func (q *MockQuery) GetPageSize() int {
	return q.pageSize
}

// GetPageState returns the recorded page state and whether it was set.
func (q *MockQuery) GetPageState() ([]byte, bool) {
	return q.pageState, q.pageStateSet
}

// MockIter is a mock implementation of cql.Iter over canned rows.
type MockIter struct {
	columns   []cql.ColumnInfo
	rows      []map[string]any
	pos       int
	pageState []byte
	warnings  []string
	err       error
}

// NewMockIter creates an iterator over rows.
func NewMockIter(columns []cql.ColumnInfo, rows []map[string]any) *MockIter {
	return &MockIter{columns: columns, rows: rows}
}

// MapScan copies the next row into m.
func (i *MockIter) MapScan(m map[string]any) bool {
	if i.err != nil || i.pos >= len(i.rows) {
		return false
	}
	for k, v := range i.rows[i.pos] {
		m[k] = v
	}
	i.pos++

	return true
}

// Close returns the execution error, if any.
func (i *MockIter) Close() error {
	return i.err
}

// PageState returns the token of the next page.
func (i *MockIter) PageState() []byte {
	return i.pageState
}

// NumRows returns the number of rows in the page.
func (i *MockIter) NumRows() int {
	return len(i.rows)
}

// Columns returns the canned column metadata.
func (i *MockIter) Columns() []cql.ColumnInfo {
	return i.columns
}

// Warnings returns the canned warnings.
func (i *MockIter) Warnings() []string {
	return i.warnings
}

// MockDialer is a mock implementation of cql.Dialer.
//
// Every successful Dial creates a new MockSession, runs Configure on it and
// records the ClusterSpec it was dialed with.
type MockDialer struct {
	mu       sync.Mutex
	specs    []cql.ClusterSpec
	sessions []*MockSession

	// Err makes every Dial fail.
	Err error

	// Configure prepares each new session.
	Configure func(*MockSession)
}

// NewMockDialer creates a mock dialer.
func NewMockDialer() *MockDialer {
	return &MockDialer{}
}

// Dial records spec and returns a new MockSession.
func (d *MockDialer) Dial(_ context.Context, spec cql.ClusterSpec) (cql.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.specs = append(d.specs, spec)
	if d.Err != nil {
		return nil, d.Err
	}

	session := NewMockSession()
	if d.Configure != nil {
		d.Configure(session)
	}
	d.sessions = append(d.sessions, session)

	return session, nil
}

// Dials returns the number of Dial calls.
func (d *MockDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.specs)
}

// LastSpec returns the ClusterSpec of the most recent Dial.
func (d *MockDialer) LastSpec() cql.ClusterSpec {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.specs) == 0 {
		return cql.ClusterSpec{}
	}

	return d.specs[len(d.specs)-1]
}

// Sessions returns every session created so far.
func (d *MockDialer) Sessions() []*MockSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*MockSession(nil), d.sessions...)
}

// LastSession returns the most recent session, or nil.
func (d *MockDialer) LastSession() *MockSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.sessions) == 0 {
		return nil
	}

	return d.sessions[len(d.sessions)-1]
}
