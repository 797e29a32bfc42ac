package testutil

import (
	"context"
	"time"

	"github.com/arloliu/cassorm/adapter/cql"
)

// SlowSession wraps a CQL session and delays every statement by Delay.
// A context that ends during the delay cuts it short, and the wrapped query
// then observes the ended context.
type SlowSession struct {
	Session cql.Session
	Delay   time.Duration
}

// Compile-time assertion that SlowSession implements cql.Session.
var _ cql.Session = (*SlowSession)(nil)

// Query returns a query that waits before execution.
func (s *SlowSession) Query(stmt string, values ...any) cql.Query {
	return &SlowQuery{
		Query: s.Session.Query(stmt, values...),
		Delay: s.Delay,
	}
}

// Close closes the wrapped session.
func (s *SlowSession) Close() {
	s.Session.Close()
}

// SlowQuery wraps a CQL query and delays its execution.
type SlowQuery struct {
	Query cql.Query
	Delay time.Duration
}

// Compile-time assertion that SlowQuery implements cql.Query.
var _ cql.Query = (*SlowQuery)(nil)

// Consistency sets the consistency level on the wrapped query.
func (q *SlowQuery) Consistency(c cql.Consistency) cql.Query {
	q.Query = q.Query.Consistency(c)
	return q
}

// PageSize sets the page size on the wrapped query.
func (q *SlowQuery) PageSize(n int) cql.Query {
	q.Query = q.Query.PageSize(n)
	return q
}

// PageState sets the page state on the wrapped query.
func (q *SlowQuery) PageState(state []byte) cql.Query {
	q.Query = q.Query.PageState(state)
	return q
}

// ExecContext waits, then executes the wrapped query.
func (q *SlowQuery) ExecContext(ctx context.Context) error {
	q.wait(ctx)
	return q.Query.ExecContext(ctx)
}

// IterContext waits, then iterates the wrapped query.
func (q *SlowQuery) IterContext(ctx context.Context) cql.Iter {
	q.wait(ctx)
	return q.Query.IterContext(ctx)
}

// Statement returns the CQL statement.
func (q *SlowQuery) Statement() string {
	return q.Query.Statement()
}

// Values returns the bound values.
func (q *SlowQuery) Values() []any {
	return q.Query.Values()
}

func (q *SlowQuery) wait(ctx context.Context) {
	timer := time.NewTimer(q.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
