package cassorm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/arloliu/cassorm/adapter/cql"
	"github.com/arloliu/cassorm/marshal"
	"github.com/arloliu/cassorm/query"
	"github.com/arloliu/cassorm/result"
	"github.com/arloliu/cassorm/schema"
	"github.com/arloliu/cassorm/types"
)

// DriverName is the fixed driver identifier reported by every Connection.
const DriverName = "cassandra"

// Compile-time assertion that Connection can back query builders.
var _ query.Runner = (*Connection)(nil)

// Statement describes a prepared statement held in the connection cache.
type Statement struct {
	// Text is the CQL text.
	Text string

	// Kind is derived from the leading keyword.
	Kind types.StatementKind

	// Placeholders is the number of ? markers in Text.
	Placeholders int
}

// PretendedStatement is a statement recorded instead of executed.
type PretendedStatement struct {
	Statement string
	Bindings  []any
}

// Connection is a session bound to one keyspace.
//
// Every statement kind goes through Execute. The session is opened by
// Connect, released by Disconnect, and reopened lazily by the next
// statement; no other recovery is attempted.
//
// A Connection is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves.
type Connection struct {
	cfg        Config
	spec       cql.ClusterSpec
	timeout    time.Duration
	opts       *ConnectOptions
	session    cql.Session
	statements *lru.Cache[string, *Statement]
	pretending bool
	pretended  []PretendedStatement
}

// Connect validates cfg and opens a session bound to its keyspace.
//
// Parameters:
//   - ctx: Context for the dial
//   - cfg: Connection configuration
//   - opts: Optional behavior (dialer, logger, metrics, cache size)
//
// Returns:
//   - *Connection: The open connection
//   - error: *types.ConfigError or *types.ConnectionError
//
// Example:
//
//	cfg, _ := cassorm.ParseConfig(map[string]any{
//	    "host":        "10.0.0.1,10.0.0.2",
//	    "port":        9042,
//	    "keyspace":    "app",
//	    "consistency": "local_quorum",
//	})
//	conn, err := cassorm.Connect(ctx, cfg)
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Connection, error) {
	c, err := newConnection(cfg, opts)
	if err != nil {
		return nil, err
	}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// FromSession wraps an already open session.
//
// cfg still supplies the keyspace, consistency, page size and statement
// timeout; Disconnect followed by a statement redials with cfg.
//
// Parameters:
//   - session: An open session, e.g. v1.NewSession(gocqlSession)
//   - cfg: Connection configuration
//   - opts: Optional behavior
//
// Returns:
//   - *Connection: The connection
//   - error: types.ErrNilSession or *types.ConfigError
func FromSession(session cql.Session, cfg Config, opts ...Option) (*Connection, error) {
	if session == nil {
		return nil, types.ErrNilSession
	}

	c, err := newConnection(cfg, opts)
	if err != nil {
		return nil, err
	}
	c.session = session

	return c, nil
}

func newConnection(cfg Config, opts []Option) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	cache, err := lru.New[string, *Statement](o.StatementCacheSize)
	if err != nil {
		return nil, err
	}

	spec, timeout := cfg.resolve(o.Logger)

	return &Connection{
		cfg:        cfg,
		spec:       spec,
		timeout:    timeout,
		opts:       o,
		statements: cache,
	}, nil
}

func (c *Connection) connect(ctx context.Context) error {
	session, err := c.opts.Dialer.Dial(ctx, c.spec)
	if err != nil {
		c.opts.Metrics.IncConnectError()
		c.opts.Logger.Error("failed to open session",
			"hosts", strings.Join(c.spec.Hosts, ","),
			"keyspace", c.spec.Keyspace,
			"error", err,
		)

		return &types.ConnectionError{Hosts: c.spec.Hosts, Keyspace: c.spec.Keyspace, Cause: err}
	}
	if session == nil {
		return &types.ConnectionError{Hosts: c.spec.Hosts, Keyspace: c.spec.Keyspace, Cause: types.ErrNilSession}
	}

	c.session = session
	c.opts.Metrics.IncConnect()
	c.opts.Logger.Info("session opened",
		"hosts", strings.Join(c.spec.Hosts, ","),
		"port", c.spec.Port,
		"keyspace", c.spec.Keyspace,
	)

	return nil
}

// ensureSession reopens the session after Disconnect.
func (c *Connection) ensureSession(ctx context.Context) error {
	if c.session != nil {
		return nil
	}

	c.opts.Metrics.IncReconnect()
	c.opts.Logger.Info("reconnecting missing session", "keyspace", c.spec.Keyspace)

	return c.connect(ctx)
}

// Execute runs one statement and returns the first page of its result.
//
// Bindings may contain marshal wrappers; they are converted to driver
// values. Consistency and page size from the configuration are applied.
// Write statements return an empty collection. A binding count that does
// not match the statement placeholders fails before the round trip.
//
// Parameters:
//   - ctx: Context for the statement; the configured timeout is applied on top
//   - stmt: CQL statement with ? placeholders
//   - bindings: Values bound in placeholder order
//
// Returns:
//   - *result.Collection: The first page
//   - error: *types.ConnectionError, *types.StatementError or *types.TimeoutError
func (c *Connection) Execute(ctx context.Context, stmt string, bindings []any) (*result.Collection, error) {
	if c.pretending {
		c.pretended = append(c.pretended, PretendedStatement{Statement: stmt, Bindings: bindings})
		return result.Empty(), nil
	}

	st := c.Prepare(stmt)
	if len(bindings) != st.Placeholders {
		c.opts.Metrics.IncStatementError(st.Kind)
		return nil, &types.StatementError{
			Statement: st.Text,
			Cause:     fmt.Errorf("%w: %d placeholders, %d bindings", types.ErrBindingCount, st.Placeholders, len(bindings)),
		}
	}
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	return c.fetchPage(ctx, st, bindings, nil)
}

// Select executes a read statement. It is identical to Execute.
func (c *Connection) Select(ctx context.Context, stmt string, bindings []any) (*result.Collection, error) {
	return c.Execute(ctx, stmt, bindings)
}

// Statement executes any statement. It is identical to Execute.
func (c *Connection) Statement(ctx context.Context, stmt string, bindings []any) (*result.Collection, error) {
	return c.Execute(ctx, stmt, bindings)
}

// AffectingStatement executes a write statement. It is identical to Execute.
func (c *Connection) AffectingStatement(ctx context.Context, stmt string, bindings []any) (*result.Collection, error) {
	return c.Execute(ctx, stmt, bindings)
}

// Prepare returns the cached descriptor of stmt, creating it on first use.
func (c *Connection) Prepare(stmt string) *Statement {
	if st, ok := c.statements.Get(stmt); ok {
		c.opts.Metrics.IncStatementCacheHit()
		return st
	}

	c.opts.Metrics.IncStatementCacheMiss()
	st := &Statement{
		Text:         stmt,
		Kind:         statementKind(stmt),
		Placeholders: countPlaceholders(stmt),
	}
	c.statements.Add(stmt, st)

	return st
}

func (c *Connection) fetchPage(ctx context.Context, st *Statement, bindings []any, pageState []byte) (*result.Collection, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.opts.Logger.Debug("executing statement", "kind", st.Kind, "statement", st.Text)
	start := time.Now()

	q := c.session.Query(st.Text, marshal.BindValues(bindings)...)
	if c.spec.Consistency != nil {
		q = q.Consistency(*c.spec.Consistency)
	}
	if c.spec.PageSize > 0 {
		q = q.PageSize(c.spec.PageSize)
	}
	iter := q.PageState(pageState).IterContext(ctx)

	columns := iter.Columns()
	kinds := make(map[string]marshal.Kind, len(columns))
	for _, col := range columns {
		kinds[col.Name] = marshal.KindOf(col.Type)
	}

	rows := make([]result.Row, 0, iter.NumRows())
	for {
		raw := make(map[string]any, len(columns))
		if !iter.MapScan(raw) {
			break
		}
		row := make(result.Row, len(raw))
		for name, v := range raw {
			row[name] = marshal.Hydrate(kinds[name], v)
		}
		rows = append(rows, row)
	}

	warnings := iter.Warnings()
	next := append([]byte(nil), iter.PageState()...)
	err := iter.Close()

	c.opts.Metrics.IncStatementTotal(st.Kind)
	c.opts.Metrics.ObserveStatementDuration(st.Kind, time.Since(start).Seconds())
	if err != nil {
		return nil, c.classify(st, err)
	}
	for _, w := range warnings {
		c.opts.Logger.Warn("server warning", "statement", st.Text, "warning", w)
	}

	fetch := func(ctx context.Context, state []byte) (*result.Collection, error) {
		c.opts.Metrics.IncPageFetch()
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}

		return c.fetchPage(ctx, st, bindings, state)
	}

	return result.New(rows, next, fetch).WithMeta(columns, warnings), nil
}

func (c *Connection) classify(st *Statement, err error) error {
	c.opts.Metrics.IncStatementError(st.Kind)
	c.opts.Logger.Warn("statement failed", "kind", st.Kind, "statement", st.Text, "error", err)

	if errors.Is(err, context.DeadlineExceeded) {
		return &types.TimeoutError{Statement: st.Text, Cause: err}
	}
	if tc, ok := c.session.(cql.TimeoutClassifier); ok && tc.IsTimeout(err) {
		return &types.TimeoutError{Statement: st.Text, Cause: err}
	}

	return &types.StatementError{Statement: st.Text, Cause: err}
}

// Disconnect closes and releases the session. The next statement reopens it.
func (c *Connection) Disconnect() {
	if c.session == nil {
		return
	}

	c.session.Close()
	c.session = nil
	c.opts.Logger.Info("session closed", "keyspace", c.spec.Keyspace)
}

// Close is Disconnect in io.Closer form.
func (c *Connection) Close() error {
	c.Disconnect()
	return nil
}

// Reconnect closes the current session, if any, and opens a new one.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.connect(ctx)
}

// Session returns the underlying session for operations cassorm does not
// model, or nil after Disconnect.
func (c *Connection) Session() cql.Session {
	return c.session
}

// DriverName returns "cassandra".
func (c *Connection) DriverName() string {
	return DriverName
}

// Keyspace returns the keyspace the connection is bound to.
func (c *Connection) Keyspace() string {
	return c.cfg.Keyspace
}

// Config returns the configuration the connection was created with.
func (c *Connection) Config() Config {
	return c.cfg
}

// Table starts a query against table.
func (c *Connection) Table(table string) *query.Builder {
	return query.NewBuilder(c, table)
}

// Schema returns the schema existence checker for the connection keyspace.
func (c *Connection) Schema() *schema.Builder {
	return schema.NewBuilder(c, c.cfg.Keyspace)
}

// Pretend runs fn with statement execution suppressed.
//
// Every statement issued during fn is recorded instead of sent, and yields
// an empty result.
//
// Returns:
//   - []PretendedStatement: Statements issued by fn, in order
//   - error: The error returned by fn
func (c *Connection) Pretend(ctx context.Context, fn func(ctx context.Context) error) ([]PretendedStatement, error) {
	prev, prevLog := c.pretending, c.pretended
	c.pretending, c.pretended = true, nil
	defer func() { c.pretending, c.pretended = prev, prevLog }()

	err := fn(ctx)

	return c.pretended, err
}

func statementKind(stmt string) types.StatementKind {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return types.KindOther
	}

	switch strings.ToUpper(fields[0]) {
	case "SELECT":
		return types.KindSelect
	case "INSERT":
		return types.KindInsert
	case "UPDATE":
		return types.KindUpdate
	case "DELETE":
		return types.KindDelete
	case "BEGIN", "APPLY":
		return types.KindBatch
	case "CREATE", "ALTER", "DROP", "TRUNCATE", "USE":
		return types.KindSchema
	default:
		return types.KindOther
	}
}

// countPlaceholders counts ? markers outside quoted strings, quoted
// identifiers and comments.
func countPlaceholders(stmt string) int {
	n := 0
	for i := 0; i < len(stmt); i++ {
		switch c := stmt[i]; {
		case c == '?':
			n++
		case c == '\'' || c == '"':
			for i++; i < len(stmt); i++ {
				if stmt[i] != c {
					continue
				}
				if i+1 < len(stmt) && stmt[i+1] == c {
					i++
					continue
				}
				break
			}
		case c == '-' && i+1 < len(stmt) && stmt[i+1] == '-',
			c == '/' && i+1 < len(stmt) && stmt[i+1] == '/':
			for i < len(stmt) && stmt[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(stmt) && stmt[i+1] == '*':
			end := strings.Index(stmt[i+2:], "*/")
			if end < 0 {
				return n
			}
			i += end + 3
		}
	}

	return n
}
