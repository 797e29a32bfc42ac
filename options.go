package cassorm

import (
	"github.com/arloliu/cassorm/adapter/cql"
	v1 "github.com/arloliu/cassorm/adapter/cql/v1"
	"github.com/arloliu/cassorm/internal/logging"
	"github.com/arloliu/cassorm/internal/metrics"
	"github.com/arloliu/cassorm/types"
)

// DefaultStatementCacheSize is the number of prepared statement descriptors
// kept per connection.
const DefaultStatementCacheSize = 512

// ConnectOptions holds behavioral settings of a Connection that are not
// part of the key/value connection configuration.
type ConnectOptions struct {
	Dialer             cql.Dialer
	Logger             types.Logger
	Metrics            MetricsCollector
	StatementCacheSize int
}

// DefaultOptions returns ConnectOptions with sensible defaults.
//
// Defaults:
//   - Dialer: gocql v1 (adapter/cql/v1)
//   - Logger: no-op
//   - Metrics: no-op
//   - StatementCacheSize: DefaultStatementCacheSize
//
// Returns:
//   - *ConnectOptions: Options with default settings
func DefaultOptions() *ConnectOptions {
	return &ConnectOptions{
		Dialer:             v1.NewDialer(),
		Logger:             logging.NewNopLogger(),
		Metrics:            metrics.NewNopMetrics(),
		StatementCacheSize: DefaultStatementCacheSize,
	}
}

// Option configures ConnectOptions.
type Option func(*ConnectOptions)

// WithDialer sets the dialer used to open sessions.
//
// Parameters:
//   - dialer: Driver dialer, e.g. v2.NewDialer() for the Apache driver
//
// Returns:
//   - Option: Configuration option
func WithDialer(dialer cql.Dialer) Option {
	return func(o *ConnectOptions) {
		o.Dialer = dialer
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	logger, _ := zap.NewProduction()
//	conn, _ := cassorm.Connect(ctx, cfg, cassorm.WithLogger(zaplog.New(logger)))
func WithLogger(logger types.Logger) Option {
	return func(o *ConnectOptions) {
		o.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector MetricsCollector) Option {
	return func(o *ConnectOptions) {
		o.Metrics = collector
	}
}

// WithStatementCacheSize sets how many prepared statement descriptors are
// cached. Non-positive values keep the default.
//
// Parameters:
//   - size: Maximum cached statements
//
// Returns:
//   - Option: Configuration option
func WithStatementCacheSize(size int) Option {
	return func(o *ConnectOptions) {
		if size > 0 {
			o.StatementCacheSize = size
		}
	}
}

func buildOptions(opts []Option) *ConnectOptions {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.Logger = logging.OrNop(o.Logger)
	o.Metrics = metrics.OrNop(o.Metrics)
	if o.Dialer == nil {
		o.Dialer = v1.NewDialer()
	}

	return o
}
