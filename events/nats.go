package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/cassorm/types"
)

// NATSPublisherConfig configures the NATS JetStream publisher.
type NATSPublisherConfig struct {
	// StreamName is the JetStream stream holding model events.
	// Default: "cassorm-events"
	StreamName string

	// SubjectPrefix is the prefix for subjects. Events are published to
	// "{SubjectPrefix}.{table}.{event}" (e.g., "cassorm.events.users.created").
	// Default: "cassorm.events"
	SubjectPrefix string

	// MaxAge is the maximum age of events in the stream.
	// Default: 24 hours
	MaxAge time.Duration

	// MaxMsgs is the maximum number of events in the stream.
	// Default: 1,000,000
	MaxMsgs int64

	// Replicas is the number of stream replicas.
	// Default: 1
	Replicas int

	// PublishTimeout bounds each publish.
	// Default: 5 seconds
	PublishTimeout time.Duration
}

// DefaultNATSPublisherConfig returns the default configuration.
func DefaultNATSPublisherConfig() NATSPublisherConfig {
	return NATSPublisherConfig{
		StreamName:     "cassorm-events",
		SubjectPrefix:  "cassorm.events",
		MaxAge:         24 * time.Hour,
		MaxMsgs:        1_000_000,
		Replicas:       1,
		PublishTimeout: 5 * time.Second,
	}
}

// NATSPublisherOption configures a NATSPublisher.
type NATSPublisherOption func(*NATSPublisherConfig)

// WithStreamName sets the JetStream stream name.
func WithStreamName(name string) NATSPublisherOption {
	return func(c *NATSPublisherConfig) {
		c.StreamName = name
	}
}

// WithSubjectPrefix sets the subject prefix.
func WithSubjectPrefix(prefix string) NATSPublisherOption {
	return func(c *NATSPublisherConfig) {
		c.SubjectPrefix = prefix
	}
}

// WithMaxAge sets the maximum age of events in the stream.
func WithMaxAge(d time.Duration) NATSPublisherOption {
	return func(c *NATSPublisherConfig) {
		c.MaxAge = d
	}
}

// WithReplicas sets the number of stream replicas.
func WithReplicas(n int) NATSPublisherOption {
	return func(c *NATSPublisherConfig) {
		c.Replicas = n
	}
}

// WithPublishTimeout sets the timeout for each publish.
func WithPublishTimeout(d time.Duration) NATSPublisherOption {
	return func(c *NATSPublisherConfig) {
		c.PublishTimeout = d
	}
}

// NATSPublisher publishes model events to a NATS JetStream stream.
//
// Events are encoded with Encode. The stream keeps events until MaxAge or
// MaxMsgs is reached, so any number of consumers may read them.
type NATSPublisher struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	config NATSPublisherConfig
	closed bool
	mu     sync.RWMutex
}

// Compile-time assertion that NATSPublisher implements Dispatcher.
var _ Dispatcher = (*NATSPublisher)(nil)

// NewNATSPublisher creates the publisher and creates or updates its stream.
//
// The caller owns the NATS connection behind js.
//
// Parameters:
//   - ctx: Context for the stream creation
//   - js: A JetStream context (created via jetstream.New(conn))
//   - opts: Optional configuration options
//
// Returns:
//   - *NATSPublisher: The publisher
//   - error: Error if js is nil or the stream cannot be created
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	pub, _ := events.NewNATSPublisher(ctx, js)
//	users := model.Define("users", model.WithDispatcher(pub))
func NewNATSPublisher(ctx context.Context, js jetstream.JetStream, opts ...NATSPublisherOption) (*NATSPublisher, error) {
	if js == nil {
		return nil, errors.New("cassorm: JetStream context is nil")
	}

	config := DefaultNATSPublisherConfig()
	for _, opt := range opts {
		opt(&config)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "cassorm model lifecycle events",
		Subjects:    []string{config.SubjectPrefix + ".*.*"}, // {prefix}.{table}.{event}
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      config.MaxAge,
		MaxMsgs:     config.MaxMsgs,
		Replicas:    config.Replicas,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
	})
	if err != nil {
		return nil, fmt.Errorf("cassorm: failed to create/update stream: %w", err)
	}

	return &NATSPublisher{
		js:     js,
		stream: stream,
		config: config,
	}, nil
}

// Subject returns the subject events of table named name are published to.
func (p *NATSPublisher) Subject(table string, name Name) string {
	return fmt.Sprintf("%s.%s.%s", p.config.SubjectPrefix, table, name)
}

// Dispatch encodes ev and publishes it to its subject.
//
// Parameters:
//   - ctx: Context for the publish; PublishTimeout is applied on top
//   - ev: The event
//
// Returns:
//   - error: types.ErrDispatcherClosed, an encoding error, or a publish error
func (p *NATSPublisher) Dispatch(ctx context.Context, ev Event) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()

		return types.ErrDispatcherClosed
	}
	p.mu.RUnlock()

	data, err := Encode(ev)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
	defer cancel()

	if _, err := p.js.Publish(pubCtx, p.Subject(ev.Table, ev.Name), data); err != nil {
		return fmt.Errorf("cassorm: failed to publish %s event: %w", ev.Name, err)
	}

	return nil
}

// Fetch reads up to batchSize events through the durable consumer named
// consumer, acknowledging each one. An empty result means nothing is pending.
//
// Parameters:
//   - ctx: Context for the consumer creation
//   - consumer: Durable consumer name; each name keeps its own position
//   - batchSize: Maximum number of events to return
//
// Returns:
//   - []Event: Decoded events in stream order
//   - error: Error if the consumer cannot be created or the fetch fails
func (p *NATSPublisher) Fetch(ctx context.Context, consumer string, batchSize int) ([]Event, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()

		return nil, types.ErrDispatcherClosed
	}
	p.mu.RUnlock()

	cons, err := p.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Name:          consumer,
		Durable:       consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("cassorm: failed to create consumer: %w", err)
	}

	msgs, err := cons.Fetch(batchSize, jetstream.FetchMaxWait(time.Second))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, jetstream.ErrNoMessages) {
			return nil, nil
		}

		return nil, fmt.Errorf("cassorm: failed to fetch events: %w", err)
	}

	out := make([]Event, 0, batchSize)
	for msg := range msgs.Messages() {
		ev, err := Decode(msg.Data())
		if err != nil {
			// Malformed payloads are terminated so they are not redelivered.
			_ = msg.Term()

			continue
		}
		if err := msg.Ack(); err != nil {
			return out, fmt.Errorf("cassorm: failed to ack event: %w", err)
		}
		out = append(out, ev)
	}

	if err := msgs.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
		return out, fmt.Errorf("cassorm: error during event fetch: %w", err)
	}

	return out, nil
}

// Pending returns the number of events held by the stream.
func (p *NATSPublisher) Pending(ctx context.Context) (int, error) {
	info, err := p.stream.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("cassorm: failed to get stream info: %w", err)
	}

	msgs := info.State.Msgs
	if msgs > uint64(^uint(0)>>1) {
		msgs = uint64(^uint(0) >> 1)
	}

	//nolint:gosec // overflow is handled by the cap above
	return int(msgs), nil
}

// StreamName returns the JetStream stream name.
func (p *NATSPublisher) StreamName() string {
	return p.config.StreamName
}

// Close stops publishing. It does not close the NATS connection.
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}
