// Package events delivers model lifecycle notifications.
//
// A model definition configured with a Dispatcher emits one Event after each
// successful write: created, updated, saved, deleted and restored. Two
// dispatchers are provided: MemoryDispatcher for in-process listeners and
// NATSPublisher for durable fan-out over NATS JetStream.
//
// Dispatch failures never undo the write that produced the event; the model
// layer logs them and carries on.
package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/cassorm/types"
)

// Name identifies a lifecycle event.
type Name string

// Lifecycle events, emitted after the corresponding write succeeded.
const (
	Created  Name = "created"
	Updated  Name = "updated"
	Saved    Name = "saved"
	Deleted  Name = "deleted"
	Restored Name = "restored"
)

// Event describes one completed model write.
type Event struct {
	// Name is the lifecycle stage.
	Name Name

	// Table is the table of the model.
	Table string

	// Key is the primary key value of the model.
	Key any

	// Attributes are the model attributes after the write.
	Attributes map[string]any

	// OccurredAt is when the write completed.
	OccurredAt time.Time
}

// Dispatcher delivers events.
type Dispatcher interface {
	// Dispatch delivers ev. The write that produced ev has already succeeded.
	Dispatch(ctx context.Context, ev Event) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, ev Event) error

// Dispatch calls f(ctx, ev).
func (f DispatcherFunc) Dispatch(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Listener receives events from a MemoryDispatcher.
type Listener func(ctx context.Context, ev Event) error

// MemoryDispatcher delivers events synchronously to in-process listeners.
//
// Listeners run in registration order on the dispatching goroutine. The first
// listener error stops delivery and is returned.
//
// All methods are safe for concurrent use.
type MemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[Name][]Listener
	any       []Listener
	closed    atomic.Bool
}

// Compile-time assertions.
var (
	_ Dispatcher = (*MemoryDispatcher)(nil)
	_ Dispatcher = DispatcherFunc(nil)
)

// NewMemoryDispatcher creates an empty in-process dispatcher.
func NewMemoryDispatcher() *MemoryDispatcher {
	return &MemoryDispatcher{listeners: make(map[Name][]Listener)}
}

// Listen registers fn for the named events. With no names, fn receives every
// event.
//
// Parameters:
//   - fn: The listener
//   - names: Events to receive; empty means all
func (d *MemoryDispatcher) Listen(fn Listener, names ...Name) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(names) == 0 {
		d.any = append(d.any, fn)
		return
	}
	for _, name := range names {
		d.listeners[name] = append(d.listeners[name], fn)
	}
}

// Dispatch delivers ev to the listeners of its name, then to the catch-all
// listeners.
func (d *MemoryDispatcher) Dispatch(ctx context.Context, ev Event) error {
	if d.closed.Load() {
		return types.ErrDispatcherClosed
	}

	d.mu.RLock()
	targets := make([]Listener, 0, len(d.listeners[ev.Name])+len(d.any))
	targets = append(targets, d.listeners[ev.Name]...)
	targets = append(targets, d.any...)
	d.mu.RUnlock()

	for _, fn := range targets {
		if err := fn(ctx, ev); err != nil {
			return err
		}
	}

	return nil
}

// Close stops delivery. Later dispatches fail with types.ErrDispatcherClosed.
func (d *MemoryDispatcher) Close() error {
	d.closed.Store(true)
	return nil
}

// Multi delivers every event to each dispatcher in order, returning the first
// error after all of them ran.
func Multi(dispatchers ...Dispatcher) Dispatcher {
	return DispatcherFunc(func(ctx context.Context, ev Event) error {
		var first error
		for _, d := range dispatchers {
			if err := d.Dispatch(ctx, ev); err != nil && first == nil {
				first = err
			}
		}

		return first
	})
}
