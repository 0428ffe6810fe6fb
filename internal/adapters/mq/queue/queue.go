// Package queue carries commands from callers to the interaction loop.
//
// Enqueue never blocks: a full queue rejects the command so callers can
// report backpressure instead of stalling.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/timeline/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Command is a unit of work for the interaction loop. Run executes on the
// loop goroutine; its result is delivered through Complete and read by Wait.
type Command struct {
	Name       string
	Run        func(ctx context.Context) error
	EnqueuedAt time.Time

	done chan error
}

// NewCommand wraps run so its result can be awaited.
func NewCommand(name string, run func(ctx context.Context) error) Command {
	return Command{Name: name, Run: run, EnqueuedAt: time.Now(), done: make(chan error, 1)}
}

// Complete delivers the command's result. Only the first call has effect.
func (c Command) Complete(err error) {
	if c.done == nil {
		return
	}
	select {
	case c.done <- err:
	default:
	}
}

// Wait blocks until the command completes or ctx ends.
func (c Command) Wait(ctx context.Context) error {
	if c.done == nil {
		return nil
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a command to the queue.
	// Returns false if the queue is full or closed and the command was not enqueued.
	Enqueue(ctx context.Context, c Command) bool

	// Dequeue returns a channel that will receive commands as they become available.
	// The channel will be closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Command

	// Len returns the current number of queued commands.
	Len(ctx context.Context) int

	// Cap returns the configured capacity.
	Cap() int

	// Close gracefully shuts down the queue.
	// After closing, no new commands can be enqueued and the dequeue channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	commands chan Command
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.commands = make(chan Command, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a command to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, c Command) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.commands <- c:
		metrics.UpdateQueueSize(len(q.commands))
		return true
	default:
		metrics.RecordQueueRejected()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns the queue's channel. The loop is the only consumer, so no
// forwarding goroutine is needed.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Command {
	return q.commands
}

// Len returns the current number of queued commands.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.commands)
	metrics.UpdateQueueSize(size)
	return size
}

// Cap returns the configured capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.commands)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
