// Package worker runs the interaction loop: the single goroutine that owns
// the timeline and applies queued commands to it one at a time.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/okian/timeline/internal/adapters/mq/queue"
	"github.com/okian/timeline/pkg/logger"
	"github.com/okian/timeline/pkg/metrics"
)

// Command is what the loop reads off the queue.
type Command = queue.Command

// Queue defines how the loop receives commands.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Command
}

// Worker drains a queue until stopped.
type Worker interface {
	// Run starts the loop until ctx is canceled, Shutdown is called or the
	// queue is closed.
	Run(ctx context.Context)

	// Shutdown gracefully stops the loop.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker executes commands sequentially on the calling goroutine of Run.
type InMemoryWorker struct {
	queue Queue
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a loop over q.
func NewInMemoryWorker(q Queue, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		name:     "loop",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the loop. Commands still queued when Run returns are failed
// with queue.ErrClosed so no caller waits forever.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	commands := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(commands)
			return
		case <-w.shutdown:
			w.drain(commands)
			return
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			cmd.Complete(w.execute(ctx, cmd))
		}
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the loop. It is safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// execute runs one command. A panic inside the command becomes its error and
// the loop keeps going.
func (w *InMemoryWorker) execute(ctx context.Context, cmd Command) (err error) { //nolint:gocritic // hugeParam: Command travels by value through the channel
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %s panicked: %v", cmd.Name, r)
			metrics.RecordErrorByComponent("loop", "panic")
			w.logger.Error(ctx, "command panicked",
				logger.String("command", cmd.Name),
				logger.Any("panic", r),
				logger.String("stack", string(debug.Stack())),
			)
		}
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.RecordCommand(cmd.Name, result, float64(time.Since(start).Milliseconds()))
	}()

	if cmd.Run == nil {
		return nil
	}
	if err = cmd.Run(ctx); err != nil {
		w.logger.Debug(ctx, "command failed",
			logger.String("command", cmd.Name),
			logger.Error(err),
		)
	}
	return err
}

// drain fails whatever is still buffered without blocking.
func (w *InMemoryWorker) drain(commands <-chan Command) {
	for {
		select {
		case cmd, ok := <-commands:
			if !ok {
				return
			}
			cmd.Complete(queue.ErrClosed)
		default:
			return
		}
	}
}
