// Package notify delivers application events to job seekers and employers without blocking the caller.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/lifecycle"
	"jobportal-backend/internal/model"
)

// Event is the contract shared with every sink. UserID is the recipient.
type Event struct {
	Type          model.NotificationType `json:"type"`
	UserID        uuid.UUID              `json:"user_id"`
	ApplicationID uuid.UUID              `json:"application_id"`
	JobID         uuid.UUID              `json:"job_id"`
	JobTitle      string                 `json:"job_title,omitempty"`
	NewStatus     lifecycle.Status       `json:"new_status,omitempty"`
	Note          string                 `json:"note,omitempty"`
	At            time.Time              `json:"at"`
}

// Notifier accepts events fire-and-forget. Notify must not block and never reports delivery failures.
type Notifier interface {
	Notify(ev Event)
}

// Sink delivers one event somewhere.
type Sink interface {
	Deliver(ctx context.Context, ev Event) error
}

// Dispatcher queues events and hands them to its sinks from a single worker goroutine.
// Events arriving while the queue is full are dropped and logged.
type Dispatcher struct {
	sinks   []Sink
	logger  *slog.Logger
	timeout time.Duration

	queue   chan Event
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewDispatcher builds a Dispatcher with a queue of size buffer.
func NewDispatcher(logger *slog.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sinks:   sinks,
		logger:  logger.With("component", "notify"),
		timeout: 5 * time.Second,
		queue:   make(chan Event, buffer),
	}
}

// Start launches the worker goroutine. Calling it twice has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	d.wg.Add(1)
	go d.run()
}

// Notify enqueues ev without blocking.
func (d *Dispatcher) Notify(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("dispatcher closed, dropping event", "type", ev.Type, "application_id", ev.ApplicationID)
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.logger.Warn("notification queue full, dropping event", "type", ev.Type, "application_id", ev.ApplicationID)
	}
}

// Close stops accepting events, delivers what is queued and waits for the worker until ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher: %w", ctx.Err())
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := sink.Deliver(ctx, ev); err != nil {
			d.logger.Error("deliver notification",
				"sink", fmt.Sprintf("%T", sink),
				"type", ev.Type,
				"application_id", ev.ApplicationID,
				"err", err)
		}
		cancel()
	}
}
