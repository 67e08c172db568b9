package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"enroll/internal/platform/middleware"
)

// Publisher fans events out to the store and the optional sink. By default
// emission is synchronous; WithAsyncBuffer moves it onto a worker goroutine
// so hot paths never block on audit persistence. Close drains the buffer.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger

	events chan Event
	done   chan struct{}
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.events = make(chan Event, size)
	}
}

// WithSink attaches a streaming sink in addition to the store.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store Store, logger *slog.Logger, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	if p.events != nil {
		p.done = make(chan struct{})
		go p.worker()
	}
	return p
}

// Emit records one event. Emission failures are logged, never propagated;
// audit is best-effort and must not fail pipeline operations.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Device == "" {
		event.Device = middleware.GetDevice(ctx)
	}
	if p.events != nil {
		select {
		case p.events <- event:
		default:
			p.logger.Warn("audit buffer full, dropping event", "action", event.Action, "run_id", event.RunID)
		}
		return
	}
	p.write(ctx, event)
}

// List returns the recorded trail for one run.
func (p *Publisher) List(ctx context.Context, runID string) ([]Event, error) {
	return p.store.ListByRun(ctx, runID)
}

// Close drains any buffered events and shuts the worker down.
func (p *Publisher) Close() {
	if p.events == nil {
		return
	}
	close(p.events)
	<-p.done
}

func (p *Publisher) worker() {
	defer close(p.done)
	for event := range p.events {
		p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event Event) {
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.Error("append audit event", "action", event.Action, "run_id", event.RunID, "error", err)
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.Error("publish audit event", "action", event.Action, "run_id", event.RunID, "error", err)
		}
	}
}
