package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBufferFull is returned by an async publisher that cannot queue more events.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher emits events to a sink, synchronously by default or through a
// bounded buffer drained by one goroutine.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	queue     chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit non-blocking with a queue of size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan Event, n)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.queue != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records event. In async mode a full buffer drops the event and
// returns ErrBufferFull.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	event = event.prepare(p.now())
	if p.queue == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.queue <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.logger.WarnContext(ctx, "audit buffer full, event dropped",
			"action", event.Action,
			"owner_id", event.OwnerID,
		)
		return ErrBufferFull
	}
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.queue {
		// Queued events are detached from their request.
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logger.Error("audit append failed",
				"action", event.Action,
				"owner_id", event.OwnerID,
				"error", err,
			)
		}
	}
}

// Close drains queued events. Emit must not be called after Close.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.queue != nil {
			close(p.queue)
			p.wg.Wait()
		}
	})
}
