package audit

import (
	"context"
	"sync"
	"time"

	"sahaya/pkg/domain"
)

// Publisher captures structured audit events. In sync mode Emit appends
// directly; with an async buffer Emit enqueues and a background goroutine
// drains, dropping events when the buffer is full rather than blocking the
// request path.
type Publisher struct {
	store Store

	inbox  chan Event
	done   chan struct{}
	closed sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size <= 0 {
			size = 100
		}
		p.inbox = make(chan Event, size)
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		// Buffer full: audit must never block case commands.
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, caseID domain.CaseID) ([]Event, error) {
	return p.store.ListByCase(ctx, caseID)
}

// Close stops the background drain. Buffered events are flushed first.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closed.Do(func() {
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		_ = p.store.Append(context.Background(), event)
	}
}
