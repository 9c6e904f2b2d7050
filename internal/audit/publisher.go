package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"transferguard/pkg/requestcontext"
)

// Sink receives audit events. Implementations must be safe for concurrent
// writers.
type Sink interface {
	Write(ctx context.Context, event Event) error
}

// Publisher fans one event out to every configured sink, synchronously, as
// part of the triggering call. A sink failure is logged and does not abort
// the remaining sinks: losing one audit copy must never fail the business
// operation that emitted it.
type Publisher struct {
	sinks  []Sink
	logger *slog.Logger
}

type PublisherOption func(*Publisher)

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher builds a publisher over the given sinks.
func NewPublisher(sinks []Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		sinks:  sinks,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit assigns the event an ID and timestamp if unset, then writes it to all
// sinks. The request ID is picked up from the context when present.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	for _, sink := range p.sinks {
		if err := sink.Write(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "audit sink write failed",
				"event_type", event.Type,
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}
