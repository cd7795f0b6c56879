// Package mirror pushes committed points-ledger entries to an external
// sink on a best-effort basis. The write path never waits on it and never
// fails because of it; a publish error is logged and the event dropped.
package mirror

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/oguzk/campusclub/internal/observability"
)

// Event is the mirrored view of one ledger entry
type Event struct {
	EntryID   int64     `json:"entryId"`
	UserID    int64     `json:"userId"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sink receives mirrored events. Implementations may talk to anything;
// the original deployment pushed to a blockchain gateway.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher fans events out to a Sink asynchronously, fire and forget.
type Publisher struct {
	sink    Sink
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPublisher creates a Publisher
func NewPublisher(sink Sink, logger zerolog.Logger) *Publisher {
	return &Publisher{
		sink:    sink,
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Offer hands an event to the sink without blocking the caller. Failures
// are logged and dropped.
func (p *Publisher) Offer(event Event) {
	if p == nil || p.sink == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.sink.Publish(ctx, event); err != nil {
			observability.RecordMirrorDrop()
			p.logger.Warn().Err(err).
				Int64("entryId", event.EntryID).
				Msg("Mirror publish failed, event dropped")
			return
		}
		observability.RecordMirrorPublish()
	}()
}

// LogSink is the default sink: it only records the event in the log.
type LogSink struct {
	Logger zerolog.Logger
}

// Publish implements Sink
func (s *LogSink) Publish(_ context.Context, event Event) error {
	s.Logger.Info().
		Int64("entryId", event.EntryID).
		Int64("userId", event.UserID).
		Str("kind", event.Kind).
		Int64("amount", event.Amount).
		Msg("Points entry mirrored")
	return nil
}
