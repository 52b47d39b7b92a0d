package events

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// PendingEvent is an outbox row waiting to be published.
type PendingEvent struct {
	RowID int64
	Event
}

// OutboxSource reads and acknowledges pending outbox rows.
type OutboxSource interface {
	FetchPending(ctx context.Context, limit int) ([]PendingEvent, error)
	MarkSent(ctx context.Context, rowID int64) error
}

// Relay drains the transactional outbox into the event stream. Publishing
// is at-least-once: a row is marked sent only after the broker accepted it,
// and failures are retried on the next tick.
type Relay struct {
	src      OutboxSource
	pub      Publisher
	lg       *zap.Logger
	interval time.Duration
	batch    int
}

// NewRelay creates a relay polling src every interval, publishing at most
// batch rows per tick.
func NewRelay(src OutboxSource, pub Publisher, lg *zap.Logger, interval time.Duration, batch int) *Relay {
	return &Relay{src: src, pub: pub, lg: lg, interval: interval, batch: batch}
}

// Run polls until the context is cancelled. It always returns nil on
// cancellation so it can live in an error group next to the HTTP server.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.lg.Warn("Outbox drain failed", zap.Error(err))
			}
		}
	}
}

func (r *Relay) drain(ctx context.Context) error {
	pending, err := r.src.FetchPending(ctx, r.batch)
	if err != nil {
		return errors.Wrap(err, "fetch pending")
	}

	for _, ev := range pending {
		if err := r.pub.Publish(ctx, ev.Event); err != nil {
			// Stop at the first failure to preserve per-key ordering.
			return errors.Wrapf(err, "publish %s %s", ev.Subject, ev.ID)
		}
		if err := r.src.MarkSent(ctx, ev.RowID); err != nil {
			return errors.Wrapf(err, "mark sent %d", ev.RowID)
		}
		r.lg.Debug("Event published",
			zap.String("subject", ev.Subject),
			zap.String("event_id", ev.ID),
		)
	}
	return nil
}
