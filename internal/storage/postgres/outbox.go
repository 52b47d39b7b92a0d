package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storely/storefront/internal/events"
)

// OutboxRepository stores events in the outbox table. Enqueue participates
// in the surrounding transaction, so an event row commits if and only if
// the state change it describes commits.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository returns an OutboxRepository that uses the given pool.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

const enqueueSQL = `INSERT INTO outbox (event_id, subject, key, payload)
	VALUES ($1, $2, $3, $4)`

func (r *OutboxRepository) Enqueue(ctx context.Context, ev events.Event) error {
	_, err := from(ctx, r.pool).Exec(ctx, enqueueSQL, ev.ID, ev.Subject, ev.Key, ev.Payload)
	if err != nil {
		return errors.Wrapf(err, "enqueueing event %s", ev.ID)
	}
	return nil
}

const fetchPendingSQL = `SELECT id, event_id, subject, key, payload
	FROM outbox WHERE sent_at IS NULL ORDER BY id LIMIT $1`

func (r *OutboxRepository) FetchPending(ctx context.Context, limit int) ([]events.PendingEvent, error) {
	rows, err := from(ctx, r.pool).Query(ctx, fetchPendingSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "fetching pending events")
	}
	defer rows.Close()

	var out []events.PendingEvent
	for rows.Next() {
		var ev events.PendingEvent
		if err := rows.Scan(&ev.RowID, &ev.ID, &ev.Subject, &ev.Key, &ev.Payload); err != nil {
			return nil, errors.Wrap(err, "scanning pending event")
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

const markSentSQL = `UPDATE outbox SET sent_at = now() WHERE id = $1`

func (r *OutboxRepository) MarkSent(ctx context.Context, rowID int64) error {
	if _, err := from(ctx, r.pool).Exec(ctx, markSentSQL, rowID); err != nil {
		return errors.Wrapf(err, "marking event row %d sent", rowID)
	}
	return nil
}
