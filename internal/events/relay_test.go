package events

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSource struct {
	pending []PendingEvent
	sent    []int64
}

func (f *fakeSource) FetchPending(_ context.Context, limit int) ([]PendingEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeSource) MarkSent(_ context.Context, rowID int64) error {
	f.sent = append(f.sent, rowID)
	return nil
}

type fakePublisher struct {
	published []Event
	failOn    string
}

func (f *fakePublisher) Publish(_ context.Context, ev Event) error {
	if f.failOn != "" && ev.ID == f.failOn {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func pendingRow(rowID int64, id string) PendingEvent {
	return PendingEvent{
		RowID: rowID,
		Event: Event{ID: id, Subject: SubjectOrderCreated, Key: "o-" + id, Payload: []byte(`{}`)},
	}
}

func TestRelay_DrainPublishesAndAcks(t *testing.T) {
	src := &fakeSource{pending: []PendingEvent{pendingRow(1, "a"), pendingRow(2, "b")}}
	pub := &fakePublisher{}
	r := NewRelay(src, pub, zap.NewNop(), 0, 10)

	require.NoError(t, r.drain(context.Background()))

	require.Len(t, pub.published, 2)
	assert.Equal(t, "a", pub.published[0].ID)
	assert.Equal(t, "b", pub.published[1].ID)
	assert.Equal(t, []int64{1, 2}, src.sent)
}

func TestRelay_StopsAtFirstPublishFailure(t *testing.T) {
	src := &fakeSource{pending: []PendingEvent{pendingRow(1, "a"), pendingRow(2, "b"), pendingRow(3, "c")}}
	pub := &fakePublisher{failOn: "b"}
	r := NewRelay(src, pub, zap.NewNop(), 0, 10)

	err := r.drain(context.Background())
	require.Error(t, err)

	// "a" made it, "b" failed, "c" was never attempted.
	require.Len(t, pub.published, 1)
	assert.Equal(t, []int64{1}, src.sent)
}

func TestRelay_RespectsBatchLimit(t *testing.T) {
	src := &fakeSource{pending: []PendingEvent{pendingRow(1, "a"), pendingRow(2, "b"), pendingRow(3, "c")}}
	pub := &fakePublisher{}
	r := NewRelay(src, pub, zap.NewNop(), 0, 2)

	require.NoError(t, r.drain(context.Background()))
	assert.Len(t, pub.published, 2)
}
