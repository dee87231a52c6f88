package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/domain"
	"github.com/aussiebroadwan/docket/internal/groups/events"
	"github.com/aussiebroadwan/docket/internal/groups/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (s *recordingSink) Publish(ctx context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) recorded() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.events...)
}

type blockingSink struct {
	release chan struct{}
}

func (s *blockingSink) Publish(ctx context.Context, e events.Event) error {
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{err: errors.New("sink down")}
	d := events.NewDispatcher(quietLogger(), time.Second, a, b)

	d.Emit(context.Background(), events.Event{Type: events.MemberJoined, GroupID: "g1"})
	d.Wait()

	require.Len(t, a.recorded(), 1)
	require.Len(t, b.recorded(), 1)

	got := a.recorded()[0]
	require.NotEmpty(t, got.ID)
	require.False(t, got.OccurredAt.IsZero())
	require.Equal(t, got.ID, b.recorded()[0].ID)
}

func TestDispatcherDoesNotBlockCaller(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := events.NewDispatcher(quietLogger(), time.Minute, sink)

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	d.Emit(ctx, events.Event{Type: events.GroupUpdated})
	require.Less(t, time.Since(start), 100*time.Millisecond)

	// Cancelling the request does not cancel delivery.
	cancel()
	close(sink.release)
	d.Wait()
}

func TestDispatcherTimeout(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	d := events.NewDispatcher(quietLogger(), 20*time.Millisecond, sink)

	d.Emit(context.Background(), events.Event{Type: events.GroupUpdated})
	d.Wait()
}

func TestActivitySink(t *testing.T) {
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	sink := &events.ActivitySink{Store: st}
	now := time.Now().UTC()

	require.NoError(t, sink.Publish(ctx, events.Event{
		ID: "e1", Type: events.MemberJoined, GroupID: "g1", ActorID: "u1", ActorName: "alice",
		Message: "alice joined the group", OccurredAt: now,
	}))
	require.NoError(t, sink.Publish(ctx, events.Event{
		ID: "e2", Type: events.GroupDeleted, GroupID: "g1", OccurredAt: now,
	}))

	entries, total, err := st.Activity().ListActivity(ctx, "g1", domain.NormalizePage(1, 10))
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, domain.ActivityGroup, entries[0].Category)
	require.Equal(t, "alice", entries[0].AuthorName)
}

func TestDiscard(t *testing.T) {
	events.Discard.Emit(context.Background(), events.Event{Type: events.GroupCreated})
}
