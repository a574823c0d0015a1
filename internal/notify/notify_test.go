package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"jobportal-backend/internal/lifecycle"
	"jobportal-backend/internal/logger"
	"jobportal-backend/internal/model"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	block  chan struct{}
	err    error
}

func (s *recordingSink) Deliver(ctx context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

func (s *recordingSink) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func statusEvent() Event {
	return Event{
		Type:          model.NotificationStatusChanged,
		UserID:        uuid.New(),
		ApplicationID: uuid.New(),
		JobID:         uuid.New(),
		NewStatus:     lifecycle.Viewed,
	}
}

func TestDispatcher_deliversToEverySinkBeforeClose(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	first, second := &recordingSink{}, &recordingSink{err: errors.New("broker down")}
	d := NewDispatcher(logger.Discard(), 8, first, second)
	d.Start()

	for i := 0; i < 3; i++ {
		d.Notify(statusEvent())
	}

	require.NoError(t, d.Close(context.Background()))
	assert.Len(t, first.received(), 3)
	assert.Len(t, second.received(), 3, "a failing sink still receives every event")
	for _, ev := range first.received() {
		assert.False(t, ev.At.IsZero(), "timestamp is filled in")
	}
}

func TestDispatcher_dropsWhenQueueIsFull(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(logger.Discard(), 1, sink)
	d.Start()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Notify(statusEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sink.block)
	require.NoError(t, d.Close(context.Background()))
	assert.LessOrEqual(t, len(sink.received()), 2, "one in flight plus one buffered")
}

func TestDispatcher_notifyAfterCloseIsIgnored(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sink := &recordingSink{}
	d := NewDispatcher(logger.Discard(), 4, sink)
	d.Start()
	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()), "close is idempotent")

	assert.NotPanics(t, func() { d.Notify(statusEvent()) })
	assert.Empty(t, sink.received())
}

func TestDispatcher_closeHonoursContext(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(logger.Discard(), 4, sink)
	d.Start()
	d.Notify(statusEvent())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(sink.block)
}

func TestRender(t *testing.T) {
	ev := statusEvent()
	ev.JobTitle = "Backend Engineer"
	ev.Note = "see you Monday"
	title, body := render(ev)
	assert.Equal(t, "Application update", title)
	assert.Contains(t, body, "Backend Engineer")
	assert.Contains(t, body, string(lifecycle.Viewed))
	assert.Contains(t, body, "see you Monday")

	ev.Type = model.NotificationApplicationReceived
	ev.JobTitle = ""
	title, body = render(ev)
	assert.Equal(t, "New application", title)
	assert.Contains(t, body, "a job")
}

func TestEncodeMessage(t *testing.T) {
	ev := statusEvent()
	ev.At = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	msg, err := encodeMessage(ev)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, string(model.NotificationStatusChanged), msg.Type)
	assert.Equal(t, ev.ApplicationID.String(), msg.MessageId)
	assert.Contains(t, string(msg.Body), `"new_status":"VIEWED"`)
}
