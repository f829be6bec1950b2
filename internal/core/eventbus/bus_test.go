package eventbus_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/taskroll/internal/core/eventbus"
	"github.com/colonyops/taskroll/internal/core/eventbus/testbus"
	"github.com/colonyops/taskroll/internal/core/history"
)

// syncBuffer is a bytes.Buffer safe for the dispatch goroutine and the test
// to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func (b *syncBuffer) String() string {
	return string(b.Bytes())
}

func TestEventBus_TypedDelivery(t *testing.T) {
	tb := testbus.New(t)

	got := make(chan eventbus.DocumentChangedPayload, 1)
	tb.SubscribeDocumentChanged(func(p eventbus.DocumentChangedPayload) {
		got <- p
	})

	require.NoError(t, tb.PublishDocumentChanged(context.Background(), eventbus.DocumentChangedPayload{Changes: []eventbus.Change{
		{Path: "a.md", Kind: eventbus.ChangeModified},
		{Path: "Folder/.exclude_todos", Kind: eventbus.ChangeCreated},
	}}))

	select {
	case p := <-got:
		assert.Equal(t, []string{"a.md", "Folder/.exclude_todos"}, p.Paths())
	case <-time.After(time.Second):
		t.Fatal("document.changed was not delivered")
	}
}

func TestEventBus_SequentialDispatch(t *testing.T) {
	tb := testbus.New(t)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	tb.SubscribeRunCompleted(func(eventbus.RunCompletedPayload) {
		mu.Lock()
		active++
		maxSeen = max(maxSeen, active)
		mu.Unlock()

		time.Sleep(2 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	})

	for i := range 5 {
		tb.PublishRunCompleted(eventbus.RunCompletedPayload{Run: history.Run{Todos: i}})
	}

	require.True(t, tb.WaitForCount(eventbus.EventRunCompleted, 5, time.Second))

	runs := tb.RunsCompleted()
	require.Len(t, runs, 5)
	for i, r := range runs {
		assert.Equal(t, i, r.Run.Todos, "events are delivered in publish order")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxSeen)
}

func TestEventBus_DropsWhenFull(t *testing.T) {
	bus := eventbus.New(1)

	var dropped []eventbus.Event
	bus.OnDrop(func(e eventbus.Event, _ any) { dropped = append(dropped, e) })

	// Not started: the first event fills the buffer.
	bus.PublishRunCompleted(eventbus.RunCompletedPayload{})
	bus.PublishRunCompleted(eventbus.RunCompletedPayload{})

	assert.Equal(t, []eventbus.Event{eventbus.EventRunCompleted}, dropped)
}

func TestEventBus_DocumentChangedWaitsForRoom(t *testing.T) {
	bus := eventbus.New(1)
	bus.PublishRunCompleted(eventbus.RunCompletedPayload{})

	delivered := make(chan []string, 1)
	bus.SubscribeDocumentChanged(func(p eventbus.DocumentChangedPayload) { delivered <- p.Paths() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	published := make(chan error, 1)
	go func() {
		published <- bus.PublishDocumentChanged(ctx, eventbus.DocumentChangedPayload{Changes: []eventbus.Change{
			{Path: "TODO.md", Kind: eventbus.ChangeModified},
		}})
	}()

	select {
	case <-published:
		t.Fatal("publish returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	go bus.Start(ctx)

	select {
	case err := <-published:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish did not complete once the queue drained")
	}
	assert.Equal(t, []string{"TODO.md"}, <-delivered)
}

func TestEventBus_DocumentChangedGivesUpOnCancel(t *testing.T) {
	bus := eventbus.New(1)
	bus.PublishRunCompleted(eventbus.RunCompletedPayload{})

	var dropped []eventbus.Event
	bus.OnDrop(func(e eventbus.Event, _ any) { dropped = append(dropped, e) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.PublishDocumentChanged(ctx, eventbus.DocumentChangedPayload{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []eventbus.Event{eventbus.EventDocumentChanged}, dropped)
}

func TestEventBus_PanicDoesNotStopDispatch(t *testing.T) {
	bus := eventbus.New(4)

	panics := make(chan any, 1)
	bus.OnPanic(func(_ eventbus.Event, _ any, recovered any) { panics <- recovered })

	delivered := make(chan struct{}, 1)
	bus.SubscribeDocumentChanged(func(eventbus.DocumentChangedPayload) { panic("bad subscriber") })
	bus.SubscribeDocumentChanged(func(eventbus.DocumentChangedPayload) { delivered <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Start(ctx)

	require.NoError(t, bus.PublishDocumentChanged(ctx, eventbus.DocumentChangedPayload{}))

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber did not run")
	}
	assert.Equal(t, "bad subscriber", <-panics)
}

func TestEventBus_StopsOnCancel(t *testing.T) {
	bus := eventbus.New(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		bus.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
