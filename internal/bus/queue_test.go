package bus

import (
	"context"
	"testing"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestQueuePublishAndConsume(t *testing.T) {
	q := NewQueue(4)
	defer q.Close()

	fill := &model.Fill{Ticker: "ABC", Side: enum.SideBuy, Quantity: 100, Price: 50}
	if err := q.TryPublish(Event{Type: EventFill, Fill: fill}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := make(chan Event, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go q.Run(ctx, func(e Event) { got <- e })

	select {
	case e := <-got:
		if e.Type != EventFill || e.Fill != fill {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestQueueFullDropsWithoutBlocking(t *testing.T) {
	q := NewQueue(1)
	defer q.Close()

	if err := q.TryPublish(Event{Type: EventQuote}); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := q.TryPublish(Event{Type: EventQuote}); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestQueueClosedRejectsPublish(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close() // idempotent

	if err := q.TryPublish(Event{Type: EventQuote}); err != ErrQueueClosed {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueueRunStopsOnClose(t *testing.T) {
	q := NewQueue(1)
	done := make(chan struct{})
	go func() {
		q.Run(context.Background(), func(Event) {})
		close(done)
	}()
	q.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestEventTypeString(t *testing.T) {
	cases := map[EventType]string{
		EventQuote:          "quote",
		EventFill:           "fill",
		EventTenderDecision: "tender_decision",
		EventType(99):       "unknown",
	}
	for typ, want := range cases {
		if got := typ.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", typ, got, want)
		}
	}
	if !EventFill.IsAvailable() {
		t.Fatal("EventFill should be available")
	}
	if EventType(99).IsAvailable() {
		t.Fatal("unknown type should not be available")
	}
}
