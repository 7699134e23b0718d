// Package bus carries decision events from the trading cycle to the
// reporting sink over a bounded, non-blocking queue. A full queue drops
// the event rather than stalling the cycle.
package bus

import (
	"context"
	"errors"
	"sync/atomic"

	"main/internal/model"
	"main/internal/quote"
	"main/internal/tender"
)

var (
	ErrQueueFull   = errors.New("event queue full")
	ErrQueueClosed = errors.New("event queue closed")
)

// EventType identifies the payload carried by an Event.
type EventType uint8

const (
	_event_type_beg EventType = iota

	EventQuote
	EventFill
	EventTenderDecision

	_event_type_end
)

// IsAvailable reports whether the event type is a known value.
func (t EventType) IsAvailable() bool {
	return t > _event_type_beg && t < _event_type_end
}

func (t EventType) String() string {
	switch t {
	case EventQuote:
		return "quote"
	case EventFill:
		return "fill"
	case EventTenderDecision:
		return "tender_decision"
	default:
		return "unknown"
	}
}

// Event is the unit passed through the in-memory bus. Exactly one payload
// field is set, matching Type.
type Event struct {
	Type   EventType
	Seq    uint64
	TsNano int64

	Quote    *quote.TwoSided
	Fill     *model.Fill
	Decision *tender.Decision
}

// Queue is a bounded, non-blocking event queue.
type Queue struct {
	ch     chan Event
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// TryPublish enqueues an event without blocking.
func (q *Queue) TryPublish(e Event) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new events. Events already queued
// still drain through Run.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes events until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			handler(e)
		}
	}
}
