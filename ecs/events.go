package ecs

import "sync/atomic"

// DefaultEventCapacity bounds a queue created without an explicit capacity.
const DefaultEventCapacity = 256

var nextEventID atomic.Uint32

// EventKind identifies a typed, bounded event queue.
type EventKind[T any] struct {
	id       uint32
	capacity int
}

// NewEventKind declares an event queue. When more than capacity events are
// pending the oldest are dropped.
func NewEventKind[T any](capacity int) EventKind[T] {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return EventKind[T]{id: nextEventID.Add(1), capacity: capacity}
}

func (k EventKind[T]) ID() uint32 {
	return k.id
}

type eventStore interface {
	advance()
}

// eventQueue keeps the events sent during the current and the previous tick,
// so a subscriber scheduled before the sender still sees them one tick later.
type eventQueue[T any] struct {
	items     []T
	seqStart  uint64
	tickStart uint64
	capacity  int
	dropped   uint64
}

func (q *eventQueue[T]) end() uint64 {
	return q.seqStart + uint64(len(q.items))
}

func (q *eventQueue[T]) push(v T) {
	if q.capacity > 0 && len(q.items) >= q.capacity {
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.seqStart++
		q.dropped++
	}
	q.items = append(q.items, v)
}

func (q *eventQueue[T]) advance() {
	if q.tickStart > q.seqStart {
		n := int(q.tickStart - q.seqStart)
		if n > len(q.items) {
			n = len(q.items)
		}
		q.items = append([]T(nil), q.items[n:]...)
		q.seqStart += uint64(n)
	}
	q.tickStart = q.end()
}

func queueFor[T any](w *World, kind EventKind[T]) *eventQueue[T] {
	if w == nil || kind.id == 0 {
		return nil
	}
	if s, ok := w.events[kind.id]; ok {
		q, _ := s.(*eventQueue[T])
		return q
	}
	q := &eventQueue[T]{capacity: kind.capacity}
	w.events[kind.id] = q
	return q
}

// Send queues evt for every reader of kind.
func Send[T any](w *World, kind EventKind[T], evt T) {
	if q := queueFor(w, kind); q != nil {
		q.push(evt)
	}
}

// Pending returns the number of retained events of kind.
func Pending[T any](w *World, kind EventKind[T]) int {
	if q := queueFor(w, kind); q != nil {
		return len(q.items)
	}
	return 0
}

// Dropped returns how many events of kind were discarded because the queue
// was full.
func Dropped[T any](w *World, kind EventKind[T]) uint64 {
	if q := queueFor(w, kind); q != nil {
		return q.dropped
	}
	return 0
}

// EventReader is one subscriber's cursor into an event queue. Each system
// owns its own reader.
type EventReader[T any] struct {
	kind   EventKind[T]
	cursor uint64
}

func NewEventReader[T any](kind EventKind[T]) *EventReader[T] {
	return &EventReader[T]{kind: kind}
}

// Read returns every event this reader has not seen yet and marks them read.
func (r *EventReader[T]) Read(w *World) []T {
	q := queueFor(w, r.kind)
	if q == nil {
		return nil
	}
	if r.cursor < q.seqStart {
		r.cursor = q.seqStart
	}
	end := q.end()
	if r.cursor >= end {
		return nil
	}
	out := append([]T(nil), q.items[r.cursor-q.seqStart:]...)
	r.cursor = end
	return out
}

// Clear marks every pending event read without returning it.
func (r *EventReader[T]) Clear(w *World) {
	if q := queueFor(w, r.kind); q != nil {
		r.cursor = q.end()
	}
}
