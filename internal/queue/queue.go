// Package queue provides the unbounded multi-producer, single-consumer FIFO
// that carries commands into the render goroutine.
package queue

import "sync/atomic"

type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// Queue is a lock-free, unbounded MPSC FIFO.
//
// The queue is an intrusive linked list with a stub node. Producers publish
// by atomically exchanging the head pointer and then linking the previous
// head to the new node, so Push is wait-free: it never loops, never blocks
// and never discards an item. The consumer walks the list from the tail
// without any atomic read-modify-write.
//
// Thread-safety model:
//   - Push(): safe from any goroutine
//   - Pop(), Drain(): exactly one consumer goroutine at a time
//   - Len(): safe from any goroutine, approximate
//
// Ordering: items pushed by one goroutine are popped in push order. The
// interleaving between producers is whatever order their exchanges landed.
//
// A producer that has exchanged the head but not yet linked its node makes
// the queue look empty from that node onward. Pop reports empty in that
// window; the items become visible as soon as the link is stored.
type Queue[T any] struct {
	head atomic.Pointer[node[T]] // most recently pushed node (producers)
	tail *node[T]                // last consumed node (consumer only)
	n    atomic.Int64
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	stub := &node[T]{}
	q := &Queue[T]{tail: stub}
	q.head.Store(stub)
	return q
}

// Push appends v to the queue and transfers ownership of it to the consumer.
func (q *Queue[T]) Push(v T) {
	n := &node[T]{value: v}
	q.n.Add(1)
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// Pop removes and returns the oldest item.
// Returns false when no item is available. Never blocks and never allocates.
// Must only be called by the single consumer.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	next := q.tail.next.Load()
	if next == nil {
		return zero, false
	}
	v := next.value
	// next becomes the new stub; clear its payload so the GC can
	// reclaim it even while the node stays reachable.
	next.value = zero
	q.tail = next
	q.n.Add(-1)
	return v, true
}

// Drain pops until the queue is empty, handing each item to fn in FIFO
// order. Returns the number of items drained. A nil fn discards the items.
// Must only be called by the single consumer.
func (q *Queue[T]) Drain(fn func(T)) int {
	count := 0
	for {
		v, ok := q.Pop()
		if !ok {
			return count
		}
		if fn != nil {
			fn(v)
		}
		count++
	}
}

// Len returns the approximate number of queued items.
// Useful for monitoring and testing; not a synchronization primitive.
func (q *Queue[T]) Len() int {
	n := q.n.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
