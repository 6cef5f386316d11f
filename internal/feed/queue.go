package feed

import "sync"

// Queue is an unbounded FIFO that decouples the dispatching goroutine from a
// slower reader. The ring doubles when full, so Send never blocks.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	size   int
	closed bool

	sent     int64
	received int64
	grown    int
}

// QueueStats contains queue statistics.
type QueueStats struct {
	Len      int
	Cap      int
	Sent     int64
	Received int64
	Grown    int
}

// NewQueue creates a queue with the given starting capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	q := &Queue[T]{ring: make([]T, capacity)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send appends an item. Returns false once the queue is closed.
func (q *Queue[T]) Send(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.size == len(q.ring) {
		q.growLocked()
	}

	q.ring[(q.head+q.size)%len(q.ring)] = item
	q.size++
	q.sent++
	q.cond.Signal()
	return true
}

// Receive blocks until an item is available. It returns false once the queue
// is closed and drained.
func (q *Queue[T]) Receive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.popLocked()
}

// TryReceive returns the next item without blocking.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

// Drain removes up to max items (all when max <= 0) without blocking.
func (q *Queue[T]) Drain(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item, _ := q.popLocked()
		out = append(out, item)
	}
	return out
}

// Close stops further sends and wakes blocked receivers. Items already
// queued can still be received.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Stats returns queue statistics.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:      q.size,
		Cap:      len(q.ring),
		Sent:     q.sent,
		Received: q.received,
		Grown:    q.grown,
	}
}

func (q *Queue[T]) popLocked() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}

	item := q.ring[q.head]
	q.ring[q.head] = zero // release for GC
	q.head = (q.head + 1) % len(q.ring)
	q.size--
	q.received++
	return item, true
}

// growLocked doubles the ring, unwrapping it so head is at 0.
func (q *Queue[T]) growLocked() {
	ring := make([]T, len(q.ring)*2)
	n := copy(ring, q.ring[q.head:])
	copy(ring[n:], q.ring[:q.head])

	q.ring = ring
	q.head = 0
	q.grown++
}
