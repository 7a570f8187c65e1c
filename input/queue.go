package input

import "golang.org/x/exp/slices"

// MaxQueueSize is the number of entries retained by every input queue.
const MaxQueueSize = 16

// fifo is a bounded first-in first-out queue. Once full, pushing a new
// element drops the oldest one; producers never block.
type fifo[T any] struct {
	items []T
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
	if over := len(q.items) - MaxQueueSize; over > 0 {
		q.items = slices.Delete(q.items, 0, over)
	}
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

func (q *fifo[T]) len() int { return len(q.items) }

func (q *fifo[T]) clear() { q.items = q.items[:0] }

// snapshot returns a copy of the queued elements, oldest first.
func (q *fifo[T]) snapshot() []T { return slices.Clone(q.items) }
