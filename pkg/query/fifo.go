package query

import (
	"fmt"

	"bookworm/pkg/graph"
)

// FIFO is a fixed-capacity circular queue of node indices. Traversals size
// it to the node count and enqueue each node at most once.
type FIFO struct {
	buf        []graph.NodeIndex
	head, tail int
}

// NewFIFO creates an empty queue holding at most capacity entries.
func NewFIFO(capacity int) *FIFO {
	return &FIFO{buf: make([]graph.NodeIndex, capacity)}
}

// Enqueue appends idx. It panics when the queue is full.
func (q *FIFO) Enqueue(idx graph.NodeIndex) {
	if q.tail-q.head == len(q.buf) {
		panic(fmt.Sprintf("query: FIFO overflow at capacity %d", len(q.buf)))
	}
	q.buf[q.tail%len(q.buf)] = idx
	q.tail++
}

// Dequeue removes and returns the oldest entry. It panics when empty.
func (q *FIFO) Dequeue() graph.NodeIndex {
	if q.head == q.tail {
		panic("query: Dequeue on empty FIFO")
	}
	idx := q.buf[q.head%len(q.buf)]
	q.head++
	return idx
}

// IsEmpty reports whether the queue holds no entries.
func (q *FIFO) IsEmpty() bool { return q.head == q.tail }

// Len returns the number of queued entries.
func (q *FIFO) Len() int { return q.tail - q.head }

// Reset empties the queue.
func (q *FIFO) Reset() { q.head, q.tail = 0, 0 }
