package scheduler

import (
	"errors"
	"fmt"
)

// ErrAlreadyQueued is returned when a handle is pushed twice.
var ErrAlreadyQueued = errors.New("process already in ready queue")

// ReadyQueue is an ordered, duplicate-free sequence of runnable process handles.
// It is an unbounded slice; ordering is decided by the caller through Push
// (append at the back) or InsertOrdered (kept sorted by a comparator).
type ReadyQueue struct {
	items  []Handle
	member map[Handle]bool
}

// NewReadyQueue returns an empty queue.
func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{member: make(map[Handle]bool)}
}

// Push appends h at the back.
func (q *ReadyQueue) Push(h Handle) error {
	if q.member[h] {
		return fmt.Errorf("push %d: %w", h, ErrAlreadyQueued)
	}
	q.items = append(q.items, h)
	q.member[h] = true
	return nil
}

// InsertOrdered scans from the front and inserts h immediately before the first
// entry that h is strictly better than. Entries of equal rank keep FIFO order.
func (q *ReadyQueue) InsertOrdered(h Handle, better func(a, b Handle) bool) error {
	if q.member[h] {
		return fmt.Errorf("insert %d: %w", h, ErrAlreadyQueued)
	}
	pos := len(q.items)
	for i, cur := range q.items {
		if better(h, cur) {
			pos = i
			break
		}
	}
	q.items = append(q.items, 0)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = h
	q.member[h] = true
	return nil
}

// PopFront removes and returns the head.
func (q *ReadyQueue) PopFront() (Handle, bool) {
	if len(q.items) == 0 {
		return noProcess, false
	}
	h := q.items[0]
	q.items = q.items[1:]
	delete(q.member, h)
	return h, true
}

// Peek returns the head without removing it.
func (q *ReadyQueue) Peek() (Handle, bool) {
	if len(q.items) == 0 {
		return noProcess, false
	}
	return q.items[0], true
}

// Len returns the number of queued handles.
func (q *ReadyQueue) Len() int {
	return len(q.items)
}

// IsEmpty reports whether nothing is queued.
func (q *ReadyQueue) IsEmpty() bool {
	return len(q.items) == 0
}

// Contains reports whether h is queued.
func (q *ReadyQueue) Contains(h Handle) bool {
	return q.member[h]
}

// Snapshot returns a copy of the queue contents, front first.
func (q *ReadyQueue) Snapshot() []Handle {
	return append([]Handle(nil), q.items...)
}
