package core

import "time"

// priorityQueue is a bounded, priority-ordered collection of QueueItems,
// implemented as a sorted insertion slice. Design notes (spec.md §9)
// accept this given the small default queue depth (20); a binary heap
// keyed by (priority, enqueuedAt) would be equally correct at larger
// depths.
type priorityQueue struct {
	items []*QueueItem
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{}
}

func (q *priorityQueue) Len() int {
	return len(q.items)
}

// Insert places item at the position dictated by (priority, enqueuedAt):
// strictly higher priority (lower rank) sorts first; within equal
// priority, earlier enqueuedAt sorts first (FIFO).
func (q *priorityQueue) Insert(item *QueueItem) {
	pos := len(q.items)
	for i, existing := range q.items {
		if item.PriorityVal < existing.PriorityVal {
			pos = i
			break
		}
		if item.PriorityVal == existing.PriorityVal && item.EnqueuedAt.Before(existing.EnqueuedAt) {
			pos = i
			break
		}
	}
	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item
}

// PopFront removes and returns the highest-priority item, or nil if empty.
func (q *priorityQueue) PopFront() *QueueItem {
	if len(q.items) == 0 {
		return nil
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// DrainExpired removes, in tail-to-head order so indices stay valid, every
// item whose queue wait already exceeds timeout at now, and returns them.
func (q *priorityQueue) DrainExpired(now time.Time, timeout time.Duration) []*QueueItem {
	var expired []*QueueItem
	for i := len(q.items) - 1; i >= 0; i-- {
		if now.Sub(q.items[i].EnqueuedAt) > timeout {
			expired = append(expired, q.items[i])
			q.items = append(q.items[:i], q.items[i+1:]...)
		}
	}
	return expired
}
