package models

import (
	"container/heap"
	"sync"
)

// ScheduleEntry pairs a simulation timestamp with the order due then.
type ScheduleEntry struct {
	At    float64
	Order *Order
	seq   uint64
}

// ScheduleQueue is a priority queue of schedule entries ordered by time.
// Entries scheduled for the same instant come out in insertion order.
type ScheduleQueue struct {
	entries entryHeap
	nextSeq uint64
	mutex   sync.Mutex
}

// entryHeap implements heap.Interface and holds ScheduleEntries
type entryHeap []*ScheduleEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].At != h[j].At {
		return h[i].At < h[j].At
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(*ScheduleEntry))
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// NewScheduleQueue creates a new ScheduleQueue
func NewScheduleQueue() *ScheduleQueue {
	return &ScheduleQueue{entries: make(entryHeap, 0)}
}

// Enqueue schedules an order for the given simulation time
func (sq *ScheduleQueue) Enqueue(at float64, order *Order) {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	sq.nextSeq++
	heap.Push(&sq.entries, &ScheduleEntry{At: at, Order: order, seq: sq.nextSeq})
}

// Dequeue removes and returns the earliest entry from the queue
func (sq *ScheduleQueue) Dequeue() *ScheduleEntry {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	if len(sq.entries) == 0 {
		return nil
	}
	return heap.Pop(&sq.entries).(*ScheduleEntry)
}

// Peek returns the earliest entry without removing it
func (sq *ScheduleQueue) Peek() *ScheduleEntry {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	if len(sq.entries) == 0 {
		return nil
	}
	return sq.entries[0]
}

// DequeueDue removes and returns, in time order, every entry due at or
// before the given simulation time.
func (sq *ScheduleQueue) DequeueDue(now float64) []*ScheduleEntry {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()

	var due []*ScheduleEntry
	for len(sq.entries) > 0 && sq.entries[0].At <= now {
		due = append(due, heap.Pop(&sq.entries).(*ScheduleEntry))
	}
	return due
}

// IsEmpty returns true if the queue is empty
func (sq *ScheduleQueue) IsEmpty() bool {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	return len(sq.entries) == 0
}

// Len returns the number of entries in the queue
func (sq *ScheduleQueue) Len() int {
	sq.mutex.Lock()
	defer sq.mutex.Unlock()
	return len(sq.entries)
}
