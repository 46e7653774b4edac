package dispatch

import (
	"container/heap"
	"sync"

	"github.com/averau/go-native-executor/core"
)

const defaultQueueCap = 16

type taskItem struct {
	task   core.Task
	traits core.TaskTraits
}

// priorityItem carries a submission sequence number so that items of equal
// priority pop in FIFO order (stability).
type priorityItem struct {
	taskItem
	sequence uint64
	index    int // for heap interface
}

type priorityHeap []*priorityItem

func (h priorityHeap) Len() int { return len(h) }

// Less: highest priority first, then earliest sequence (FIFO).
func (h priorityHeap) Less(i, j int) bool {
	if h[i].traits.Priority != h[j].traits.Priority {
		return h[i].traits.Priority > h[j].traits.Priority
	}
	return h[i].sequence < h[j].sequence
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x any) {
	n := len(*h)
	item := x.(*priorityItem)
	item.index = n
	*h = append(*h, item)
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// priorityQueue is a stable priority queue of pending submissions.
type priorityQueue struct {
	mu           sync.Mutex
	pq           priorityHeap
	nextSequence uint64
}

func newPriorityQueue() *priorityQueue {
	return &priorityQueue{pq: make(priorityHeap, 0, defaultQueueCap)}
}

func (q *priorityQueue) Push(task core.Task, traits core.TaskTraits) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := &priorityItem{
		taskItem: taskItem{task: task, traits: traits},
		sequence: q.nextSequence,
	}
	q.nextSequence++
	heap.Push(&q.pq, item)
}

func (q *priorityQueue) Pop() (taskItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pq) == 0 {
		return taskItem{}, false
	}
	item := heap.Pop(&q.pq).(*priorityItem)
	return item.taskItem, true
}

func (q *priorityQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pq)
}

// Clear removes all submissions and releases task references.
func (q *priorityQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pq = make(priorityHeap, 0, defaultQueueCap)
	q.nextSequence = 0
}
