package algorithms

import (
	"container/heap"

	"gridbench/pkg/domain"
)

// frontier is a min-heap of arena indices ordered by (f, h).
// Duplicate positions are allowed; stale entries are skipped by the caller's
// closed set.
type frontier struct {
	arena *domain.NodeArena
	items []int32
}

func newFrontier(arena *domain.NodeArena) *frontier {
	return &frontier{arena: arena}
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	return f.arena.Less(f.items[i], f.items[j])
}

func (f *frontier) Swap(i, j int) {
	f.items[i], f.items[j] = f.items[j], f.items[i]
}

func (f *frontier) Push(x any) {
	f.items = append(f.items, x.(int32))
}

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	item := old[n-1]
	f.items = old[:n-1]
	return item
}

func (f *frontier) push(idx int32) {
	heap.Push(f, idx)
}

func (f *frontier) pop() int32 {
	return heap.Pop(f).(int32)
}
