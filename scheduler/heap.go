package scheduler

// Event is a single queued entry point: an immediate, one-shot, or
// repeating activation on one of the four clocks (spec §4.6/C12).
type Event struct {
	id    int64
	clock Clock

	entryPoint EntryPoint

	nextFireTime     int64
	cycleTime        int64
	repeatsRemaining int64 // 0 = one-shot, <0 = infinite, >0 = finite count

	seq   uint64 // insertion sequence, breaks nextFireTime ties (spec §8 property 5)
	index int    // position in its eventHeap, maintained by Swap
}

// eventHeap orders events by (nextFireTime, seq) and satisfies
// container/heap.Interface. Go's heap package was preferred over a plain
// sorted slice: every queue operation the scheduler needs (peek-min,
// pop-min, re-positioning after SetEvent*Time, arbitrary removal in
// RemoveEvent) is O(log n) through heap.Fix/heap.Remove instead of a
// linear re-sort.
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].nextFireTime != h[j].nextFireTime {
		return h[i].nextFireTime < h[j].nextFireTime
	}

	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	e, _ := x.(*Event)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]

	return e
}
