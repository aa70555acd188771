package runtime

import "sync"

// deque is a mutex-guarded double-ended queue of node indices. A
// worker pushes and pops its own ready nodes from the back (LIFO,
// favoring cache-hot recently-produced work); other workers — and the
// shared injector — steal from the front (FIFO, spreading contention
// away from the owner's own end). Go has no lock-free work-stealing
// deque in its ecosystem the way crossbeam does for Rust, so a plain
// mutex stands in; at audio-graph fan-out widths the contention this
// adds is not the bottleneck.
type deque struct {
	mu    sync.Mutex
	items []int
}

func newDeque() *deque {
	return &deque{}
}

// pushBack adds v to the owning worker's end.
func (d *deque) pushBack(v int) {
	d.mu.Lock()
	d.items = append(d.items, v)
	d.mu.Unlock()
}

// popBack removes and returns the owning worker's most recently pushed
// item.
func (d *deque) popBack() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return 0, false
	}
	v := d.items[len(d.items)-1]
	d.items = d.items[:len(d.items)-1]
	return v, true
}

// stealFront removes and returns the oldest item, for use by any
// worker other than the owner (or the injector, which has no owner).
func (d *deque) stealFront() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.items) == 0 {
		return 0, false
	}
	v := d.items[0]
	d.items = d.items[1:]
	return v, true
}

// isEmpty reports whether the deque currently holds no items.
func (d *deque) isEmpty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items) == 0
}
