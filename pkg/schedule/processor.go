package schedule

// Processor is one logical processor's ordered sequence of time slots.
// Slots are appended in non-decreasing start order; CompletionTime
// caches the last slot's completion (0 if the processor is still
// empty).
type Processor struct {
	TimeSlots      []TimeSlot
	completionTime float64
}

// NewProcessor builds an empty Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// AddTimeSlot appends a slot for node, running from start to
// completion. It succeeds only when start >= p.CompletionTime(), per the
// processor's non-overlap invariant; it reports whether the slot was
// added.
func (p *Processor) AddTimeSlot(node int, start, completion float64) bool {
	if start < p.completionTime {
		return false
	}
	p.TimeSlots = append(p.TimeSlots, NewTimeSlot(node, start, completion))
	p.completionTime = completion
	return true
}

// CompletionTime returns the completion time of the processor's last
// slot, or 0 if it holds none.
func (p *Processor) CompletionTime() float64 { return p.completionTime }

// Contains reports whether node has a slot on this processor.
func (p *Processor) Contains(node int) bool {
	_, ok := p.TimeSlotOf(node)
	return ok
}

// TimeSlotOf returns the earliest-completing slot for node on this
// processor, and whether one exists.
func (p *Processor) TimeSlotOf(node int) (TimeSlot, bool) {
	var best TimeSlot
	found := false
	for _, ts := range p.TimeSlots {
		if ts.Node() != node {
			continue
		}
		if !found || ts.Completion() < best.Completion() {
			best, found = ts, true
		}
	}
	return best, found
}

// ContainsAny reports whether any of nodes has a slot on this
// processor.
func (p *Processor) ContainsAny(nodes []int) bool {
	for _, n := range nodes {
		if p.Contains(n) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every one of nodes has a slot on this
// processor.
func (p *Processor) ContainsAll(nodes []int) bool {
	for _, n := range nodes {
		if !p.Contains(n) {
			return false
		}
	}
	return true
}

// MissingFrom returns the subset of nodes that have no slot on this
// processor, preserving order.
func (p *Processor) MissingFrom(nodes []int) []int {
	missing := make([]int, 0, len(nodes))
	for _, n := range nodes {
		if !p.Contains(n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// DuplicateFrom overwrites p's slots and completion time with a deep
// copy of other's, atomically from the caller's point of view (p is
// fully rebuilt before returning).
func (p *Processor) DuplicateFrom(other *Processor) {
	slots := make([]TimeSlot, len(other.TimeSlots))
	copy(slots, other.TimeSlots)
	p.TimeSlots = slots
	p.completionTime = other.completionTime
}

// Clone returns a deep copy of p.
func (p *Processor) Clone() *Processor {
	c := NewProcessor()
	c.DuplicateFrom(p)
	return c
}
