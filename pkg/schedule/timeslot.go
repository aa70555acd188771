// Package schedule implements the static-scheduling output a planner
// produces: a TimeSlot per placed node, grouped into Processors, grouped
// into a Schedule. None of these types know about the task graph they
// were built from — they are pure bookkeeping the planner writes and the
// runtime reads.
package schedule

import "fmt"

// TimeSlot is the interval during which a specific node executes on a
// specific processor.
type TimeSlot struct {
	node       int
	start      float64
	completion float64
}

// NewTimeSlot builds a TimeSlot, panicking if start > completion — a
// construction-time invariant violation, not a runtime condition. A
// zero-duration slot (start == completion) is legal: a node with zero
// WCET, such as a constant task of duration 0, still needs a slot to
// occupy its place in the processor's order.
func NewTimeSlot(node int, start, completion float64) TimeSlot {
	if start > completion {
		panic(fmt.Sprintf("schedule: NewTimeSlot(%d, %g, %g): start must be <= completion", node, start, completion))
	}
	return TimeSlot{node: node, start: start, completion: completion}
}

// Node returns the index of the task's node.
func (t TimeSlot) Node() int { return t.node }

// Start returns the slot's start time.
func (t TimeSlot) Start() float64 { return t.start }

// Completion returns the slot's completion time.
func (t TimeSlot) Completion() float64 { return t.completion }

func (t TimeSlot) String() string {
	return fmt.Sprintf("|%.2f No:%d %.2f|", t.start, t.node, t.completion)
}
