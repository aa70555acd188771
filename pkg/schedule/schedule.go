package schedule

import (
	"fmt"
	"io"
	"strings"
)

// Schedule is the output of a static planner: a sequence of Processors,
// each holding its own ordered time slots.
type Schedule struct {
	Processors []*Processor
}

// New builds an empty Schedule.
func New() *Schedule {
	return &Schedule{}
}

// AddProcessor appends an empty Processor and returns its index.
func (s *Schedule) AddProcessor() int {
	s.Processors = append(s.Processors, NewProcessor())
	return len(s.Processors) - 1
}

// NbProcessor returns the number of processors in the schedule.
func (s *Schedule) NbProcessor() int { return len(s.Processors) }

// CompletionTime returns the schedule's completion time: the maximum
// completion time across all processors.
func (s *Schedule) CompletionTime() float64 {
	var max float64
	for _, p := range s.Processors {
		if c := p.CompletionTime(); c > max {
			max = c
		}
	}
	return max
}

// TimeSlot returns the earliest-completing time slot holding node, and
// whether one was found. A node may hold more than one slot under CPFD
// duplication; this is always the one that lets a successor start
// soonest.
func (s *Schedule) TimeSlot(node int) (TimeSlot, bool) {
	var best TimeSlot
	found := false

	for _, p := range s.Processors {
		for _, ts := range p.TimeSlots {
			if ts.Node() != node {
				continue
			}
			if !found || ts.Completion() < best.Completion() {
				best = ts
				found = true
			}
		}
	}

	return best, found
}

// LastPredecessor returns the time slot with the largest completion
// time among the given predecessors that are actually scheduled, and
// whether any predecessor was found scheduled. This is the earliest
// time a node may legally start, ignoring communication cost.
func (s *Schedule) LastPredecessor(predecessors []int) (TimeSlot, bool) {
	var best TimeSlot
	found := false

	for _, p := range predecessors {
		ts, ok := s.TimeSlot(p)
		if !ok {
			continue
		}
		if !found || best.Completion() < ts.Completion() {
			best = ts
			found = true
		}
	}

	return best, found
}

// PSet returns the indices of processors that each host at least one of
// the given predecessors.
func (s *Schedule) PSet(predecessors []int) []int {
	var out []int
	for i, p := range s.Processors {
		if p.ContainsAny(predecessors) {
			out = append(out, i)
		}
	}
	return out
}

// WriteText writes one line per time slot as
// "<processor-index> <start> <completion>", the text dump format the
// original implementation used for tmp/<name>.txt.
func (s *Schedule) WriteText(w io.Writer) error {
	var b strings.Builder
	for i, p := range s.Processors {
		for _, ts := range p.TimeSlots {
			fmt.Fprintf(&b, "%d %v %v\n", i, ts.Start(), ts.Completion())
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s *Schedule) String() string {
	var b strings.Builder
	for i, p := range s.Processors {
		fmt.Fprintf(&b, "\nprocessor %d *", i)
		for _, ts := range p.TimeSlots {
			fmt.Fprintf(&b, " %s", ts)
		}
	}
	return b.String()
}
