package planner

import (
	"fmt"

	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// wcetTolerance is the slack allowed between a node's declared WCET
// and the duration of the time slot a planner gave it.
const wcetTolerance = 40e-6

// ValidateSchedule checks that s is a legal placement for g: every node
// has a time slot, every slot's duration matches the node's WCET within
// wcetTolerance, and every predecessor of a scheduled node was itself
// scheduled. It does not re-check time ordering — planners enforce that
// at construction via Processor.AddTimeSlot.
func ValidateSchedule(g *taskgraph.TaskGraph, s *schedule.Schedule) error {
	for i := 0; i < g.NodeCount(); i++ {
		ts, ok := s.TimeSlot(i)
		if !ok {
			return fmt.Errorf("planner: node %d has no time slot", i)
		}

		wcet, err := g.WCET(i)
		if err != nil {
			return fmt.Errorf("planner: node %d: %w", i, err)
		}

		duration := ts.Completion() - ts.Start()
		diff := duration - wcet
		if diff < 0 {
			diff = -diff
		}
		if diff > wcetTolerance {
			return fmt.Errorf("planner: node %d: slot duration %g does not match wcet %g within %g tolerance", i, duration, wcet, wcetTolerance)
		}

		for _, p := range g.Predecessors(i) {
			if _, ok := s.TimeSlot(p); !ok {
				return fmt.Errorf("planner: node %d: predecessor %d has no time slot", i, p)
			}
		}
	}

	return nil
}

// IsValidSchedule reports whether s is a legal placement for g, per
// ValidateSchedule.
func IsValidSchedule(g *taskgraph.TaskGraph, s *schedule.Schedule) bool {
	return ValidateSchedule(g, s) == nil
}
