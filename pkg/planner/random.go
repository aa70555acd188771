package planner

import (
	"math/rand"

	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// Random is the baseline sanity-check planner: while the ready list is
// non-empty, pick a uniformly random ready node and a uniformly random
// processor, schedule it as early as that pairing allows, and mark it
// Scheduled. Useful only as a lower bar the other planners should beat.
func Random(g *taskgraph.TaskGraph, nbProcessors int, rnd *rand.Rand) (*schedule.Schedule, error) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	out := newSchedule(nbProcessors)
	setStatusWaiting(g)

	ready := g.EntryNodes()

	for len(ready) > 0 {
		idx := rnd.Intn(len(ready))
		node := ready[idx]

		proc := rnd.Intn(nbProcessors)
		procStart := out.Processors[proc].CompletionTime()

		start := procStart
		if rt := readyTime(node, g, out); rt > start {
			start = rt
		}

		wcet, err := g.WCET(node)
		if err != nil {
			return nil, err
		}

		out.Processors[proc].AddTimeSlot(node, start, start+wcet)
		g.SetState(node, taskgraph.Scheduled())

		pushReadySuccessors(node, g, func(n int) bool {
			for _, r := range ready {
				if r == n {
					return true
				}
			}
			return false
		}, func(n int) { ready = append(ready, n) })

		ready = append(ready[:idx], ready[idx+1:]...)
	}

	return out, nil
}
