package planner

import (
	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// HLFET (Highest Level First with Estimated Times) keeps a ready list
// keyed by node -> b-level. At each step it places the node with the
// highest b-level (ties broken by successor count, most first) onto
// whichever processor frees up soonest.
func HLFET(g *taskgraph.TaskGraph, nbProcessors int) (*schedule.Schedule, error) {
	out := newSchedule(nbProcessors)
	setStatusWaiting(g)

	ready := make(map[int]float64)
	for _, n := range g.EntryNodes() {
		bl, err := g.BLevel(n)
		if err != nil {
			return nil, err
		}
		ready[n] = bl
	}

	for len(ready) > 0 {
		node := maxBLevelTieBySuccessors(ready, g)

		chosen := 0
		chosenStart := out.Processors[0].CompletionTime()
		for i := 1; i < nbProcessors; i++ {
			s := out.Processors[i].CompletionTime()
			if s < chosenStart {
				chosen, chosenStart = i, s
			}
		}

		start := chosenStart
		if rt := readyTime(node, g, out); rt > start {
			start = rt
		}

		wcet, err := g.WCET(node)
		if err != nil {
			return nil, err
		}

		out.Processors[chosen].AddTimeSlot(node, start, start+wcet)
		g.SetState(node, taskgraph.Scheduled())

		pushReadySuccessors(node, g, func(n int) bool {
			_, ok := ready[n]
			return ok
		}, func(n int) {
			bl, err := g.BLevel(n)
			if err == nil {
				ready[n] = bl
			}
		})

		delete(ready, node)
	}

	return out, nil
}

// maxBLevelTieBySuccessors returns the node with the largest b-level in
// ready, breaking ties in favor of the node with more successors
// ("Most Immediate Successors First").
func maxBLevelTieBySuccessors(ready map[int]float64, g *taskgraph.TaskGraph) int {
	out := -1
	for node, bl := range ready {
		if out == -1 {
			out = node
			continue
		}
		switch {
		case bl == ready[out]:
			if len(g.Successors(node)) > len(g.Successors(out)) {
				out = node
			}
		case bl > ready[out]:
			out = node
		}
	}
	return out
}
