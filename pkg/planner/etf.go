package planner

import (
	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// ETF (Earliest Time First) enumerates every (processor, ready-node)
// pair at each step and commits to the one with the smallest achievable
// start time, breaking ties toward the larger b-level.
func ETF(g *taskgraph.TaskGraph, nbProcessors int) (*schedule.Schedule, error) {
	out := newSchedule(nbProcessors)
	setStatusWaiting(g)

	ready := append([]int(nil), g.EntryNodes()...)

	for len(ready) > 0 {
		minProc := -1
		minIdx := -1
		var minStart float64
		var minBLevel float64

		for p := 0; p < nbProcessors; p++ {
			procStart := out.Processors[p].CompletionTime()

			for j, node := range ready {
				start := procStart
				if rt := readyTimeWithCost(node, g, out); rt > start {
					start = rt
				}

				bl, err := g.BLevel(node)
				if err != nil {
					return nil, err
				}

				switch {
				case minProc == -1:
					minProc, minIdx, minStart, minBLevel = p, j, start, bl
				case start < minStart:
					minProc, minIdx, minStart, minBLevel = p, j, start, bl
				case start == minStart && bl > minBLevel:
					minProc, minIdx, minStart, minBLevel = p, j, start, bl
				}
			}
		}

		node := ready[minIdx]

		wcet, err := g.WCET(node)
		if err != nil {
			return nil, err
		}

		out.Processors[minProc].AddTimeSlot(node, minStart, minStart+wcet)
		g.SetState(node, taskgraph.Scheduled())

		pushReadySuccessors(node, g, func(n int) bool {
			for _, r := range ready {
				if r == n {
					return true
				}
			}
			return false
		}, func(n int) { ready = append(ready, n) })

		ready = append(ready[:minIdx], ready[minIdx+1:]...)
	}

	return out, nil
}
