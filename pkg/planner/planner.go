// Package planner implements the offline static-scheduling algorithms:
// Random, HLFET, ETF and CPFD. Each one consumes a *taskgraph.TaskGraph
// (Random, HLFET and ETF also a processor count; CPFD adds processors
// as it goes) and produces a *schedule.Schedule, mutating only
// node lifecycle states (Scheduled) as bookkeeping — never the graph's
// structure.
package planner

import (
	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// readyTime returns the time at which every predecessor of node will
// have completed, i.e. the earliest legal start time ignoring
// communication cost and processor availability. Entry nodes (no
// predecessors) are ready at time 0. This matches the "connection time
// overlooked" simplification Random and HLFET inherit from the
// reference implementation; CPFD's optimal_proc uses this as its
// uncharged baseline and adds its own explicit communication penalty
// when duplicating across processors.
func readyTime(node int, g *taskgraph.TaskGraph, sched *schedule.Schedule) float64 {
	var t float64
	for _, p := range g.Predecessors(node) {
		ts, ok := sched.TimeSlot(p)
		if !ok {
			continue
		}
		if ts.Completion() > t {
			t = ts.Completion()
		}
	}
	return t
}

// readyTimeWithCost is readyTime but additionally charges each edge's
// declared communication cost. ETF, unlike Random/HLFET, is meant to
// expose the cost of ignoring inter-processor traffic — it is the
// baseline CPFD's duplication is judged against — so it is the one
// list algorithm that prices communication into its start-time
// estimate.
func readyTimeWithCost(node int, g *taskgraph.TaskGraph, sched *schedule.Schedule) float64 {
	var t float64
	for _, p := range g.Predecessors(node) {
		ts, ok := sched.TimeSlot(p)
		if !ok {
			continue
		}
		if v := ts.Completion() + g.CommunicationCost(p, node); v > t {
			t = v
		}
	}
	return t
}

// setStatusWaiting resets every node reachable from the entry set to
// WaitingDependencies(indegree), mirroring TaskGraph.ResetForCycle but
// expressed as a reachability walk so unreachable nodes (if any) are
// left untouched, matching the planner's own traversal in the source
// material.
func setStatusWaiting(g *taskgraph.TaskGraph) {
	todo := g.EntryNodes()
	seen := make(map[int]bool, g.NodeCount())

	for len(todo) > 0 {
		node := todo[0]
		todo = todo[1:]
		if seen[node] {
			continue
		}
		seen[node] = true

		indeg := len(g.Predecessors(node))
		g.SetState(node, taskgraph.WaitingDependencies(indeg))

		todo = append(todo, g.Successors(node)...)
	}
}

// arePredReady reports whether every predecessor of node has already
// been placed (Scheduled) by the planner.
func arePredReady(node int, g *taskgraph.TaskGraph) bool {
	for _, p := range g.Predecessors(node) {
		if g.State(p).Kind != taskgraph.StateScheduled {
			return false
		}
	}
	return true
}

// newSchedule builds a Schedule with nbProcessors empty processors.
func newSchedule(nbProcessors int) *schedule.Schedule {
	s := schedule.New()
	for i := 0; i < nbProcessors; i++ {
		s.AddProcessor()
	}
	return s
}

// pushReadySuccessors appends to ready any successor of node whose
// predecessors are now all Scheduled and that is not already present,
// per the presence check fn.
func pushReadySuccessors(node int, g *taskgraph.TaskGraph, contains func(int) bool, push func(int)) {
	for _, s := range g.Successors(node) {
		if !contains(s) && arePredReady(s, g) {
			push(s)
		}
	}
}
