package planner

import (
	"math"

	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// DefaultFreshProcessorMargin is how much worse reusing an existing
// processor must be, relative to starting a fresh one, before CPFD
// pays the extra processor. The literature treats this as a tunable
// heuristic rather than a derived constant.
const DefaultFreshProcessorMargin = 0.5

type cpfdConfig struct {
	freshProcessorMargin float64
}

// Option configures CPFD.
type Option func(*cpfdConfig)

// WithFreshProcessorMargin overrides DefaultFreshProcessorMargin.
func WithFreshProcessorMargin(margin float64) Option {
	return func(c *cpfdConfig) { c.freshProcessorMargin = margin }
}

// CPFD (Critical-Path Fast Duplication) schedules the graph by walking
// a critical-path-dominant candidate order and, for each candidate,
// choosing between reusing a processor that already hosts one of its
// predecessors (possibly duplicating missing predecessors onto it to
// avoid paying communicationCost) or starting a fresh processor.
// Unlike Random/HLFET/ETF it grows the processor count on demand
// instead of accepting one up front.
func CPFD(g *taskgraph.TaskGraph, communicationCost float64, opts ...Option) (*schedule.Schedule, error) {
	cfg := cpfdConfig{freshProcessorMargin: DefaultFreshProcessorMargin}
	for _, opt := range opts {
		opt(&cfg)
	}

	setStatusWaiting(g)
	out := schedule.New()

	seq, err := cpnDominantSequence(g)
	if err != nil {
		return nil, err
	}

	for _, c := range seq {
		bestEmpty, err := optimalProc(c, schedule.NewProcessor(), communicationCost, g, out)
		if err != nil {
			return nil, err
		}

		pset := out.PSet(g.Predecessors(c))

		if len(pset) == 0 {
			out.Processors = append(out.Processors, bestEmpty)
			g.SetState(c, taskgraph.Scheduled())
			continue
		}

		var bestP *schedule.Processor
		bestPIdx := -1
		for _, p := range pset {
			cand, err := optimalProc(c, out.Processors[p], communicationCost, g, out)
			if err != nil {
				return nil, err
			}
			if bestP == nil || cand.CompletionTime() < bestP.CompletionTime() {
				bestP, bestPIdx = cand, p
			}
		}

		if bestP.CompletionTime()-bestEmpty.CompletionTime() > cfg.freshProcessorMargin {
			out.Processors = append(out.Processors, bestEmpty)
		} else {
			out.Processors[bestPIdx] = bestP
		}

		g.SetState(c, taskgraph.Scheduled())
	}

	return out, nil
}

// cpnDominantSequence interleaves the critical path with its
// supporting nodes: starting from each exit node, it recursively
// pulls in the not-yet-placed predecessor with the maximum b-level
// before appending the node itself, then appends anything left over
// (disconnected or already exhausted by the recursion) in plain
// topological order.
func cpnDominantSequence(g *taskgraph.TaskGraph) ([]int, error) {
	n := g.NodeCount()
	seq := make([]int, 0, n)
	inSeq := make([]bool, n)
	bLevel := make([]float64, n)

	for i := 0; i < n; i++ {
		v, err := g.BLevel(i)
		if err != nil {
			return nil, err
		}
		bLevel[i] = v
	}

	var add func(node int)
	add = func(node int) {
		if inSeq[node] {
			return
		}
		for {
			best := -1
			for _, p := range g.Predecessors(node) {
				if inSeq[p] {
					continue
				}
				if best == -1 || bLevel[p] > bLevel[best] {
					best = p
				}
			}
			if best == -1 {
				break
			}
			add(best)
		}
		seq = append(seq, node)
		inSeq[node] = true
	}

	for _, e := range g.ExitNodes() {
		add(e)
	}
	for _, node := range g.TopologicalOrder() {
		if !inSeq[node] {
			seq = append(seq, node)
			inSeq[node] = true
		}
	}

	return seq, nil
}

// optimalProc is CPFD's duplication kernel. It returns a working copy
// of control with candidate appended as early as legally possible,
// recursively duplicating onto the working copy any of candidate's
// predecessors missing from it when doing so doesn't push the
// predecessor's own completion past the communication-penalized start
// time it would otherwise cost to leave it remote.
func optimalProc(candidate int, control *schedule.Processor, cc float64, g *taskgraph.TaskGraph, sched *schedule.Schedule) (*schedule.Processor, error) {
	working := control.Clone()
	preds := g.Predecessors(candidate)

	start := math.Max(control.CompletionTime(), readyTime(candidate, g, sched))

	if missing := working.MissingFrom(preds); len(missing) > 0 {
		start = math.Max(control.CompletionTime(), readyTime(candidate, g, sched)+cc)

		for _, m := range missing {
			dup, err := optimalProc(m, working, cc, g, sched)
			if err != nil {
				return nil, err
			}
			if dup.CompletionTime() > start {
				continue
			}
			working = dup
			start = math.Max(control.CompletionTime(), localReadyTime(candidate, g, working, sched, cc))
		}
	}

	wcet, err := g.WCET(candidate)
	if err != nil {
		return nil, err
	}
	working.AddTimeSlot(candidate, start, start+wcet)
	return working, nil
}

// localReadyTime is readyTime but preferring, for each predecessor,
// its completion on working (no communication penalty) when present
// there, falling back to its completion on the global schedule plus
// cc when it's only available remotely.
func localReadyTime(candidate int, g *taskgraph.TaskGraph, working *schedule.Processor, sched *schedule.Schedule, cc float64) float64 {
	var t float64
	for _, p := range g.Predecessors(candidate) {
		var completion float64
		if ts, ok := working.TimeSlotOf(p); ok {
			completion = ts.Completion()
		} else if ts, ok := sched.TimeSlot(p); ok {
			completion = ts.Completion() + cc
		} else {
			continue
		}
		if completion > t {
			t = completion
		}
	}
	return t
}
