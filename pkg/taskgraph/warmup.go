package taskgraph

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// WarmUp measures every node's WCET concurrently and caches the
// result, so the planner's own t-level/b-level passes (which query
// WCET node-by-node, in topological order) never pay a kernel's first
// measurement cost mid-computation. Nodes are independent to measure —
// each runs its own kernel against its own throwaway buffers — so this
// fans the whole graph's calibration out across goroutines instead of
// doing it serially the way the first scheduling pass otherwise would.
//
// A KindRandom node draws from the graph's shared Rand, which is not
// safe for concurrent use on its own, so those draws are serialized
// behind randMu while every other node's measurement proceeds in
// parallel.
//
// It waits for every measurement to finish and returns the first error
// encountered, if any; a failure does not stop the other measurements,
// and nodes that finished keep their cached WCET, since a cached WCET
// is valid independent of its siblings' success.
func (g *TaskGraph) WarmUp() error {
	var randMu sync.Mutex
	var eg errgroup.Group

	for i := range g.Nodes {
		i := i
		eg.Go(func() error {
			if g.Nodes[i].Task.Kind == KindRandom {
				randMu.Lock()
				defer randMu.Unlock()
			}
			_, err := g.WCET(i)
			return err
		})
	}
	return eg.Wait()
}
