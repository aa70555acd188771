package runtime

import (
	"time"

	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// Sequential is the single-threaded cycle driver: one goroutine walks
// the graph in topological order every callback, with no scheduling
// decision to make beyond that fixed order.
type Sequential struct {
	graph   *taskgraph.TaskGraph
	buffers *EdgeBuffers
	sink    *measure.Sink
	order   []int
}

// NewSequential precomputes g's topological order once; RunCycle reuses
// it on every callback.
func NewSequential(g *taskgraph.TaskGraph, buffers *EdgeBuffers, sink *measure.Sink) *Sequential {
	return &Sequential{graph: g, buffers: buffers, sink: sink, order: g.TopologicalOrder()}
}

// RunCycle executes one audio callback: rebinds every exit node's sink
// output to its driver-supplied slice, resets lifecycle state for the
// new cycle, then walks the precomputed topological order running each
// node via the same execNode logic the concurrent runtimes share.
func (s *Sequential) RunCycle(exitBuffers map[int][]float32) error {
	start := time.Now()
	s.sink.Send(measure.ToFile("seq", measure.CycleStartRecord(start)))

	s.graph.ResetForCycle()
	BindExitBuffers(s.graph, exitBuffers)

	for _, node := range s.order {
		execNode(s.graph, s.buffers, node, s.sink, "seq")
	}

	return nil
}
