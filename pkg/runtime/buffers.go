// Package runtime implements the three ways a built task graph can
// actually be driven during an audio cycle: a single-threaded walk
// (Sequential), a worker-per-processor executor following a
// precomputed schedule (Static), and a dynamic work-stealing pool
// (WorkStealing). All three share the same edge-buffer allocation and
// the graph's activation-counter protocol; they differ only in how
// they decide which worker runs which node when.
package runtime

import (
	"github.com/ja7ad/audiograph/pkg/dsp"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

type edgeKey struct{ src, dst int }

// EdgeBuffers maps every graph edge to the one audio buffer it owns for
// the lifetime of the runtime.
type EdgeBuffers struct {
	buffers map[edgeKey]*dsp.Edge
}

// AllocateEdgeBuffers builds one buffer per edge of g, sized
// (bufferSize, sampleRate).
func AllocateEdgeBuffers(g *taskgraph.TaskGraph, bufferSize, sampleRate int) *EdgeBuffers {
	eb := &EdgeBuffers{buffers: make(map[edgeKey]*dsp.Edge, g.EdgeCount())}
	g.Edges(func(src, dst int) {
		eb.buffers[edgeKey{src, dst}] = dsp.NewEdge(bufferSize, sampleRate)
	})
	return eb
}

// Get returns the buffer for edge (src, dst), or nil if none exists.
func (eb *EdgeBuffers) Get(src, dst int) *dsp.Edge {
	return eb.buffers[edgeKey{src, dst}]
}

// InEdges gathers node's incoming buffers in predecessor order.
func (eb *EdgeBuffers) InEdges(g *taskgraph.TaskGraph, node int) []*dsp.Edge {
	preds := g.Predecessors(node)
	out := make([]*dsp.Edge, len(preds))
	for i, p := range preds {
		out[i] = eb.Get(p, node)
	}
	return out
}

// OutEdges gathers node's outgoing buffers in successor order.
func (eb *EdgeBuffers) OutEdges(g *taskgraph.TaskGraph, node int) []*dsp.Edge {
	succs := g.Successors(node)
	out := make([]*dsp.Edge, len(succs))
	for i, s := range succs {
		out[i] = eb.Get(node, s)
	}
	return out
}

// BindExitBuffers rebinds every node in exitBuffers to its
// driver-supplied output slice for this cycle, via the
// dsp.BufferBindable interface — only Sink implements it. Every
// runtime calls this once per cycle, before dispatching any node, so a
// worker that reaches an exit node mid-cycle always finds the current
// cycle's buffer already bound.
func BindExitBuffers(g *taskgraph.TaskGraph, exitBuffers map[int][]float32) {
	for node, buf := range exitBuffers {
		kernel := g.Nodes[node].Task.Kernel
		if bindable, ok := kernel.(dsp.BufferBindable); ok {
			bindable.SetBuffer(buf)
		}
	}
}
