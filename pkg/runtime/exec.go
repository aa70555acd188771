package runtime

import (
	"time"

	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// execNode runs node's kernel against its buffers, marks it Completed,
// decrements every successor's activation counter, and emits a
// measurement record. Every runtime shares it: gathering edges,
// invoking the kernel and updating lifecycle state is identical
// regardless of who decided it was this node's turn. It returns the
// successors this particular call made Ready — not merely the
// successors currently Ready, since a node with several predecessors
// could otherwise be reported Ready by more than one of them and
// dispatched twice.
func execNode(g *taskgraph.TaskGraph, buffers *EdgeBuffers, node int, sink *measure.Sink, logName string) []int {
	n := g.Nodes[node]

	g.SetState(node, taskgraph.Processing())

	if kernel := n.Task.Kernel; kernel != nil {
		start := time.Now()
		kernel.Process(buffers.InEdges(g, node), buffers.OutEdges(g, node))
		sink.Send(measure.ToFile(logName, measure.NodeExecRecord(node, time.Since(start))))
	}

	g.SetState(node, taskgraph.Completed())

	var readied []int
	for _, succ := range g.Successors(node) {
		if g.DecActivationCount(succ) {
			readied = append(readied, succ)
		}
	}
	return readied
}
