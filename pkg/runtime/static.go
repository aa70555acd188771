package runtime

import (
	gruntime "runtime"

	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

type ctrlMsg int

const (
	ctrlReset ctrlMsg = iota
	ctrlStart
	ctrlStop
)

// Static is the worker-per-processor runtime: one goroutine per
// processor slot in a precomputed Schedule, pinned to its own OS
// thread (the nearest Go equivalent to the reference implementation's
// CPU-core affinity — Go's scheduler gives no stronger guarantee).
// Each worker holds a control channel the main goroutine uses to tell
// it Reset (a new cycle started before the worker finished the last
// one — discard stale progress) or Start, and a feedback channel it
// uses to report Done.
type Static struct {
	graph   *taskgraph.TaskGraph
	buffers *EdgeBuffers
	sink    *measure.Sink
	sched   *schedule.Schedule

	ctrl []chan ctrlMsg
	fb   []chan struct{}
}

// NewStatic spawns one worker per processor in sched and returns a
// Static ready to drive them.
func NewStatic(g *taskgraph.TaskGraph, buffers *EdgeBuffers, sched *schedule.Schedule, sink *measure.Sink) *Static {
	s := &Static{graph: g, buffers: buffers, sink: sink, sched: sched}

	n := sched.NbProcessor()
	s.ctrl = make([]chan ctrlMsg, n)
	s.fb = make([]chan struct{}, n)

	for i := 0; i < n; i++ {
		s.ctrl[i] = make(chan ctrlMsg, 2)
		s.fb[i] = make(chan struct{}, 1)
		go s.worker(i)
	}

	return s
}

func (s *Static) worker(i int) {
	gruntime.LockOSThread()

	proc := s.sched.Processors[i]
	nodes := make([]int, len(proc.TimeSlots))
	for j, ts := range proc.TimeSlots {
		nodes[j] = ts.Node()
	}

	for msg := range s.ctrl[i] {
		if msg == ctrlReset {
			continue
		}
		s.runAssignedNodes(i, nodes)
		s.fb[i] <- struct{}{}
	}
}

// runAssignedNodes executes nodes in schedule order, spinning with
// backoff until each becomes Ready. A pending Reset on the control
// channel aborts the remainder of the cycle without executing or
// skipping the node a second time: the worker simply stops, and the
// abandoned nodes will be re-driven (or re-reset) next cycle.
func (s *Static) runAssignedNodes(worker int, nodes []int) {
	for _, node := range nodes {
		bo := newBackoff()
		for s.graph.State(node).Kind != taskgraph.StateReady {
			select {
			case msg := <-s.ctrl[worker]:
				if msg == ctrlReset {
					return
				}
			default:
			}
			bo.snooze()
		}
		execNode(s.graph, s.buffers, node, s.sink, "static")
	}
}

// Start resets the graph for a new cycle, resets every worker
// (swallowing any still-in-flight cycle), binds exitBuffers to their
// driver-supplied slices, tells workers to begin, and blocks until all
// report Done.
func (s *Static) Start(exitBuffers map[int][]float32) {
	for _, c := range s.ctrl {
		c <- ctrlReset
	}

	s.graph.ResetForCycle()
	BindExitBuffers(s.graph, exitBuffers)

	for _, c := range s.ctrl {
		c <- ctrlStart
	}
	for _, f := range s.fb {
		<-f
	}
}

// Close stops every worker goroutine. Callers must not call Start
// after Close.
func (s *Static) Close() {
	for _, c := range s.ctrl {
		close(c)
	}
}
