package runtime

import (
	gruntime "runtime"

	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// WorkStealing is the dynamic dispatch runtime: nbWorkers goroutines
// each own a LIFO deque of ready nodes, draining their own work first,
// then the shared injector, then stealing from a sibling's deque
// before going idle. There is no precomputed placement — a node is
// run by whichever worker happens to pop it.
type WorkStealing struct {
	graph   *taskgraph.TaskGraph
	buffers *EdgeBuffers
	sink    *measure.Sink

	injector *deque
	workers  []*deque

	ctrl []chan ctrlMsg
	fb   []chan struct{}
}

// NewWorkStealing spawns nbWorkers worker goroutines, each pinned to
// its own OS thread, idle until the first Start.
func NewWorkStealing(g *taskgraph.TaskGraph, buffers *EdgeBuffers, sink *measure.Sink, nbWorkers int) *WorkStealing {
	ws := &WorkStealing{
		graph:    g,
		buffers:  buffers,
		sink:     sink,
		injector: newDeque(),
		workers:  make([]*deque, nbWorkers),
		ctrl:     make([]chan ctrlMsg, nbWorkers),
		fb:       make([]chan struct{}, nbWorkers),
	}

	for i := 0; i < nbWorkers; i++ {
		ws.workers[i] = newDeque()
		ws.ctrl[i] = make(chan ctrlMsg, 2)
		ws.fb[i] = make(chan struct{}, 1)
		go ws.worker(i)
	}

	return ws
}

func (ws *WorkStealing) worker(i int) {
	gruntime.LockOSThread()

	own := ws.workers[i]
	bo := newBackoff()
	init := true

	for {
		if node, ok := own.popBack(); ok {
			ws.execAndEnqueue(node, own)
			bo.reset()
			continue
		}

		if node, ok := ws.injector.stealFront(); ok {
			ws.execAndEnqueue(node, own)
			bo.reset()
			continue
		}

		if node, ok := ws.stealFromSibling(i); ok {
			ws.execAndEnqueue(node, own)
			bo.reset()
			continue
		}

		if !ws.allEmpty() {
			bo.snooze()
			continue
		}

		if !init {
			ws.fb[i] <- struct{}{}
		}
		init = false

		msg, ok := <-ws.ctrl[i]
		if !ok || msg == ctrlStop {
			return
		}
	}
}

func (ws *WorkStealing) stealFromSibling(self int) (int, bool) {
	for j := range ws.workers {
		if j == self {
			continue
		}
		if node, ok := ws.workers[j].stealFront(); ok {
			return node, true
		}
	}
	return 0, false
}

func (ws *WorkStealing) allEmpty() bool {
	if !ws.injector.isEmpty() {
		return false
	}
	for _, w := range ws.workers {
		if !w.isEmpty() {
			return false
		}
	}
	return true
}

// execAndEnqueue runs node and pushes onto own every successor that
// became Ready as a result — the sole mechanism by which work spreads
// across the pool; a successor with more than one predecessor is only
// ever pushed by whichever predecessor's completion drove its
// activation count to zero, never by more than one of them.
func (ws *WorkStealing) execAndEnqueue(node int, own *deque) {
	for _, succ := range execNode(ws.graph, ws.buffers, node, ws.sink, "ws") {
		own.pushBack(succ)
	}
}

// Start resets the graph for a new cycle, binds exitBuffers to their
// driver-supplied slices, seeds the injector with the graph's entry
// nodes, and blocks until every worker reports the queue system has
// drained.
func (ws *WorkStealing) Start(exitBuffers map[int][]float32) {
	ws.graph.ResetForCycle()
	BindExitBuffers(ws.graph, exitBuffers)

	for _, n := range ws.graph.EntryNodes() {
		ws.injector.pushBack(n)
	}

	for _, c := range ws.ctrl {
		c <- ctrlStart
	}
	for _, f := range ws.fb {
		<-f
	}
}

// Close stops every worker goroutine. Callers must not call Start
// after Close.
func (ws *WorkStealing) Close() {
	for _, c := range ws.ctrl {
		c <- ctrlStop
		close(c)
	}
}
