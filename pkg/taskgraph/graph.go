package taskgraph

import (
	"math/rand"
	"sync"
)

// edgeKey addresses one directed edge by (source, destination) node
// index.
type edgeKey struct {
	src, dst int
}

// TaskGraph is an ordered collection of Nodes plus the directed edges
// between them. Node indices are plain ints into Nodes — the "arena +
// index" idiom: every cross-component reference to a node is an index,
// never a pointer, so the graph stays trivially shareable across
// goroutines without backpointers or cycles at the type level.
//
// The graph is structurally immutable once audio execution starts: only
// Node.State mutates per cycle, via ResetForCycle, SetState and
// DecActivationCount.
type TaskGraph struct {
	Nodes []*Node
	edges map[edgeKey]*float64

	entryNodes    []int
	entryComputed bool
	exitNodes     []int
	exitComputed  bool

	SampleRate int
	BufferSize int

	// Rand and MeasurementIterations are threaded into Node.WCET calls
	// made by the graph's own queries (t/b/static-level), so that random
	// tasks draw from one graph-wide source instead of one per call.
	Rand                  *rand.Rand
	MeasurementIterations int

	// stateMu guards State/SetState/DecActivationCount. The runtimes
	// call these concurrently from multiple worker goroutines (a node's
	// predecessors may complete on different workers at the same time,
	// each decrementing that node's activation count); the
	// planners and the graph's own level computations are
	// single-goroutine and pay its cost for nothing, but it's cheap
	// enough not to bother special-casing.
	stateMu sync.Mutex
}

// New builds an empty graph sized for nodesCount nodes and edgesCount
// edges.
func New(nodesCount, edgesCount int) *TaskGraph {
	return &TaskGraph{
		Nodes: make([]*Node, 0, nodesCount),
		edges: make(map[edgeKey]*float64, edgesCount),
	}
}

// AddTask appends a new node for task and returns its index.
func (g *TaskGraph) AddTask(task Task) int {
	n := NewNode(task)
	n.SampleRate = g.SampleRate
	n.BufferSize = g.BufferSize
	g.Nodes = append(g.Nodes, n)
	g.entryComputed, g.exitComputed = false, false
	return len(g.Nodes) - 1
}

// AddEdge records a directed edge from src to dst with no communication
// cost (defaulting to 0). It reports false if either index is
// out of range.
func (g *TaskGraph) AddEdge(src, dst int) bool {
	return g.AddEdgeWithCost(src, dst, nil)
}

// AddEdgeWithCost records a directed edge from src to dst, optionally
// carrying a communication cost.
func (g *TaskGraph) AddEdgeWithCost(src, dst int, cost *float64) bool {
	if src < 0 || src >= len(g.Nodes) || dst < 0 || dst >= len(g.Nodes) {
		return false
	}

	g.Nodes[src].Successors = append(g.Nodes[src].Successors, dst)
	g.Nodes[dst].Predecessors = append(g.Nodes[dst].Predecessors, src)
	g.edges[edgeKey{src, dst}] = cost

	g.entryComputed, g.exitComputed = false, false
	return true
}

// NodeCount returns the number of nodes in the graph.
func (g *TaskGraph) NodeCount() int { return len(g.Nodes) }

// EntryNodes returns the (memoized) set of nodes with no predecessors.
func (g *TaskGraph) EntryNodes() []int {
	if !g.entryComputed {
		g.entryNodes = g.entryNodes[:0]
		for i, n := range g.Nodes {
			if len(n.Predecessors) == 0 {
				g.entryNodes = append(g.entryNodes, i)
			}
		}
		g.entryComputed = true
	}
	out := make([]int, len(g.entryNodes))
	copy(out, g.entryNodes)
	return out
}

// ExitNodes returns the (memoized) set of nodes with no successors.
func (g *TaskGraph) ExitNodes() []int {
	if !g.exitComputed {
		g.exitNodes = g.exitNodes[:0]
		for i, n := range g.Nodes {
			if len(n.Successors) == 0 {
				g.exitNodes = append(g.exitNodes, i)
			}
		}
		g.exitComputed = true
	}
	out := make([]int, len(g.exitNodes))
	copy(out, g.exitNodes)
	return out
}

// Predecessors returns node i's predecessor indices, or nil if i is out
// of range.
func (g *TaskGraph) Predecessors(i int) []int {
	if i < 0 || i >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[i].Predecessors
}

// Successors returns node i's successor indices, or nil if i is out of
// range.
func (g *TaskGraph) Successors(i int) []int {
	if i < 0 || i >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[i].Successors
}

// CommunicationCost returns the declared cost of edge (src, dst),
// defaulting to 0 when unset or absent.
func (g *TaskGraph) CommunicationCost(src, dst int) float64 {
	if cost, ok := g.edges[edgeKey{src, dst}]; ok && cost != nil {
		return *cost
	}
	return 0
}

// HasEdge reports whether (src, dst) is an edge of the graph.
func (g *TaskGraph) HasEdge(src, dst int) bool {
	_, ok := g.edges[edgeKey{src, dst}]
	return ok
}

// EdgeCount returns the number of edges in the graph.
func (g *TaskGraph) EdgeCount() int { return len(g.edges) }

// Edges invokes fn once per (src, dst) edge, in unspecified order.
func (g *TaskGraph) Edges(fn func(src, dst int)) {
	for k := range g.edges {
		fn(k.src, k.dst)
	}
}

// WCET returns node i's worst-case execution time using the graph's
// configured Rand and MeasurementIterations.
func (g *TaskGraph) WCET(i int) (float64, error) {
	return g.Nodes[i].WCET(g.Rand, g.MeasurementIterations)
}

// State returns node i's current lifecycle state.
func (g *TaskGraph) State(i int) State {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	return g.Nodes[i].State
}

// SetState overwrites node i's lifecycle state.
func (g *TaskGraph) SetState(i int, s State) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	g.Nodes[i].State = s
}

// DecActivationCount decrements node i's remaining-predecessor count. It
// reports whether this call transitioned the node to Ready.
func (g *TaskGraph) DecActivationCount(i int) bool {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	return g.Nodes[i].DecActivationCount()
}

// ResetForCycle resets every reachable node's state at the start of an
// audio cycle: entry nodes become Ready, every other node becomes
// WaitingDependencies(indegree).
func (g *TaskGraph) ResetForCycle() {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	for i, n := range g.Nodes {
		g.Nodes[i].State = WaitingDependencies(len(n.Predecessors))
	}
}

// TopologicalOrder returns a permutation of 0..NodeCount such that for
// every edge (u, v), u precedes v. It is computed by iterative
// (non-recursive) DFS from each unvisited node, pushing a post-order
// stack and reversing it.
func (g *TaskGraph) TopologicalOrder() []int {
	order := g.ReverseTopologicalOrder()
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ReverseTopologicalOrder returns the reverse of TopologicalOrder.
func (g *TaskGraph) ReverseTopologicalOrder() []int {
	visited := make([]bool, len(g.Nodes))
	// A frame is a post-order DFS frame: a node pushed whose successors
	// are not yet fully explored.
	type frame struct {
		node int
		succ int // index into Successors still to visit
	}

	stack := make([]int, 0, len(g.Nodes))
	var work []frame

	for start := range g.Nodes {
		if visited[start] {
			continue
		}
		work = append(work, frame{node: start})
		visited[start] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			succs := g.Nodes[top.node].Successors
			if top.succ < len(succs) {
				next := succs[top.succ]
				top.succ++
				if !visited[next] {
					visited[next] = true
					work = append(work, frame{node: next})
				}
				continue
			}
			stack = append(stack, top.node)
			work = work[:len(work)-1]
		}
	}

	return stack
}

// TLevel returns the longest weighted path from any entry node to n,
// excluding n's own cost.
func (g *TaskGraph) TLevel(n int) (float64, error) {
	levels, err := g.tLevels()
	if err != nil {
		return 0, err
	}
	return levels[n], nil
}

func (g *TaskGraph) tLevels() ([]float64, error) {
	order := g.TopologicalOrder()
	levels := make([]float64, len(g.Nodes))

	for _, i := range order {
		var max float64
		for _, p := range g.Nodes[i].Predecessors {
			wp, err := g.WCET(p)
			if err != nil {
				return nil, err
			}
			v := levels[p] + wp + g.CommunicationCost(p, i)
			if v > max {
				max = v
			}
		}
		levels[i] = max
	}

	return levels, nil
}

// BLevel returns the longest weighted path from n to any exit node,
// including n's own cost.
func (g *TaskGraph) BLevel(n int) (float64, error) {
	levels, err := g.bLevels(true)
	if err != nil {
		return 0, err
	}
	return levels[n], nil
}

// StaticLevel is BLevel computed while ignoring communication costs.
func (g *TaskGraph) StaticLevel(n int) (float64, error) {
	levels, err := g.bLevels(false)
	if err != nil {
		return 0, err
	}
	return levels[n], nil
}

func (g *TaskGraph) bLevels(withComm bool) ([]float64, error) {
	order := g.ReverseTopologicalOrder()
	levels := make([]float64, len(g.Nodes))

	for _, i := range order {
		var max float64
		for _, s := range g.Nodes[i].Successors {
			v := levels[s]
			if withComm {
				v += g.CommunicationCost(i, s)
			}
			if v > max {
				max = v
			}
		}
		wi, err := g.WCET(i)
		if err != nil {
			return nil, err
		}
		levels[i] = wi + max
	}

	return levels, nil
}
