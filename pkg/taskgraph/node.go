package taskgraph

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrNegativeWCET is returned when a constant or structured task
// declares a negative duration: input corruption no algorithm can
// compensate for.
var ErrNegativeWCET = errors.New("taskgraph: negative wcet")

// ErrBadRandomInterval is returned when a random task's interval is
// malformed (a < 0, or b < a).
var ErrBadRandomInterval = errors.New("taskgraph: malformed random interval")

// DefaultAudiographWCET is used for `.ag` nodes with no declared WCET.
// It must stay nonzero: a zero WCET breaks CPFD by making duplication
// free for every candidate.
const DefaultAudiographWCET = 0.1

// DefaultMeasurementIterations is how many times a DSP-bearing node's
// kernel is invoked against throwaway buffers to estimate its WCET.
const DefaultMeasurementIterations = 50

// Node is a vertex of a TaskGraph: a task payload, a cached WCET, a
// lifecycle state, and the adjacency this node participates in.
// Predecessors/Successors are maintained by TaskGraph.AddEdge, never
// mutated directly.
type Node struct {
	Task  Task
	wcet  *float64
	State State

	Predecessors []int
	Successors   []int

	// SampleRate and BufferSize are hints filled in by the graph (or its
	// parser) before the first WCET query of a DSP-bearing node; they
	// size the throwaway measurement buffers.
	SampleRate int
	BufferSize int
}

// NewNode builds a Node for the given task, starting in
// WaitingDependencies(0) (collapsed to Ready) until the owning graph
// resets it to reflect real in-degree.
func NewNode(task Task) *Node {
	return &Node{Task: task, State: Ready()}
}

// Measurer is the function a DSP-bearing node's WCET estimation
// delegates to. Production code measures by invoking the kernel on
// silence buffers; tests can substitute a deterministic stand-in.
type Measurer func(n *Node, iterations int) (float64, error)

// DefaultMeasurer runs the attached kernel `iterations` times against a
// fresh pair of throwaway input/output buffers and returns the maximum
// observed elapsed time, in the same time unit the rest of the graph
// uses (seconds).
var DefaultMeasurer Measurer = measureKernel

// WCET returns the node's worst-case execution time, computing and
// caching it on first call. rnd supplies the draw for random tasks;
// pass nil to use the package-level default source. iterations controls
// DSP-kernel measurement repetitions; pass 0 to use
// DefaultMeasurementIterations.
func (n *Node) WCET(rnd *rand.Rand, iterations int) (float64, error) {
	if n.wcet != nil {
		return *n.wcet, nil
	}
	if iterations <= 0 {
		iterations = DefaultMeasurementIterations
	}

	if n.Task.Kernel != nil {
		v, err := DefaultMeasurer(n, iterations)
		if err != nil {
			return 0, err
		}
		n.wcet = &v
		return v, nil
	}

	switch n.Task.Kind {
	case KindConstant:
		if n.Task.Constant < 0 {
			return 0, fmt.Errorf("taskgraph: constant task wcet %g: %w", n.Task.Constant, ErrNegativeWCET)
		}
		v := n.Task.Constant
		n.wcet = &v
		return v, nil

	case KindRandom:
		a, b := n.Task.RandomMin, n.Task.RandomMax
		if a < 0 || b < a {
			return 0, fmt.Errorf("taskgraph: random task [%g,%g]: %w", a, b, ErrBadRandomInterval)
		}
		if rnd == nil {
			rnd = rand.New(rand.NewSource(rand.Int63()))
		}
		v := a + rnd.Float64()*(b-a)
		n.wcet = &v
		return v, nil

	case KindAudiograph:
		if n.Task.Audiograph.WCET != nil {
			v := *n.Task.Audiograph.WCET
			if v < 0 {
				return 0, fmt.Errorf("taskgraph: audiograph task %q wcet %g: %w", n.Task.Audiograph.ID, v, ErrNegativeWCET)
			}
			n.wcet = &v
			return v, nil
		}
		v := DefaultAudiographWCET
		n.wcet = &v
		return v, nil

	case KindPuredata:
		// A bare Pure Data object with no attached kernel has no
		// intrinsic cost; treat it like an undeclared audiograph task.
		v := DefaultAudiographWCET
		n.wcet = &v
		return v, nil

	default:
		return 0, fmt.Errorf("taskgraph: unknown task kind %d", n.Task.Kind)
	}
}

// CachedWCET returns the cached WCET and whether one has been computed
// yet, without triggering measurement.
func (n *Node) CachedWCET() (float64, bool) {
	if n.wcet == nil {
		return 0, false
	}
	return *n.wcet, true
}

// DecActivationCount decrements the node's remaining-predecessor count,
// transitioning it to Ready once it reaches zero. States other than
// WaitingDependencies are left untouched — this is the sole
// edge-completion signal the runtimes use. It reports whether this call
// is the one that made the transition to Ready, so a caller driving
// several predecessors of the same node concurrently can tell which of
// them — exactly one — is responsible for dispatching it next.
func (n *Node) DecActivationCount() bool {
	if n.State.Kind != StateWaitingDependencies {
		return false
	}
	n.State.Remaining--
	if n.State.Remaining <= 0 {
		n.State = Ready()
		return true
	}
	return false
}

func measureKernel(n *Node, iterations int) (float64, error) {
	// Measurement delegates to pkg/dsp buffers sized by the node's
	// sample-rate/buffer-size hints; taskgraph only owns the timing
	// loop to avoid a dependency from pkg/dsp back onto taskgraph.
	return measureDSPKernel(n, iterations)
}
