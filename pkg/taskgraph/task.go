// Package taskgraph implements the task-graph data structure that the
// planner and the runtimes share: nodes carrying a task payload and a
// cached worst-case execution time, directed edges with optional
// communication cost, and the graph-theoretic queries (topological
// order, t-level, b-level, static-level) both consumers need.
package taskgraph

import "github.com/ja7ad/audiograph/pkg/dsp"

// Kind discriminates the task payload carried by a Node. There is no
// interface hierarchy here by design: a tagged variant keeps dispatch a
// switch instead of a virtual call, matching the one payload shape a
// scheduler actually needs to reason about (does it have a WCET, and how
// is it obtained).
type Kind int

const (
	// KindConstant is a fixed, author-supplied duration.
	KindConstant Kind = iota
	// KindRandom draws a duration once, uniformly, from [Min, Max].
	KindRandom
	// KindPuredata carries a Pure Data object's identity and arguments.
	// Pure Data objects never declare a WCET of their own: with a DSP
	// kernel attached via WithKernel the WCET is measured, and without
	// one (a message box) it is DefaultAudiographWCET.
	KindPuredata
	// KindAudiograph carries an `.ag` node's declared attributes.
	KindAudiograph
)

// PuredataTask identifies a node parsed from a `.pd` patch.
type PuredataTask struct {
	ObjectName string
	X, Y       int64
	Args       []string
}

// AudiographTask identifies a node parsed from a `.ag` file, including
// its optional author-declared WCET.
type AudiographTask struct {
	WCET      *float64
	ID        string
	NBInlets  uint32
	NBOutlets uint32
	ClassName string
	Text      *string
	Volume    float32
	More      map[string]string
}

// Task is the tagged payload a Node carries. Exactly one of the
// Kind-specific fields is meaningful for a given Kind; Kernel is
// orthogonal to Kind — any task kind may additionally carry an attached
// DSP kernel, in which case WCET is measured rather than computed from
// the other fields (see Node.WCET).
type Task struct {
	Kind Kind

	Constant float64 // meaningful when Kind == KindConstant

	RandomMin float64 // meaningful when Kind == KindRandom
	RandomMax float64

	Puredata   PuredataTask   // meaningful when Kind == KindPuredata
	Audiograph AudiographTask // meaningful when Kind == KindAudiograph

	Kernel dsp.Kernel // non-nil when a DSP kernel is attached to this node
}

// NewConstant builds a constant-duration task.
func NewConstant(d float64) Task {
	return Task{Kind: KindConstant, Constant: d}
}

// NewRandom builds a task whose duration is drawn uniformly from [a, b]
// the first time its WCET is requested.
func NewRandom(a, b float64) Task {
	return Task{Kind: KindRandom, RandomMin: a, RandomMax: b}
}

// NewPuredata builds a task parsed from a `.pd` patch statement.
func NewPuredata(objectName string, x, y int64, args []string) Task {
	return Task{Kind: KindPuredata, Puredata: PuredataTask{ObjectName: objectName, X: x, Y: y, Args: args}}
}

// NewAudiograph builds a task parsed from an `.ag` node declaration.
func NewAudiograph(ag AudiographTask) Task {
	return Task{Kind: KindAudiograph, Audiograph: ag}
}

// WithKernel attaches a DSP kernel to a task, regardless of its Kind.
// The attached kernel's measured execution time takes priority over
// whatever the Kind-specific fields would otherwise produce.
func (t Task) WithKernel(k dsp.Kernel) Task {
	t.Kernel = k
	return t
}
