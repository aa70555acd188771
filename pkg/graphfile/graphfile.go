// Package graphfile parses the two text formats the runtimes accept as
// graph input — the native `.ag` audio-graph format and Pure Data's
// `.pd` patch format — into a *taskgraph.TaskGraph with DSP kernels
// already attached, ready for a planner or the sequential runtime to
// run directly.
package graphfile

import (
	"errors"
	"fmt"

	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// ErrMalformed is wrapped by every parse failure caused by malformed
// text: a line that is neither a recognized statement nor
// blank/comment, or a statement with bad fields. References to
// undeclared nodes wrap ErrUnknownNode instead.
var ErrMalformed = errors.New("graphfile: malformed input")

// ErrUnknownNode is returned when an edge or connect statement
// references a node name or index that was never declared.
var ErrUnknownNode = errors.New("graphfile: reference to undeclared node")

// builder accumulates declared nodes and pending edges before
// committing them to a *taskgraph.TaskGraph — both parsers share it so
// that node-name resolution lives in one place. DSP kernels are
// attached by each parser before a node is declared.
type builder struct {
	order   []string
	byName  map[string]int
	nodes   map[string]taskgraph.Task
	sampleR int
	bufSize int
}

func newBuilder(sampleRate, bufferSize int) *builder {
	return &builder{
		byName:  make(map[string]int),
		nodes:   make(map[string]taskgraph.Task),
		sampleR: sampleRate,
		bufSize: bufferSize,
	}
}

func (b *builder) declare(name string, task taskgraph.Task) {
	if _, exists := b.byName[name]; exists {
		b.nodes[name] = task
		return
	}
	b.byName[name] = len(b.order)
	b.order = append(b.order, name)
	b.nodes[name] = task
}

func (b *builder) index(name string) (int, bool) {
	i, ok := b.byName[name]
	return i, ok
}

// ensure returns ErrUnknownNode if name hasn't been declared yet; it
// declares nothing. Pure Data connect statements may reference objects by
// the order they were declared, so by the time edges are processed
// every referenced node already exists; ensure exists only to give a
// clear ErrUnknownNode instead of a panic on malformed input.
func (b *builder) ensure(name string) error {
	if _, ok := b.byName[name]; !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownNode)
	}
	return nil
}

type pendingEdge struct {
	src, dst string
	cost     *float64
}

func (b *builder) build(edges []pendingEdge) (*taskgraph.TaskGraph, error) {
	g := taskgraph.New(len(b.order), len(edges))
	g.SampleRate = b.sampleR
	g.BufferSize = b.bufSize

	for _, name := range b.order {
		g.AddTask(b.nodes[name])
	}

	for _, e := range edges {
		src, ok := b.index(e.src)
		if !ok {
			return nil, fmt.Errorf("%s: %w", e.src, ErrUnknownNode)
		}
		dst, ok := b.index(e.dst)
		if !ok {
			return nil, fmt.Errorf("%s: %w", e.dst, ErrUnknownNode)
		}
		if !g.AddEdgeWithCost(src, dst, e.cost) {
			return nil, fmt.Errorf("graphfile: edge %s -> %s: %w", e.src, e.dst, ErrMalformed)
		}
	}

	return g, nil
}
