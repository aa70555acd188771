package runtime

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/planner"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardSink() *measure.Sink {
	return measure.NewSink(slog.New(slog.DiscardHandler))
}

func diamondOf8(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	g := taskgraph.New(8, 9)
	for i := 0; i < 8; i++ {
		g.AddTask(taskgraph.NewConstant(0))
	}
	edges := [][2]int{{7, 5}, {7, 6}, {5, 2}, {5, 4}, {6, 4}, {6, 3}, {2, 1}, {3, 1}, {1, 0}}
	for _, e := range edges {
		require.True(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestWorkStealingLiveness(t *testing.T) {
	g := diamondOf8(t)
	buffers := AllocateEdgeBuffers(g, 64, 44100)
	sink := discardSink()
	defer sink.Close()

	ws := NewWorkStealing(g, buffers, sink, 4)
	defer ws.Close()

	done := make(chan struct{})
	go func() {
		ws.Start(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("work-stealing run did not complete")
	}

	for i := 0; i < g.NodeCount(); i++ {
		assert.Equal(t, taskgraph.StateCompleted, g.State(i).Kind, "node %d", i)
	}
}

func TestStaticRuntimeCompletesSchedule(t *testing.T) {
	g := diamondOf8(t)
	sched, err := planner.HLFET(g, 2)
	require.NoError(t, err)

	buffers := AllocateEdgeBuffers(g, 64, 44100)
	sink := discardSink()
	defer sink.Close()

	s := NewStatic(g, buffers, sched, sink)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.Start(nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("static run did not complete")
	}

	for i := 0; i < g.NodeCount(); i++ {
		assert.Equal(t, taskgraph.StateCompleted, g.State(i).Kind, "node %d", i)
	}
}

func TestStaticRuntimeResetCorrectness(t *testing.T) {
	g := diamondOf8(t)
	sched, err := planner.HLFET(g, 2)
	require.NoError(t, err)

	buffers := AllocateEdgeBuffers(g, 64, 44100)
	sink := discardSink()
	defer sink.Close()

	s := NewStatic(g, buffers, sched, sink)
	defer s.Close()

	for cycle := 0; cycle < 5; cycle++ {
		done := make(chan struct{})
		go func() {
			s.Start(nil)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("cycle %d did not complete", cycle)
		}

		for i := 0; i < g.NodeCount(); i++ {
			assert.Equal(t, taskgraph.StateCompleted, g.State(i).Kind, "cycle %d node %d", cycle, i)
		}
	}
}

func TestSequentialRuntimeRuns(t *testing.T) {
	g := diamondOf8(t)
	buffers := AllocateEdgeBuffers(g, 64, 44100)
	sink := discardSink()
	defer sink.Close()

	seq := NewSequential(g, buffers, sink)
	require.NoError(t, seq.RunCycle(nil))

	for i := 0; i < g.NodeCount(); i++ {
		assert.Equal(t, taskgraph.StateCompleted, g.State(i).Kind)
	}
}
