package planner

import (
	"math/rand"
	"testing"

	"github.com/ja7ad/audiograph/pkg/taskgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitGraph(nodes, edges int) *taskgraph.TaskGraph {
	g := taskgraph.New(nodes, edges)
	for i := 0; i < nodes; i++ {
		g.AddTask(taskgraph.NewConstant(1))
	}
	return g
}

func diamondOf8(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	g := unitGraph(8, 9)
	edges := [][2]int{{7, 5}, {7, 6}, {5, 2}, {5, 4}, {6, 4}, {6, 3}, {2, 1}, {3, 1}, {1, 0}}
	for _, e := range edges {
		require.True(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestDiamondOf8(t *testing.T) {
	hlfet, err := HLFET(diamondOf8(t), 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, hlfet.CompletionTime())

	etf, err := ETF(diamondOf8(t), 2)
	require.NoError(t, err)
	assert.Equal(t, 5.0, etf.CompletionTime())

	cpfd, err := CPFD(diamondOf8(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cpfd.CompletionTime())
}

func TestDiamondOf8TopologicalOrderStartsAndEndsAsExpected(t *testing.T) {
	g := diamondOf8(t)
	order := g.TopologicalOrder()
	assert.Equal(t, 7, order[0])
	assert.Equal(t, 0, order[len(order)-1])
}

func chainOf4(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	g := unitGraph(4, 3)
	require.True(t, g.AddEdge(0, 1))
	require.True(t, g.AddEdge(1, 2))
	require.True(t, g.AddEdge(2, 3))
	return g
}

func TestChainOf4(t *testing.T) {
	for _, p := range []int{1, 2, 4} {
		hlfet, err := HLFET(chainOf4(t), p)
		require.NoError(t, err)
		assert.Equal(t, 4.0, hlfet.CompletionTime())

		etf, err := ETF(chainOf4(t), p)
		require.NoError(t, err)
		assert.Equal(t, 4.0, etf.CompletionTime())
	}

	cpfd, err := CPFD(chainOf4(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cpfd.CompletionTime())
}

func fanOut(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	g := unitGraph(5, 6)
	for _, s := range []int{1, 2, 3} {
		require.True(t, g.AddEdge(0, s))
		require.True(t, g.AddEdge(s, 4))
	}
	return g
}

func TestFanOut(t *testing.T) {
	wide, err := ETF(fanOut(t), 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, wide.CompletionTime())

	narrow, err := ETF(fanOut(t), 1)
	require.NoError(t, err)
	assert.Equal(t, 5.0, narrow.CompletionTime())
}

func duplicationBenefit(t *testing.T) *taskgraph.TaskGraph {
	t.Helper()
	g := unitGraph(3, 2)
	cost := 10.0
	require.True(t, g.AddEdgeWithCost(0, 1, &cost))
	require.True(t, g.AddEdgeWithCost(0, 2, &cost))
	return g
}

func TestDuplicationBenefit(t *testing.T) {
	cpfd, err := CPFD(duplicationBenefit(t), 10)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cpfd.CompletionTime())
	assert.Equal(t, 2, cpfd.NbProcessor())

	etf, err := ETF(duplicationBenefit(t), 2)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, etf.CompletionTime(), 11.0)
}

func TestIdempotence(t *testing.T) {
	g1, g2 := diamondOf8(t), diamondOf8(t)

	h1, err := HLFET(g1, 2)
	require.NoError(t, err)
	h2, err := HLFET(g2, 2)
	require.NoError(t, err)
	assert.Equal(t, h1.CompletionTime(), h2.CompletionTime())

	e1, err := ETF(diamondOf8(t), 2)
	require.NoError(t, err)
	e2, err := ETF(diamondOf8(t), 2)
	require.NoError(t, err)
	assert.Equal(t, e1.CompletionTime(), e2.CompletionTime())

	r1, err := Random(diamondOf8(t), 2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	r2, err := Random(diamondOf8(t), 2, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, r1.CompletionTime(), r2.CompletionTime())
}

func TestQualityOrderingOnDiamond(t *testing.T) {
	g := diamondOf8(t)

	hlfet, err := HLFET(g, 2)
	require.NoError(t, err)
	etf, err := ETF(diamondOf8(t), 2)
	require.NoError(t, err)
	rnd, err := Random(diamondOf8(t), 2, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	const eps = 1e-9
	assert.LessOrEqual(t, etf.CompletionTime(), hlfet.CompletionTime()+eps)
	assert.LessOrEqual(t, hlfet.CompletionTime(), rnd.CompletionTime()+eps)
}

func TestCPFDWithZeroCostMatchesOrBeatsETF(t *testing.T) {
	cpfd, err := CPFD(diamondOf8(t), 0)
	require.NoError(t, err)
	etf, err := ETF(diamondOf8(t), 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, cpfd.CompletionTime(), etf.CompletionTime()+1e-9)
}

func TestValidateSchedule(t *testing.T) {
	g := diamondOf8(t)
	s, err := HLFET(g, 2)
	require.NoError(t, err)
	assert.True(t, IsValidSchedule(g, s))
	assert.NoError(t, ValidateSchedule(g, s))
}

func TestValidateScheduleFailsOnMissingNode(t *testing.T) {
	g := diamondOf8(t)
	s, err := HLFET(g, 2)
	require.NoError(t, err)

	s.Processors = s.Processors[:1]
	assert.Error(t, ValidateSchedule(g, s))
}
