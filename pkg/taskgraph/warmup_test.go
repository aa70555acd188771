package taskgraph

import (
	"testing"

	"github.com/ja7ad/audiograph/pkg/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmUpCachesEveryNode(t *testing.T) {
	g := New(3, 0)
	a := g.AddTask(NewConstant(0.5))
	b := g.AddTask(NewRandom(0, 1))
	c := g.AddTask(NewConstant(0).WithKernel(dsp.NewOscillator(0, 440, 1)))
	g.Rand = nil

	require.NoError(t, g.WarmUp())

	for _, i := range []int{a, b, c} {
		_, ok := g.Nodes[i].CachedWCET()
		assert.True(t, ok, "node %d should have a cached wcet after WarmUp", i)
	}
}

func TestWarmUpPropagatesMeasurementError(t *testing.T) {
	g := New(1, 0)
	g.AddTask(NewConstant(-1))

	assert.ErrorIs(t, g.WarmUp(), ErrNegativeWCET)
}
