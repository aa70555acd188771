package taskgraph

import (
	"testing"

	"github.com/ja7ad/audiograph/pkg/dsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWCETDSPKernelIsMeasuredAndCached(t *testing.T) {
	n := NewNode(NewConstant(0).WithKernel(dsp.NewOscillator(0, 440, 1)))
	n.SampleRate = 44100
	n.BufferSize = 64

	v, err := n.WCET(nil, 5)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)

	cached, ok := n.CachedWCET()
	require.True(t, ok)
	assert.Equal(t, v, cached)
}

func TestWCETDSPKernelUsesInjectedMeasurer(t *testing.T) {
	old := DefaultMeasurer
	defer func() { DefaultMeasurer = old }()

	var gotIterations int
	DefaultMeasurer = func(n *Node, iterations int) (float64, error) {
		gotIterations = iterations
		return 0.25, nil
	}

	n := NewNode(NewConstant(0).WithKernel(dsp.NewOscillator(0, 440, 1)))
	v, err := n.WCET(nil, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
	assert.Equal(t, 7, gotIterations)
}
