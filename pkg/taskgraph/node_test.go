package taskgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWCETConstant(t *testing.T) {
	n := NewNode(NewConstant(2.5))
	v, err := n.WCET(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	cached, ok := n.CachedWCET()
	assert.True(t, ok)
	assert.Equal(t, 2.5, cached)
}

func TestWCETConstantNegativeIsError(t *testing.T) {
	n := NewNode(NewConstant(-1))
	_, err := n.WCET(nil, 0)
	assert.ErrorIs(t, err, ErrNegativeWCET)
}

func TestWCETRandomCachesDraw(t *testing.T) {
	n := NewNode(NewRandom(1, 2))
	r := rand.New(rand.NewSource(42))

	first, err := n.WCET(r, 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first, 1.0)
	assert.LessOrEqual(t, first, 2.0)

	// Second call must return the cached draw, not a fresh one, even
	// with a different source.
	second, err := n.WCET(rand.New(rand.NewSource(1)), 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWCETRandomBadIntervalIsError(t *testing.T) {
	n := NewNode(NewRandom(2, 1))
	_, err := n.WCET(nil, 0)
	assert.ErrorIs(t, err, ErrBadRandomInterval)

	n2 := NewNode(NewRandom(-1, 1))
	_, err = n2.WCET(nil, 0)
	assert.ErrorIs(t, err, ErrBadRandomInterval)
}

func TestWCETAudiographDefaultsWhenUndeclared(t *testing.T) {
	n := NewNode(NewAudiograph(AudiographTask{ID: "osc1"}))
	v, err := n.WCET(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultAudiographWCET, v)
}

func TestWCETAudiographUsesDeclaredValue(t *testing.T) {
	declared := 0.42
	n := NewNode(NewAudiograph(AudiographTask{ID: "osc1", WCET: &declared}))
	v, err := n.WCET(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, declared, v)
}

func TestDecActivationCountOnlyAffectsWaiting(t *testing.T) {
	n := NewNode(NewConstant(1))
	n.State = WaitingDependencies(2)

	n.DecActivationCount()
	assert.Equal(t, StateWaitingDependencies, n.State.Kind)
	assert.Equal(t, 1, n.State.Remaining)

	n.DecActivationCount()
	assert.Equal(t, StateReady, n.State.Kind)

	// Further decrements on a non-waiting node are no-ops.
	n.State = Completed()
	n.DecActivationCount()
	assert.Equal(t, StateCompleted, n.State.Kind)
}

func TestWaitingDependenciesZeroCollapsesToReady(t *testing.T) {
	assert.Equal(t, Ready(), WaitingDependencies(0))
}
