package audiodriver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeDriverRunCycleInvokesCallback(t *testing.T) {
	d := NewFakeClient(WithBufferSize(8), WithSampleRate(48000))
	ports, err := d.RegisterOutputPorts(1)
	require.NoError(t, err)

	var gotFrames int
	require.NoError(t, d.SetProcessCallback(func(scope ProcessScope) error {
		gotFrames = scope.NFrames()
		buf := ports[0].Buffer(scope)
		for i := range buf {
			buf[i] = 1
		}
		return nil
	}))

	require.NoError(t, d.Activate())
	require.NoError(t, d.RunCycle())

	assert.Equal(t, 8, gotFrames)
	for _, s := range d.Port(0) {
		assert.Equal(t, float32(1), s)
	}
}

func TestFakeDriverActivateTwiceFails(t *testing.T) {
	d := NewFakeClient()
	require.NoError(t, d.Activate())
	assert.ErrorIs(t, d.Activate(), ErrAlreadyActive)
}

func TestFakeDriverDeactivateWithoutActivateFails(t *testing.T) {
	d := NewFakeClient()
	assert.ErrorIs(t, d.Deactivate(), ErrNotActive)
}

func TestBlockUntilEOFReturnsOnEOF(t *testing.T) {
	err := BlockUntilEOF(strings.NewReader("hello\nworld\n"))
	assert.NoError(t, err)
}
