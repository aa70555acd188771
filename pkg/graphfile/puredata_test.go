package graphfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePDBasicPatch(t *testing.T) {
	src := `
#X obj 10 10 osc~ 440
#X obj 10 40 dac~
#X connect 0 0 1 0
`
	g, err := ParsePD(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.True(t, g.HasEdge(0, 1))
}

func TestParsePDMessageBoxHasNoKernel(t *testing.T) {
	src := `
#X obj 10 10 osc~ 440
#X msg 10 40 bang
#X connect 0 0 1 0
`
	g, err := ParsePD(strings.NewReader(src))
	require.NoError(t, err)
	assert.Nil(t, g.Nodes[1].Task.Kernel)
}

func TestParsePDUnknownStatementIgnored(t *testing.T) {
	src := `
#X obj 10 10 osc~ 440
#X floatatom 10 40 5 0 0
`
	g, err := ParsePD(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())
}

func TestParsePDConnectOutOfRangeFails(t *testing.T) {
	src := `
#X obj 10 10 osc~ 440
#X connect 0 0 5 0
`
	_, err := ParsePD(strings.NewReader(src))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestParsePDRejectsMalformedLine(t *testing.T) {
	_, err := ParsePD(strings.NewReader("not a pd statement"))
	assert.ErrorIs(t, err, ErrMalformed)
}
