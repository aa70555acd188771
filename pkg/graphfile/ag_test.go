package graphfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAGBasicChain(t *testing.T) {
	src := `
osc1 = { in: 0, out: 1, kind: osc, freq: 220, volume: 0.8 }
mod1 = { in: 1, out: 1, kind: mod, freq: 5 }
sink1 = { in: 1, out: 0, kind: sink }
deadline: 0.005
osc1.0 -> mod1.0 -> sink1.0
`
	g, err := ParseAG(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.True(t, g.HasEdge(0, 1))
	assert.True(t, g.HasEdge(1, 2))
}

func TestParseAGUnknownClassFallsBackToShape(t *testing.T) {
	src := `a = { in: 0, out: 1, kind: widget }`
	g, err := ParseAG(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 1, g.NodeCount())
}

func TestParseAGRejectsMalformedLine(t *testing.T) {
	_, err := ParseAG(strings.NewReader("this is not a statement"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseAGRejectsUnknownEdgeEndpoint(t *testing.T) {
	src := `
a = { in: 0, out: 1, kind: osc }
a.0 -> b.0
`
	_, err := ParseAG(strings.NewReader(src))
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestParseAGExtraAttributesPreserved(t *testing.T) {
	src := `a = { in: 0, out: 1, kind: osc, text: "lead", custom: 42 }`
	g, err := ParseAG(strings.NewReader(src))
	require.NoError(t, err)
	ag := g.Nodes[0].Task.Audiograph
	require.NotNil(t, ag.Text)
	assert.Equal(t, "lead", *ag.Text)
	assert.Equal(t, "42", ag.More["custom"])
}
