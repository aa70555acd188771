package taskgraph

import (
	"time"

	"github.com/ja7ad/audiograph/pkg/dsp"
)

// measureDSPKernel invokes n.Task.Kernel `iterations` times against
// throwaway buffers sized by the node's SampleRate/BufferSize hints and
// returns the maximum observed elapsed time, in seconds.
func measureDSPKernel(n *Node, iterations int) (float64, error) {
	bufferSize := n.BufferSize
	if bufferSize <= 0 {
		bufferSize = 256
	}
	sampleRate := n.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	in := dsp.NewEdge(bufferSize, sampleRate)
	out := dsp.NewEdge(bufferSize, sampleRate)
	inputs := []*dsp.Edge{in}
	outputs := []*dsp.Edge{out}

	var max time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		n.Task.Kernel.Process(inputs, outputs)
		if elapsed := time.Since(start); elapsed > max {
			max = elapsed
		}
	}

	return max.Seconds(), nil
}
