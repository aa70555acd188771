// Package dsp implements the uniform "consume N input buffers, produce M
// output buffers" contract the scheduling core uses to drive concrete DSP
// kernels, plus a handful of reference kernels (oscillator, amplitude
// modulator, inputs/outputs adaptor, sink) sufficient to run a graph
// end-to-end.
package dsp

import (
	"fmt"
	"math"
	"sync"
)

// Edge is the audio buffer owned by one graph edge: one producer writes
// it, one or more consumers read it, never both at once. The scheduling
// discipline (activation counters, or per-processor time-slot order)
// guarantees that non-overlap; Edge itself carries no lock.
type Edge struct {
	buffer     []float32
	SampleRate int
}

// NewEdge allocates a silence-filled buffer of bufferSize samples at
// sampleRate Hz.
func NewEdge(bufferSize, sampleRate int) *Edge {
	return &Edge{buffer: make([]float32, bufferSize), SampleRate: sampleRate}
}

// Buffer returns the edge's sample buffer for reading.
func (e *Edge) Buffer() []float32 { return e.buffer }

// BufferMut returns the edge's sample buffer for writing.
func (e *Edge) BufferMut() []float32 { return e.buffer }

// Len reports the buffer's sample count.
func (e *Edge) Len() int { return len(e.buffer) }

// Kernel is the contract every DSP node implements: given the edges
// flowing in and the edges flowing out, write samples into every output.
// Implementations must not block and must not allocate on Process — it
// runs on the audio thread.
type Kernel interface {
	Process(inputs, outputs []*Edge)
}

// BufferBindable is implemented by kernels whose output isn't a graph
// edge but a driver-supplied slice rebound every cycle — Sink is the
// only such kernel. Runtimes type-assert for it once per exit node at
// the start of each callback.
type BufferBindable interface {
	SetBuffer(buf []float32)
}

// Oscillator writes a sine wave at Frequency Hz and Volume gain into its
// single output edge. Phase state is mutated across calls, so Process
// holds the oscillator's own mutex while it runs.
type Oscillator struct {
	mu        sync.Mutex
	Phase     float32
	Frequency uint32
	Volume    float32
}

// NewOscillator builds an oscillator with the given starting phase,
// frequency in Hz, and linear gain.
func NewOscillator(phase float32, frequency uint32, volume float32) *Oscillator {
	return &Oscillator{Phase: phase, Frequency: frequency, Volume: volume}
}

func sineWave(phase, volume float32) float32 {
	return float32(math.Sin(float64(phase)*2*math.Pi)) * volume
}

// Process implements Kernel. Oscillator ignores its inputs (it has none)
// and writes into outputs[0].
func (o *Oscillator) Process(inputs, outputs []*Edge) {
	if len(outputs) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	out := outputs[0]
	sampleRate := out.SampleRate
	buf := out.BufferMut()
	for i := range buf {
		buf[i] = sineWave(o.Phase, o.Volume)
		o.Phase += float32(o.Frequency) / float32(sampleRate)
	}
}

// Modulator multiplies its single input by a sine wave at Frequency Hz
// and Volume gain, writing the result to its single output.
type Modulator struct {
	mu        sync.Mutex
	Phase     float32
	Frequency uint32
	Volume    float32
}

// NewModulator builds a modulator with the given starting phase,
// frequency in Hz, and linear gain.
func NewModulator(phase float32, frequency uint32, volume float32) *Modulator {
	return &Modulator{Phase: phase, Frequency: frequency, Volume: volume}
}

// Process implements Kernel.
func (m *Modulator) Process(inputs, outputs []*Edge) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	in := inputs[0]
	out := outputs[0]
	sampleRate := in.SampleRate
	inBuf := in.Buffer()
	outBuf := out.BufferMut()

	n := len(outBuf)
	if len(inBuf) < n {
		n = len(inBuf)
	}
	for i := 0; i < n; i++ {
		outBuf[i] = inBuf[i] * sineWave(m.Phase, m.Volume)
		m.Phase += float32(m.Frequency) / float32(sampleRate)
	}
}

// InputsOutputsAdaptor fans a number of input edges into a number of
// output edges: a mixer when NBOutputs < NBInputs, a splitter when
// NBOutputs > NBInputs. One count must be an integer multiple of the
// other.
type InputsOutputsAdaptor struct {
	NBInputs  int
	NBOutputs int
	stride    int
}

// NewInputsOutputsAdaptor builds an adaptor for the given input/output
// counts. It panics if neither count divides the other: a graph
// construction error, not a runtime condition.
func NewInputsOutputsAdaptor(nbInputs, nbOutputs int) *InputsOutputsAdaptor {
	if nbInputs == 0 || nbOutputs == 0 || (nbOutputs%nbInputs != 0 && nbInputs%nbOutputs != 0) {
		panic(fmt.Sprintf("dsp: InputsOutputsAdaptor(%d, %d): neither count divides the other", nbInputs, nbOutputs))
	}

	stride := nbOutputs / nbInputs
	if nbInputs > nbOutputs {
		stride = nbInputs / nbOutputs
	}

	return &InputsOutputsAdaptor{NBInputs: nbInputs, NBOutputs: nbOutputs, stride: stride}
}

func mixInto(dst []float32, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// Process implements Kernel.
func (a *InputsOutputsAdaptor) Process(inputs, outputs []*Edge) {
	if a.NBOutputs > a.NBInputs {
		for i := 0; i < a.NBInputs && i < len(inputs); i++ {
			lo := i * a.stride
			hi := lo + a.stride
			if hi > len(outputs) {
				hi = len(outputs)
			}
			for _, out := range outputs[lo:hi] {
				copy(out.BufferMut(), inputs[i].Buffer())
			}
		}
		return
	}

	for i := 0; i < a.NBOutputs && i < len(outputs); i++ {
		lo := i * a.stride
		hi := lo + a.stride
		if hi > len(inputs) {
			hi = len(inputs)
		}
		out := outputs[i].BufferMut()
		for j := range out {
			out[j] = 0
		}
		for _, in := range inputs[lo:hi] {
			mixInto(out, in.Buffer())
		}
	}
}

// Sink is the terminal node of a graph: it copies its single input into
// a driver-supplied output buffer. The output pointer is rebound at the
// start of every audio cycle (see pkg/runtime), since the driver hands
// out a fresh slice per callback.
type Sink struct {
	mu      sync.Mutex
	output  []float32
	Volume  float32
}

// NewSink builds a sink with unity gain.
func NewSink() *Sink {
	return &Sink{Volume: 1}
}

// SetBuffer rebinds the sink's output to the driver-supplied slice for
// this cycle. Must be called once per callback, before Process.
func (s *Sink) SetBuffer(buf []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = buf
}

// Process implements Kernel. Sink ignores outputs (it has none of its
// own) and writes scaled input samples into the bound driver buffer.
func (s *Sink) Process(inputs, outputs []*Edge) {
	if len(inputs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.output == nil {
		return
	}
	in := inputs[0].Buffer()
	n := len(s.output)
	if len(in) < n {
		n = len(in)
	}
	for i := 0; i < n; i++ {
		s.output[i] = in[i] * s.Volume
	}
}
