package graphfile

import "github.com/ja7ad/audiograph/pkg/dsp"

// classKernel builds the DSP kernel for a recognized class-name,
// reading freq/volume/in/out with the given defaults when a node
// doesn't declare them. It reports false for an unrecognized className
// so the caller falls back to shapeKernel.
func classKernel(className string, nIn, nOut int, freqHz uint32, volume float32) (dsp.Kernel, bool) {
	switch className {
	case "osc":
		return dsp.NewOscillator(0, freqHz, volume), true
	case "mod":
		return dsp.NewModulator(0, freqHz, volume), true
	case "mix":
		if nIn == 0 {
			nIn = 1
		}
		if nOut == 0 {
			nOut = 1
		}
		return dsp.NewInputsOutputsAdaptor(nIn, nOut), true
	case "sink":
		sink := dsp.NewSink()
		sink.Volume = volume
		return sink, true
	default:
		return nil, false
	}
}

// shapeKernel builds the fallback DSP kernel picked purely from a
// node's inlet/outlet counts, for classes (or Pure Data objects) that
// classKernel doesn't recognize.
func shapeKernel(nIn, nOut int) dsp.Kernel {
	switch {
	case nIn == 0 && nOut == 1:
		return dsp.NewOscillator(0, 440, 1)
	case nIn == 1 && nOut == 0:
		return dsp.NewSink()
	case nIn == 1 && nOut == 1:
		return dsp.NewModulator(0, 110, 1)
	default:
		if nIn == 0 {
			nIn = 1
		}
		if nOut == 0 {
			nOut = 1
		}
		return dsp.NewInputsOutputsAdaptor(nIn, nOut)
	}
}
