// Package audiodriver defines the contract the runtimes need from an
// audio backend — client construction, output port registration, a
// process callback driven once per audio cycle, and the activate/idle
// lifecycle — plus a PortAudio-backed implementation and a fake for
// tests that never touch real hardware.
package audiodriver

import (
	"bufio"
	"errors"
	"io"
	"time"
)

// ErrAlreadyActive is returned by Activate when called on a driver that
// is already dispatching callbacks.
var ErrAlreadyActive = errors.New("audiodriver: already active")

// ErrNotActive is returned by Deactivate when the driver isn't running.
var ErrNotActive = errors.New("audiodriver: not active")

// ErrPortRegistrationFailed wraps a backend's failure to allocate an
// output port.
var ErrPortRegistrationFailed = errors.New("audiodriver: port registration failed")

// ErrClientCreationFailed wraps a backend's failure to open a client.
var ErrClientCreationFailed = errors.New("audiodriver: client creation failed")

// ProcessScope is handed to the process callback once per audio cycle.
// It answers exactly the three questions a scheduler needs to decide
// whether it's keeping up: how many frames this cycle covers, when the
// cycle is due, and what time it is right now.
type ProcessScope interface {
	// NFrames is the number of samples this cycle must produce per
	// output port.
	NFrames() int
	// Deadline is the wall-clock time by which this cycle's output must
	// be ready for the backend to play it without underrun.
	Deadline() time.Time
	// Now is the wall-clock time the callback observed at entry.
	Now() time.Time
}

// OutputPort is a registered audio output. Buffer must be called once
// per cycle, inside the process callback, to obtain the mutable slice
// to write this cycle's samples into; the slice is only valid for the
// duration of the callback.
type OutputPort interface {
	Name() string
	Buffer(scope ProcessScope) []float32
}

// ProcessFunc is invoked once per audio cycle. A non-nil error does not
// stop dispatch: PortAudioDriver logs it and outputs silence for that
// cycle, and FakeDriver.RunCycle returns it to its caller.
type ProcessFunc func(scope ProcessScope) error

// Driver is the contract the runtimes consume: a client identified by
// name, a fixed set of output ports registered up front, one process
// callback, and an activate/deactivate lifecycle around it.
type Driver interface {
	// RegisterOutputPorts allocates n output ports, returned in
	// registration order.
	RegisterOutputPorts(n int) ([]OutputPort, error)
	// SetProcessCallback installs the function invoked once per audio
	// cycle. It must be called before Activate.
	SetProcessCallback(fn ProcessFunc) error
	// Activate begins callback dispatch.
	Activate() error
	// Deactivate stops callback dispatch. It returns ErrNotActive if the
	// driver is not active.
	Deactivate() error
	// Close releases the client. The driver must be deactivated first.
	Close() error
}

// Option configures client construction.
type Option func(*clientConfig)

type clientConfig struct {
	autoStart  bool
	sampleRate int
	bufferSize int
}

// WithAutoStart overrides the default no-auto-start behavior: by
// default a newly constructed client does not begin dispatching
// callbacks until Activate is called explicitly.
func WithAutoStart(autoStart bool) Option {
	return func(c *clientConfig) { c.autoStart = autoStart }
}

// WithSampleRate overrides the default 44100 Hz sample rate.
func WithSampleRate(hz int) Option {
	return func(c *clientConfig) { c.sampleRate = hz }
}

// WithBufferSize overrides the default 256-frame buffer size.
func WithBufferSize(frames int) Option {
	return func(c *clientConfig) { c.bufferSize = frames }
}

func newClientConfig(opts ...Option) clientConfig {
	cfg := clientConfig{autoStart: false, sampleRate: 44100, bufferSize: 256}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// BlockUntilEOF blocks the calling goroutine until r yields EOF — the
// supplied binaries read standard input this way, so that an active
// driver keeps dispatching callbacks until the user signals exit
// (Ctrl-D or process termination), rather than on a timer.
func BlockUntilEOF(r io.Reader) error {
	scanner := bufio.NewReader(r)
	for {
		if _, err := scanner.ReadByte(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
