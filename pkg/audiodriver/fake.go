package audiodriver

import (
	"sync"
	"time"
)

// FakeDriver is an in-memory Driver for tests: it never touches real
// hardware, and callbacks are driven explicitly via RunCycle rather
// than from a realtime thread.
type FakeDriver struct {
	mu sync.Mutex

	cfg       clientConfig
	ports     []*fakePort
	processFn ProcessFunc
	active    bool
}

type fakePort struct {
	name string
	buf  []float32
}

func (p *fakePort) Name() string                  { return p.name }
func (p *fakePort) Buffer(ProcessScope) []float32 { return p.buf }

// NewFakeClient builds a FakeDriver, ignoring the autoStart option
// (RunCycle is always explicit for a fake).
func NewFakeClient(opts ...Option) *FakeDriver {
	return &FakeDriver{cfg: newClientConfig(opts...)}
}

// RegisterOutputPorts implements Driver.
func (d *FakeDriver) RegisterOutputPorts(n int) ([]OutputPort, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ports := make([]OutputPort, n)
	d.ports = make([]*fakePort, n)
	for i := range d.ports {
		p := &fakePort{buf: make([]float32, d.cfg.bufferSize)}
		d.ports[i] = p
		ports[i] = p
	}
	return ports, nil
}

// SetProcessCallback implements Driver.
func (d *FakeDriver) SetProcessCallback(fn ProcessFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.processFn = fn
	return nil
}

// Activate implements Driver. FakeDriver performs no dispatch of its
// own; callers invoke RunCycle to drive the callback directly.
func (d *FakeDriver) Activate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return ErrAlreadyActive
	}
	d.active = true
	return nil
}

// Deactivate implements Driver.
func (d *FakeDriver) Deactivate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.active {
		return ErrNotActive
	}
	d.active = false
	return nil
}

// Close implements Driver.
func (d *FakeDriver) Close() error { return nil }

// RunCycle invokes the installed process callback once, as if one
// audio cycle had elapsed, and returns the callback's error.
func (d *FakeDriver) RunCycle() error {
	d.mu.Lock()
	fn := d.processFn
	frames := d.cfg.bufferSize
	sampleRate := d.cfg.sampleRate
	d.mu.Unlock()

	if fn == nil {
		return nil
	}

	now := time.Now()
	scope := &callbackScope{
		nFrames:  frames,
		now:      now,
		deadline: now.Add(time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))),
	}
	return fn(scope)
}

// Port returns port i's current buffer contents, for test assertions.
func (d *FakeDriver) Port(i int) []float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ports[i].buf
}
