package audiodriver

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDriver is the real callback-driven backend: ports are
// de-interleaved buffers the process callback writes into, interleaved
// into PortAudio's single output array only after the callback
// returns.
type PortAudioDriver struct {
	mu sync.Mutex

	name string
	cfg  clientConfig

	stream    *portaudio.Stream
	ports     []*portAudioPort
	processFn ProcessFunc
	active    bool
}

type portAudioPort struct {
	name string
	buf  []float32
}

func (p *portAudioPort) Name() string { return p.name }

func (p *portAudioPort) Buffer(ProcessScope) []float32 { return p.buf }

type callbackScope struct {
	nFrames  int
	now      time.Time
	deadline time.Time
}

func (s *callbackScope) NFrames() int        { return s.nFrames }
func (s *callbackScope) Deadline() time.Time { return s.deadline }
func (s *callbackScope) Now() time.Time      { return s.now }

// NewPortAudioClient initializes the PortAudio library and returns a
// driver bound to the given client name. Matching the no-auto-start
// default, the returned driver dispatches no callbacks until Activate
// (or, with WithAutoStart, until SetProcessCallback completes
// registration).
func NewPortAudioClient(name string, opts ...Option) (*PortAudioDriver, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientCreationFailed, err)
	}
	return &PortAudioDriver{name: name, cfg: newClientConfig(opts...)}, nil
}

// RegisterOutputPorts implements Driver.
func (d *PortAudioDriver) RegisterOutputPorts(n int) ([]OutputPort, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stream != nil {
		return nil, fmt.Errorf("%w: ports must be registered before Activate", ErrPortRegistrationFailed)
	}

	ports := make([]OutputPort, n)
	d.ports = make([]*portAudioPort, n)
	for i := 0; i < n; i++ {
		p := &portAudioPort{
			name: fmt.Sprintf("%s:out%d", d.name, i),
			buf:  make([]float32, d.cfg.bufferSize),
		}
		d.ports[i] = p
		ports[i] = p
	}
	return ports, nil
}

// SetProcessCallback implements Driver.
func (d *PortAudioDriver) SetProcessCallback(fn ProcessFunc) error {
	d.mu.Lock()
	if d.stream != nil {
		d.mu.Unlock()
		return fmt.Errorf("audiodriver: process callback must be set before Activate")
	}
	d.processFn = fn
	autoStart := d.cfg.autoStart
	d.mu.Unlock()

	if autoStart {
		return d.Activate()
	}
	return nil
}

// callback is handed to portaudio.OpenDefaultStream; it runs on
// PortAudio's own real-time thread.
func (d *PortAudioDriver) callback(out []float32) {
	d.mu.Lock()
	ports := d.ports
	fn := d.processFn
	sampleRate := d.cfg.sampleRate
	d.mu.Unlock()

	nCh := len(ports)
	if fn == nil || nCh == 0 {
		clear(out)
		return
	}

	frames := len(out) / nCh
	now := time.Now()
	scope := &callbackScope{
		nFrames:  frames,
		now:      now,
		deadline: now.Add(time.Duration(float64(frames) / float64(sampleRate) * float64(time.Second))),
	}

	if err := fn(scope); err != nil {
		slog.Error("audiodriver: process callback failed", "err", err)
		clear(out)
		return
	}

	for f := 0; f < frames; f++ {
		for c, p := range ports {
			var s float32
			if f < len(p.buf) {
				s = p.buf[f]
			}
			out[f*nCh+c] = s
		}
	}
}

// Activate implements Driver.
func (d *PortAudioDriver) Activate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return ErrAlreadyActive
	}
	if len(d.ports) == 0 {
		return fmt.Errorf("%w: no output ports registered", ErrClientCreationFailed)
	}

	stream, err := portaudio.OpenDefaultStream(0, len(d.ports), float64(d.cfg.sampleRate), d.cfg.bufferSize, d.callback)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrClientCreationFailed, err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrClientCreationFailed, err)
	}

	d.stream = stream
	d.active = true
	return nil
}

// Deactivate implements Driver.
func (d *PortAudioDriver) Deactivate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return ErrNotActive
	}
	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("audiodriver: stop stream: %w", err)
	}
	d.active = false
	return nil
}

// Close implements Driver. The stream must already be deactivated.
func (d *PortAudioDriver) Close() error {
	d.mu.Lock()
	stream, active := d.stream, d.active
	d.mu.Unlock()

	if active {
		return fmt.Errorf("audiodriver: close called while active")
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			return fmt.Errorf("audiodriver: close stream: %w", err)
		}
	}
	return portaudio.Terminate()
}
