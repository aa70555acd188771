// Package measure implements the runtimes' logging sink: a background
// goroutine that drains a channel of records and appends them to
// per-runtime log files under tmp/, plus a DOT exporter for visualizing
// a task graph. Neither concern belongs on the audio thread, so both
// runtimes hand off work through a channel instead of writing directly.
package measure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// Destination is one record to be persisted: either a line for a named
// log file, or a line forwarded to the process's structured logger.
type Destination struct {
	File string // empty means "log via slog instead of a file"
	Line string
}

// ToFile builds a Destination that appends line to tmp/<name>_log.txt.
func ToFile(name, line string) Destination {
	return Destination{File: filepath.Join("tmp", name+"_log.txt"), Line: line}
}

// ToLog builds a Destination forwarded to the structured logger.
func ToLog(line string) Destination {
	return Destination{Line: line}
}

// Sink owns the open log files a runtime writes to and drains a
// channel of Destinations until it's closed.
type Sink struct {
	ch    chan Destination
	files map[string]io.WriteCloser
	done  chan struct{}
	log   *slog.Logger
}

// NewSink starts the background goroutine that drains records sent on
// the returned Sink's channel.
func NewSink(log *slog.Logger) *Sink {
	if log == nil {
		log = slog.Default()
	}
	s := &Sink{
		ch:    make(chan Destination, 256),
		files: make(map[string]io.WriteCloser),
		done:  make(chan struct{}),
		log:   log,
	}
	go s.run()
	return s
}

// Send enqueues a record. It never blocks the caller past the channel's
// buffer: callers on the audio thread should prefer a buffered Sink and
// treat Send as fire-and-forget.
func (s *Sink) Send(d Destination) {
	select {
	case s.ch <- d:
	default:
		s.log.Warn("measure: dropping record, sink channel full")
	}
}

// Close stops accepting new records and waits for the drain goroutine
// to flush and close every open file.
func (s *Sink) Close() error {
	close(s.ch)
	<-s.done
	var firstErr error
	for _, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Sink) run() {
	defer close(s.done)
	for d := range s.ch {
		if d.File == "" {
			s.log.Info(d.Line)
			continue
		}
		if err := s.writeFile(d.File, d.Line); err != nil {
			s.log.Warn("measure: write failed", "file", d.File, "err", err)
		}
	}
}

func (s *Sink) writeFile(path, line string) error {
	f, ok := s.files[path]
	if !ok {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		opened, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		s.files[path] = opened
		f = opened
	}
	_, err := io.WriteString(f, line+"\n")
	return err
}

// CycleStartRecord formats the per-cycle header record the runtimes
// emit at the start of every audio callback.
func CycleStartRecord(at time.Time) string {
	return fmt.Sprintf("begin cycle at %s", at.Format(time.RFC3339Nano))
}

// NodeExecRecord formats a per-node execution record.
func NodeExecRecord(node int, elapsed time.Duration) string {
	return fmt.Sprintf("node %d executed in %s", node, elapsed)
}

// WriteDOT renders g as a Graphviz DOT digraph, one node per line with
// its cached WCET (if any) as a label, and one edge per directed edge.
func WriteDOT(g *taskgraph.TaskGraph, w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph audiograph {"); err != nil {
		return err
	}
	for i := 0; i < g.NodeCount(); i++ {
		label := fmt.Sprintf("n%d", i)
		if wcet, ok := g.Nodes[i].CachedWCET(); ok {
			label = fmt.Sprintf("n%d [%.4g]", i, wcet)
		}
		if _, err := fmt.Fprintf(w, "  %d [label=\"%s\"];\n", i, label); err != nil {
			return err
		}
	}

	var writeErr error
	g.Edges(func(src, dst int) {
		if writeErr != nil {
			return
		}
		_, writeErr = fmt.Fprintf(w, "  %d -> %d;\n", src, dst)
	})
	if writeErr != nil {
		return writeErr
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
