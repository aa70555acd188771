package graphfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// DefaultSampleRate and DefaultBufferSize size the DSP buffers used to
// measure a kernel's WCET when an `.ag` node attaches one; they are
// overridden by ParseAGWithFormat for callers that know the real
// driver's settings up front.
const (
	DefaultSampleRate = 44100
	DefaultBufferSize = 256
)

// ParseAGFile reads and parses an `.ag` file at path.
func ParseAGFile(path string) (*taskgraph.TaskGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphfile: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseAG(f)
}

// ParseAG parses the `.ag` audio-graph text format from r: node
// declarations `name = { attr: value, ... }`, edge chains
// `a.port -> b.port -> c.port`, and a `deadline <value>` directive that
// is recognized and discarded — the core has no notion of a global
// deadline, only per-cycle timing supplied by the driver.
func ParseAG(r io.Reader) (*taskgraph.TaskGraph, error) {
	return ParseAGWithFormat(r, DefaultSampleRate, DefaultBufferSize)
}

// ParseAGWithFormat is ParseAG with an explicit sample rate and buffer
// size, used when the caller already knows the driver's audio format.
func ParseAGWithFormat(r io.Reader, sampleRate, bufferSize int) (*taskgraph.TaskGraph, error) {
	b := newBuilder(sampleRate, bufferSize)
	var edges []pendingEdge

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(strings.ToLower(line), "deadline"):
			// parsed but ignored by the core
			continue

		case strings.Contains(line, "->"):
			chain, err := parseAGEdgeChain(line)
			if err != nil {
				return nil, err
			}
			edges = append(edges, chain...)

		case strings.Contains(line, "="):
			name, task, err := parseAGNode(line)
			if err != nil {
				return nil, err
			}
			b.declare(name, task)

		default:
			return nil, fmt.Errorf("graphfile: %q: %w", line, ErrMalformed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graphfile: scan: %w", err)
	}

	return b.build(edges)
}

func parseAGEdgeChain(line string) ([]pendingEdge, error) {
	parts := strings.Split(line, "->")
	if len(parts) < 2 {
		return nil, fmt.Errorf("graphfile: %q: %w", line, ErrMalformed)
	}

	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = agNodeName(p)
		if names[i] == "" {
			return nil, fmt.Errorf("graphfile: %q: %w", line, ErrMalformed)
		}
	}

	edges := make([]pendingEdge, 0, len(names)-1)
	for i := 0; i < len(names)-1; i++ {
		edges = append(edges, pendingEdge{src: names[i], dst: names[i+1]})
	}
	return edges, nil
}

// agNodeName strips the ".port" suffix a chain endpoint may carry —
// ports are discarded, only the node identity matters to the graph.
func agNodeName(token string) string {
	token = strings.TrimSpace(token)
	if i := strings.Index(token, "."); i >= 0 {
		token = token[:i]
	}
	return strings.TrimSpace(token)
}

func parseAGNode(line string) (string, taskgraph.Task, error) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: %q: %w", line, ErrMalformed)
	}
	name := strings.TrimSpace(line[:eq])
	body := strings.TrimSpace(line[eq+1:])

	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q: %w", name, ErrMalformed)
	}
	body = strings.TrimSpace(body[1 : len(body)-1])

	attrs := make(map[string]string)
	if body != "" {
		for _, pair := range strings.Split(body, ",") {
			k, v, ok := strings.Cut(pair, ":")
			if !ok {
				return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q attribute %q: %w", name, pair, ErrMalformed)
			}
			attrs[strings.TrimSpace(k)] = strings.Trim(strings.TrimSpace(v), `"`)
		}
	}

	ag := taskgraph.AudiographTask{ID: name, More: make(map[string]string)}

	known := map[string]bool{"in": true, "out": true, "kind": true, "text": true, "wcet": true, "volume": true}
	for k, v := range attrs {
		if !known[k] {
			ag.More[k] = v
		}
	}

	if v, ok := attrs["in"]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q in=%q: %w", name, v, ErrMalformed)
		}
		ag.NBInlets = uint32(n)
	}
	if v, ok := attrs["out"]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q out=%q: %w", name, v, ErrMalformed)
		}
		ag.NBOutlets = uint32(n)
	}
	if v, ok := attrs["kind"]; ok {
		ag.ClassName = v
	}
	if v, ok := attrs["text"]; ok {
		text := v
		ag.Text = &text
	}
	volume := float32(1)
	if v, ok := attrs["volume"]; ok {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q volume=%q: %w", name, v, ErrMalformed)
		}
		volume = float32(f)
		ag.Volume = volume
	}
	if v, ok := attrs["wcet"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q wcet=%q: %w", name, v, ErrMalformed)
		}
		ag.WCET = &f
	}

	freq := uint32(440)
	if v, ok := attrs["freq"]; ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return "", taskgraph.Task{}, fmt.Errorf("graphfile: node %q freq=%q: %w", name, v, ErrMalformed)
		}
		freq = uint32(n)
	}

	task := taskgraph.NewAudiograph(ag)

	if kernel, ok := classKernel(ag.ClassName, int(ag.NBInlets), int(ag.NBOutlets), freq, volume); ok {
		task = task.WithKernel(kernel)
	} else {
		task = task.WithKernel(shapeKernel(int(ag.NBInlets), int(ag.NBOutlets)))
	}

	return name, task, nil
}
