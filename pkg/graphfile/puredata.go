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

// ParsePDFile reads and parses a `.pd` patch file at path.
func ParsePDFile(path string) (*taskgraph.TaskGraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("graphfile: open %s: %w", path, err)
	}
	defer f.Close()
	return ParsePD(f)
}

// ParsePD parses a Pure Data patch: `#X obj x y name args...` and
// `#X msg x y text` declare objects in file order; `#X connect src
// srcport dst dstport` wires an edge between the src-th and dst-th
// objects declared so far, identified by declaration index
// the way Pure Data itself addresses them — ports are discarded, only
// the (src, dst) object pair becomes a graph edge. Any other `#X`
// statement kind (GUI atoms, comments, array declarations) is
// recognized and skipped.
func ParsePD(r io.Reader) (*taskgraph.TaskGraph, error) {
	return ParsePDWithFormat(r, DefaultSampleRate, DefaultBufferSize)
}

// ParsePDWithFormat is ParsePD with an explicit sample rate and buffer
// size.
func ParsePDWithFormat(r io.Reader, sampleRate, bufferSize int) (*taskgraph.TaskGraph, error) {
	b := newBuilder(sampleRate, bufferSize)
	var edges []pendingEdge
	var declOrder []string

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != "#X" {
			return nil, fmt.Errorf("graphfile: pd line %d %q: %w", lineNo, line, ErrMalformed)
		}

		switch fields[1] {
		case "obj":
			key, task, err := parsePDObj(fields, lineNo)
			if err != nil {
				return nil, err
			}
			declOrder = append(declOrder, key)
			b.declare(key, task)

		case "msg":
			key, task, err := parsePDMsg(fields, lineNo)
			if err != nil {
				return nil, err
			}
			declOrder = append(declOrder, key)
			b.declare(key, task)

		case "connect":
			e, err := parsePDConnect(fields, declOrder, lineNo)
			if err != nil {
				return nil, err
			}
			edges = append(edges, e)

		default:
			continue
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graphfile: scan: %w", err)
	}

	return b.build(edges)
}

func parsePDObj(fields []string, lineNo int) (string, taskgraph.Task, error) {
	if len(fields) < 5 {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, ErrMalformed)
	}
	x, y, err := pdCoords(fields[2], fields[3])
	if err != nil {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, err)
	}

	name := fields[4]
	args := fields[5:]
	key := fmt.Sprintf("obj%d", lineNo)

	task := taskgraph.NewPuredata(name, x, y, args)
	if kernel, ok := classKernel(name, 1, 1, 440, 1); ok {
		task = task.WithKernel(kernel)
	} else {
		task = task.WithKernel(shapeKernel(1, 1))
	}

	return key, task, nil
}

func parsePDMsg(fields []string, lineNo int) (string, taskgraph.Task, error) {
	if len(fields) < 4 {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, ErrMalformed)
	}
	x, y, err := pdCoords(fields[2], fields[3])
	if err != nil {
		return "", taskgraph.Task{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, err)
	}

	key := fmt.Sprintf("msg%d", lineNo)
	// A message box carries no DSP kernel, so its WCET is KindPuredata's
	// fallback (DefaultAudiographWCET) rather than a measurement.
	return key, taskgraph.NewPuredata("msg", x, y, fields[4:]), nil
}

func parsePDConnect(fields []string, declOrder []string, lineNo int) (pendingEdge, error) {
	if len(fields) != 6 {
		return pendingEdge{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, ErrMalformed)
	}
	srcIdx, err1 := strconv.Atoi(fields[2])
	dstIdx, err2 := strconv.Atoi(fields[4])
	if err1 != nil || err2 != nil {
		return pendingEdge{}, fmt.Errorf("graphfile: pd line %d: %w", lineNo, ErrMalformed)
	}
	if srcIdx < 0 || srcIdx >= len(declOrder) {
		return pendingEdge{}, fmt.Errorf("graphfile: pd line %d: source %d: %w", lineNo, srcIdx, ErrUnknownNode)
	}
	if dstIdx < 0 || dstIdx >= len(declOrder) {
		return pendingEdge{}, fmt.Errorf("graphfile: pd line %d: dest %d: %w", lineNo, dstIdx, ErrUnknownNode)
	}
	return pendingEdge{src: declOrder[srcIdx], dst: declOrder[dstIdx]}, nil
}

func pdCoords(xs, ys string) (int64, int64, error) {
	x, err := strconv.ParseInt(xs, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", xs, ErrMalformed)
	}
	y, err := strconv.ParseInt(ys, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", ys, ErrMalformed)
	}
	return x, y, nil
}
