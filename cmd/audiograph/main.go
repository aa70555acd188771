package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ja7ad/audiograph/pkg/audiodriver"
	"github.com/ja7ad/audiograph/pkg/config"
	"github.com/ja7ad/audiograph/pkg/graphfile"
	"github.com/ja7ad/audiograph/pkg/measure"
	"github.com/ja7ad/audiograph/pkg/planner"
	"github.com/ja7ad/audiograph/pkg/runtime"
	"github.com/ja7ad/audiograph/pkg/schedule"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

type rootOpts struct {
	configPath string
	logLevel   string
	cc         float64
}

func main() {
	var o rootOpts

	root := &cobra.Command{
		Use:   "audiograph",
		Short: "Real-time audio-processing-graph scheduler and execution engine",
		Long: `audiograph parses a .ag or .pd graph description and drives it through
one of three runtimes: a single-threaded sequential walk, a worker-per-processor
static schedule computed by one of four list-scheduling planners, or a dynamic
work-stealing pool.

* GitHub: https://github.com/ja7ad/audiograph`,
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "path to a YAML tuning file")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "info", "slog level: debug, info, warn, error")
	root.PersistentFlags().Float64Var(&o.cc, "cc", 0, "CPFD communication-cost scalar charged for predecessors left on another processor")

	root.AddCommand(seqCmd(&o), staticCmd(&o), wsCmd(&o))

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func seqCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "seq <graph-file>",
		Short: "Run the graph on the single-threaded sequential runtime",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequential(o, args[0])
		},
	}
}

func staticCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "static <graph-file> <nb-threads> <rand|hlfet|etf|cpfd>",
		Short: "Run the graph on the worker-per-processor static-schedule runtime",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatic(o, args[0], args[1], args[2])
		},
	}
}

func wsCmd(o *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "ws <graph-file> <nb-threads>",
		Short: "Run the graph on the dynamic work-stealing runtime",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkStealing(o, args[0], args[1])
		},
	}
}

// setup loads the tuning config and wires up slog per --log-level. It
// is the one place every subcommand touches before doing real work, so
// a configuration error is always fatal here rather than discovered
// mid-run.
func setup(o *rootOpts) (config.Config, *slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(o.logLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, log, fmt.Errorf("audiograph: %w", err)
	}
	return cfg, log, nil
}

func parseGraphFile(path string) (*taskgraph.TaskGraph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ag":
		return graphfile.ParseAGFile(path)
	case ".pd":
		return graphfile.ParsePDFile(path)
	default:
		return nil, fmt.Errorf("audiograph: %s: unrecognized graph file extension (want .ag or .pd)", path)
	}
}

// session bundles the parsed graph, its driver and output ports, and
// the shared measurement sink every subcommand assembles identically
// before choosing a runtime to drive it with.
type session struct {
	graph   *taskgraph.TaskGraph
	driver  *audiodriver.PortAudioDriver
	ports   []audiodriver.OutputPort
	exits   []int
	buffers *runtime.EdgeBuffers
	sink    *measure.Sink
}

func openSession(graphPath string, cfg config.Config, log *slog.Logger) (*session, error) {
	g, err := parseGraphFile(graphPath)
	if err != nil {
		return nil, fmt.Errorf("audiograph: %w", err)
	}
	g.MeasurementIterations = cfg.MeasurementIterations

	if err := g.WarmUp(); err != nil {
		return nil, fmt.Errorf("audiograph: %w", err)
	}

	exits := g.ExitNodes()

	drv, err := audiodriver.NewPortAudioClient(
		filepath.Base(graphPath),
		audiodriver.WithSampleRate(g.SampleRate),
		audiodriver.WithBufferSize(g.BufferSize),
	)
	if err != nil {
		return nil, fmt.Errorf("audiograph: %w", err)
	}

	ports, err := drv.RegisterOutputPorts(len(exits))
	if err != nil {
		return nil, fmt.Errorf("audiograph: %w", err)
	}

	return &session{
		graph:   g,
		driver:  drv,
		ports:   ports,
		exits:   exits,
		buffers: runtime.AllocateEdgeBuffers(g, g.BufferSize, g.SampleRate),
		sink:    measure.NewSink(log),
	}, nil
}

func (s *session) exitBuffers(scope audiodriver.ProcessScope) map[int][]float32 {
	out := make(map[int][]float32, len(s.exits))
	for i, node := range s.exits {
		out[node] = s.ports[i].Buffer(scope)
	}
	return out
}

func (s *session) close() {
	s.sink.Close()
}

// runUntilEOF activates the driver, blocks the main goroutine on
// standard input the way the reference binaries do (deactivation only
// happens on user exit, never on a timer), then tears down cleanly.
func runUntilEOF(log *slog.Logger, s *session, graphPath string) error {
	if err := s.driver.Activate(); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}
	log.Info("activated", "graph", graphPath, "nodes", s.graph.NodeCount(), "ports", len(s.ports))

	if err := audiodriver.BlockUntilEOF(os.Stdin); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	if err := s.driver.Deactivate(); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}
	return s.driver.Close()
}

func runSequential(o *rootOpts, graphPath string) error {
	cfg, log, err := setup(o)
	if err != nil {
		return err
	}

	s, err := openSession(graphPath, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	seq := runtime.NewSequential(s.graph, s.buffers, s.sink)

	if err := s.driver.SetProcessCallback(func(scope audiodriver.ProcessScope) error {
		return seq.RunCycle(s.exitBuffers(scope))
	}); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	return runUntilEOF(log, s, graphPath)
}

func runStatic(o *rootOpts, graphPath, nbThreadsArg, algorithm string) error {
	cfg, log, err := setup(o)
	if err != nil {
		return err
	}

	nbThreads, err := strconv.Atoi(nbThreadsArg)
	if err != nil || nbThreads <= 0 {
		return fmt.Errorf("audiograph: nb-threads %q must be a positive integer", nbThreadsArg)
	}

	s, err := openSession(graphPath, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	sched, err := planSchedule(s.graph, algorithm, nbThreads, o.cc, cfg)
	if err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	st := runtime.NewStatic(s.graph, s.buffers, sched, s.sink)
	defer st.Close()

	if err := s.driver.SetProcessCallback(func(scope audiodriver.ProcessScope) error {
		st.Start(s.exitBuffers(scope))
		return nil
	}); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	return runUntilEOF(log, s, graphPath)
}

func runWorkStealing(o *rootOpts, graphPath, nbThreadsArg string) error {
	cfg, log, err := setup(o)
	if err != nil {
		return err
	}

	nbThreads, err := strconv.Atoi(nbThreadsArg)
	if err != nil || nbThreads <= 0 {
		return fmt.Errorf("audiograph: nb-threads %q must be a positive integer", nbThreadsArg)
	}

	s, err := openSession(graphPath, cfg, log)
	if err != nil {
		return err
	}
	defer s.close()

	ws := runtime.NewWorkStealing(s.graph, s.buffers, s.sink, nbThreads)
	defer ws.Close()

	if err := s.driver.SetProcessCallback(func(scope audiodriver.ProcessScope) error {
		ws.Start(s.exitBuffers(scope))
		return nil
	}); err != nil {
		return fmt.Errorf("audiograph: %w", err)
	}

	return runUntilEOF(log, s, graphPath)
}

func planSchedule(g *taskgraph.TaskGraph, algorithm string, nbThreads int, cc float64, cfg config.Config) (*schedule.Schedule, error) {
	switch strings.ToLower(algorithm) {
	case "rand", "random":
		return planner.Random(g, nbThreads, rand.New(rand.NewSource(1)))
	case "hlfet":
		return planner.HLFET(g, nbThreads)
	case "etf":
		return planner.ETF(g, nbThreads)
	case "cpfd":
		return planner.CPFD(g, cc, planner.WithFreshProcessorMargin(cfg.CPFDFreshProcessorMargin))
	default:
		return nil, fmt.Errorf("unknown scheduling algorithm %q (want rand, hlfet, etf, or cpfd)", algorithm)
	}
}
