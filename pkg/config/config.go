// Package config loads the small set of tunables an operator might want
// to override without recompiling: planner margins, measurement
// iteration counts, and default algorithm/thread choices for the CLI.
// A missing file or flag means the built-in defaults apply.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ja7ad/audiograph/pkg/planner"
	"github.com/ja7ad/audiograph/pkg/taskgraph"
)

// Config holds the tuning knobs read from an optional YAML file.
type Config struct {
	// CPFDFreshProcessorMargin overrides planner.DefaultFreshProcessorMargin.
	CPFDFreshProcessorMargin float64 `yaml:"cpfd_fresh_processor_margin"`

	// MeasurementIterations overrides taskgraph.DefaultMeasurementIterations
	// for DSP-kernel WCET estimation.
	MeasurementIterations int `yaml:"measurement_iterations"`

	// DefaultAlgorithm is a default scheduling-algorithm name. It is
	// loaded but not read by cmd/audiograph: the static subcommand
	// always takes the algorithm as a required argument.
	DefaultAlgorithm string `yaml:"default_algorithm"`

	// DefaultThreads is a default worker/processor count, validated to
	// be > 0 by Load. It is not read by cmd/audiograph: the static and
	// ws subcommands always take nb-threads as a required argument.
	DefaultThreads int `yaml:"default_threads"`
}

// Default returns the built-in tuning values, matching the package
// defaults of pkg/planner and pkg/taskgraph.
func Default() Config {
	return Config{
		CPFDFreshProcessorMargin: planner.DefaultFreshProcessorMargin,
		MeasurementIterations:    taskgraph.DefaultMeasurementIterations,
		DefaultAlgorithm:         "hlfet",
		DefaultThreads:           2,
	}
}

// Load reads path as YAML and overlays it onto Default. An empty path
// is not an error: it returns the defaults unchanged. A path that
// doesn't exist is also not an error — missing file means defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.CPFDFreshProcessorMargin < 0 {
		return cfg, fmt.Errorf("config: %s: cpfd_fresh_processor_margin must be >= 0", path)
	}
	if cfg.MeasurementIterations <= 0 {
		return cfg, fmt.Errorf("config: %s: measurement_iterations must be > 0", path)
	}
	if cfg.DefaultThreads <= 0 {
		return cfg, fmt.Errorf("config: %s: default_threads must be > 0", path)
	}

	return cfg, nil
}
