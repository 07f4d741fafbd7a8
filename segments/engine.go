// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gomlx/segreduce/internal/workerspool"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConfigEnvVar is the name of the environment variable used to configure the Default engine.
// See ParseConfig for its format.
const ConfigEnvVar = "SEGREDUCE_CONFIG"

// DefaultMinChunk is the default minimum number of work units (output cells) processed by one worker.
const DefaultMinChunk = 256

// Config of an Engine.
type Config struct {
	// Parallelism is the soft target of concurrent workers.
	// 0 disables parallelism (everything runs in the caller goroutine) and -1 means unlimited.
	Parallelism int

	// FastPath enables the specialized strategy for 1-D values with 1-D lengths.
	FastPath bool

	// MinChunk is the minimum number of work units handed to one worker.
	MinChunk int
}

// DefaultConfig returns the configuration used for an empty configuration string.
func DefaultConfig() Config {
	return Config{
		Parallelism: runtime.NumCPU(),
		FastPath:    true,
		MinChunk:    DefaultMinChunk,
	}
}

// String implements fmt.Stringer. The output can be parsed back with ParseConfig.
func (c Config) String() string {
	parts := []string{
		fmt.Sprintf("parallelism=%d", c.Parallelism),
		fmt.Sprintf("minchunk=%d", c.MinChunk),
	}
	if !c.FastPath {
		parts = append(parts, "nofastpath")
	}
	return strings.Join(parts, ",")
}

// ParseConfig parses a comma-separated list of options, starting from DefaultConfig.
//
// Options:
//
//   - "parallelism=N": soft target of concurrent workers. 0 disables parallelism, -1 is unlimited.
//   - "nofastpath": always use the general strategy. "fastpath" enables it back.
//   - "minchunk=N": minimum number of work units per worker, N >= 1.
//
// Unknown options are reported as errors.
func ParseConfig(config string) (Config, error) {
	cfg := DefaultConfig()
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		switch key {
		case "parallelism":
			n, err := parseIntOption(key, value, hasValue)
			if err != nil {
				return cfg, err
			}
			if n < -1 {
				return cfg, errors.Errorf("invalid value for %q: %d, it must be -1 (unlimited), 0 (disabled) or a positive number", key, n)
			}
			cfg.Parallelism = n
		case "minchunk":
			n, err := parseIntOption(key, value, hasValue)
			if err != nil {
				return cfg, err
			}
			if n < 1 {
				return cfg, errors.Errorf("invalid value for %q: %d, it must be >= 1", key, n)
			}
			cfg.MinChunk = n
		case "fastpath", "nofastpath":
			if hasValue {
				return cfg, errors.Errorf("configuration %q takes no value, got %q", key, value)
			}
			cfg.FastPath = key == "fastpath"
		default:
			return cfg, errors.Errorf("unknown configuration %q in %q: valid options are parallelism=N, minchunk=N, fastpath and nofastpath", key, config)
		}
	}
	return cfg, nil
}

func parseIntOption(key, value string, hasValue bool) (int, error) {
	if !hasValue {
		return 0, errors.Errorf("configuration %q requires a value, as in \"%s=N\"", key, key)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse configuration %q value %q", key, value)
	}
	return n, nil
}

// Engine executes segmented reductions with a pool of workers.
//
// It is safe for concurrent use.
type Engine struct {
	config  Config
	workers *workerspool.Pool
}

// New creates an Engine from a configuration string. See ParseConfig for the format.
func New(config string) (*Engine, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, errors.WithMessage(err, "segments.New")
	}
	return NewWithConfig(cfg), nil
}

// NewWithConfig creates an Engine with the given configuration.
func NewWithConfig(cfg Config) *Engine {
	if cfg.MinChunk < 1 {
		cfg.MinChunk = 1
	}
	e := &Engine{
		config:  cfg,
		workers: workerspool.NewWithParallelism(cfg.Parallelism),
	}
	klog.V(1).Infof("segments: created engine with %s", cfg)
	return e
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return must.M1(New(os.Getenv(ConfigEnvVar)))
})

// Default returns the process-wide engine, configured from the environment variable SEGREDUCE_CONFIG.
//
// It panics if the environment variable holds an invalid configuration.
func Default() *Engine {
	return defaultEngine()
}

// Config returns the configuration of the engine.
func (e *Engine) Config() Config {
	return e.config
}

// String implements fmt.Stringer.
func (e *Engine) String() string {
	return fmt.Sprintf("segments.Engine(%s)", e.config)
}
