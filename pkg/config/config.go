// Package config holds the bookworm runtime configuration: YAML file,
// then BOOKWORM_* environment overrides, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"bookworm/pkg/graph"
	"bookworm/pkg/search"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full configuration tree.
type Config struct {
	Graph  GraphConfig  `yaml:"graph"`
	Search SearchConfig `yaml:"search"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// GraphConfig locates the graph file.
type GraphConfig struct {
	Path       string `yaml:"path"`
	Format     string `yaml:"format"`     // text, binary or auto
	Components bool   `yaml:"components"` // precompute weak components for path pruning
}

// SearchConfig selects the id lookup strategy.
type SearchConfig struct {
	Strategy          string `yaml:"strategy"`
	Workers           int    `yaml:"workers"`
	ParallelThreshold int    `yaml:"parallel_threshold"`
}

// ServerConfig mirrors api.ServerConfig.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	CORSOrigin     string        `yaml:"cors_origin"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Graph: GraphConfig{
			Format: graph.FormatAuto,
		},
		Search: SearchConfig{
			Strategy:          string(search.StrategyLinear),
			Workers:           runtime.NumCPU(),
			ParallelThreshold: search.DefaultParallelThreshold,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   10 * time.Second,
			RequestTimeout: 5 * time.Second,
			MaxConcurrent:  runtime.NumCPU() * 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOOKWORM_GRAPH"); v != "" {
		cfg.Graph.Path = v
	}
	if v := os.Getenv("BOOKWORM_GRAPH_FORMAT"); v != "" {
		cfg.Graph.Format = v
	}
	if v := os.Getenv("BOOKWORM_SEARCH_STRATEGY"); v != "" {
		cfg.Search.Strategy = v
	}
	if v := os.Getenv("BOOKWORM_SEARCH_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = i
		}
	}
	if v := os.Getenv("BOOKWORM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BOOKWORM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks enumerations and positive limits.
func (c Config) Validate() error {
	switch c.Graph.Format {
	case graph.FormatAuto, graph.FormatText, graph.FormatBinary:
	default:
		return fmt.Errorf("%w: graph.format %q", ErrInvalid, c.Graph.Format)
	}
	if _, err := search.ParseStrategy(c.Search.Strategy); err != nil {
		return fmt.Errorf("%w: search.strategy: %w", ErrInvalid, err)
	}
	if c.Search.Workers <= 0 {
		return fmt.Errorf("%w: search.workers must be positive, got %d", ErrInvalid, c.Search.Workers)
	}
	if c.Search.ParallelThreshold < 0 {
		return fmt.Errorf("%w: search.parallel_threshold must not be negative", ErrInvalid)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%w: server timeouts must be positive", ErrInvalid)
	}
	if c.Server.MaxConcurrent <= 0 {
		return fmt.Errorf("%w: server.max_concurrent must be positive, got %d", ErrInvalid, c.Server.MaxConcurrent)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
