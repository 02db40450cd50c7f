// Command bookworm loads a book graph and answers queries over it, either
// from the command line or over HTTP.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bookworm/pkg/config"
	"bookworm/pkg/graph"
	"bookworm/pkg/query"
	"bookworm/pkg/search"
)

var (
	configPath string
	graphPath  string
	format     string
	logLevel   string
	logFormat  string
	strategy   string
	workers    int

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "bookworm",
		Short:         "Query a book graph by author, publisher and citation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log))
			return nil
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&graphPath, "graph", "", "Path to the graph file")
	pf.StringVar(&format, "format", "", "Graph file format: auto, text or binary")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&strategy, "strategy", "", "Id lookup strategy: linear, parallel, indexed or auto")
	pf.IntVar(&workers, "workers", 0, "Workers for the parallel strategy")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies any flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return c, err
	}
	flags := cmd.Flags()
	if flags.Changed("graph") {
		c.Graph.Path = graphPath
	}
	if flags.Changed("format") {
		c.Graph.Format = format
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if flags.Changed("strategy") {
		c.Search.Strategy = strategy
	}
	if flags.Changed("workers") {
		c.Search.Workers = workers
	}
	return c, c.Validate()
}

func newLogger(w io.Writer, lc config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loaded bundles what the subcommands share after the graph is read.
type loaded struct {
	store      *graph.Store
	components *graph.Components
	dispatcher *search.Dispatcher
	engine     *query.Engine
}

func openStore(c config.Config) (*graph.Store, error) {
	if c.Graph.Path == "" {
		return nil, fmt.Errorf("no graph file: set --graph, graph.path or BOOKWORM_GRAPH")
	}
	start := time.Now()
	slog.Info("loading graph", "path", c.Graph.Path, "format", c.Graph.Format)
	s, err := graph.Open(c.Graph.Path, c.Graph.Format)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	st := s.Stats()
	slog.Info("loaded",
		"books", st.NumBooks,
		"author_edges", st.AuthorEdges,
		"citation_edges", st.CitationEdges,
		"publisher_edges", st.PublisherEdges,
		"duplicate_ids", st.DuplicateIDs,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return s, nil
}

// load opens the graph and wires the lookup strategy, optional component
// labels and the query engine on top of it.
func load(c config.Config) (*loaded, error) {
	start := time.Now()
	s, err := openStore(c)
	if err != nil {
		return nil, err
	}

	strat, err := search.ParseStrategy(c.Search.Strategy)
	if err != nil {
		return nil, err
	}
	d, err := search.NewDispatcher(s, search.Options{
		Strategy:          strat,
		Workers:           c.Search.Workers,
		ParallelThreshold: c.Search.ParallelThreshold,
	})
	if err != nil {
		return nil, err
	}

	l := &loaded{store: s, dispatcher: d}
	var opts []query.Option
	if c.Graph.Components {
		slog.Info("labelling components")
		l.components = graph.NewComponents(s, graph.RelAll)
		_, largest := l.components.Largest()
		slog.Info("components", "count", l.components.Count(), "largest", largest)
		opts = append(opts, query.WithComponents(l.components))
	}
	l.engine = query.NewEngine(s, d, opts...)

	slog.Info("ready", "strategy", d.Strategy(), "duration", time.Since(start).Round(time.Millisecond))
	return l, nil
}
