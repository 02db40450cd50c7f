package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bookworm/pkg/graph"
)

var (
	convertInput     string
	convertOutput    string
	convertTo        string
	convertLargest   bool
	convertRelations []string

	convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "Convert a graph between the text and binary formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg
			if convertInput != "" {
				c.Graph.Path = convertInput
			}
			if convertTo != graph.FormatText && convertTo != graph.FormatBinary {
				return fmt.Errorf("invalid --to %q: must be text or binary", convertTo)
			}
			rel, err := parseRelations(convertRelations)
			if err != nil {
				return err
			}

			start := time.Now()
			s, err := openStore(c)
			if err != nil {
				return err
			}

			if convertLargest && s.Len() > 0 {
				slog.Info("extracting largest component", "relations", rel.String())
				comps := graph.NewComponents(s, rel)
				id, size := comps.Largest()
				pct := float64(size) / float64(s.Len()) * 100
				slog.Info("largest component", "books", size, "percent", fmt.Sprintf("%.1f", pct))
				if s, err = graph.FilterToComponent(s, comps.Members(id)); err != nil {
					return fmt.Errorf("filter component: %w", err)
				}
				slog.Info("filtered graph", "books", s.Len())
			}

			slog.Info("writing", "path", convertOutput, "format", convertTo)
			if err := writeStore(convertOutput, convertTo, s); err != nil {
				return err
			}

			info, err := os.Stat(convertOutput)
			if err != nil {
				return err
			}
			slog.Info("done",
				"duration", time.Since(start).Round(time.Millisecond),
				"output", convertOutput,
				"mb", fmt.Sprintf("%.1f", float64(info.Size())/(1024*1024)),
			)
			return nil
		},
	}
)

func init() {
	f := convertCmd.Flags()
	f.StringVar(&convertInput, "input", "", "Input graph file (default --graph)")
	f.StringVar(&convertOutput, "output", "graph.bin", "Output graph file")
	f.StringVar(&convertTo, "to", graph.FormatBinary, "Output format: text or binary")
	f.BoolVar(&convertLargest, "largest-component", false, "Keep only the largest weakly connected component")
	f.StringSliceVar(&convertRelations, "relations", nil, "Relations that connect components (default all)")
	rootCmd.AddCommand(convertCmd)
}

func writeStore(path, format string, s *graph.Store) error {
	if format == graph.FormatBinary {
		if err := graph.WriteBinary(path, s); err != nil {
			return fmt.Errorf("write binary: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.WriteText(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write text: %w", err)
	}
	return f.Close()
}
