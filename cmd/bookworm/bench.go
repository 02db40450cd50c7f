package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bookworm/pkg/bench"
)

var (
	benchStride int
	benchMaxK   uint16
	benchJSON   bool

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run every query over a sample of the graph and check the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			start := time.Now()
			report, err := bench.Run(ctx, l.engine, bench.Options{Stride: benchStride, MaxK: benchMaxK})
			if err != nil && ctx.Err() == nil {
				return err
			}
			slog.Info("bench finished", "duration", time.Since(start).Round(time.Millisecond), "interrupted", err != nil)

			if benchJSON {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
			if report.Failed() {
				return fmt.Errorf("%d checks failed", len(report.Failures))
			}
			return nil
		},
	}
)

func init() {
	f := benchCmd.Flags()
	f.IntVar(&benchStride, "stride", bench.DefaultStride, "Sample one book in N for the expensive checks")
	f.Uint16Var(&benchMaxK, "max-k", bench.DefaultMaxK, "Largest k for the k-distance sweep")
	f.BoolVar(&benchJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(benchCmd)
}

func printReport(w io.Writer, r *bench.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OP\tCALLS\tFAILURES\tTOTAL\tPER CALL")
	for _, op := range r.Ops {
		per := time.Duration(0)
		if op.Calls > 0 {
			per = op.Duration / time.Duration(op.Calls)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			op.Op, op.Calls, op.Failures, op.Duration.Round(time.Microsecond), per.Round(time.Nanosecond))
	}
	tw.Flush()
	for _, f := range r.Failures {
		fmt.Fprintln(w, "FAIL:", f)
	}
}
