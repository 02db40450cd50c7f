package main

import (
	"github.com/spf13/cobra"

	"bookworm/pkg/api"
	"bookworm/pkg/graph"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print book and edge counts with a component summary",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		comps := graph.NewComponents(s, graph.RelAll)
		return printJSON(cmd.OutOrStdout(), api.NewStats(s, comps, ""))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
