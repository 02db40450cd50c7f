package main

import (
	"github.com/spf13/cobra"

	"bookworm/pkg/api"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = serveAddr
			}
			l, err := load(cfg)
			if err != nil {
				return err
			}

			sc := api.ServerConfig{
				Addr:           cfg.Server.Addr,
				ReadTimeout:    cfg.Server.ReadTimeout,
				WriteTimeout:   cfg.Server.WriteTimeout,
				RequestTimeout: cfg.Server.RequestTimeout,
				MaxConcurrent:  cfg.Server.MaxConcurrent,
				CORSOrigin:     cfg.Server.CORSOrigin,
			}
			stats := api.NewStats(l.store, l.components, string(l.dispatcher.Strategy()))
			srv := api.NewServer(sc, api.NewHandlers(l.engine, stats))
			return api.ListenAndServe(srv)
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
