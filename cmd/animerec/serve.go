package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/animerec/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP recommendation server",
		Long:    `Loads the catalog, builds the feature matrix once, then serves
/v1/recommend, /v1/recommend/text, /v1/recommend/genre, /v1/recommend/genre-text,
/v1/genres, /healthz and /metrics.`,
		Example: `  animerec serve --addr :8080
  animerec serve -c animerec.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			s := server.New(a.content, a.genre, cfg.Recommend, server.WithFilters(a.filters()...))
			return s.Run(ctx, cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
