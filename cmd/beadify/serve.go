package main

import (
	"github.com/spf13/cobra"

	"beadify/internal/app"
)

func serveCommand(ctx *cliContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				ctx.cfg.Server.Addr = addr
			}
			h := app.NewHandler(ctx.cfg, ctx.repo, ctx.logger)
			return app.Serve(cmd.Context(), ctx.cfg.Server.Addr, h.Routes(ctx.cfg.Server.StaticDir), ctx.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
