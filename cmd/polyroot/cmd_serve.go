package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/njchilds90/polyroot/internal/server"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool API over HTTP",
		Long: `Starts the HTTP tool server:

  POST /tool    {"tool":"find_roots","params":{"coefficients":[1,0,-4]}}
  POST /roots   {"coefficients":[1,-6,11,-6],"epsilon":1e-9}
  GET  /schema  tool schema for agent registration
  GET  /health
  GET  /metrics

Stops on SIGINT or SIGTERM after draining in-flight requests.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			logger := newLogger(cfg, os.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Tracing.Enabled {
				shutdown, err := server.InitTracer(ctx, cfg.Tracing.ServiceName, os.Stderr)
				if err != nil {
					return err
				}
				defer func() {
					if err := shutdown(context.Background()); err != nil {
						logger.Warn("trace flush failed", "error", err)
					}
				}()
			}

			gin.SetMode(gin.ReleaseMode)
			return server.New(cfg, logger).Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config, 8080)")
	return cmd
}
