// Command polyroot is the command line front end for the polyroot package.
//
// Usage:
//
//	polyroot solve -c 1,-6,11,-6
//	polyroot eval -c 1,-6,11,-6 -x 2.5
//	polyroot schema
//	polyroot serve --port 8080
//
// Every command reads an optional YAML config (--config); flags win over it.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/njchilds90/polyroot/internal/config"
	"github.com/njchilds90/polyroot/internal/logging"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string // YAML config file
	logLevel   string // overrides logging.level
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "polyroot",
		Short: "Find the real roots of a polynomial",
		Long: `polyroot finds real roots of real-coefficient polynomials with Newton's
method and successive deflation. Coefficients are given highest degree first:
1,-6,11,-6 is x^3 - 6x^2 + 11x - 6.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.AddCommand(newSolveCmd(g), newEvalCmd(), newSchemaCmd(), newServeCmd(g))
	return cmd
}

// loadConfig reads --config and applies the persistent overrides.
func (g *globalFlags) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		if _, err := logging.ParseLevel(g.logLevel); err != nil {
			return config.Config{}, err
		}
		cfg.Logging.Level = g.logLevel
	}
	return cfg, nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	return logging.New(cfg.Logging, w)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
