package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/njchilds90/polyroot"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type solveFlags struct {
	coeffs  []float64 // coefficients, highest degree first
	epsilon float64   // acceptance tolerance, used only when set
	seeds   []float64 // starting points; empty keeps the configured ones
	dedup   float64   // duplicate threshold; negative keeps the configured one
	polish  int       // Newton polishing steps on the original polynomial
	json    bool
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

func newSolveCmd(g *globalFlags) *cobra.Command {
	f := &solveFlags{}
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the real roots of a polynomial",
		Long: `Finds real roots by Newton iteration from a fixed set of seeds, deflating
after each root. Roots are printed in the order they were found.

Examples:
  polyroot solve -c 1,0,-4               # x^2 - 4
  polyroot solve -c 1,-6,11,-6 --json    # x^3 - 6x^2 + 11x - 6
  polyroot solve -c 1,-2,1 --dedup 0     # report a double root twice
  polyroot solve -c 1,0,-4 --seeds 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, g, f)
		},
	}
	fs := cmd.Flags()
	fs.Float64SliceVarP(&f.coeffs, "coeffs", "c", nil, "coefficients, highest degree first (required)")
	fs.Float64Var(&f.epsilon, "epsilon", 0, "acceptance tolerance (default from config, 1e-9)")
	fs.Float64SliceVar(&f.seeds, "seeds", nil, "Newton starting points, tried in order")
	fs.Float64Var(&f.dedup, "dedup", -1, "distance under which roots are merged (default from config, 1e-4)")
	fs.IntVar(&f.polish, "polish", 0, "Newton polishing steps per root on the original polynomial")
	fs.BoolVar(&f.json, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("coeffs")
	return cmd
}

func newEvalCmd() *cobra.Command {
	var (
		coeffs []float64
		x      float64
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Print P(x) and P'(x)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := polyroot.NewPoly(coeffs...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "P(x)  = %s\n", p)
			fmt.Fprintf(out, "P(%s)  = %s\n", fmtFloat(x), fmtFloat(p.Eval(x)))
			fmt.Fprintf(out, "P'(%s) = %s\n", fmtFloat(x), fmtFloat(p.Derivative(x)))
			return nil
		},
	}
	cmd.Flags().Float64SliceVarP(&coeffs, "coeffs", "c", nil, "coefficients, highest degree first (required)")
	cmd.Flags().Float64VarP(&x, "x", "x", 0, "point to evaluate at")
	_ = cmd.MarkFlagRequired("coeffs")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON tool schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), polyroot.MCPToolSpec())
			return err
		},
	}
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

type solveOutput struct {
	Polynomial string    `json:"polynomial"`
	Roots      []float64 `json:"roots"`
	Residuals  []float64 `json:"residuals"`
}

func runSolve(cmd *cobra.Command, g *globalFlags, f *solveFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	opts := append(cfg.Solver.Options(), polyroot.WithLogger(newLogger(cfg, cmd.ErrOrStderr())))
	if cmd.Flags().Changed("epsilon") {
		opts = append(opts, polyroot.WithEpsilon(f.epsilon))
	}
	if len(f.seeds) > 0 {
		opts = append(opts, polyroot.WithSeeds(f.seeds...))
	}
	if f.dedup >= 0 {
		opts = append(opts, polyroot.WithDedupThreshold(f.dedup))
	}
	if f.polish > 0 {
		opts = append(opts, polyroot.WithPolish(f.polish))
	}

	p, err := polyroot.NewPoly(f.coeffs...)
	if err != nil {
		return err
	}
	roots, err := p.Roots(opts...)
	if err != nil {
		return err
	}
	out := solveOutput{Polynomial: p.String(), Roots: roots, Residuals: make([]float64, len(roots))}
	for i, r := range roots {
		if math.IsInf(r, 0) || math.IsNaN(r) {
			return fmt.Errorf("root %d of %s is outside the float64 range", i+1, p)
		}
		out.Residuals[i] = math.Abs(p.Eval(r))
	}
	if f.json {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeText(cmd.OutOrStdout(), out, p.Degree())
}

func writeJSON(w io.Writer, out solveOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, out solveOutput, degree int) error {
	fmt.Fprintf(w, "P(x) = %s\n", out.Polynomial)
	if len(out.Roots) == 0 {
		_, err := fmt.Fprintln(w, "no real roots found")
		return err
	}
	for i, r := range out.Roots {
		fmt.Fprintf(w, "  x%d = %-22s |P(x)| = %.3g\n", i+1, fmtFloat(r), out.Residuals[i])
	}
	if missing := degree - len(out.Roots); missing > 0 {
		fmt.Fprintf(w, "%d of %d roots not reported (complex, repeated or not reached)\n", missing, degree)
	}
	return nil
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
