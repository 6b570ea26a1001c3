// Package polyroot finds the real roots of real-coefficient polynomials.
//
// Design goals:
//   - Horner evaluation and differentiation, no allocation
//   - Newton iteration from a fixed, configurable set of seeds
//   - Successive deflation: every accepted root lowers the degree by one
//   - Deterministic output for identical inputs, no shared state
//   - AI/LLM friendly: a JSON tool-call API next to the Go API
//
// Coefficients are ordered highest degree first, so {1, -6, 11, -6} is
// x^3 - 6x^2 + 11x - 6.
//
// The search is best effort. Complex roots are invisible to it, and a real
// root whose basin of attraction lies outside the seeded region can be
// missed; callers cannot tell "no more real roots" from "none found".
package polyroot

import (
	"errors"
	"log/slog"
	"math"
)

// ============================================================
// Defaults
// ============================================================

const (
	// DefaultEpsilon is the outer tolerance: a candidate is accepted only
	// when |P(x)| is below it.
	DefaultEpsilon = 1e-9

	// DefaultNewtonEpsilon is the inner convergence threshold of a single
	// Newton attempt. Keep the outer tolerance at least this loose.
	DefaultNewtonEpsilon = 1e-10

	// DefaultMaxIterations bounds a single Newton attempt.
	DefaultMaxIterations = 1000

	// DefaultDedupThreshold is the absolute distance under which two roots
	// are reported once. It does not scale with epsilon.
	DefaultDedupThreshold = 1e-4
)

var defaultSeeds = []float64{-10, -3, -1, 0, 0.5, 1, 2, 5, 10}

// DefaultSeeds returns a copy of the default starting points, in the order
// they are tried.
func DefaultSeeds() []float64 { return append([]float64(nil), defaultSeeds...) }

// ============================================================
// Errors
// ============================================================

var (
	// ErrInvalidArgument matches every precondition failure of FindAllRoots.
	ErrInvalidArgument = errors.New("polyroot: invalid argument")

	// ErrOutOfRange matches the numeric range sub-case (non-positive epsilon).
	ErrOutOfRange = errors.New("polyroot: argument out of range")

	// ErrZeroDerivative reports a Newton attempt that hit P'(x) == 0.
	ErrZeroDerivative = errors.New("polyroot: zero derivative")

	// ErrNoConvergence reports a Newton attempt that ran out of iterations.
	ErrNoConvergence = errors.New("polyroot: no convergence")
)

// ArgumentError describes a rejected input.
type ArgumentError struct {
	Arg    string
	Reason string
	Range  bool
}

func (e *ArgumentError) Error() string { return "polyroot: " + e.Reason }

func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument || (e.Range && target == ErrOutOfRange)
}

func validateCoeffs(coeffs []float64) error {
	switch {
	case coeffs == nil:
		return &ArgumentError{Arg: "coefficients", Reason: "coefficients must not be nil"}
	case len(coeffs) < 2:
		return &ArgumentError{Arg: "coefficients", Reason: "polynomial needs at least two coefficients"}
	case coeffs[0] == 0:
		return &ArgumentError{Arg: "coefficients", Reason: "leading coefficient cannot be zero"}
	case math.IsNaN(coeffs[0]) || math.IsInf(coeffs[0], 0):
		return &ArgumentError{Arg: "coefficients", Reason: "leading coefficient must be finite"}
	}
	return nil
}

func validateEpsilon(eps float64) error {
	if !(eps > 0) {
		return &ArgumentError{Arg: "epsilon", Reason: "epsilon must be positive", Range: true}
	}
	return nil
}

// ============================================================
// Horner evaluation
// ============================================================

// Eval returns P(x).
func Eval(coeffs []float64, x float64) float64 {
	var result float64
	for _, c := range coeffs {
		result = result*x + c
	}
	return result
}

// Derivative returns P'(x). The constant term contributes nothing and is
// skipped.
func Derivative(coeffs []float64, x float64) float64 {
	n := len(coeffs) - 1
	var result float64
	for i := 0; i < n; i++ {
		result = result*x + coeffs[i]*float64(n-i)
	}
	return result
}

// ============================================================
// Newton iteration
// ============================================================

type NewtonStatus int

const (
	NewtonConverged NewtonStatus = iota
	NewtonZeroDerivative
	NewtonNoConvergence
)

func (s NewtonStatus) String() string {
	switch s {
	case NewtonConverged:
		return "converged"
	case NewtonZeroDerivative:
		return "zero_derivative"
	case NewtonNoConvergence:
		return "no_convergence"
	}
	return "unknown"
}

// NewtonResult is the outcome of one Newton attempt. Root holds the last
// iterate even when the attempt failed.
type NewtonResult struct {
	Root       float64
	Iterations int
	Status     NewtonStatus
}

func (r NewtonResult) OK() bool { return r.Status == NewtonConverged }

func (r NewtonResult) Err() error {
	switch r.Status {
	case NewtonConverged:
		return nil
	case NewtonZeroDerivative:
		return ErrZeroDerivative
	}
	return ErrNoConvergence
}

// Newton iterates x -= P(x)/P'(x) from x0 until |P(x)| < epsilon, for at
// most maxIter steps. Non-positive epsilon or maxIter select
// DefaultNewtonEpsilon and DefaultMaxIterations.
func Newton(coeffs []float64, x0, epsilon float64, maxIter int) NewtonResult {
	if epsilon <= 0 {
		epsilon = DefaultNewtonEpsilon
	}
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	x := x0
	for i := 0; i < maxIter; i++ {
		fx := Eval(coeffs, x)
		if math.Abs(fx) < epsilon {
			return NewtonResult{Root: x, Iterations: i, Status: NewtonConverged}
		}
		dfx := Derivative(coeffs, x)
		if dfx == 0 {
			return NewtonResult{Root: x, Iterations: i, Status: NewtonZeroDerivative}
		}
		x -= fx / dfx
		// nan and inf never satisfy the threshold again
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return NewtonResult{Root: x, Iterations: i + 1, Status: NewtonNoConvergence}
		}
	}
	return NewtonResult{Root: x, Iterations: maxIter, Status: NewtonNoConvergence}
}

// ============================================================
// Deflation
// ============================================================

// Deflate divides P by (x - root) and drops the remainder.
func Deflate(coeffs []float64, root float64) []float64 {
	q, _ := DeflateRemainder(coeffs, root)
	return q
}

// DeflateRemainder divides P by (x - root) with synthetic division. The
// remainder equals P(root); it is zero only when root is exact.
func DeflateRemainder(coeffs []float64, root float64) (quotient []float64, remainder float64) {
	if len(coeffs) < 2 {
		return nil, Eval(coeffs, root)
	}
	quotient = make([]float64, len(coeffs)-1)
	b := coeffs[0]
	for i := range quotient {
		quotient[i] = b
		b = coeffs[i+1] + b*root
	}
	return quotient, b
}

// ============================================================
// Options
// ============================================================

// Option customizes FindAllRoots. Later options override earlier ones.
type Option func(cfg *config)

type config struct {
	epsilon       float64
	newtonEpsilon float64
	maxIterations int
	dedup         float64
	polish        int
	seeds         []float64
	logger        *slog.Logger
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		epsilon:       DefaultEpsilon,
		newtonEpsilon: DefaultNewtonEpsilon,
		maxIterations: DefaultMaxIterations,
		dedup:         DefaultDedupThreshold,
		seeds:         defaultSeeds,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithEpsilon sets the outer acceptance tolerance. FindAllRoots rejects a
// non-positive value.
func WithEpsilon(eps float64) Option {
	return func(cfg *config) { cfg.epsilon = eps }
}

// WithSeeds replaces the starting points. An empty list is a no-op.
func WithSeeds(seeds ...float64) Option {
	return func(cfg *config) {
		if len(seeds) > 0 {
			cfg.seeds = append([]float64(nil), seeds...)
		}
	}
}

func WithNewtonEpsilon(eps float64) Option {
	return func(cfg *config) {
		if eps > 0 {
			cfg.newtonEpsilon = eps
		}
	}
}

func WithMaxIterations(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.maxIterations = n
		}
	}
}

// WithDedupThreshold sets the distance under which a root counts as already
// found. Zero disables merging.
func WithDedupThreshold(d float64) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.dedup = d
		}
	}
}

// WithPolish runs up to steps Newton steps per root against the original
// polynomial once the search is done. A polished value replaces the root only
// when it lowers |P(root)|. Roots that polish onto an earlier one are merged
// with the dedup threshold.
func WithPolish(steps int) Option {
	return func(cfg *config) {
		if steps >= 0 {
			cfg.polish = steps
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// ============================================================
// Root finding
// ============================================================

// FindAllRoots returns the real roots it can locate, in discovery order.
//
// Each round tries every seed on the current polynomial, accepts the first
// converged candidate that satisfies |P(x)| < epsilon and is not a repeat of
// an earlier root, then deflates. A round without an accepted candidate ends
// the search; the roots found so far are returned without error. A final
// linear factor is solved directly.
//
// Only precondition violations produce an error (see ArgumentError).
func FindAllRoots(coeffs []float64, opts ...Option) ([]float64, error) {
	if err := validateCoeffs(coeffs); err != nil {
		return nil, err
	}
	cfg := newConfig(opts...)
	if err := validateEpsilon(cfg.epsilon); err != nil {
		return nil, err
	}

	work := append([]float64(nil), coeffs...)
	roots := make([]float64, 0, len(coeffs)-1)
	for len(work) > 2 {
		root, ok := cfg.nextRoot(work, roots)
		if !ok {
			cfg.logger.Debug("no seed produced a new root", "degree", len(work)-1, "found", len(roots))
			break
		}
		roots = append(roots, root)
		work = Deflate(work, root)
	}
	if len(work) == 2 {
		root := -work[1] / work[0]
		if !isDuplicate(roots, root, cfg.dedup) {
			roots = append(roots, root)
		}
	}

	if cfg.polish > 0 {
		polished := roots[:0]
		for _, r := range roots {
			if p := cfg.polishRoot(coeffs, r); !isDuplicate(polished, p, cfg.dedup) {
				polished = append(polished, p)
			}
		}
		roots = polished
	}
	return roots, nil
}

func (cfg *config) nextRoot(work, found []float64) (float64, bool) {
	for _, seed := range cfg.seeds {
		res := Newton(work, seed, cfg.newtonEpsilon, cfg.maxIterations)
		if !res.OK() {
			cfg.logger.Debug("seed failed", "seed", seed, "status", res.Status.String(), "iterations", res.Iterations)
			continue
		}
		if math.Abs(Eval(work, res.Root)) >= cfg.epsilon {
			continue
		}
		if isDuplicate(found, res.Root, cfg.dedup) {
			continue
		}
		return res.Root, true
	}
	return 0, false
}

func (cfg *config) polishRoot(coeffs []float64, root float64) float64 {
	best, bestAbs := root, math.Abs(Eval(coeffs, root))
	x := root
	for i := 0; i < cfg.polish && bestAbs > 0; i++ {
		dfx := Derivative(coeffs, x)
		if dfx == 0 {
			break
		}
		x -= Eval(coeffs, x) / dfx
		if v := math.Abs(Eval(coeffs, x)); v < bestAbs {
			best, bestAbs = x, v
		}
	}
	return best
}

func isDuplicate(roots []float64, x, threshold float64) bool {
	for _, r := range roots {
		if math.Abs(r-x) < threshold {
			return true
		}
	}
	return false
}
