// Package solver provides the one-dimensional root finders used by curve
// bootstrapping. Roots are discount factors, so the search space is kept
// strictly positive throughout.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Func evaluates a pricing residual at a candidate root.
type Func func(x float64) float64

// FuncD evaluates a pricing residual and its derivative at a candidate root.
type FuncD func(x float64) (fx, dfx float64)

// Defaults applied by New for zero-valued Config fields.
const (
	DefaultTolerance        = 1e-12
	DefaultMaxIterations    = 100
	DefaultNewtonIterations = 50
	DefaultBracketWidenings = 20

	// minRoot keeps candidate discount factors positive.
	minRoot = 1e-9
	// derivativeFloor guards Newton steps against a vanishing derivative.
	derivativeFloor = 1e-15
)

var (
	// ErrBracketNotFound reports that no sign change was found around the
	// anchor even after widening the bracket.
	ErrBracketNotFound = errors.New("solver: no sign change in widened bracket")

	// ErrNonConvergence reports that the iteration limit was reached before
	// the residual tolerance. The best root found so far is still returned.
	ErrNonConvergence = errors.New("solver: iteration limit reached")
)

// Result reports a root search outcome.
type Result struct {
	Root       float64
	Residual   float64
	Iterations int
	Method     string // "newton" or "bisection"
}

// Config tunes a Finder. Zero-valued fields are replaced with package
// defaults by New. A nil Logger disables logging.
type Config struct {
	Tolerance        float64
	MaxIterations    int
	NewtonIterations int
	BracketWidenings int
	Logger           *zerolog.Logger
}

// DefaultConfig returns the bootstrap defaults.
func DefaultConfig() Config {
	return Config{
		Tolerance:        DefaultTolerance,
		MaxIterations:    DefaultMaxIterations,
		NewtonIterations: DefaultNewtonIterations,
		BracketWidenings: DefaultBracketWidenings,
	}
}

// Finder locates roots of pricing residuals near an anchor value.
type Finder struct {
	cfg Config
	log zerolog.Logger
}

// New builds a Finder, filling zero Config fields with defaults.
func New(cfg Config) *Finder {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.NewtonIterations <= 0 {
		cfg.NewtonIterations = DefaultNewtonIterations
	}
	if cfg.BracketWidenings <= 0 {
		cfg.BracketWidenings = DefaultBracketWidenings
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Finder{cfg: cfg, log: log}
}

// Solve brackets the root around anchor and bisects to the configured
// residual tolerance.
//
// The initial bracket is [min(anchor*0.1, 0.01), max(anchor*1.5, 1.5)]. When
// both endpoints have the same sign, the endpoint with the smaller residual
// magnitude lies closer to the root, so the bracket is widened past it: the
// low end by halving, the high end by a factor of 1.2.
func (f *Finder) Solve(fn Func, anchor float64) (Result, error) {
	lo, hi, flo, fhi, err := f.bracket(fn, anchor)
	if err != nil {
		return Result{}, err
	}
	return f.bisect(fn, lo, hi, flo, fhi)
}

// SolveNewton brackets the root, then runs damped Newton-Raphson from the
// anchor. It falls back to bisection on the bracket when the derivative
// vanishes, an iterate escapes the bracket, or the step count runs out.
func (f *Finder) SolveNewton(fn FuncD, anchor float64) (Result, error) {
	residual := func(x float64) float64 {
		fx, _ := fn(x)
		return fx
	}
	lo, hi, flo, fhi, err := f.bracket(residual, anchor)
	if err != nil {
		return Result{}, err
	}

	guess := anchor
	if guess < lo || guess > hi {
		guess = 0.5 * (lo + hi)
	}

	for iter := 1; iter <= f.cfg.NewtonIterations; iter++ {
		fx, dfx := fn(guess)
		if math.IsNaN(fx) || math.IsInf(fx, 0) || math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			break
		}
		if math.Abs(fx) <= f.cfg.Tolerance {
			return Result{Root: guess, Residual: fx, Iterations: iter, Method: "newton"}, nil
		}
		if math.Abs(dfx) < derivativeFloor {
			break
		}

		delta := fx / dfx
		// Damp oversized steps to half the current guess to keep the
		// iterate in the same order of magnitude.
		if math.Abs(delta) > 0.5*math.Abs(guess) {
			delta = math.Copysign(0.5*math.Abs(guess), delta)
		}
		next := guess - delta
		if next < minRoot {
			next = minRoot
		}
		if next < lo || next > hi {
			break
		}
		guess = next
	}

	f.log.Debug().Float64("anchor", anchor).Msg("newton fell back to bisection")
	return f.bisect(residual, lo, hi, flo, fhi)
}

func (f *Finder) bracket(fn Func, anchor float64) (lo, hi, flo, fhi float64, err error) {
	lo = math.Min(anchor*0.1, 0.01)
	if lo < minRoot {
		lo = minRoot
	}
	hi = math.Max(anchor*1.5, 1.5)

	flo = fn(lo)
	fhi = fn(hi)
	for i := 0; i <= f.cfg.BracketWidenings; i++ {
		if (flo < 0) != (fhi < 0) || flo == 0 || fhi == 0 {
			return lo, hi, flo, fhi, nil
		}
		if math.Abs(flo) < math.Abs(fhi) {
			lo *= 0.5
			flo = fn(lo)
		} else {
			hi *= 1.2
			fhi = fn(hi)
		}
	}

	f.log.Warn().
		Float64("anchor", anchor).
		Float64("lo", lo).Float64("hi", hi).
		Msg("bracket search exhausted")
	return 0, 0, 0, 0, fmt.Errorf("bracket: anchor %.6g: %w", anchor, ErrBracketNotFound)
}

func (f *Finder) bisect(fn Func, lo, hi, flo, fhi float64) (Result, error) {
	if math.Abs(flo) <= f.cfg.Tolerance {
		return Result{Root: lo, Residual: flo, Method: "bisection"}, nil
	}
	if math.Abs(fhi) <= f.cfg.Tolerance {
		return Result{Root: hi, Residual: fhi, Method: "bisection"}, nil
	}

	mid, fmid := lo, flo
	for iter := 1; iter <= f.cfg.MaxIterations; iter++ {
		mid = 0.5 * (lo + hi)
		fmid = fn(mid)
		if math.Abs(fmid) <= f.cfg.Tolerance || math.Abs(hi-lo) <= f.cfg.Tolerance {
			return Result{Root: mid, Residual: fmid, Iterations: iter, Method: "bisection"}, nil
		}
		if (fmid < 0) == (flo < 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}

	f.log.Warn().
		Float64("root", mid).Float64("residual", fmid).
		Int("iterations", f.cfg.MaxIterations).
		Msg("bisection hit iteration limit")
	return Result{Root: mid, Residual: fmid, Iterations: f.cfg.MaxIterations, Method: "bisection"},
		fmt.Errorf("bisect: residual %.3g after %d iterations: %w", fmid, f.cfg.MaxIterations, ErrNonConvergence)
}
