package solver_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/solver"
)

func TestSolveBisection(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.DefaultConfig())
	res, err := f.Solve(func(x float64) float64 { return x*x - 0.81 }, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "bisection", res.Method)
	require.InDelta(t, 0.9, res.Root, 1e-9)
	require.LessOrEqual(t, math.Abs(res.Residual), solver.DefaultTolerance)
}

func TestSolveZeroConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.Config{})
	res, err := f.Solve(func(x float64) float64 { return x - 0.42 }, 0.5)
	require.NoError(t, err)
	require.InDelta(t, 0.42, res.Root, 1e-9)
}

func TestSolveNewtonConvergesFast(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.DefaultConfig())
	res, err := f.SolveNewton(func(x float64) (float64, float64) {
		return x*x - 0.81, 2 * x
	}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "newton", res.Method)
	require.InDelta(t, 0.9, res.Root, 1e-12)
	assert.Less(t, res.Iterations, 10, "quadratic convergence should need few steps")
}

func TestSolveNewtonFlatDerivativeFallsBack(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.DefaultConfig())
	res, err := f.SolveNewton(func(x float64) (float64, float64) {
		return x - 0.9, 0
	}, 1.0)
	require.NoError(t, err)

	assert.Equal(t, "bisection", res.Method)
	require.InDelta(t, 0.9, res.Root, 1e-9)
}

func TestSolveWidensBracketUpward(t *testing.T) {
	t.Parallel()

	// Root above the default bracket ceiling of 1.5; the high end must be
	// widened toward it.
	f := solver.New(solver.DefaultConfig())
	res, err := f.Solve(func(x float64) float64 { return x - 2.5 }, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 2.5, res.Root, 1e-9)
}

func TestSolveWidensBracketDownward(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.DefaultConfig())
	res, err := f.Solve(func(x float64) float64 { return x - 0.005 }, 1.0)
	require.NoError(t, err)
	require.InDelta(t, 0.005, res.Root, 1e-9)
}

func TestSolveBracketNotFound(t *testing.T) {
	t.Parallel()

	f := solver.New(solver.DefaultConfig())
	_, err := f.Solve(func(x float64) float64 { return x*x + 1.0 }, 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver.ErrBracketNotFound))
}

func TestSolveNonConvergenceReturnsBestRoot(t *testing.T) {
	t.Parallel()

	cfg := solver.DefaultConfig()
	cfg.MaxIterations = 3
	cfg.Tolerance = 1e-18

	f := solver.New(cfg)
	res, err := f.Solve(func(x float64) float64 { return x - 0.7777777 }, 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver.ErrNonConvergence))
	assert.Equal(t, 3, res.Iterations)
	assert.NotZero(t, res.Root, "best root so far must still be reported")
}
