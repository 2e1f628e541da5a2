// Package interp provides the interpolation schemes used on discount factor
// curves. Times are year fractions from the curve reference date and values
// are discount factors (or pseudo discount factors on projection curves).
package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Method selects an interpolation scheme.
type Method string

const (
	// StepForward interpolates with a piecewise-constant instantaneous
	// forward rate between pillars. On each interval it is identical to
	// log-linear interpolation of the discount factor; extrapolation before
	// the first pillar holds the zero rate flat and extrapolation past the
	// last pillar holds the last interval's forward flat. This matches
	// QuantLib's BackwardFlat forward curve and is arbitrage free.
	StepForward Method = "step-forward"

	// LogLinear interpolates linearly in log discount factor and extends the
	// boundary segments beyond the pillar range.
	LogLinear Method = "log-linear"

	// Linear interpolates the raw values. Intended for zero rate or spread
	// curves, not discount factors.
	Linear Method = "linear"
)

// ErrPillarSpacing reports pillar sets an interpolator cannot be built on:
// fewer than two pillars, non-increasing times, or non-positive values.
var ErrPillarSpacing = errors.New("interp: invalid pillar spacing")

// Interpolator evaluates a curve built on fixed pillars. Evaluating exactly
// at a pillar time returns the stored value without round-off.
type Interpolator interface {
	Value(t float64) float64
	Bounds() (lo, hi float64)
}

// New builds an interpolator over the given pillars. The slices are copied.
func New(method Method, times, values []float64) (Interpolator, error) {
	if err := validatePillars(times, values); err != nil {
		return nil, err
	}
	ts := append([]float64(nil), times...)
	vs := append([]float64(nil), values...)

	switch method {
	case StepForward:
		return newStepForward(ts, vs), nil
	case LogLinear:
		return &logLinear{times: ts, values: vs}, nil
	case Linear:
		return &linear{times: ts, values: vs}, nil
	default:
		return nil, fmt.Errorf("New: unknown interpolation method %q", method)
	}
}

func validatePillars(times, values []float64) error {
	if len(times) != len(values) {
		return fmt.Errorf("New: %d times vs %d values: %w", len(times), len(values), ErrPillarSpacing)
	}
	if len(times) < 2 {
		return fmt.Errorf("New: need at least 2 pillars, got %d: %w", len(times), ErrPillarSpacing)
	}
	for i := range times {
		if i > 0 && times[i] <= times[i-1] {
			return fmt.Errorf("New: pillar times not strictly increasing at index %d (%.9f <= %.9f): %w",
				i, times[i], times[i-1], ErrPillarSpacing)
		}
		if values[i] <= 0 {
			return fmt.Errorf("New: non-positive pillar value %.9g at index %d: %w", values[i], i, ErrPillarSpacing)
		}
	}
	if times[0] < 0 {
		return fmt.Errorf("New: negative first pillar time %.9f: %w", times[0], ErrPillarSpacing)
	}
	return nil
}

// locate returns (index, true) for an exact pillar hit, otherwise the index of
// the first pillar time >= t.
func locate(times []float64, t float64) (int, bool) {
	j := sort.SearchFloat64s(times, t)
	if j < len(times) && times[j] == t {
		return j, true
	}
	return j, false
}

// stepForward holds precomputed interval forwards so repeated evaluation
// during bootstrapping stays cheap.
type stepForward struct {
	times     []float64
	values    []float64
	fwd       []float64 // fwd[i] applies on (times[i], times[i+1])
	firstZero float64   // flat zero rate before the first pillar
}

func newStepForward(times, values []float64) *stepForward {
	n := len(times)
	fwd := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		fwd[i] = (math.Log(values[i]) - math.Log(values[i+1])) / (times[i+1] - times[i])
	}
	var firstZero float64
	if times[0] > 0 {
		firstZero = -math.Log(values[0]) / times[0]
	}
	return &stepForward{times: times, values: values, fwd: fwd, firstZero: firstZero}
}

func (s *stepForward) Value(t float64) float64 {
	j, exact := locate(s.times, t)
	if exact {
		return s.values[j]
	}
	switch {
	case j == 0:
		// Before the first pillar: hold the zero rate flat down to t=0.
		if s.times[0] == 0 {
			return s.values[0]
		}
		return math.Exp(-s.firstZero * t)
	case j == len(s.times):
		// Past the last pillar: hold the last interval's forward flat.
		last := len(s.times) - 1
		return s.values[last] * math.Exp(-s.fwd[last-1]*(t-s.times[last]))
	default:
		i := j - 1
		return s.values[i] * math.Exp(-s.fwd[i]*(t-s.times[i]))
	}
}

func (s *stepForward) Bounds() (float64, float64) {
	return s.times[0], s.times[len(s.times)-1]
}

// logLinear interpolates linearly in log value using the power form
// v = v_i^(1-w) * v_{i+1}^w, which avoids an explicit log/exp round trip at
// the pillars. Boundary segments are extended for extrapolation.
type logLinear struct {
	times  []float64
	values []float64
}

func (l *logLinear) segment(t float64) int {
	j, _ := locate(l.times, t)
	switch {
	case j <= 1:
		return 0
	case j >= len(l.times):
		return len(l.times) - 2
	default:
		return j - 1
	}
}

func (l *logLinear) Value(t float64) float64 {
	if j, exact := locate(l.times, t); exact {
		return l.values[j]
	}
	i := l.segment(t)
	w := (t - l.times[i]) / (l.times[i+1] - l.times[i])
	return math.Pow(l.values[i], 1-w) * math.Pow(l.values[i+1], w)
}

func (l *logLinear) Bounds() (float64, float64) {
	return l.times[0], l.times[len(l.times)-1]
}

type linear struct {
	times  []float64
	values []float64
}

func (l *linear) Value(t float64) float64 {
	j, exact := locate(l.times, t)
	if exact {
		return l.values[j]
	}
	i := j - 1
	if j == 0 {
		i = 0
	} else if j == len(l.times) {
		i = len(l.times) - 2
	}
	w := (t - l.times[i]) / (l.times[i+1] - l.times[i])
	return l.values[i]*(1-w) + l.values[i+1]*w
}

func (l *linear) Bounds() (float64, float64) {
	return l.times[0], l.times[len(l.times)-1]
}
