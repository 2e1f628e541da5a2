package curve_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/interp"
)

var refDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

func buildCurve(t *testing.T) *curve.Curve {
	t.Helper()
	st := curve.NewState(refDate)
	require.NoError(t, st.Append(refDate.AddDate(1, 0, 0), 0.98))
	require.NoError(t, st.Append(refDate.AddDate(2, 0, 0), 0.96))
	c, err := st.Freeze(interp.StepForward)
	require.NoError(t, err)
	return c
}

func TestStateAppendOrdering(t *testing.T) {
	t.Parallel()

	st := curve.NewState(refDate)
	require.NoError(t, st.Append(refDate.AddDate(1, 0, 0), 0.98))

	err := st.Append(refDate.AddDate(1, 0, 0), 0.97)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interp.ErrPillarSpacing), "duplicate pillar date must be rejected")

	err = st.Append(refDate.AddDate(0, 6, 0), 0.99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interp.ErrPillarSpacing), "out of order pillar must be rejected")

	err = st.Append(refDate.AddDate(2, 0, 0), -0.5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interp.ErrPillarSpacing), "negative discount factor must be rejected")

	assert.Equal(t, 2, st.Len())
}

func TestStateFreezeGuards(t *testing.T) {
	t.Parallel()

	st := curve.NewState(refDate)
	_, err := st.Freeze(interp.StepForward)
	require.Error(t, err, "seed pillar alone cannot be frozen")

	require.NoError(t, st.Append(refDate.AddDate(1, 0, 0), 0.98))
	_, err = st.Freeze(interp.StepForward)
	require.NoError(t, err)

	err = st.Append(refDate.AddDate(2, 0, 0), 0.96)
	require.Error(t, err, "append after freeze must fail")
}

func TestStateValueAndSnapshot(t *testing.T) {
	t.Parallel()

	st := curve.NewState(refDate)
	oneYear := refDate.AddDate(1, 0, 0)
	require.NoError(t, st.Append(oneYear, 0.98))

	v, ok := st.Value(oneYear)
	require.True(t, ok)
	assert.Equal(t, 0.98, v)

	_, ok = st.Value(refDate.AddDate(0, 6, 0))
	assert.False(t, ok)

	times, values := st.Snapshot()
	require.Len(t, times, 2)
	times[0] = 99.0
	values[0] = 99.0
	_, tAnchor, vAnchor := st.Anchor()
	assert.Equal(t, st.TimeOf(oneYear), tAnchor, "snapshot must not alias internal state")
	assert.Equal(t, 0.98, vAnchor)
}

func TestCurveEvaluation(t *testing.T) {
	t.Parallel()

	c := buildCurve(t)
	oneYear := refDate.AddDate(1, 0, 0)
	twoYears := refDate.AddDate(2, 0, 0)

	assert.Equal(t, 0.98, c.DF(oneYear), "pillar dates must round-trip without round-off")
	assert.Equal(t, 0.96, c.DF(twoYears))
	assert.Equal(t, 1.0, c.DF(refDate))
	assert.Equal(t, 1.0, c.DF(refDate.AddDate(0, 0, -5)))

	t1 := c.TimeOf(oneYear)
	require.InDelta(t, -math.Log(0.98)/t1*100.0, c.ZeroRate(oneYear), 1e-12)
	assert.Equal(t, 0.0, c.ZeroRate(refDate))

	fwd := c.Forward(oneYear, twoYears)
	t2 := c.TimeOf(twoYears)
	require.InDelta(t, math.Log(0.98/0.96)/(t2-t1), fwd, 1e-15)

	assert.False(t, c.Extrapolated(twoYears))
	assert.True(t, c.Extrapolated(twoYears.AddDate(0, 0, 1)))
}

func TestCurvePillars(t *testing.T) {
	t.Parallel()

	c := buildCurve(t)
	pillars := c.Pillars()
	require.Len(t, pillars, 3)

	assert.Equal(t, 0.0, pillars[0].Time)
	assert.Equal(t, 1.0, pillars[0].DF)
	assert.Equal(t, 0.98, pillars[1].DF)
	assert.True(t, pillars[2].Date.Equal(refDate.AddDate(2, 0, 0)))
}

func TestShiftParallel(t *testing.T) {
	t.Parallel()

	c := buildCurve(t)
	shifted, err := c.ShiftParallel(10.0)
	require.NoError(t, err)

	oneYear := refDate.AddDate(1, 0, 0)
	t1 := c.TimeOf(oneYear)
	require.InDelta(t, 0.98*math.Exp(-0.001*t1), shifted.DF(oneYear), 1e-15)
	require.InDelta(t, c.ZeroRate(oneYear)+0.1, shifted.ZeroRate(oneYear), 1e-9)
}

func TestWithSpotStub(t *testing.T) {
	t.Parallel()

	c := buildCurve(t)
	spot := refDate.AddDate(0, 0, 2)
	stubDF := math.Exp(-0.039 * 2.0 / 360.0)

	stubbed, err := c.WithSpotStub(spot, stubDF)
	require.NoError(t, err)
	assert.Equal(t, stubDF, stubbed.DF(spot))
	assert.Equal(t, 0.98, stubbed.DF(refDate.AddDate(1, 0, 0)), "existing pillars must survive the stub insert")

	_, err = c.WithSpotStub(refDate.AddDate(1, 6, 0), 0.99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interp.ErrPillarSpacing))

	_, err = c.WithSpotStub(spot, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interp.ErrPillarSpacing))
}
