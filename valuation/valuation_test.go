package valuation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/schedule"
	"github.com/meenmo/curvelib/valuation"
)

var refDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

func testCurve(t *testing.T) *curve.Curve {
	t.Helper()
	st := curve.NewState(refDate)
	require.NoError(t, st.Append(refDate.AddDate(1, 0, 0), 0.97))
	require.NoError(t, st.Append(refDate.AddDate(2, 0, 0), 0.94))
	c, err := st.Freeze(interp.StepForward)
	require.NoError(t, err)
	return c
}

func testPeriods() []schedule.Period {
	oneYear := refDate.AddDate(1, 0, 0)
	twoYears := refDate.AddDate(2, 0, 0)
	return []schedule.Period{
		{StartDate: refDate, EndDate: oneYear, PayDate: oneYear, YearFraction: 366.0 / 360.0},
		{StartDate: oneYear, EndDate: twoYears, PayDate: twoYears, YearFraction: 365.0 / 360.0},
	}
}

func TestAnnuity(t *testing.T) {
	t.Parallel()

	c := testCurve(t)
	a, err := valuation.Annuity(c, testPeriods())
	require.NoError(t, err)
	require.InDelta(t, 366.0/360.0*0.97+365.0/360.0*0.94, a, 1e-15)
}

func TestFloatingPVTelescopes(t *testing.T) {
	t.Parallel()

	// Projecting and discounting on the same curve with chained periods
	// collapses the floating leg to DF(start) - DF(end).
	c := testCurve(t)
	pv, err := valuation.FloatingPV(c, c, testPeriods())
	require.NoError(t, err)
	require.InDelta(t, 1.0-0.94, pv, 1e-15)
}

func TestParRateMatchesOISParRate(t *testing.T) {
	t.Parallel()

	c := testCurve(t)
	periods := testPeriods()

	pr, err := valuation.ParRate(c, c, periods, periods)
	require.NoError(t, err)
	ois, err := valuation.OISParRate(c, periods)
	require.NoError(t, err)
	require.InDelta(t, ois, pr, 1e-15)

	annuity, err := valuation.Annuity(c, periods)
	require.NoError(t, err)
	require.InDelta(t, (1.0-0.94)/annuity, ois, 1e-15)
}

func TestNilCurveRejected(t *testing.T) {
	t.Parallel()

	periods := testPeriods()

	_, err := valuation.Annuity(nil, periods)
	assert.True(t, errors.Is(err, valuation.ErrNilCurve))

	// A typed nil pointer behind the interface must be caught too.
	var c *curve.Curve
	_, err = valuation.Annuity(c, periods)
	assert.True(t, errors.Is(err, valuation.ErrNilCurve))

	_, err = valuation.FloatingPV(c, testCurve(t), periods)
	assert.True(t, errors.Is(err, valuation.ErrNilCurve))

	_, err = valuation.ParRate(testCurve(t), c, periods, periods)
	assert.True(t, errors.Is(err, valuation.ErrNilCurve))
}

func TestEmptyScheduleRejected(t *testing.T) {
	t.Parallel()

	c := testCurve(t)
	_, err := valuation.Annuity(c, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, valuation.ErrNilCurve))
}
