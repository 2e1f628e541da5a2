package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateBackwardRegular(t *testing.T) {
	t.Parallel()

	// 2Y semiannual EURIBOR6M leg, effective exactly on cycle.
	effective := date(2024, time.January, 8)
	maturity := date(2026, time.January, 8)

	periods, err := schedule.Generate(effective, maturity, market.EURIBOR6MFloat)
	require.NoError(t, err)
	require.Len(t, periods, 4)

	assert.True(t, periods[0].StartDate.Equal(effective))
	assert.True(t, periods[3].EndDate.Equal(maturity))
	for i, p := range periods {
		assert.False(t, p.IsStub, "period %d should be regular", i)
		if i > 0 {
			assert.True(t, p.StartDate.Equal(periods[i-1].EndDate), "period %d must chain", i)
		}
	}

	// 2024-01-08 to 2024-07-08 is 182 days on ACT/360.
	require.InDelta(t, 182.0/360.0, periods[0].YearFraction, 1e-12)
}

func TestGenerateBackwardFrontStub(t *testing.T) {
	t.Parallel()

	// 18M swap with an annual fixed leg rolls back 18M -> 6M -> effective,
	// leaving a 6M front stub.
	effective := date(2024, time.January, 8)
	maturity := date(2025, time.July, 8)

	periods, err := schedule.Generate(effective, maturity, market.EURFixedAnnual)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.True(t, periods[0].IsStub)
	assert.False(t, periods[1].IsStub)
	assert.True(t, periods[0].EndDate.Equal(date(2024, time.July, 8)))
	assert.True(t, periods[1].EndDate.Equal(maturity))
}

func TestGenerateBackwardMergesShortStub(t *testing.T) {
	t.Parallel()

	// Rolling 12M back from 2025-01-12 lands 4 days after effective. The tiny
	// stub is merged, so a single long period covers the whole span.
	effective := date(2024, time.January, 8)
	maturity := date(2025, time.January, 12)

	periods, err := schedule.Generate(effective, maturity, market.EURFixedAnnual)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.True(t, periods[0].IsStub)
	assert.True(t, periods[0].StartDate.Equal(effective))
}

func TestGenerateForwardFinalStub(t *testing.T) {
	t.Parallel()

	leg := market.ESTRFixed
	leg.ScheduleDirection = market.ScheduleForward

	effective := date(2024, time.January, 8)
	maturity := date(2025, time.July, 8)

	periods, err := schedule.Generate(effective, maturity, leg)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	assert.False(t, periods[0].IsStub)
	assert.True(t, periods[1].IsStub)
	assert.True(t, periods[1].EndDate.Equal(maturity))
}

func TestGenerateAdjustsWeekendBoundaries(t *testing.T) {
	t.Parallel()

	// 2025-01-05 falls on a Sunday; both the end of the first year and the
	// start of the second must land on Monday 2025-01-06.
	effective := date(2024, time.January, 5)
	maturity := date(2026, time.January, 5)

	periods, err := schedule.Generate(effective, maturity, market.ESTRFixed)
	require.NoError(t, err)
	require.Len(t, periods, 2)

	monday := date(2025, time.January, 6)
	assert.True(t, periods[0].EndDate.Equal(monday))
	assert.True(t, periods[1].StartDate.Equal(monday))
	assert.True(t, periods[0].PayDate.Equal(monday), "zero pay delay keeps pay date on accrual end")
}

func TestGenerateRejectsInvertedDates(t *testing.T) {
	t.Parallel()

	_, err := schedule.Generate(date(2025, time.March, 3), date(2024, time.March, 3), market.ESTRFixed)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schedule.ErrInvalidPeriod))
}

func TestValidateRejectsBrokenChain(t *testing.T) {
	t.Parallel()

	periods := []schedule.Period{
		{StartDate: date(2024, time.January, 8), EndDate: date(2024, time.July, 8), YearFraction: 0.5},
		{StartDate: date(2024, time.July, 9), EndDate: date(2025, time.January, 8), YearFraction: 0.5},
	}
	err := schedule.Validate(periods)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schedule.ErrInvalidPeriod))

	require.Error(t, schedule.Validate(nil))
}
