package bootstrap_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/valuation"
)

func estrDiscount(t *testing.T) *curve.Curve {
	t.Helper()
	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "1Y", Rate: 3.3},
		{Tenor: "2Y", Rate: 3.1},
	})
	c, _, err := bootstrap.NewDiscount(refDate, market.CurveESTR).Bootstrap(insts)
	require.NoError(t, err)
	return c
}

func euribor6MInstruments(t *testing.T, quotes []bootstrap.Quote) []bootstrap.Instrument {
	t.Helper()
	insts, err := bootstrap.BuildInstruments(refDate, quotes, market.CurveEURIBOR6M)
	require.NoError(t, err)
	return insts
}

func TestProjectionRoundTrip(t *testing.T) {
	t.Parallel()

	disc := estrDiscount(t)
	insts := euribor6MInstruments(t, []bootstrap.Quote{
		{Tenor: "6M", Rate: 3.9},
		{Tenor: "1Y", Rate: 3.7},
		{Tenor: "2Y", Rate: 3.4},
	})

	// The 6M quote matches the index tenor and becomes the fixing deposit.
	require.Equal(t, bootstrap.KindDeposit, insts[0].Kind)
	require.Equal(t, bootstrap.KindSwap, insts[1].Kind)

	p, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, disc)
	require.NoError(t, err)
	proj, results, err := p.Bootstrap(insts)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Dual-curve par rates off the finalized pair reproduce the quotes.
	for i, inst := range insts {
		if inst.Kind != bootstrap.KindSwap {
			continue
		}
		par, err := valuation.ParRate(proj, disc, inst.FixedPeriods, inst.FloatPeriods)
		require.NoError(t, err)
		assert.InDelta(t, inst.Rate, par, 1e-9, "instrument %d (%s)", i, inst.Tenor)
	}
}

func TestProjectionDepositPinsSpot(t *testing.T) {
	t.Parallel()

	disc := estrDiscount(t)
	insts := euribor6MInstruments(t, []bootstrap.Quote{
		{Tenor: "6M", Rate: 3.9},
		{Tenor: "1Y", Rate: 3.7},
	})
	p, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, disc)
	require.NoError(t, err)
	proj, results, err := p.Bootstrap(insts)
	require.NoError(t, err)

	// Pseudo discounting starts at 1 on the spot date, so the deposit
	// pillar is 1/(1 + r*alpha) and the implied fixing equals the quote.
	spot := date(2024, time.January, 4)
	assert.Equal(t, 1.0, proj.DF(spot))

	dep := insts[0]
	assert.Equal(t, "deposit", results[0].Method)
	assert.InEpsilon(t, 1.0/(1.0+0.039*182.0/360.0), results[0].DF, 1e-15)
	fwd := (proj.DF(dep.Effective)/proj.DF(dep.Maturity) - 1.0) / dep.Accrual
	assert.InDelta(t, dep.Rate, fwd, 1e-12)
}

func TestProjectionCommitsFloatAccrualEnds(t *testing.T) {
	t.Parallel()

	disc := estrDiscount(t)
	insts := euribor6MInstruments(t, []bootstrap.Quote{
		{Tenor: "6M", Rate: 3.9},
		{Tenor: "1Y", Rate: 3.7},
		{Tenor: "2Y", Rate: 3.4},
	})
	p, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, disc)
	require.NoError(t, err)
	proj, results, err := p.Bootstrap(insts)
	require.NoError(t, err)

	// Seed, spot stub, 6M deposit, one interim plus maturity per swap.
	pillars := proj.Pillars()
	require.Len(t, pillars, 7)

	wantDates := []time.Time{
		refDate,
		date(2024, time.January, 4),
		date(2024, time.July, 4),
		date(2024, time.July, 8),
		date(2025, time.January, 6),
		date(2025, time.July, 7),
		date(2026, time.January, 5),
	}
	for i, want := range wantDates {
		assert.Equal(t, want, pillars[i].Date, "pillar %d", i)
	}

	// Solved pillar values survive the freeze bit for bit.
	for _, res := range results {
		assert.Equal(t, res.DF, proj.DF(res.Date), res.Tenor)
	}
	for _, res := range results[1:] {
		assert.Equal(t, "bisection", res.Method)
		assert.Greater(t, res.Iterations, 0)
	}
}

func TestProjectionSwapOnly(t *testing.T) {
	t.Parallel()

	// No fixing deposit quoted: the first swap solves against the spot
	// stub alone.
	disc := estrDiscount(t)
	insts := euribor6MInstruments(t, []bootstrap.Quote{{Tenor: "1Y", Rate: 3.7}})
	p, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, disc)
	require.NoError(t, err)
	proj, _, err := p.Bootstrap(insts)
	require.NoError(t, err)

	par, err := valuation.ParRate(proj, disc, insts[0].FixedPeriods, insts[0].FloatPeriods)
	require.NoError(t, err)
	assert.InDelta(t, 0.037, par, 1e-9)
}

func TestNewProjectionNilDiscount(t *testing.T) {
	t.Parallel()

	_, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, valuation.ErrNilCurve))
}

func TestProjectionNoInstruments(t *testing.T) {
	t.Parallel()

	p, err := bootstrap.NewProjection(refDate, market.CurveEURIBOR6M, estrDiscount(t))
	require.NoError(t, err)
	_, _, err = p.Bootstrap(nil)
	require.Error(t, err)
}
