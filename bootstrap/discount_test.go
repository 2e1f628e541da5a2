package bootstrap_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/solver"
	"github.com/meenmo/curvelib/valuation"
)

// 2024-01-02 is a Tuesday; with the two-day TARGET spot lag the effective
// date of every instrument below is Thursday 2024-01-04.
var refDate = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func estrInstruments(t *testing.T, quotes []bootstrap.Quote) []bootstrap.Instrument {
	t.Helper()
	insts, err := bootstrap.BuildInstruments(refDate, quotes, market.CurveESTR)
	require.NoError(t, err)
	return insts
}

func TestBuildInstrumentsESTR(t *testing.T) {
	t.Parallel()

	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "2Y", Rate: 3.25},
		{Tenor: "1Y", Rate: 3.5},
	})
	require.Len(t, insts, 2)

	// Sorted by maturity, percent quotes normalized to decimal, and no
	// deposit inference on an overnight index.
	first := insts[0]
	assert.Equal(t, "1Y", first.Tenor)
	assert.Equal(t, bootstrap.KindSwap, first.Kind)
	assert.InDelta(t, 0.035, first.Rate, 1e-15)
	assert.Equal(t, date(2024, time.January, 4), first.Effective)

	// 2025-01-04 is a Saturday; Modified Following lands on Monday the 6th.
	assert.Equal(t, date(2025, time.January, 6), first.Maturity)
	require.Len(t, first.FixedPeriods, 1)
	assert.InEpsilon(t, 368.0/360.0, first.FixedPeriods[0].YearFraction, 1e-15)

	second := insts[1]
	assert.Equal(t, "2Y", second.Tenor)
	assert.Equal(t, date(2026, time.January, 5), second.Maturity)
	require.Len(t, second.FixedPeriods, 2)
	assert.Equal(t, date(2025, time.January, 6), second.FixedPeriods[0].EndDate)
}

func TestBuildInstrumentsDuplicateMaturity(t *testing.T) {
	t.Parallel()

	// 12M and 1Y resolve to the same date.
	_, err := bootstrap.BuildInstruments(refDate, []bootstrap.Quote{
		{Tenor: "12M", Rate: 3.5},
		{Tenor: "1Y", Rate: 3.6},
	}, market.CurveESTR)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bootstrap.ErrQuoteOrder))
}

func TestDiscountSingleQuoteClosedForm(t *testing.T) {
	t.Parallel()

	insts := estrInstruments(t, []bootstrap.Quote{{Tenor: "1Y", Rate: 3.5}})
	d := bootstrap.NewDiscount(refDate, market.CurveESTR)
	c, results, err := d.Bootstrap(insts)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "closed-form", res.Method)
	assert.Zero(t, res.Iterations)
	assert.Equal(t, date(2025, time.January, 6), res.Date)

	// Single coupon at maturity with the effective date on the candidate
	// arc: x = (1 + r*alpha)^(-1/(1-w)), w = tEff/tMat.
	alpha := 368.0 / 360.0
	w := (2.0 / 365.0) / (370.0 / 365.0)
	want := math.Pow(1.0+0.035*alpha, -1.0/(1.0-w))
	assert.InEpsilon(t, want, res.DF, 1e-13)

	// The frozen curve carries the solved pillar bit for bit.
	assert.Equal(t, res.DF, c.DF(res.Date))
	assert.Equal(t, res.Zero, c.ZeroRate(res.Date))
}

func TestDiscountRoundTrip(t *testing.T) {
	t.Parallel()

	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "1Y", Rate: 3.5},
		{Tenor: "2Y", Rate: 3.25},
		{Tenor: "4Y", Rate: 3.0},
	})
	d := bootstrap.NewDiscount(refDate, market.CurveESTR)
	c, results, err := d.Bootstrap(insts)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Adjacent maturities solve in closed form; the 4Y quote skips 3Y and
	// prices an interim coupon on the candidate arc, forcing the root
	// finder.
	assert.Equal(t, "closed-form", results[0].Method)
	assert.Equal(t, "closed-form", results[1].Method)
	assert.Equal(t, "newton", results[2].Method)
	assert.Greater(t, results[2].Iterations, 0)
	assert.Less(t, results[2].Iterations, 20)

	// Re-pricing every instrument off the finalized curve reproduces its
	// input quote.
	for i, inst := range insts {
		par, err := valuation.OISParRate(c, inst.FixedPeriods)
		require.NoError(t, err)
		assert.InDelta(t, inst.Rate, par, 1e-9, "instrument %d (%s)", i, inst.Tenor)
	}

	// Discount factors decrease with positive rates.
	prev := 1.0
	for _, res := range results {
		assert.Less(t, res.DF, prev)
		prev = res.DF
	}
}

func TestDiscountDepositForwardExact(t *testing.T) {
	t.Parallel()

	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "6M", Rate: 3.8, Kind: bootstrap.KindDeposit},
		{Tenor: "1Y", Rate: 3.5},
	})
	require.Equal(t, bootstrap.KindDeposit, insts[0].Kind)

	d := bootstrap.NewDiscount(refDate, market.CurveESTR)
	c, results, err := d.Bootstrap(insts)
	require.NoError(t, err)
	assert.Equal(t, "deposit", results[0].Method)

	// The simple forward implied between spot and the deposit maturity
	// equals the quoted rate on the finalized curve.
	dep := insts[0]
	fwd := (c.DF(dep.Effective)/c.DF(dep.Maturity) - 1.0) / dep.Accrual
	assert.InDelta(t, dep.Rate, fwd, 1e-12)
}

func TestDiscountNegativeRates(t *testing.T) {
	t.Parallel()

	// Euro area 2019: the whole short end below zero. Discount factors
	// then sit above one and must still round-trip.
	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "1Y", Rate: -0.5},
		{Tenor: "2Y", Rate: -0.45},
	})
	d := bootstrap.NewDiscount(refDate, market.CurveESTR)
	c, results, err := d.Bootstrap(insts)
	require.NoError(t, err)

	assert.Greater(t, results[0].DF, 1.0)
	assert.Greater(t, results[1].DF, 1.0)
	for _, inst := range insts {
		par, err := valuation.OISParRate(c, inst.FixedPeriods)
		require.NoError(t, err)
		assert.InDelta(t, inst.Rate, par, 1e-9)
	}
}

func TestDiscountSpotStub(t *testing.T) {
	t.Parallel()

	quotes := []bootstrap.Quote{
		{Tenor: "1Y", Rate: 3.5},
		{Tenor: "2Y", Rate: 3.25},
	}
	insts := estrInstruments(t, quotes)

	plain, _, err := bootstrap.NewDiscount(refDate, market.CurveESTR).Bootstrap(insts)
	require.NoError(t, err)

	stubbed, _, err := bootstrap.NewDiscount(refDate, market.CurveESTR,
		bootstrap.WithSpotStub(true),
		bootstrap.WithShortEndRate(0.033),
	).Bootstrap(insts)
	require.NoError(t, err)

	// One extra pillar at the spot date, discounting the two-day lag at
	// the overridden short-end rate.
	require.Len(t, stubbed.Pillars(), len(plain.Pillars())+1)
	spot := date(2024, time.January, 4)
	assert.Equal(t, spot, stubbed.Pillars()[1].Date)
	wantStub := math.Exp(-0.033 * 2.0 / 360.0)
	assert.InEpsilon(t, wantStub, stubbed.DF(spot), 1e-15)

	// Solved pillars are untouched by the stub.
	for _, inst := range insts {
		assert.Equal(t, plain.DF(inst.Maturity), stubbed.DF(inst.Maturity))
	}
}

func TestDiscountBracketNotFound(t *testing.T) {
	t.Parallel()

	// A -99% quote behind a +3.5% curve pushes the pillar out of any
	// reachable bracket.
	insts := estrInstruments(t, []bootstrap.Quote{
		{Tenor: "1Y", Rate: 3.5},
		{Tenor: "3Y", Rate: -0.99},
	})
	d := bootstrap.NewDiscount(refDate, market.CurveESTR)
	_, _, err := d.Bootstrap(insts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solver.ErrBracketNotFound))
}

func TestDiscountNoInstruments(t *testing.T) {
	t.Parallel()

	_, _, err := bootstrap.NewDiscount(refDate, market.CurveESTR).Bootstrap(nil)
	require.Error(t, err)

	_, err = bootstrap.BuildInstruments(refDate, nil, market.CurveESTR)
	require.Error(t, err)
}

func TestDiscountUnknownKind(t *testing.T) {
	t.Parallel()

	insts := estrInstruments(t, []bootstrap.Quote{{Tenor: "1Y", Rate: 3.5}})
	insts[0].Kind = bootstrap.Kind("future")
	_, _, err := bootstrap.NewDiscount(refDate, market.CurveESTR).Bootstrap(insts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown instrument kind")
}
