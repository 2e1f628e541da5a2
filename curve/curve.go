package curve

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/utils"
)

// Curve is an immutable discount factor term structure. Evaluation at a
// pillar date returns the bootstrapped value without round-off; between
// pillars the configured interpolation applies.
type Curve struct {
	refDate time.Time
	method  interp.Method
	dates   []time.Time
	times   []float64
	values  []float64
	ip      interp.Interpolator
}

// Pillar is one curve node. Zero is the continuously compounded zero rate in
// percent, rounded to 12 decimals the way Bloomberg SWPM displays curves.
type Pillar struct {
	Date time.Time
	Time float64
	DF   float64
	Zero float64
}

func newCurve(refDate time.Time, dates []time.Time, times, values []float64, method interp.Method) (*Curve, error) {
	ip, err := interp.New(method, times, values)
	if err != nil {
		return nil, err
	}
	return &Curve{
		refDate: refDate,
		method:  method,
		dates:   append([]time.Time(nil), dates...),
		times:   append([]float64(nil), times...),
		values:  append([]float64(nil), values...),
		ip:      ip,
	}, nil
}

// ReferenceDate returns the curve date.
func (c *Curve) ReferenceDate() time.Time {
	return c.refDate
}

// Method returns the interpolation scheme the curve was frozen with.
func (c *Curve) Method() interp.Method {
	return c.method
}

// TimeOf converts a date to the curve's ACT/365F time axis.
func (c *Curve) TimeOf(date time.Time) float64 {
	return utils.YearFraction(c.refDate, date, curveDayCount)
}

// DF returns the discount factor for a date. Dates on or before the
// reference date discount to 1.
func (c *Curve) DF(date time.Time) float64 {
	return c.DFAt(c.TimeOf(date))
}

// DFAt returns the discount factor at a year fraction from the curve date.
func (c *Curve) DFAt(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return c.ip.Value(t)
}

// ZeroRate returns the continuously compounded zero rate in percent.
func (c *Curve) ZeroRate(date time.Time) float64 {
	return c.ZeroRateAt(c.TimeOf(date))
}

// ZeroRateAt returns the continuously compounded zero rate in percent at a
// year fraction from the curve date.
func (c *Curve) ZeroRateAt(t float64) float64 {
	if t <= 0 {
		return 0.0
	}
	return utils.RoundTo(-math.Log(c.DFAt(t))/t*100.0, 12)
}

// Forward returns the continuously compounded forward rate (decimal) between
// two dates on the curve's time axis.
func (c *Curve) Forward(start, end time.Time) float64 {
	t0, t1 := c.TimeOf(start), c.TimeOf(end)
	if t1 <= t0 {
		return 0.0
	}
	return math.Log(c.DFAt(t0)/c.DFAt(t1)) / (t1 - t0)
}

// Pillars returns a copy of the curve nodes, including the unit seed pillar.
func (c *Curve) Pillars() []Pillar {
	out := make([]Pillar, len(c.times))
	for i := range c.times {
		out[i] = Pillar{
			Date: c.dates[i],
			Time: c.times[i],
			DF:   c.values[i],
			Zero: c.ZeroRateAt(c.times[i]),
		}
	}
	return out
}

// Bounds returns the first and last pillar times.
func (c *Curve) Bounds() (lo, hi float64) {
	return c.ip.Bounds()
}

// Extrapolated reports whether a date lies beyond the last pillar.
func (c *Curve) Extrapolated(date time.Time) bool {
	_, hi := c.ip.Bounds()
	return c.TimeOf(date) > hi
}

// ShiftParallel returns a copy of the curve with every zero rate moved by the
// given basis points. Discount factors scale by exp(-bp/1e4 * t).
func (c *Curve) ShiftParallel(bp float64) (*Curve, error) {
	shift := bp * 1e-4
	values := make([]float64, len(c.values))
	for i := range c.values {
		values[i] = c.values[i] * math.Exp(-shift*c.times[i])
	}
	shifted, err := newCurve(c.refDate, c.dates, c.times, values, c.method)
	if err != nil {
		return nil, fmt.Errorf("ShiftParallel: %w", err)
	}
	return shifted, nil
}

// WithSpotStub returns a copy of the curve with a short-end pillar inserted
// between the seed and the first bootstrapped pillar. The stub carries the
// realized overnight level between the curve date and spot, so that cashflows
// inside the spot lag discount off a real rate instead of the flat
// extrapolation.
func (c *Curve) WithSpotStub(spotDate time.Time, df float64) (*Curve, error) {
	t := c.TimeOf(spotDate)
	if t <= 0 || len(c.times) < 2 || t >= c.times[1] {
		return nil, fmt.Errorf("WithSpotStub: spot %s outside (%s, %s): %w",
			spotDate.Format("2006-01-02"), c.refDate.Format("2006-01-02"),
			c.dates[1].Format("2006-01-02"), interp.ErrPillarSpacing)
	}
	if df <= 0 {
		return nil, fmt.Errorf("WithSpotStub: non-positive stub discount factor %.9g: %w", df, interp.ErrPillarSpacing)
	}

	dates := append([]time.Time{c.dates[0], spotDate}, c.dates[1:]...)
	times := append([]float64{c.times[0], t}, c.times[1:]...)
	values := append([]float64{c.values[0], df}, c.values[1:]...)

	stubbed, err := newCurve(c.refDate, dates, times, values, c.method)
	if err != nil {
		return nil, fmt.Errorf("WithSpotStub: %w", err)
	}
	return stubbed, nil
}
