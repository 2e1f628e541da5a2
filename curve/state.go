// Package curve holds discount factor term structures. A State accumulates
// pillars while a curve is being bootstrapped; Freeze turns it into an
// immutable Curve for pricing.
package curve

import (
	"fmt"
	"time"

	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/utils"
)

// curveDayCount fixes the time axis of every curve to ACT/365F year
// fractions from the reference date, matching Bloomberg SWPM curve screens.
const curveDayCount = "ACT/365F"

// State is a discount curve under construction. It is seeded with the unit
// pillar (t=0, df=1) at the reference date and grows by strictly ascending
// Append calls as instruments are solved.
type State struct {
	refDate time.Time
	dates   []time.Time
	times   []float64
	values  []float64
	frozen  bool
}

// NewState seeds a curve state at the reference date.
func NewState(refDate time.Time) *State {
	return &State{
		refDate: refDate,
		dates:   []time.Time{refDate},
		times:   []float64{0.0},
		values:  []float64{1.0},
	}
}

// ReferenceDate returns the curve date pillars are measured from.
func (s *State) ReferenceDate() time.Time {
	return s.refDate
}

// TimeOf converts a date to the curve's time axis.
func (s *State) TimeOf(date time.Time) float64 {
	return utils.YearFraction(s.refDate, date, curveDayCount)
}

// Append adds a pillar. Pillars must arrive in strictly ascending date order
// with positive discount factors; violations wrap interp.ErrPillarSpacing.
func (s *State) Append(date time.Time, value float64) error {
	if s.frozen {
		return fmt.Errorf("Append: state already frozen")
	}
	last := s.dates[len(s.dates)-1]
	if !date.After(last) {
		return fmt.Errorf("Append: pillar %s not after %s: %w",
			date.Format("2006-01-02"), last.Format("2006-01-02"), interp.ErrPillarSpacing)
	}
	if value <= 0 {
		return fmt.Errorf("Append: non-positive discount factor %.9g at %s: %w",
			value, date.Format("2006-01-02"), interp.ErrPillarSpacing)
	}
	s.dates = append(s.dates, date)
	s.times = append(s.times, s.TimeOf(date))
	s.values = append(s.values, value)
	return nil
}

// Len returns the pillar count including the unit seed pillar.
func (s *State) Len() int {
	return len(s.times)
}

// Anchor returns the last committed pillar.
func (s *State) Anchor() (date time.Time, t float64, value float64) {
	i := len(s.times) - 1
	return s.dates[i], s.times[i], s.values[i]
}

// Value looks up the discount factor committed at an exact pillar date.
func (s *State) Value(date time.Time) (float64, bool) {
	for i := len(s.dates) - 1; i >= 0; i-- {
		if s.dates[i].Equal(date) {
			return s.values[i], true
		}
	}
	return 0, false
}

// Snapshot copies the pillar times and values committed so far.
func (s *State) Snapshot() (times, values []float64) {
	return append([]float64(nil), s.times...), append([]float64(nil), s.values...)
}

// Freeze builds the immutable curve and blocks further appends. At least one
// pillar beyond the seed is required.
func (s *State) Freeze(method interp.Method) (*Curve, error) {
	c, err := newCurve(s.refDate, s.dates, s.times, s.values, method)
	if err != nil {
		return nil, fmt.Errorf("Freeze: %w", err)
	}
	s.frozen = true
	return c, nil
}
