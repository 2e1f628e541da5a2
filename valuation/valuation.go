// Package valuation prices swap legs off frozen curves. It is the read side
// of the bootstrap: par rates computed here from bootstrapped curves must
// reproduce the input quotes.
package valuation

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/meenmo/curvelib/schedule"
)

// ErrNilCurve reports a missing curve dependency.
var ErrNilCurve = errors.New("valuation: nil curve")

// DiscountCurve discounts cashflows to the reference date.
type DiscountCurve interface {
	DF(date time.Time) float64
	ReferenceDate() time.Time
}

// ProjectionCurve carries the pseudo discount factors forwards are read from.
type ProjectionCurve interface {
	DF(date time.Time) float64
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// Annuity returns the fixed leg annuity, the sum of accrual fractions times
// pay date discount factors.
func Annuity(disc DiscountCurve, periods []schedule.Period) (float64, error) {
	if isNilInterface(disc) {
		return 0, ErrNilCurve
	}
	if len(periods) == 0 {
		return 0, fmt.Errorf("Annuity: empty schedule")
	}
	a := 0.0
	for _, p := range periods {
		a += p.YearFraction * disc.DF(p.PayDate)
	}
	return a, nil
}

// FloatingPV returns the floating leg present value per unit notional.
//
// Each period contributes (px_start/px_end - 1) * df_pay: the simple forward
// times its accrual, with the accrual fraction cancelled against the forward
// denominator since both use the leg day count.
func FloatingPV(proj ProjectionCurve, disc DiscountCurve, periods []schedule.Period) (float64, error) {
	if isNilInterface(proj) || isNilInterface(disc) {
		return 0, ErrNilCurve
	}
	if len(periods) == 0 {
		return 0, fmt.Errorf("FloatingPV: empty schedule")
	}
	pv := 0.0
	for _, p := range periods {
		pxStart := proj.DF(p.StartDate)
		pxEnd := proj.DF(p.EndDate)
		pv += (pxStart/pxEnd - 1.0) * disc.DF(p.PayDate)
	}
	return pv, nil
}

// ParRate returns the fixed rate that zeroes the swap NPV: floating leg PV
// over the fixed leg annuity.
func ParRate(proj ProjectionCurve, disc DiscountCurve, fixed, floating []schedule.Period) (float64, error) {
	annuity, err := Annuity(disc, fixed)
	if err != nil {
		return 0, fmt.Errorf("ParRate: %w", err)
	}
	if annuity == 0 {
		return 0, fmt.Errorf("ParRate: zero annuity")
	}
	floatPV, err := FloatingPV(proj, disc, floating)
	if err != nil {
		return 0, fmt.Errorf("ParRate: %w", err)
	}
	return floatPV / annuity, nil
}

// OISParRate returns the par rate of a self-discounted OIS. With projection
// and discounting on the same curve and chained periods paying on the accrual
// end, the floating leg telescopes to DF(start) - DF(end), so no forward has
// to be evaluated.
func OISParRate(disc DiscountCurve, fixed []schedule.Period) (float64, error) {
	annuity, err := Annuity(disc, fixed)
	if err != nil {
		return 0, fmt.Errorf("OISParRate: %w", err)
	}
	if annuity == 0 {
		return 0, fmt.Errorf("OISParRate: zero annuity")
	}
	start := fixed[0].StartDate
	end := fixed[len(fixed)-1].PayDate
	return (disc.DF(start) - disc.DF(end)) / annuity, nil
}
