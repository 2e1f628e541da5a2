// Package schedule generates accrual periods for swap legs.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/utils"
)

// ErrInvalidPeriod reports a schedule whose periods are empty, unordered, or
// have non-positive accrual.
var ErrInvalidPeriod = errors.New("schedule: invalid period")

// Period is one accrual period of a swap leg. Dates are business-day adjusted
// and YearFraction is measured between the adjusted dates with the leg's day
// count, matching Bloomberg SWPM cashflow screens.
type Period struct {
	StartDate    time.Time
	EndDate      time.Time
	PayDate      time.Time
	YearFraction float64
	IsStub       bool
}

// Generate builds the accrual schedule for a leg between effective and maturity.
//
// When leg.ScheduleDirection is ScheduleBackward, periods are rolled back from
// maturity (Bloomberg SWPM convention for IBOR swaps) and a short first stub
// within 7 days of the effective date is merged into the following period.
// Forward generation rolls from the effective date and merges a short final
// stub into the preceding period the same way.
func Generate(effective, maturity time.Time, leg market.LegConvention) ([]Period, error) {
	if maturity.Before(effective) {
		return nil, fmt.Errorf("Generate: maturity %s before effective %s: %w",
			maturity.Format("2006-01-02"), effective.Format("2006-01-02"), ErrInvalidPeriod)
	}
	if leg.PayFrequency <= 0 {
		return nil, fmt.Errorf("Generate: unsupported pay frequency %d: %w", leg.PayFrequency, ErrInvalidPeriod)
	}

	var unadjusted []time.Time
	if leg.ScheduleDirection == market.ScheduleBackward {
		unadjusted = rollBackward(effective, maturity, leg)
	} else {
		unadjusted = rollForward(effective, maturity, leg)
	}

	periods := make([]Period, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		startUnadj := unadjusted[i]
		endUnadj := unadjusted[i+1]

		accrualStart := calendar.Adjust(leg.Calendar, startUnadj)
		accrualEnd := calendar.Adjust(leg.Calendar, endUnadj)
		payDate := accrualEnd
		if leg.PayDelayDays != 0 {
			payDate = calendar.AddBusinessDays(leg.Calendar, accrualEnd, leg.PayDelayDays)
		}

		periods = append(periods, Period{
			StartDate:    accrualStart,
			EndDate:      accrualEnd,
			PayDate:      payDate,
			YearFraction: utils.YearFraction(accrualStart, accrualEnd, string(leg.DayCount)),
			IsStub:       isStub(startUnadj, endUnadj, leg),
		})
	}

	if err := Validate(periods); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	return periods, nil
}

// rollBackward generates unadjusted dates from maturity back to effective,
// so that intermediate dates stay aligned with maturity.
func rollBackward(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.PayFrequency)

	var dates []time.Time
	current := maturity
	for current.After(effective) {
		dates = append([]time.Time{current}, dates...)
		current = rollMonths(current, -months, leg.RollConvention)
	}

	// A backward-rolled date within 7 days of effective would create a tiny
	// stub; drop it and let the first period run long instead.
	if len(dates) > 0 {
		gap := int(utils.Days(effective, dates[0]))
		if gap > 0 && gap <= 7 {
			dates = dates[1:]
		}
	}

	return append([]time.Time{effective}, dates...)
}

// rollForward generates unadjusted dates from effective up to maturity. If the
// roll overshoots, the last period is a stub ending exactly at maturity; a
// stub of 7 days or less is merged into the preceding period.
func rollForward(effective, maturity time.Time, leg market.LegConvention) []time.Time {
	months := int(leg.PayFrequency)

	dates := []time.Time{effective}
	current := effective
	for {
		next := rollMonths(current, months, leg.RollConvention)
		if next.After(maturity) {
			break
		}
		dates = append(dates, next)
		current = next
	}

	last := dates[len(dates)-1]
	if last.Before(maturity) {
		gap := int(utils.Days(last, maturity))
		if gap <= 7 && len(dates) > 1 {
			dates[len(dates)-1] = maturity
		} else {
			dates = append(dates, maturity)
		}
	}
	return dates
}

func rollMonths(d time.Time, months int, roll market.RollConvention) time.Time {
	if roll == market.BackwardEOM {
		return utils.AddMonth(d, months)
	}
	return d.AddDate(0, months, 0)
}

// isStub reports whether the unadjusted period span differs from one regular
// roll of the leg's pay frequency.
func isStub(startUnadj, endUnadj time.Time, leg market.LegConvention) bool {
	months := int(leg.PayFrequency)
	if leg.ScheduleDirection == market.ScheduleBackward {
		return !rollMonths(endUnadj, -months, leg.RollConvention).Equal(startUnadj)
	}
	return !rollMonths(startUnadj, months, leg.RollConvention).Equal(endUnadj)
}

// Validate checks that periods are non-empty, chained start-to-end, and carry
// positive accrual fractions.
func Validate(periods []Period) error {
	if len(periods) == 0 {
		return fmt.Errorf("empty schedule: %w", ErrInvalidPeriod)
	}
	for i, p := range periods {
		if !p.EndDate.After(p.StartDate) {
			return fmt.Errorf("period %d: end %s not after start %s: %w",
				i, p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"), ErrInvalidPeriod)
		}
		if p.YearFraction <= 0 {
			return fmt.Errorf("period %d: non-positive accrual %.6f: %w", i, p.YearFraction, ErrInvalidPeriod)
		}
		if i > 0 && !p.StartDate.Equal(periods[i-1].EndDate) {
			return fmt.Errorf("period %d: start %s does not chain from previous end %s: %w",
				i, p.StartDate.Format("2006-01-02"), periods[i-1].EndDate.Format("2006-01-02"), ErrInvalidPeriod)
		}
	}
	return nil
}
