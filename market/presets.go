package market

import (
	"fmt"
	"time"

	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/utils"
)

// CurvePreset groups the deposit and leg conventions used to turn par quotes
// for one index into bootstrap instruments.
type CurvePreset struct {
	Index    ReferenceIndex
	Deposit  DepositConvention
	FixedLeg LegConvention
	FloatLeg LegConvention
}

// Preset leg conventions for the EUR market plus the USD/JPY overnight curves.
var (
	ESTRFloat = LegConvention{
		LegType:               LegFloating,
		ReferenceRate:         ESTR,
		DayCount:              Act360,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.TARGET,
	}

	// EUR OIS fixed leg: annual payments, ACT/360, TARGET calendar, paid on
	// the accrual end date.
	ESTRFixed = LegConvention{
		LegType:               LegFixed,
		ReferenceRate:         ESTR,
		DayCount:              Act360,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.TARGET,
	}

	EURIBOR3MFloat = LegConvention{
		LegType:               LegFloating,
		ReferenceRate:         EURIBOR3M,
		DayCount:              Act360,
		PayFrequency:          FreqQuarterly,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.TARGET,
	}

	EURIBOR6MFloat = LegConvention{
		LegType:               LegFloating,
		ReferenceRate:         EURIBOR6M,
		DayCount:              Act360,
		PayFrequency:          FreqSemi,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.TARGET,
	}

	// EUR IBOR IRS fixed leg: annual payments, 30E/360, TARGET calendar.
	// This is the SWPM quoting basis for EURIBOR swap par rates.
	EURFixedAnnual = LegConvention{
		LegType:               LegFixed,
		DayCount:              Dc30E360,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.TARGET,
	}

	SOFRFloat = LegConvention{
		LegType:               LegFloating,
		ReferenceRate:         SOFR,
		DayCount:              Act360,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.USD,
	}

	SOFRFixed = LegConvention{
		LegType:               LegFixed,
		ReferenceRate:         SOFR,
		DayCount:              Act360,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.USD,
	}

	TONARFloat = LegConvention{
		LegType:               LegFloating,
		ReferenceRate:         TONAR,
		DayCount:              Act365F,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.JPN,
	}

	TONARFixed = LegConvention{
		LegType:               LegFixed,
		ReferenceRate:         TONAR,
		DayCount:              Act365F,
		PayFrequency:          FreqAnnual,
		SpotLagDays:           2,
		PayDelayDays:          0,
		BusinessDayAdjustment: ModifiedFollowing,
		RollConvention:        BackwardEOM,
		ScheduleDirection:     ScheduleBackward,
		Calendar:              calendar.JPN,
	}

	ESTRDeposit = DepositConvention{
		ReferenceRate:         ESTR,
		DayCount:              Act360,
		SpotLagDays:           2,
		BusinessDayAdjustment: ModifiedFollowing,
		Calendar:              calendar.TARGET,
	}

	EURIBOR3MDeposit = DepositConvention{
		ReferenceRate:         EURIBOR3M,
		DayCount:              Act360,
		SpotLagDays:           2,
		BusinessDayAdjustment: ModifiedFollowing,
		Calendar:              calendar.TARGET,
	}

	EURIBOR6MDeposit = DepositConvention{
		ReferenceRate:         EURIBOR6M,
		DayCount:              Act360,
		SpotLagDays:           2,
		BusinessDayAdjustment: ModifiedFollowing,
		Calendar:              calendar.TARGET,
	}
)

// Curve-building presets keyed by index.
var (
	CurveESTR = CurvePreset{
		Index:    ESTR,
		Deposit:  ESTRDeposit,
		FixedLeg: ESTRFixed,
		FloatLeg: ESTRFloat,
	}

	CurveEURIBOR3M = CurvePreset{
		Index:    EURIBOR3M,
		Deposit:  EURIBOR3MDeposit,
		FixedLeg: EURFixedAnnual,
		FloatLeg: EURIBOR3MFloat,
	}

	CurveEURIBOR6M = CurvePreset{
		Index:    EURIBOR6M,
		Deposit:  EURIBOR6MDeposit,
		FixedLeg: EURFixedAnnual,
		FloatLeg: EURIBOR6MFloat,
	}

	CurveSOFR = CurvePreset{
		Index:    SOFR,
		Deposit:  DepositConvention{ReferenceRate: SOFR, DayCount: Act360, SpotLagDays: 2, BusinessDayAdjustment: ModifiedFollowing, Calendar: calendar.USD},
		FixedLeg: SOFRFixed,
		FloatLeg: SOFRFloat,
	}

	CurveTONAR = CurvePreset{
		Index:    TONAR,
		Deposit:  DepositConvention{ReferenceRate: TONAR, DayCount: Act365F, SpotLagDays: 2, BusinessDayAdjustment: ModifiedFollowing, Calendar: calendar.JPN},
		FixedLeg: TONARFixed,
		FloatLeg: TONARFloat,
	}
)

// PresetFor returns the curve-building preset for a reference index.
func PresetFor(index ReferenceIndex) (CurvePreset, error) {
	switch index {
	case ESTR:
		return CurveESTR, nil
	case EURIBOR3M:
		return CurveEURIBOR3M, nil
	case EURIBOR6M:
		return CurveEURIBOR6M, nil
	case SOFR:
		return CurveSOFR, nil
	case TONAR:
		return CurveTONAR, nil
	default:
		return CurvePreset{}, fmt.Errorf("PresetFor: no preset for index %s", index)
	}
}

// Maturity computes the instrument maturity date for a tenor quoted against
// the given calendar.
//
// Conventions:
// - spot = refDate + spotLag business days
// - D/W tenors: spot + calendar days, unadjusted (money-market convention)
// - M/Y tenors: EDATE month arithmetic from spot, end-of-month rule when the
//   spot date is the last business day of its month, then Modified Following
func Maturity(refDate time.Time, tenor string, cal calendar.CalendarID, spotLag int, eomRule bool) (time.Time, error) {
	spot := calendar.SpotDate(cal, refDate, spotLag)

	if IsShortTenor(tenor) {
		days, err := TenorDays(tenor)
		if err != nil {
			return time.Time{}, fmt.Errorf("Maturity: %w", err)
		}
		return spot.AddDate(0, 0, days), nil
	}

	months, err := TenorMonths(tenor)
	if err != nil {
		return time.Time{}, fmt.Errorf("Maturity: %w", err)
	}
	unadj := utils.AddMonth(spot, months)
	if eomRule && calendar.IsEndOfMonth(cal, spot) {
		unadj = time.Date(unadj.Year(), unadj.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return calendar.Adjust(cal, unadj), nil
}
