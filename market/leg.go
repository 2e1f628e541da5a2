package market

import (
	"github.com/meenmo/curvelib/calendar"
)

// LegType distinguishes floating vs fixed.
type LegType string

const (
	LegFloating LegType = "FLOATING"
	LegFixed    LegType = "FIXED"
)

// Frequency enumerates payment/reset frequencies in months.
type Frequency int

const (
	FreqAnnual    Frequency = 12
	FreqSemi      Frequency = 6
	FreqQuarterly Frequency = 3
	FreqMonthly   Frequency = 1
)

// BusinessDayAdjustment roll convention.
type BusinessDayAdjustment string

const (
	ModifiedFollowing BusinessDayAdjustment = "MODIFIED_FOLLOWING"
	Following         BusinessDayAdjustment = "FOLLOWING"
)

// RollConvention for month-end handling.
type RollConvention string

const (
	NoRoll      RollConvention = "NO_ROLL"
	BackwardEOM RollConvention = "BACKWARD_EOM"
)

// ScheduleDirection selects forward generation from the effective date or
// backward generation from maturity (Bloomberg SWPM convention for IBOR swaps).
type ScheduleDirection string

const (
	ScheduleForward  ScheduleDirection = "FORWARD"
	ScheduleBackward ScheduleDirection = "BACKWARD"
)

// DayCount enum.
type DayCount string

const (
	Act360   DayCount = "ACT/360"
	Act365F  DayCount = "ACT/365F"
	Dc30360  DayCount = "30/360"
	Dc30E360 DayCount = "30E/360"
)

// LegConvention captures standard swap leg settings used for curve building.
type LegConvention struct {
	LegType               LegType
	ReferenceRate         ReferenceIndex
	DayCount              DayCount
	PayFrequency          Frequency
	SpotLagDays           int
	PayDelayDays          int
	BusinessDayAdjustment BusinessDayAdjustment
	RollConvention        RollConvention
	ScheduleDirection     ScheduleDirection
	Calendar              calendar.CalendarID
}

// DepositConvention captures money-market deposit settings.
type DepositConvention struct {
	ReferenceRate         ReferenceIndex
	DayCount              DayCount
	SpotLagDays           int
	BusinessDayAdjustment BusinessDayAdjustment
	Calendar              calendar.CalendarID
}
