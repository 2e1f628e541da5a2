package marketdata

import (
	"math"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/market"
)

// Filter narrows a quote list. Filters are pure: they never reorder or
// mutate the quotes they keep.
type Filter interface {
	Apply(quotes []bootstrap.Quote) []bootstrap.Quote
}

// FilterFunc adapts a plain function to the Filter interface.
type FilterFunc func(quotes []bootstrap.Quote) []bootstrap.Quote

func (f FilterFunc) Apply(quotes []bootstrap.Quote) []bootstrap.Quote { return f(quotes) }

// Standard pillar sets per curve family. Contributors publish more tenors
// than a curve needs; building from these keeps pillar grids comparable
// across dates.
var (
	oisStandardTenors = []string{
		"1W", "2W", "1M", "2M", "3M", "4M", "5M", "6M", "7M", "8M", "9M", "10M", "11M",
		"1Y", "18M", "2Y", "3Y", "4Y", "5Y", "6Y", "7Y", "8Y", "9Y", "10Y", "11Y", "12Y",
		"15Y", "20Y", "25Y", "30Y", "40Y", "50Y",
	}
	ibor3MStandardTenors = []string{
		"3M", "1Y", "2Y", "3Y", "4Y", "5Y", "6Y", "7Y", "8Y", "9Y", "10Y", "11Y", "12Y",
		"15Y", "20Y", "25Y", "30Y", "40Y", "50Y",
	}
	ibor6MStandardTenors = []string{
		"6M", "1Y", "18M", "2Y", "3Y", "4Y", "5Y", "6Y", "7Y", "8Y", "9Y", "10Y", "11Y",
		"12Y", "15Y", "20Y", "25Y", "30Y", "40Y", "50Y",
	}
)

// TenorFilter keeps quotes whose tenor is in an allowed set.
type TenorFilter struct {
	allowed map[string]struct{}
}

// NewTenorFilter builds a filter from an explicit tenor list.
func NewTenorFilter(tenors ...string) *TenorFilter {
	allowed := make(map[string]struct{}, len(tenors))
	for _, tn := range tenors {
		allowed[tn] = struct{}{}
	}
	return &TenorFilter{allowed: allowed}
}

// StandardTenors returns the conventional pillar set for a curve family. The
// index only matters for IRS curves, where the 3M and 6M grids differ.
func StandardTenors(ct CurveType, index market.ReferenceIndex) *TenorFilter {
	switch {
	case ct == OIS:
		return NewTenorFilter(oisStandardTenors...)
	case index == market.EURIBOR3M:
		return NewTenorFilter(ibor3MStandardTenors...)
	default:
		return NewTenorFilter(ibor6MStandardTenors...)
	}
}

func (f *TenorFilter) Apply(quotes []bootstrap.Quote) []bootstrap.Quote {
	out := make([]bootstrap.Quote, 0, len(quotes))
	for _, q := range quotes {
		if _, ok := f.allowed[q.Tenor]; ok {
			out = append(out, q)
		}
	}
	return out
}

// RateRange keeps quotes with min <= rate <= max, in the quoted unit. Use
// math.Inf for an open side.
type RateRange struct {
	min, max float64
}

func NewRateRange(min, max float64) *RateRange {
	return &RateRange{min: min, max: max}
}

func (f *RateRange) Apply(quotes []bootstrap.Quote) []bootstrap.Quote {
	out := make([]bootstrap.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Rate >= f.min && q.Rate <= f.max && !math.IsNaN(q.Rate) {
			out = append(out, q)
		}
	}
	return out
}
