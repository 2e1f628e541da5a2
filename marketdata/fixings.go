package marketdata

import "time"

// FixingFeed supplies overnight benchmark prints by publication date. The
// curve builders use the latest print to discount the stub between the curve
// date and spot when a curve is built with a spot stub.
type FixingFeed interface {
	RateOn(date time.Time) (float64, bool)
}

// MapFixingFeed is a static map-backed feed keyed by YYYY-MM-DD. Rates keep
// whatever unit they were stored with; callers normalize percent quotes the
// same way par quotes are normalized.
type MapFixingFeed struct {
	rates map[string]float64
}

func NewMapFixingFeed(rates map[string]float64) *MapFixingFeed {
	return &MapFixingFeed{rates: rates}
}

func (m *MapFixingFeed) RateOn(date time.Time) (float64, bool) {
	val, ok := m.rates[date.Format("2006-01-02")]
	return val, ok
}

// LatestFixing walks back from asOf up to lookback calendar days and returns
// the most recent print. Overnight fixings only publish on business days, so
// a curve date following a weekend or holiday still resolves.
func LatestFixing(feed FixingFeed, asOf time.Time, lookback int) (float64, bool) {
	for i := 0; i <= lookback; i++ {
		if rate, ok := feed.RateOn(asOf.AddDate(0, 0, -i)); ok {
			return rate, true
		}
	}
	return 0, false
}
