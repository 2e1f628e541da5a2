package marketdata_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/marketdata"
)

func TestMapFixingFeed(t *testing.T) {
	feed := marketdata.NewMapFixingFeed(map[string]float64{
		"2025-01-28": 2.917,
		"2025-01-29": 2.915,
	})

	rate, ok := feed.RateOn(time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 2.915, rate)

	_, ok = feed.RateOn(time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestLatestFixingWalksBack(t *testing.T) {
	// Friday print only; probing the following Monday should find it.
	feed := marketdata.NewMapFixingFeed(map[string]float64{
		"2025-01-24": 2.92,
	})
	monday := time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)

	rate, ok := marketdata.LatestFixing(feed, monday, 5)
	require.True(t, ok)
	assert.Equal(t, 2.92, rate)

	_, ok = marketdata.LatestFixing(feed, monday.AddDate(0, 0, 14), 5)
	assert.False(t, ok)
}

func TestLatestFixingPrefersNewest(t *testing.T) {
	feed := marketdata.NewMapFixingFeed(map[string]float64{
		"2025-01-28": 2.917,
		"2025-01-29": 2.915,
	})
	asOf := time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC)

	rate, ok := marketdata.LatestFixing(feed, asOf, 5)
	require.True(t, ok)
	assert.Equal(t, 2.915, rate)
}
