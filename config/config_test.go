package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/curvelib/config"
	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/marketdata"
)

const sampleConfig = `
curve_date: "2025-01-29"
log:
  level: debug
data:
  backend: postgres
  source: BGN
  fixings:
    "2025-01-28": 2.917
    "2025-01-29": 2.915
  postgres:
    host: db.internal
    user: curves
    database: marketdata
solver:
  tolerance: 1.0e-12
curves:
  - index: ESTR
    spot_stub: true
  - index: EURIBOR6M
    discounting: ESTR
    interpolation: step-forward
    tenors: ["6M", "1Y", "2Y"]
`

func TestParseSample(t *testing.T) {
	t.Parallel()

	c, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	date, err := c.Date()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 29, 0, 0, 0, 0, time.UTC), date)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "postgres", c.Data.Backend)

	// Tag defaults fill whatever the document leaves out.
	assert.Equal(t, 5432, c.Data.Postgres.Port)
	assert.Equal(t, "disable", c.Data.Postgres.SSLMode)

	assert.Len(t, c.Data.Fixings, 2)

	require.Len(t, c.Curves, 2)
	assert.Equal(t, interp.StepForward, c.Curves[0].Method())
	assert.True(t, c.Curves[0].SpotStub)
	assert.Nil(t, c.Curves[0].ShortEndRate)
	assert.Equal(t, marketdata.OIS, c.Curves[0].CurveType())
	assert.Equal(t, marketdata.IRS, c.Curves[1].CurveType())
	assert.Equal(t, "ESTR", c.Curves[1].Discounting)

	idx, err := c.Curves[1].ReferenceIndex()
	require.NoError(t, err)
	assert.Equal(t, market.EURIBOR6M, idx)

	sc := c.SolverConfig()
	assert.Equal(t, 1e-12, sc.Tolerance)
	assert.Zero(t, sc.MaxIterations)

	pg := c.PostgresConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, "marketdata", pg.Database)
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing date":   "curves:\n  - index: ESTR\n",
		"bad date":       "curve_date: \"29/01/2025\"\ncurves:\n  - index: ESTR\n",
		"no curves":      "curve_date: \"2025-01-29\"\n",
		"unknown index":  "curve_date: \"2025-01-29\"\ncurves:\n  - index: WIBOR3M\n",
		"bad log level":  "curve_date: \"2025-01-29\"\nlog:\n  level: verbose\ncurves:\n  - index: ESTR\n",
		"bad interp":     "curve_date: \"2025-01-29\"\ncurves:\n  - index: ESTR\n    interpolation: cubic\n",
		"not yaml":       "curve_date: [unclosed",
		"ibor discounts": "curve_date: \"2025-01-29\"\ncurves:\n  - index: ESTR\n    discounting: EURIBOR6M\n",
		"bad fixing key": "curve_date: \"2025-01-29\"\ndata:\n  fixings:\n    \"29/01/2025\": 2.9\ncurves:\n  - index: ESTR\n",
	}
	for name, doc := range cases {
		_, err := config.Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestShortEndRatePresence(t *testing.T) {
	t.Parallel()

	doc := `
curve_date: "2025-01-29"
curves:
  - index: ESTR
    spot_stub: true
    short_end_rate: 0.0
`
	c, err := config.Parse([]byte(doc))
	require.NoError(t, err)

	// An explicit zero is an override, distinct from the field being absent.
	require.NotNil(t, c.Curves[0].ShortEndRate)
	assert.Equal(t, 0.0, *c.Curves[0].ShortEndRate)
}

func TestStubRate(t *testing.T) {
	t.Parallel()

	c, err := config.Parse([]byte(sampleConfig))
	require.NoError(t, err)

	curveDate, err := c.Date()
	require.NoError(t, err)

	// No override on the first curve: the latest fixing wins, percent
	// normalized to decimal.
	rate, ok := c.StubRate(c.Curves[0], curveDate)
	require.True(t, ok)
	assert.InEpsilon(t, 0.02915, rate, 1e-15)

	// A curve date after a publication gap walks back to the last print.
	rate, ok = c.StubRate(c.Curves[0], curveDate.AddDate(0, 0, 3))
	require.True(t, ok)
	assert.InEpsilon(t, 0.02915, rate, 1e-15)

	// Explicit override beats the feed.
	override := 3.1
	cc := c.Curves[0]
	cc.ShortEndRate = &override
	rate, ok = c.StubRate(cc, curveDate)
	require.True(t, ok)
	assert.InEpsilon(t, 0.031, rate, 1e-15)

	// Neither override nor usable fixing.
	c.Data.Fixings = nil
	_, ok = c.StubRate(c.Curves[0], curveDate)
	assert.False(t, ok)
}

func TestLoadWithEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	t.Setenv("CURVELIB_PG_HOST", "db.prod")
	t.Setenv("CURVELIB_PG_PASSWORD", "hunter2")
	t.Setenv("CURVELIB_PG_PORT", "6432")

	c, err := config.LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "db.prod", c.Data.Postgres.Host)
	assert.Equal(t, "hunter2", c.Data.Postgres.Password)
	assert.Equal(t, 6432, c.Data.Postgres.Port)

	t.Setenv("CURVELIB_PG_PORT", "not-a-port")
	_, err = config.LoadWithEnv(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
