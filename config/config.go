// Package config loads curve build configuration from YAML. Defaults come
// from struct tags, validation runs on load, and a small set of environment
// variables can override the data backend settings for deployments that
// inject credentials.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/solver"
)

var validate = validator.New()

// Config is one curve build run: a curve date, where quotes come from, solver
// tuning, and the list of curves to build.
type Config struct {
	CurveDate string `yaml:"curve_date" validate:"required,datetime=2006-01-02"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`

	Data struct {
		Backend  string             `yaml:"backend" default:"file" validate:"oneof=file postgres"`
		Dir      string             `yaml:"dir" default:"."`
		Source   string             `yaml:"source" default:"BGN"`
		Fixings  map[string]float64 `yaml:"fixings" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys"`
		Postgres struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"5432"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
			SSLMode  string `yaml:"sslmode" default:"disable"`
		} `yaml:"postgres"`
	} `yaml:"data"`

	Solver struct {
		Tolerance        float64 `yaml:"tolerance" validate:"gte=0"`
		MaxIterations    int     `yaml:"max_iterations" validate:"gte=0"`
		NewtonIterations int     `yaml:"newton_iterations" validate:"gte=0"`
		BracketWidenings int     `yaml:"bracket_widenings" validate:"gte=0"`
	} `yaml:"solver"`

	Curves []CurveConfig `yaml:"curves" validate:"required,min=1,dive"`
}

// CurveConfig describes one curve. IRS curves name the OIS curve they
// discount on; that curve must appear earlier in the list.
type CurveConfig struct {
	Index         string   `yaml:"index" validate:"required,oneof=ESTR EURIBOR3M EURIBOR6M SOFR TONAR"`
	Discounting   string   `yaml:"discounting" validate:"omitempty,oneof=ESTR SOFR TONAR"`
	Interpolation string   `yaml:"interpolation" default:"step-forward" validate:"oneof=step-forward log-linear linear"`
	SpotStub      bool     `yaml:"spot_stub"`
	ShortEndRate  *float64 `yaml:"short_end_rate"`
	Tenors        []string `yaml:"tenors"`
}

// Load reads, defaults and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return Parse(raw)
}

// Parse behaves like Load on an in-memory document.
func Parse(raw []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	for _, cc := range c.Curves {
		if _, err := cc.ReferenceIndex(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return &c, nil
}

// LoadWithEnv loads a config file and applies environment overrides:
// CURVELIB_DATA_DIR, CURVELIB_PG_HOST, CURVELIB_PG_PORT, CURVELIB_PG_USER,
// CURVELIB_PG_PASSWORD, CURVELIB_PG_DATABASE.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("CURVELIB_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("CURVELIB_PG_HOST"); v != "" {
		c.Data.Postgres.Host = v
	}
	if v := os.Getenv("CURVELIB_PG_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: CURVELIB_PG_PORT: %w", err)
		}
		c.Data.Postgres.Port = port
	}
	if v := os.Getenv("CURVELIB_PG_USER"); v != "" {
		c.Data.Postgres.User = v
	}
	if v := os.Getenv("CURVELIB_PG_PASSWORD"); v != "" {
		c.Data.Postgres.Password = v
	}
	if v := os.Getenv("CURVELIB_PG_DATABASE"); v != "" {
		c.Data.Postgres.Database = v
	}
	return c, nil
}

// Date parses the configured curve date.
func (c *Config) Date() (time.Time, error) {
	t, err := time.Parse("2006-01-02", c.CurveDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: curve_date: %w", err)
	}
	return t, nil
}

// SolverConfig maps the solver section onto solver.Config. Zero values keep
// the solver defaults.
func (c *Config) SolverConfig() solver.Config {
	return solver.Config{
		Tolerance:        c.Solver.Tolerance,
		MaxIterations:    c.Solver.MaxIterations,
		NewtonIterations: c.Solver.NewtonIterations,
		BracketWidenings: c.Solver.BracketWidenings,
	}
}

// PostgresConfig maps the data section onto the market data source config.
func (c *Config) PostgresConfig() marketdata.PostgresConfig {
	pg := c.Data.Postgres
	return marketdata.PostgresConfig{
		Host:     pg.Host,
		Port:     pg.Port,
		User:     pg.User,
		Password: pg.Password,
		Database: pg.Database,
		SSLMode:  pg.SSLMode,
	}
}

// StubRate resolves the pre-spot stub rate for one curve. An explicit
// short_end_rate wins; otherwise the latest data.fixings print within a week
// of the curve date is used. Magnitudes above 1 are treated as percent,
// matching quote normalization.
func (c *Config) StubRate(cc CurveConfig, curveDate time.Time) (float64, bool) {
	if cc.ShortEndRate != nil {
		return normalizeRate(*cc.ShortEndRate), true
	}
	if len(c.Data.Fixings) == 0 {
		return 0, false
	}
	feed := marketdata.NewMapFixingFeed(c.Data.Fixings)
	rate, ok := marketdata.LatestFixing(feed, curveDate, 7)
	if !ok {
		return 0, false
	}
	return normalizeRate(rate), true
}

func normalizeRate(r float64) float64 {
	if math.Abs(r) > 1 {
		return r / 100.0
	}
	return r
}

// ReferenceIndex resolves the curve's index.
func (cc CurveConfig) ReferenceIndex() (market.ReferenceIndex, error) {
	idx := market.ReferenceIndex(cc.Index)
	if _, err := market.PresetFor(idx); err != nil {
		return "", err
	}
	return idx, nil
}

// Method resolves the interpolation scheme.
func (cc CurveConfig) Method() interp.Method {
	return interp.Method(cc.Interpolation)
}

// CurveType reports whether the curve bootstraps OIS (self-discounted) or
// IRS (externally discounted) quotes.
func (cc CurveConfig) CurveType() marketdata.CurveType {
	if market.IsOvernight(market.ReferenceIndex(cc.Index)) {
		return marketdata.OIS
	}
	return marketdata.IRS
}
