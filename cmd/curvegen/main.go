package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/config"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/marketdata"
)

// CurveOutput is one built curve in the JSON output.
type CurveOutput struct {
	Index       string      `json:"index"`
	Type        string      `json:"curve_type,omitempty"`
	Discounting string      `json:"discounting,omitempty"`
	CurveDate   string      `json:"curve_date,omitempty"`
	Pillars     []PillarRow `json:"pillars,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// PillarRow is one solved pillar.
type PillarRow struct {
	Tenor      string  `json:"tenor"`
	Date       string  `json:"date"`
	Time       float64 `json:"time"`
	DF         float64 `json:"df"`
	ZeroPct    float64 `json:"zero_pct"`
	Method     string  `json:"method"`
	Iterations int     `json:"iterations,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "YAML config path")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		usage()
		return
	}

	path := strings.TrimSpace(*configPath)
	if path == "" {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		writeError(err.Error())
		return
	}

	log := newLogger(cfg)

	curveDate, err := cfg.Date()
	if err != nil {
		writeError(err.Error())
		return
	}

	ctx := context.Background()
	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		writeError(fmt.Sprintf("failed to open quote source: %v", err))
		return
	}
	defer closeSrc()

	hadError := false
	built := make(map[string]*curve.Curve, len(cfg.Curves))
	outputs := make([]CurveOutput, 0, len(cfg.Curves))
	for _, cc := range cfg.Curves {
		clog := log.With().Str("index", cc.Index).Logger()
		crv, results, err := buildCurve(ctx, cfg, cc, curveDate, src, built, clog)
		if err != nil {
			hadError = true
			clog.Error().Err(err).Msg("curve build failed")
			outputs = append(outputs, CurveOutput{Index: cc.Index, Error: err.Error()})
			continue
		}
		built[cc.Index] = crv
		outputs = append(outputs, toOutput(cc, cfg.CurveDate, results))
	}

	outputBytes, _ := json.Marshal(outputs)
	fmt.Println(string(outputBytes))

	if hadError {
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  curvegen -config /path/to/curves.yaml")
	fmt.Println()
	fmt.Println("Bootstrap the configured curve set and print solved pillars as JSON.")
	fmt.Println("Discount curves register under their index name; projection curves")
	fmt.Println("discount on the registered curve named by \"discounting\", so list")
	fmt.Println("the OIS curve before the swap curves that use it.")
	fmt.Println()
	fmt.Println("Example config:")
	fmt.Println(`  curve_date: "2026-01-09"`)
	fmt.Println(`  data:`)
	fmt.Println(`    backend: file`)
	fmt.Println(`    dir: ./quotes`)
	fmt.Println(`  curves:`)
	fmt.Println(`    - index: ESTR`)
	fmt.Println(`    - index: EURIBOR6M`)
	fmt.Println(`      discounting: ESTR`)
}

func writeError(msg string) {
	output := CurveOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
	os.Exit(1)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if cfg.Log.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func openSource(ctx context.Context, cfg *config.Config) (marketdata.Source, func() error, error) {
	if cfg.Data.Backend == "postgres" {
		pg, err := marketdata.OpenPostgres(ctx, cfg.PostgresConfig())
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return marketdata.NewFileSource(cfg.Data.Dir), func() error { return nil }, nil
}

func buildCurve(ctx context.Context, cfg *config.Config, cc config.CurveConfig, curveDate time.Time, src marketdata.Source, built map[string]*curve.Curve, log zerolog.Logger) (*curve.Curve, []bootstrap.Result, error) {
	idx, err := cc.ReferenceIndex()
	if err != nil {
		return nil, nil, err
	}
	preset, err := market.PresetFor(idx)
	if err != nil {
		return nil, nil, err
	}

	var filter marketdata.Filter = marketdata.StandardTenors(cc.CurveType(), idx)
	if len(cc.Tenors) > 0 {
		filter = marketdata.NewTenorFilter(cc.Tenors...)
	}
	quotes, err := marketdata.NewFiltered(src, filter).Quotes(ctx, marketdata.Request{
		Date:   curveDate,
		Type:   cc.CurveType(),
		Index:  idx,
		Source: cfg.Data.Source,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Debug().Int("quotes", len(quotes)).Msg("quotes loaded")

	instruments, err := bootstrap.BuildInstruments(curveDate, quotes, preset)
	if err != nil {
		return nil, nil, err
	}

	opts := []bootstrap.Option{
		bootstrap.WithLogger(log),
		bootstrap.WithSolverConfig(cfg.SolverConfig()),
		bootstrap.WithInterpolation(cc.Method()),
		bootstrap.WithSpotStub(cc.SpotStub),
	}
	if rate, ok := cfg.StubRate(cc, curveDate); ok {
		opts = append(opts, bootstrap.WithShortEndRate(rate))
	}

	if cc.CurveType() == marketdata.OIS {
		return bootstrap.NewDiscount(curveDate, preset, opts...).Bootstrap(instruments)
	}

	if cc.Discounting == "" {
		return nil, nil, fmt.Errorf("curve %s: no discounting curve named", cc.Index)
	}
	disc, ok := built[cc.Discounting]
	if !ok {
		return nil, nil, fmt.Errorf("curve %s: discounting curve %s not built; list it before %s", cc.Index, cc.Discounting, cc.Index)
	}
	proj, err := bootstrap.NewProjection(curveDate, preset, disc, opts...)
	if err != nil {
		return nil, nil, err
	}
	return proj.Bootstrap(instruments)
}

func toOutput(cc config.CurveConfig, curveDate string, results []bootstrap.Result) CurveOutput {
	rows := make([]PillarRow, len(results))
	for i, r := range results {
		rows[i] = PillarRow{
			Tenor:      r.Tenor,
			Date:       r.Date.Format("2006-01-02"),
			Time:       r.Time,
			DF:         r.DF,
			ZeroPct:    r.Zero,
			Method:     r.Method,
			Iterations: r.Iterations,
		}
	}
	return CurveOutput{
		Index:       cc.Index,
		Type:        string(cc.CurveType()),
		Discounting: cc.Discounting,
		CurveDate:   curveDate,
		Pillars:     rows,
	}
}
