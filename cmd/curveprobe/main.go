package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/config"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/utils"
)

func main() {
	configPath := flag.String("config", "", "YAML config path")
	datesArg := flag.String("dates", "", "Comma-separated probe dates YYYY-MM-DD (default: pillar dates)")
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
		fatal(err)
	}
	curveDate, err := cfg.Date()
	if err != nil {
		fatal(err)
	}
	probeDates, err := parseDates(*datesArg)
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	src, closeSrc, err := openSource(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer closeSrc()

	names := make([]string, len(cfg.Curves))
	for i, cc := range cfg.Curves {
		names[i] = cc.Index
	}
	fmt.Printf("=== Curve probe: %s on %s ===\n", strings.Join(names, ", "), cfg.CurveDate)
	fmt.Printf("Curve date: %s\n\n", cfg.CurveDate)

	built := make(map[string]*curve.Curve, len(cfg.Curves))
	for _, cc := range cfg.Curves {
		crv, err := buildCurve(ctx, cfg, cc, curveDate, src, built)
		if err != nil {
			fatal(fmt.Errorf("curve %s: %w", cc.Index, err))
		}
		built[cc.Index] = crv

		probeCurve(cc, crv, probeDates)
		if cc.CurveType() == marketdata.IRS {
			probeForwards(cc, crv, curveDate)
		}
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  curveprobe -config /path/to/curves.yaml")
	fmt.Println("  curveprobe -config /path/to/curves.yaml -dates 2027-01-11,2031-01-13")
	fmt.Println()
	fmt.Println("Bootstrap the configured curves and print discount factors, zero rates")
	fmt.Println("and tenor-aligned forwards as comma-separated tables for inspection.")
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "curveprobe:", err)
	os.Exit(1)
}

func parseDates(arg string) ([]time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, nil
	}
	fields := strings.Split(arg, ",")
	out := make([]time.Time, 0, len(fields))
	for _, f := range fields {
		d, err := utils.ParseDate(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
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

// buildCurve mirrors the curvegen build path without the JSON reporting.
func buildCurve(ctx context.Context, cfg *config.Config, cc config.CurveConfig, curveDate time.Time, src marketdata.Source, built map[string]*curve.Curve) (*curve.Curve, error) {
	idx, err := cc.ReferenceIndex()
	if err != nil {
		return nil, err
	}
	preset, err := market.PresetFor(idx)
	if err != nil {
		return nil, err
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
		return nil, err
	}

	instruments, err := bootstrap.BuildInstruments(curveDate, quotes, preset)
	if err != nil {
		return nil, err
	}

	opts := []bootstrap.Option{
		bootstrap.WithSolverConfig(cfg.SolverConfig()),
		bootstrap.WithInterpolation(cc.Method()),
		bootstrap.WithSpotStub(cc.SpotStub),
	}
	if rate, ok := cfg.StubRate(cc, curveDate); ok {
		opts = append(opts, bootstrap.WithShortEndRate(rate))
	}

	if cc.CurveType() == marketdata.OIS {
		crv, _, err := bootstrap.NewDiscount(curveDate, preset, opts...).Bootstrap(instruments)
		return crv, err
	}

	disc, ok := built[cc.Discounting]
	if !ok {
		return nil, fmt.Errorf("discounting curve %s not built; list it before %s", cc.Discounting, cc.Index)
	}
	proj, err := bootstrap.NewProjection(curveDate, preset, disc, opts...)
	if err != nil {
		return nil, err
	}
	crv, _, err := proj.Bootstrap(instruments)
	return crv, err
}

func probeCurve(cc config.CurveConfig, crv *curve.Curve, dates []time.Time) {
	fmt.Printf("[%s %s curve: discount factors and zero rates]\n", cc.Index, cc.CurveType())
	fmt.Println("Date, DF, ZeroRatePct")
	if len(dates) == 0 {
		for _, p := range crv.Pillars() {
			if p.Time == 0 {
				continue
			}
			fmt.Printf("%s,%.9f,%.9f\n", p.Date.Format("01/02/2006"), p.DF, p.Zero)
		}
	} else {
		for _, d := range dates {
			fmt.Printf("%s,%.9f,%.9f\n", d.Format("01/02/2006"), crv.DF(d), crv.ZeroRate(d))
		}
	}
	fmt.Println()
}

// probeForwards walks tenor-aligned periods from spot and prints the simple
// forward each one projects, the number a float leg coupon would fix at.
func probeForwards(cc config.CurveConfig, proj *curve.Curve, curveDate time.Time) {
	idx, err := cc.ReferenceIndex()
	if err != nil {
		return
	}
	preset, err := market.PresetFor(idx)
	if err != nil {
		return
	}
	leg := preset.FloatLeg
	months := int(leg.PayFrequency)

	fmt.Printf("[%s curve: %s tenor forwards]\n", cc.Index, market.IndexTenor(idx))
	fmt.Println("Start,End,AccrualDays,FwdRatePct")

	start := calendar.SpotDate(leg.Calendar, curveDate, leg.SpotLagDays)
	for {
		end := calendar.Adjust(leg.Calendar, start.AddDate(0, months, 0))
		if proj.Extrapolated(end) {
			break
		}
		alpha := utils.YearFraction(start, end, string(leg.DayCount))
		fwd := 0.0
		if alpha > 0 {
			fwd = (proj.DF(start)/proj.DF(end) - 1.0) / alpha
		}
		fmt.Printf("%s,%s,%.0f,%.5f\n",
			start.Format("01/02/2006"),
			end.Format("01/02/2006"),
			utils.Days(start, end),
			fwd*100.0,
		)
		start = end
	}
	fmt.Println()
}
