// Package irs prices a vanilla fixed-vs-IBOR swap on the dual-curve setup:
// forwards projected from the IBOR curve, cashflows discounted on the OIS
// curve, both bootstrapped from the supplied par quotes.
package irs

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/schedule"
	"github.com/meenmo/curvelib/valuation"
)

// PricingInput defines the JSON input schema for vanilla IRS NPV.
//
// Conventions:
// - rates are in percent (e.g., 2.50 means 2.50%)
// - spreads are in bp (e.g., 10 means +10bp)
type PricingInput struct {
	CurveDate string `json:"curve_date"` // "2025-01-29"

	ForwardTenorYears int `json:"forward_tenor"` // years
	SwapTenorYears    int `json:"swap_tenor"`    // years

	Notional float64 `json:"notional"`

	// Direction is from the trader perspective:
	// - PAY (pay fixed, receive floating)
	// - REC (receive fixed, pay floating)
	Direction string `json:"direction"`

	// FloatIndex is the IBOR index (e.g., EURIBOR6M, EURIBOR3M).
	FloatIndex string `json:"float_index"`

	// OISIndex is the discounting overnight index (e.g., ESTR).
	OISIndex string `json:"ois_index"`

	FixedRatePct   float64            `json:"fixed_rate"`
	FloatSpreadBP  float64            `json:"float_spread_bp"`
	OISQuotesPct   map[string]float64 `json:"ois_quotes"`
	FloatQuotesPct map[string]float64 `json:"float_quotes"`
}

type PricingOutput struct {
	PayLegPV      float64 `json:"pay_leg_pv"`
	RecLegPV      float64 `json:"rec_leg_pv"`
	TotalNPV      float64 `json:"total_npv"`
	SpotDate      string  `json:"spot_date"`
	EffectiveDate string  `json:"effective_date"`
	MaturityDate  string  `json:"maturity_date"`
	Error         string  `json:"error,omitempty"`
}

func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("irs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputPath := fs.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	help := fs.Bool("h", false, "Show help")
	fs.BoolVar(help, "help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		usage(stderr)
		return 0
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if f, ok := stdin.(*os.File); ok {
			if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
				usage(stderr)
				return 2
			}
		}
	}

	inputBytes, err := readInput(stdin, path)
	if err != nil {
		return writeError(stdout, fmt.Sprintf("failed to read input: %v", err))
	}

	var input PricingInput
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		return writeError(stdout, fmt.Sprintf("failed to parse JSON input: %v", err))
	}

	output, err := calculateNPV(input)
	if err != nil {
		return writeError(stdout, err.Error())
	}

	outputBytes, _ := json.Marshal(output)
	fmt.Fprintln(stdout, string(outputBytes))
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  npv irs < input.json")
	fmt.Fprintln(w, "  npv irs -input /path/to/input.json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Read JSON input, calculate vanilla IRS NPV, output JSON to stdout.")
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func writeError(stdout io.Writer, msg string) int {
	output := PricingOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Fprintln(stdout, string(outputBytes))
	return 1
}

func calculateNPV(input PricingInput) (*PricingOutput, error) {
	curveDate, err := time.Parse("2006-01-02", input.CurveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid curve_date: %v", err)
	}
	if input.Notional == 0 {
		return nil, fmt.Errorf("notional is required")
	}
	if input.ForwardTenorYears < 0 || input.SwapTenorYears <= 0 {
		return nil, fmt.Errorf("forward_tenor must be >=0 and swap_tenor must be >0")
	}
	if len(input.OISQuotesPct) == 0 || len(input.FloatQuotesPct) == 0 {
		return nil, fmt.Errorf("ois_quotes and float_quotes are required")
	}

	oisIdx := market.ReferenceIndex(strings.TrimSpace(input.OISIndex))
	if !market.IsOvernight(oisIdx) {
		return nil, fmt.Errorf("ois_index must be an overnight index, got %q", input.OISIndex)
	}
	floatIdx := market.ReferenceIndex(strings.TrimSpace(input.FloatIndex))
	if market.IsOvernight(floatIdx) {
		return nil, fmt.Errorf("float_index must be an IBOR index, got %q", input.FloatIndex)
	}

	oisPreset, err := market.PresetFor(oisIdx)
	if err != nil {
		return nil, err
	}
	floatPreset, err := market.PresetFor(floatIdx)
	if err != nil {
		return nil, err
	}

	disc, err := buildDiscount(curveDate, input.OISQuotesPct, oisPreset)
	if err != nil {
		return nil, err
	}
	proj, err := buildProjection(curveDate, input.FloatQuotesPct, floatPreset, disc)
	if err != nil {
		return nil, err
	}

	leg := floatPreset.FixedLeg
	spot := calendar.SpotDate(leg.Calendar, curveDate, leg.SpotLagDays)
	effective := spot
	if input.ForwardTenorYears > 0 {
		effective = calendar.AdjustFollowing(leg.Calendar, spot.AddDate(input.ForwardTenorYears, 0, 0))
	}
	maturity := calendar.AdjustFollowing(leg.Calendar, effective.AddDate(input.SwapTenorYears, 0, 0))

	fixed, err := schedule.Generate(effective, maturity, floatPreset.FixedLeg)
	if err != nil {
		return nil, err
	}
	floating, err := schedule.Generate(effective, maturity, floatPreset.FloatLeg)
	if err != nil {
		return nil, err
	}

	fixedAnnuity, err := valuation.Annuity(disc, fixed)
	if err != nil {
		return nil, err
	}
	floatPV, err := valuation.FloatingPV(proj, disc, floating)
	if err != nil {
		return nil, err
	}
	floatAnnuity, err := valuation.Annuity(disc, floating)
	if err != nil {
		return nil, err
	}

	fixedLegPV := input.FixedRatePct / 100.0 * fixedAnnuity * input.Notional
	floatLegPV := (floatPV + input.FloatSpreadBP/10_000.0*floatAnnuity) * input.Notional

	var payLegPV, recLegPV float64
	dir := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(input.Direction), "-", "_"))
	switch dir {
	case "PAY_FIXED", "PAY":
		payLegPV = fixedLegPV
		recLegPV = floatLegPV
	case "REC_FIXED", "REC":
		payLegPV = floatLegPV
		recLegPV = fixedLegPV
	default:
		return nil, fmt.Errorf("invalid direction %q (use PAY or REC)", input.Direction)
	}

	return &PricingOutput{
		PayLegPV:      payLegPV,
		RecLegPV:      recLegPV,
		TotalNPV:      recLegPV - payLegPV,
		SpotDate:      spot.Format("2006-01-02"),
		EffectiveDate: effective.Format("2006-01-02"),
		MaturityDate:  maturity.Format("2006-01-02"),
	}, nil
}

func buildDiscount(curveDate time.Time, quotesPct map[string]float64, preset market.CurvePreset) (*curve.Curve, error) {
	instruments, err := bootstrap.BuildInstruments(curveDate, quotesToSlice(quotesPct), preset)
	if err != nil {
		return nil, err
	}
	crv, _, err := bootstrap.NewDiscount(curveDate, preset).Bootstrap(instruments)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap %s curve: %v", preset.Index, err)
	}
	return crv, nil
}

func buildProjection(curveDate time.Time, quotesPct map[string]float64, preset market.CurvePreset, disc *curve.Curve) (*curve.Curve, error) {
	instruments, err := bootstrap.BuildInstruments(curveDate, quotesToSlice(quotesPct), preset)
	if err != nil {
		return nil, err
	}
	projection, err := bootstrap.NewProjection(curveDate, preset, disc)
	if err != nil {
		return nil, err
	}
	crv, _, err := projection.Bootstrap(instruments)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap %s curve: %v", preset.Index, err)
	}
	return crv, nil
}

func quotesToSlice(quotesPct map[string]float64) []bootstrap.Quote {
	quotes := make([]bootstrap.Quote, 0, len(quotesPct))
	for tenor, rate := range quotesPct {
		quotes = append(quotes, bootstrap.Quote{Tenor: tenor, Rate: rate})
	}
	return quotes
}
