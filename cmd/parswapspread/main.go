package main

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

// PricingInput defines the JSON input schema for float-vs-float basis swap
// par spreads. Rates are in percent.
type PricingInput struct {
	CurveDate    string             `json:"curve_date"`    // "2025-01-29"
	ForwardTenor int                `json:"forward_tenor"` // years
	SwapTenor    int                `json:"swap_tenor"`    // years
	Notional     float64            `json:"notional"`
	PayLeg       string             `json:"pay_leg"`   // "EURIBOR6M", "EURIBOR3M"
	RecLeg       string             `json:"rec_leg"`   // "EURIBOR3M", "ESTR"
	OISIndex     string             `json:"ois_index"` // "ESTR"
	OISQuotes    map[string]float64 `json:"ois_quotes"`
	PayLegQuotes map[string]float64 `json:"pay_leg_quotes"`
	RecLegQuotes map[string]float64 `json:"rec_leg_quotes"`
}

// PricingOutput defines the JSON output schema. SpreadBP is quoted on the
// receive leg: rec + spread exchanges flat against pay.
type PricingOutput struct {
	SpreadBP      float64 `json:"spread_bp"`
	PayLegPV      float64 `json:"pay_leg_pv"`
	RecLegPV      float64 `json:"rec_leg_pv"`
	TotalNPV      float64 `json:"total_npv"`
	EffectiveDate string  `json:"effective_date"`
	MaturityDate  string  `json:"maturity_date"`
	Error         string  `json:"error,omitempty"`
}

func main() {
	jsonMode := flag.Bool("json", false, "Run in JSON stdin/stdout mode")
	flag.Parse()

	if *jsonMode {
		runJSONMode()
	} else {
		fmt.Println("Usage: parswapspread --json < input.json")
		fmt.Println()
		fmt.Println("Read JSON from stdin, calculate basis swap par spread, output JSON to stdout.")
		fmt.Println()
		fmt.Println("Example input:")
		fmt.Println(`  {`)
		fmt.Println(`    "curve_date": "2025-01-29",`)
		fmt.Println(`    "forward_tenor": 0,`)
		fmt.Println(`    "swap_tenor": 5,`)
		fmt.Println(`    "notional": 10000000,`)
		fmt.Println(`    "pay_leg": "EURIBOR6M",`)
		fmt.Println(`    "rec_leg": "EURIBOR3M",`)
		fmt.Println(`    "ois_index": "ESTR",`)
		fmt.Println(`    "ois_quotes": {"1Y": 2.3112, "2Y": 2.1710, ...},`)
		fmt.Println(`    "pay_leg_quotes": {"1Y": 2.4110, "2Y": 2.2750, ...},`)
		fmt.Println(`    "rec_leg_quotes": {"1Y": 2.3405, "2Y": 2.2019, ...}`)
		fmt.Println(`  }`)
	}
}

func runJSONMode() {
	inputBytes, err := io.ReadAll(os.Stdin)
	if err != nil {
		writeError(fmt.Sprintf("failed to read stdin: %v", err))
		return
	}

	var input PricingInput
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		writeError(fmt.Sprintf("failed to parse JSON input: %v", err))
		return
	}

	output, err := calculateSpread(input)
	if err != nil {
		writeError(err.Error())
		return
	}

	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
}

func writeError(msg string) {
	output := PricingOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
	os.Exit(1)
}

func calculateSpread(input PricingInput) (*PricingOutput, error) {
	curveDate, err := time.Parse("2006-01-02", input.CurveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid curve_date: %v", err)
	}
	if input.Notional == 0 {
		input.Notional = 10_000_000
	}
	if input.ForwardTenor < 0 || input.SwapTenor <= 0 {
		return nil, fmt.Errorf("forward_tenor must be >=0 and swap_tenor must be >0")
	}
	if len(input.OISQuotes) == 0 {
		return nil, fmt.Errorf("ois_quotes is required")
	}

	oisIdx := market.ReferenceIndex(strings.TrimSpace(input.OISIndex))
	if !market.IsOvernight(oisIdx) {
		return nil, fmt.Errorf("ois_index must be an overnight index, got %q", input.OISIndex)
	}
	oisPreset, err := market.PresetFor(oisIdx)
	if err != nil {
		return nil, err
	}

	instruments, err := bootstrap.BuildInstruments(curveDate, quotesToSlice(input.OISQuotes), oisPreset)
	if err != nil {
		return nil, err
	}
	disc, _, err := bootstrap.NewDiscount(curveDate, oisPreset).Bootstrap(instruments)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap %s curve: %v", oisIdx, err)
	}

	payPreset, payProj, err := legCurve(curveDate, input.PayLeg, input.PayLegQuotes, oisIdx, disc)
	if err != nil {
		return nil, fmt.Errorf("pay_leg: %w", err)
	}
	recPreset, recProj, err := legCurve(curveDate, input.RecLeg, input.RecLegQuotes, oisIdx, disc)
	if err != nil {
		return nil, fmt.Errorf("rec_leg: %w", err)
	}

	cal := payPreset.FloatLeg.Calendar
	spot := calendar.SpotDate(cal, curveDate, payPreset.FloatLeg.SpotLagDays)
	effective := spot
	if input.ForwardTenor > 0 {
		effective = calendar.AdjustFollowing(cal, spot.AddDate(input.ForwardTenor, 0, 0))
	}
	maturity := calendar.AdjustFollowing(cal, effective.AddDate(input.SwapTenor, 0, 0))

	payFloat, err := schedule.Generate(effective, maturity, payPreset.FloatLeg)
	if err != nil {
		return nil, err
	}
	recFloat, err := schedule.Generate(effective, maturity, recPreset.FloatLeg)
	if err != nil {
		return nil, err
	}

	payPV, err := valuation.FloatingPV(payProj, disc, payFloat)
	if err != nil {
		return nil, err
	}
	recPV, err := valuation.FloatingPV(recProj, disc, recFloat)
	if err != nil {
		return nil, err
	}
	recAnnuity, err := valuation.Annuity(disc, recFloat)
	if err != nil {
		return nil, err
	}
	if recAnnuity == 0 {
		return nil, fmt.Errorf("zero receive leg annuity")
	}

	// Par spread on the receive leg: rec + s exchanges flat against pay.
	spread := (payPV - recPV) / recAnnuity

	payLegPV := payPV * input.Notional
	recLegPV := (recPV + spread*recAnnuity) * input.Notional

	return &PricingOutput{
		SpreadBP:      spread * 10_000.0,
		PayLegPV:      payLegPV,
		RecLegPV:      recLegPV,
		TotalNPV:      recLegPV - payLegPV,
		EffectiveDate: effective.Format("2006-01-02"),
		MaturityDate:  maturity.Format("2006-01-02"),
	}, nil
}

// legCurve resolves one basis leg to its projection curve. An overnight leg
// projects off the discount curve itself and needs no quotes; an IBOR leg
// bootstraps a projection curve from its own quote set.
func legCurve(curveDate time.Time, legIndex string, quotesPct map[string]float64, oisIdx market.ReferenceIndex, disc *curve.Curve) (market.CurvePreset, *curve.Curve, error) {
	idx := market.ReferenceIndex(strings.TrimSpace(legIndex))
	preset, err := market.PresetFor(idx)
	if err != nil {
		return market.CurvePreset{}, nil, err
	}

	if market.IsOvernight(idx) {
		if idx != oisIdx {
			return market.CurvePreset{}, nil, fmt.Errorf("overnight leg %s must match ois_index %s", idx, oisIdx)
		}
		return preset, disc, nil
	}

	if len(quotesPct) == 0 {
		return market.CurvePreset{}, nil, fmt.Errorf("quotes required for %s", idx)
	}
	instruments, err := bootstrap.BuildInstruments(curveDate, quotesToSlice(quotesPct), preset)
	if err != nil {
		return market.CurvePreset{}, nil, err
	}
	projection, err := bootstrap.NewProjection(curveDate, preset, disc)
	if err != nil {
		return market.CurvePreset{}, nil, err
	}
	proj, _, err := projection.Bootstrap(instruments)
	if err != nil {
		return market.CurvePreset{}, nil, fmt.Errorf("failed to bootstrap %s curve: %v", idx, err)
	}
	return preset, proj, nil
}

func quotesToSlice(quotesPct map[string]float64) []bootstrap.Quote {
	quotes := make([]bootstrap.Quote, 0, len(quotesPct))
	for tenor, rate := range quotesPct {
		quotes = append(quotes, bootstrap.Quote{Tenor: tenor, Rate: rate})
	}
	return quotes
}
