package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/schedule"
	"github.com/meenmo/curvelib/valuation"
)

// PricingInput defines the JSON input schema for OIS par swap rate calculation.
type PricingInput struct {
	TaskID string `json:"task_id,omitempty"`

	CurveDate         string             `json:"curve_date"`
	ForwardTenor      int                `json:"forward_tenor"`
	SwapTenor         int                `json:"swap_tenor"`
	Notional          float64            `json:"notional"`
	FloatingRateIndex string             `json:"floating_rate_index"`
	OISQuotes         map[string]float64 `json:"ois_quotes"`
	SpotStub          bool               `json:"spot_stub,omitempty"`
	ShortEndRate      *float64           `json:"short_end_rate,omitempty"`
}

// PricingOutput defines the JSON output schema.
type PricingOutput struct {
	TaskID        string  `json:"task_id,omitempty"`
	ParRatePct    float64 `json:"par_rate_pct"`
	FixedLegPV    float64 `json:"fixed_leg_pv"`
	FloatingLegPV float64 `json:"floating_leg_pv"`
	TotalNPV      float64 `json:"total_npv"`
	EffectiveDate string  `json:"effective_date"`
	MaturityDate  string  `json:"maturity_date"`
	Error         string  `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		usage()
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			usage()
			os.Exit(2)
		}
	}

	inputBytes, err := readInput(path)
	if err != nil {
		writeError(fmt.Sprintf("failed to read input: %v", err))
		return
	}

	inputs, isArray, err := parseInputs(inputBytes)
	if err != nil {
		writeError(fmt.Sprintf("failed to parse JSON input: %v", err))
		return
	}

	hadError := false
	outputs := make([]PricingOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := calculateParRate(in)
		if err != nil {
			hadError = true
			outputs = append(outputs, PricingOutput{
				TaskID: in.TaskID,
				Error:  err.Error(),
			})
			continue
		}
		outputs = append(outputs, *out)
	}

	if isArray {
		outputBytes, _ := json.Marshal(outputs)
		fmt.Println(string(outputBytes))
	} else {
		outputBytes, _ := json.Marshal(outputs[0])
		fmt.Println(string(outputBytes))
	}

	if hadError {
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  parswaprate < input.json")
	fmt.Println("  parswaprate -input /path/to/input.json")
	fmt.Println()
	fmt.Println("Read JSON input, bootstrap the OIS discount curve and output the")
	fmt.Println("forward-starting par swap rate as JSON on stdout.")
	fmt.Println()
	fmt.Println("Example input:")
	fmt.Println(`  {`)
	fmt.Println(`    "curve_date": "2025-01-29",`)
	fmt.Println(`    "forward_tenor": 1,`)
	fmt.Println(`    "swap_tenor": 4,`)
	fmt.Println(`    "notional": 1000000,`)
	fmt.Println(`    "floating_rate_index": "ESTR",`)
	fmt.Println(`    "ois_quotes": {"1Y": 2.3112, "2Y": 2.1710, ...}`)
	fmt.Println(`  }`)
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]PricingInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}

	if trimmed[0] == '[' {
		var inputs []PricingInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}

	var input PricingInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []PricingInput{input}, false, nil
}

func writeError(msg string) {
	output := PricingOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
	os.Exit(1)
}

func calculateParRate(input PricingInput) (*PricingOutput, error) {
	curveDate, err := time.Parse("2006-01-02", input.CurveDate)
	if err != nil {
		return nil, fmt.Errorf("invalid curve_date: %v", err)
	}
	if input.ForwardTenor < 0 || input.SwapTenor <= 0 {
		return nil, fmt.Errorf("forward_tenor must be >=0 and swap_tenor must be >0")
	}
	if len(input.OISQuotes) == 0 {
		return nil, fmt.Errorf("ois_quotes is required")
	}
	if input.Notional == 0 {
		input.Notional = 1_000_000
	}

	idx := market.ReferenceIndex(strings.TrimSpace(input.FloatingRateIndex))
	if !market.IsOvernight(idx) {
		return nil, fmt.Errorf("floating_rate_index must be an overnight index, got %q", input.FloatingRateIndex)
	}
	preset, err := market.PresetFor(idx)
	if err != nil {
		return nil, err
	}

	quotes := make([]bootstrap.Quote, 0, len(input.OISQuotes))
	for tenor, rate := range input.OISQuotes {
		quotes = append(quotes, bootstrap.Quote{Tenor: tenor, Rate: rate})
	}
	instruments, err := bootstrap.BuildInstruments(curveDate, quotes, preset)
	if err != nil {
		return nil, err
	}

	opts := []bootstrap.Option{bootstrap.WithSpotStub(input.SpotStub)}
	if input.ShortEndRate != nil {
		rate := *input.ShortEndRate
		if math.Abs(rate) > 1 {
			rate /= 100.0
		}
		opts = append(opts, bootstrap.WithShortEndRate(rate))
	}

	disc, _, err := bootstrap.NewDiscount(curveDate, preset, opts...).Bootstrap(instruments)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap curve: %v", err)
	}

	leg := preset.FixedLeg
	spot := calendar.SpotDate(leg.Calendar, curveDate, leg.SpotLagDays)
	effective := spot
	if input.ForwardTenor > 0 {
		effective = calendar.AdjustFollowing(leg.Calendar, spot.AddDate(input.ForwardTenor, 0, 0))
	}
	maturity := calendar.AdjustFollowing(leg.Calendar, effective.AddDate(input.SwapTenor, 0, 0))

	fixed, err := schedule.Generate(effective, maturity, preset.FixedLeg)
	if err != nil {
		return nil, err
	}
	floating, err := schedule.Generate(effective, maturity, preset.FloatLeg)
	if err != nil {
		return nil, err
	}

	par, err := valuation.OISParRate(disc, fixed)
	if err != nil {
		return nil, err
	}
	annuity, err := valuation.Annuity(disc, fixed)
	if err != nil {
		return nil, err
	}
	// Self-discounted OIS: the curve both projects and discounts the float leg.
	floatPV, err := valuation.FloatingPV(disc, disc, floating)
	if err != nil {
		return nil, err
	}

	fixedPV := par * annuity * input.Notional
	floatLegPV := floatPV * input.Notional

	return &PricingOutput{
		TaskID:        input.TaskID,
		ParRatePct:    par * 100.0,
		FixedLegPV:    fixedPV,
		FloatingLegPV: floatLegPV,
		TotalNPV:      floatLegPV - fixedPV,
		EffectiveDate: effective.Format("2006-01-02"),
		MaturityDate:  maturity.Format("2006-01-02"),
	}, nil
}
