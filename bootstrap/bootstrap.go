// Package bootstrap builds discount and projection curves from par swap and
// deposit quotes. The discount curve solves OIS quotes self-discounted; the
// projection curve solves IBOR swap quotes against an externally supplied
// discount curve, the standard dual-curve setup since cleared swaps moved to
// OIS discounting.
package bootstrap

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvelib/calendar"
	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/schedule"
	"github.com/meenmo/curvelib/solver"
	"github.com/meenmo/curvelib/utils"
)

// ErrQuoteOrder reports two quotes resolving to the same maturity date.
var ErrQuoteOrder = errors.New("bootstrap: duplicate quote maturity")

// Kind classifies a bootstrap instrument.
type Kind string

const (
	KindDeposit Kind = "deposit"
	KindSwap    Kind = "swap"
)

// Quote is one market observation. Rate may be quoted in percent or decimal;
// BuildInstruments normalizes anything with magnitude above 1 to decimal.
// Kind is optional: when empty, a quote whose tenor equals the index tenor
// (for instance 3M on a EURIBOR3M curve) becomes the fixing deposit and
// everything else a par swap.
type Quote struct {
	Tenor string
	Rate  float64
	Kind  Kind
}

// Instrument is a quote expanded with its schedules and dates.
type Instrument struct {
	Kind         Kind
	Tenor        string
	Rate         float64 // decimal
	Effective    time.Time
	Maturity     time.Time
	Accrual      float64 // deposit accrual fraction, zero for swaps
	FixedPeriods []schedule.Period
	FloatPeriods []schedule.Period
}

// Result reports one solved curve pillar.
type Result struct {
	Tenor      string
	Date       time.Time
	Time       float64
	DF         float64
	Zero       float64 // continuously compounded, percent
	Method     string  // "deposit", "closed-form", "newton" or "bisection"
	Iterations int
}

type options struct {
	logger       zerolog.Logger
	solverCfg    solver.Config
	method       interp.Method
	spotStub     bool
	shortEndRate float64
	hasShortEnd  bool
}

func defaultOptions() options {
	return options{
		logger: zerolog.Nop(),
		method: interp.StepForward,
	}
}

// Option tunes a bootstrapper.
type Option func(*options)

// WithLogger attaches a logger. Libraries default to a no-op logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSolverConfig overrides the root finder configuration. Zero fields keep
// the bootstrapper's defaults.
func WithSolverConfig(cfg solver.Config) Option {
	return func(o *options) { o.solverCfg = cfg }
}

// WithInterpolation selects the interpolation scheme pillars are solved and
// frozen with. Defaults to interp.StepForward.
func WithInterpolation(m interp.Method) Option {
	return func(o *options) { o.method = m }
}

// WithSpotStub inserts a short-end pillar at the spot date after the discount
// bootstrap, using the shortest quote's rate (or the WithShortEndRate
// override) so cashflows inside the spot lag discount off a realized level.
func WithSpotStub(enabled bool) Option {
	return func(o *options) { o.spotStub = enabled }
}

// WithShortEndRate overrides the rate used for the spot stub pillar. Useful
// when the realized overnight fixing differs from the shortest curve quote.
func WithShortEndRate(rate float64) Option {
	return func(o *options) {
		o.shortEndRate = rate
		o.hasShortEnd = true
	}
}

// BuildInstruments expands quotes into dated, scheduled instruments for the
// given curve preset. Quotes are sorted by maturity; two quotes landing on
// the same maturity date wrap ErrQuoteOrder.
func BuildInstruments(refDate time.Time, quotes []Quote, preset market.CurvePreset) ([]Instrument, error) {
	if len(quotes) == 0 {
		return nil, fmt.Errorf("BuildInstruments: no quotes")
	}

	depositTenor := market.IndexTenor(preset.Index)
	out := make([]Instrument, 0, len(quotes))
	for _, q := range quotes {
		rate := q.Rate
		if math.Abs(rate) > 1.0 {
			rate /= 100.0
		}

		kind := q.Kind
		if kind == "" {
			if depositTenor != "" && q.Tenor == depositTenor {
				kind = KindDeposit
			} else {
				kind = KindSwap
			}
		}

		inst, err := buildInstrument(refDate, q.Tenor, rate, kind, preset)
		if err != nil {
			return nil, fmt.Errorf("BuildInstruments: %s: %w", q.Tenor, err)
		}
		out = append(out, inst)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Maturity.Before(out[j].Maturity) })
	for i := 1; i < len(out); i++ {
		if !out[i].Maturity.After(out[i-1].Maturity) {
			return nil, fmt.Errorf("BuildInstruments: %s and %s both mature %s: %w",
				out[i-1].Tenor, out[i].Tenor, out[i].Maturity.Format("2006-01-02"), ErrQuoteOrder)
		}
	}
	return out, nil
}

func buildInstrument(refDate time.Time, tenor string, rate float64, kind Kind, preset market.CurvePreset) (Instrument, error) {
	switch kind {
	case KindDeposit:
		conv := preset.Deposit
		spot := calendar.SpotDate(conv.Calendar, refDate, conv.SpotLagDays)
		maturity, err := market.Maturity(refDate, tenor, conv.Calendar, conv.SpotLagDays, true)
		if err != nil {
			return Instrument{}, err
		}
		return Instrument{
			Kind:      KindDeposit,
			Tenor:     tenor,
			Rate:      rate,
			Effective: spot,
			Maturity:  maturity,
			Accrual:   utils.YearFraction(spot, maturity, string(conv.DayCount)),
		}, nil

	case KindSwap:
		leg := preset.FixedLeg
		spot := calendar.SpotDate(leg.Calendar, refDate, leg.SpotLagDays)
		maturity, err := market.Maturity(refDate, tenor, leg.Calendar, leg.SpotLagDays, true)
		if err != nil {
			return Instrument{}, err
		}
		fixed, err := schedule.Generate(spot, maturity, preset.FixedLeg)
		if err != nil {
			return Instrument{}, fmt.Errorf("fixed leg: %w", err)
		}
		floating, err := schedule.Generate(spot, maturity, preset.FloatLeg)
		if err != nil {
			return Instrument{}, fmt.Errorf("floating leg: %w", err)
		}
		return Instrument{
			Kind:         KindSwap,
			Tenor:        tenor,
			Rate:         rate,
			Effective:    spot,
			Maturity:     maturity,
			FixedPeriods: fixed,
			FloatPeriods: floating,
		}, nil

	default:
		return Instrument{}, fmt.Errorf("unknown instrument kind %q", kind)
	}
}

// committedInterp builds an interpolator over the pillars committed so far,
// or returns nil while only the seed pillar exists (the curve is flat at 1).
func committedInterp(st *curve.State, method interp.Method) (interp.Interpolator, error) {
	if st.Len() < 2 {
		return nil, nil
	}
	times, values := st.Snapshot()
	ip, err := interp.New(method, times, values)
	if err != nil {
		return nil, fmt.Errorf("committedInterp: %w", err)
	}
	return ip, nil
}

// candidateDF interpolates between the anchor pillar and a trial pillar
// (tNew, x) with a constant forward, the step-forward arc the final curve
// will carry. The weight may exceed 1, which extends the same forward flat
// past the trial pillar. Returns the value and its derivative in x.
func candidateDF(t, tAnchor, dfAnchor, tNew, x float64) (float64, float64) {
	w := (t - tAnchor) / (tNew - tAnchor)
	df := math.Pow(dfAnchor, 1.0-w) * math.Pow(x, w)
	return df, w * df / x
}
