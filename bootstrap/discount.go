package bootstrap

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/interp"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/solver"
	"github.com/meenmo/curvelib/utils"
)

// Discount bootstraps an OIS discount curve with self-discounting: every
// quote is priced off the curve being built.
type Discount struct {
	refDate time.Time
	preset  market.CurvePreset
	opts    options
	finder  *solver.Finder
	log     zerolog.Logger
}

// NewDiscount builds a discount bootstrapper for a curve date and preset.
func NewDiscount(refDate time.Time, preset market.CurvePreset, opts ...Option) *Discount {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	cfg := o.solverCfg
	if cfg.Logger == nil {
		cfg.Logger = &o.logger
	}
	return &Discount{
		refDate: refDate,
		preset:  preset,
		opts:    o,
		finder:  solver.New(cfg),
		log:     o.logger,
	}
}

// Bootstrap solves one pillar per instrument, walking maturities in order.
//
// OIS par quotes telescope: with the floating leg projected and discounted on
// the same curve and every coupon paying on its accrual end, the floating leg
// PV collapses to DF(effective) - DF(final pay). When the only fixed coupon
// beyond the last solved pillar pays exactly at maturity the pillar follows
// in closed form; otherwise a damped Newton solve prices the interim coupons
// on the candidate step-forward arc.
func (d *Discount) Bootstrap(instruments []Instrument) (*curve.Curve, []Result, error) {
	if len(instruments) == 0 {
		return nil, nil, fmt.Errorf("Bootstrap: no instruments")
	}

	st := curve.NewState(d.refDate)
	results := make([]Result, 0, len(instruments))

	for _, inst := range instruments {
		snap, err := committedInterp(st, d.opts.method)
		if err != nil {
			return nil, nil, fmt.Errorf("Bootstrap: %s: %w", inst.Tenor, err)
		}

		var (
			df         float64
			method     string
			iterations int
		)
		switch inst.Kind {
		case KindDeposit:
			df, err = d.solveDeposit(st, snap, inst)
			method = "deposit"
		case KindSwap:
			df, method, iterations, err = d.solveSwap(st, snap, inst)
		default:
			err = fmt.Errorf("unknown instrument kind %q", inst.Kind)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("Bootstrap: %s: %w", inst.Tenor, err)
		}

		_, _, dfAnchor := st.Anchor()
		if df >= dfAnchor {
			d.log.Warn().Str("tenor", inst.Tenor).
				Float64("df", df).Float64("prev", dfAnchor).
				Msg("pillar implies a negative forward")
		}

		if err := st.Append(inst.Maturity, df); err != nil {
			return nil, nil, fmt.Errorf("Bootstrap: %s: %w", inst.Tenor, err)
		}

		t := st.TimeOf(inst.Maturity)
		zero := utils.RoundTo(-math.Log(df)/t*100.0, 12)
		d.log.Debug().Str("tenor", inst.Tenor).
			Float64("df", df).Float64("zero", zero).
			Str("method", method).Int("iterations", iterations).
			Msg("discount pillar solved")

		results = append(results, Result{
			Tenor:      inst.Tenor,
			Date:       inst.Maturity,
			Time:       t,
			DF:         df,
			Zero:       zero,
			Method:     method,
			Iterations: iterations,
		})
	}

	c, err := d.freeze(st, instruments)
	if err != nil {
		return nil, nil, err
	}
	d.log.Info().Str("index", string(d.preset.Index)).
		Int("pillars", len(c.Pillars())).
		Msg("discount curve bootstrapped")
	return c, results, nil
}

func (d *Discount) freeze(st *curve.State, instruments []Instrument) (*curve.Curve, error) {
	frozen, err := st.Freeze(d.opts.method)
	if err != nil {
		return nil, fmt.Errorf("Bootstrap: %w", err)
	}
	if !d.opts.spotStub {
		return frozen, nil
	}

	spot := instruments[0].Effective
	if !spot.After(d.refDate) {
		d.log.Debug().Msg("spot stub skipped, spot equals curve date")
		return frozen, nil
	}
	stubRate := instruments[0].Rate
	if d.opts.hasShortEnd {
		stubRate = d.opts.shortEndRate
	}
	alpha := utils.YearFraction(d.refDate, spot, string(d.preset.Deposit.DayCount))
	stubDF := math.Exp(-stubRate * alpha)

	stubbed, err := frozen.WithSpotStub(spot, stubDF)
	if err != nil {
		return nil, fmt.Errorf("Bootstrap: spot stub: %w", err)
	}
	d.log.Debug().Float64("rate", stubRate).Float64("df", stubDF).
		Msg("spot stub pillar inserted")
	return stubbed, nil
}

// solveDeposit prices a money-market deposit: df = DF(effective) / (1 + r*alpha).
//
// For the first instrument the effective date lies beyond the anchor, so its
// discount factor rides the candidate arc, DF(effective) = x^w. Substituting
// into the simple-interest identity gives x = (1 + r*alpha)^(-1/(1-w)), which
// keeps the finalized curve consistent with the solve.
func (d *Discount) solveDeposit(st *curve.State, snap interp.Interpolator, inst Instrument) (float64, error) {
	anchorDate, tAnchor, dfAnchor := st.Anchor()
	grow := 1.0 + inst.Rate*inst.Accrual
	if grow <= 0 {
		return 0, fmt.Errorf("solveDeposit: rate %.6g over accrual %.6g implies non-positive growth", inst.Rate, inst.Accrual)
	}

	if !inst.Effective.After(anchorDate) {
		dfEff := 1.0
		if snap != nil {
			dfEff = snap.Value(st.TimeOf(inst.Effective))
		}
		df := dfEff / grow
		if df <= 0 {
			return 0, fmt.Errorf("solveDeposit: non-positive discount factor %.9g", df)
		}
		return df, nil
	}

	tEff := st.TimeOf(inst.Effective)
	tMat := st.TimeOf(inst.Maturity)
	if tMat <= tEff {
		return 0, fmt.Errorf("solveDeposit: maturity %s not after effective", inst.Maturity.Format("2006-01-02"))
	}
	w := (tEff - tAnchor) / (tMat - tAnchor)
	return dfAnchor * math.Pow(grow, -1.0/(1.0-w)), nil
}

func (d *Discount) solveSwap(st *curve.State, snap interp.Interpolator, inst Instrument) (float64, string, int, error) {
	if len(inst.FixedPeriods) == 0 || len(inst.FloatPeriods) == 0 {
		return 0, "", 0, fmt.Errorf("solveSwap: missing schedules")
	}
	anchorDate, tAnchor, dfAnchor := st.Anchor()
	tMat := st.TimeOf(inst.Maturity)
	tEff := st.TimeOf(inst.Effective)

	// DF(effective) is known only once the curve reaches past the effective
	// date. For the first instrument it sits on the candidate arc instead.
	effKnown := !inst.Effective.After(anchorDate)
	dfEff := 1.0
	if effKnown && snap != nil {
		dfEff = snap.Value(tEff)
	}

	finalFloatPay := inst.FloatPeriods[len(inst.FloatPeriods)-1].PayDate
	tFinalPay := st.TimeOf(finalFloatPay)

	// Coupons paying on or before the anchor discount off committed pillars;
	// later ones depend on the pillar being solved.
	type pending struct{ alpha, t float64 }
	knownAnnuity := 0.0
	var unknown []pending
	for _, p := range inst.FixedPeriods {
		tPay := st.TimeOf(p.PayDate)
		if !p.PayDate.After(anchorDate) {
			dfp := 1.0
			if snap != nil {
				dfp = snap.Value(tPay)
			}
			knownAnnuity += p.YearFraction * dfp
		} else {
			unknown = append(unknown, pending{alpha: p.YearFraction, t: tPay})
		}
	}
	if len(unknown) == 0 {
		return 0, "", 0, fmt.Errorf("solveSwap: no coupon beyond anchor %s", anchorDate.Format("2006-01-02"))
	}

	last := inst.FixedPeriods[len(inst.FixedPeriods)-1]
	singleAtMaturity := len(unknown) == 1 && last.PayDate.Equal(inst.Maturity) && finalFloatPay.Equal(inst.Maturity)

	if singleAtMaturity && effKnown {
		// Telescoped par equation, linear in the pillar.
		denom := 1.0 + inst.Rate*unknown[0].alpha
		if denom > 0 {
			x := (dfEff - inst.Rate*knownAnnuity) / denom
			if x <= 0 {
				return 0, "", 0, fmt.Errorf("solveSwap: non-positive discount factor %.9g", x)
			}
			return x, "closed-form", 0, nil
		}
	}
	if singleAtMaturity && !effKnown && knownAnnuity == 0 && tMat > tEff {
		// Single-coupon first pillar: DF(effective) = dfAnchor^(1-w) * x^w on
		// the candidate arc reduces the par equation to a power solve.
		denom := 1.0 + inst.Rate*unknown[0].alpha
		if denom > 0 {
			w := (tEff - tAnchor) / (tMat - tAnchor)
			x := dfAnchor * math.Pow(denom, -1.0/(1.0-w))
			return x, "closed-form", 0, nil
		}
	}

	residual := func(x float64) (float64, float64) {
		pv := inst.Rate * knownAnnuity
		dpv := 0.0
		for _, c := range unknown {
			dfc, dd := candidateDF(c.t, tAnchor, dfAnchor, tMat, x)
			pv += inst.Rate * c.alpha * dfc
			dpv += inst.Rate * c.alpha * dd
		}
		dfFinal, ddFinal := candidateDF(tFinalPay, tAnchor, dfAnchor, tMat, x)
		f, fd := pv+dfFinal, dpv+ddFinal
		if effKnown {
			f -= dfEff
		} else {
			dEff, ddEff := candidateDF(tEff, tAnchor, dfAnchor, tMat, x)
			f -= dEff
			fd -= ddEff
		}
		return f, fd
	}

	res, err := d.finder.SolveNewton(residual, dfAnchor)
	if err != nil {
		return 0, "", 0, fmt.Errorf("solveSwap: %w", err)
	}
	return res.Root, res.Method, res.Iterations, nil
}
