package bootstrap

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/curvelib/curve"
	"github.com/meenmo/curvelib/market"
	"github.com/meenmo/curvelib/solver"
	"github.com/meenmo/curvelib/utils"
	"github.com/meenmo/curvelib/valuation"
)

// DefaultProjectionTolerance is the residual tolerance for projection curve
// solves. Tighter than the discount default because the residual is a PV
// difference of order 1e-2 rather than a discount factor identity.
const DefaultProjectionTolerance = 1e-14

// Projection bootstraps an IBOR projection curve against a finalized
// discount curve. Pillars are pseudo discount factors: forward rates read off
// their ratios reproduce the input par quotes when discounted externally.
type Projection struct {
	refDate  time.Time
	preset   market.CurvePreset
	discount *curve.Curve
	opts     options
	finder   *solver.Finder
	log      zerolog.Logger
}

// NewProjection builds a projection bootstrapper. The discount curve must be
// frozen before any projection solve so the fixed legs price off final
// values.
func NewProjection(refDate time.Time, preset market.CurvePreset, discount *curve.Curve, opts ...Option) (*Projection, error) {
	if discount == nil {
		return nil, fmt.Errorf("NewProjection: discount curve: %w", valuation.ErrNilCurve)
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	cfg := o.solverCfg
	if cfg.Tolerance == 0 {
		cfg.Tolerance = DefaultProjectionTolerance
	}
	if cfg.Logger == nil {
		cfg.Logger = &o.logger
	}
	return &Projection{
		refDate:  refDate,
		preset:   preset,
		discount: discount,
		opts:     o,
		finder:   solver.New(cfg),
		log:      o.logger,
	}, nil
}

// Bootstrap solves the projection pillars in maturity order.
//
// The pseudo discount factor at spot is pinned to 1 (money-market
// convention: the first fixing accrues from spot), which is the front stub
// every later ratio builds on. Swap solves commit every floating accrual end
// between the previous anchor and maturity as a pillar, so the solved
// forwards survive later instruments unchanged.
func (p *Projection) Bootstrap(instruments []Instrument) (*curve.Curve, []Result, error) {
	if len(instruments) == 0 {
		return nil, nil, fmt.Errorf("Bootstrap: no instruments")
	}

	st := curve.NewState(p.refDate)
	spot := instruments[0].Effective
	if spot.After(p.refDate) {
		if err := st.Append(spot, 1.0); err != nil {
			return nil, nil, fmt.Errorf("Bootstrap: front stub: %w", err)
		}
	}

	results := make([]Result, 0, len(instruments))
	for _, inst := range instruments {
		var (
			px         float64
			method     string
			iterations int
			err        error
		)
		switch inst.Kind {
		case KindDeposit:
			px, err = p.solveDeposit(st, inst)
			method = "deposit"
			if err == nil {
				err = st.Append(inst.Maturity, px)
			}
		case KindSwap:
			px, iterations, err = p.solveSwap(st, inst)
			method = "bisection"
		default:
			err = fmt.Errorf("unknown instrument kind %q", inst.Kind)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("Bootstrap: %s: %w", inst.Tenor, err)
		}

		t := st.TimeOf(inst.Maturity)
		zero := utils.RoundTo(-math.Log(px)/t*100.0, 12)
		p.log.Debug().Str("tenor", inst.Tenor).
			Float64("pseudo_df", px).Float64("zero", zero).
			Str("method", method).Int("iterations", iterations).
			Msg("projection pillar solved")

		results = append(results, Result{
			Tenor:      inst.Tenor,
			Date:       inst.Maturity,
			Time:       t,
			DF:         px,
			Zero:       zero,
			Method:     method,
			Iterations: iterations,
		})
	}

	c, err := st.Freeze(p.opts.method)
	if err != nil {
		return nil, nil, fmt.Errorf("Bootstrap: %w", err)
	}
	p.log.Info().Str("index", string(p.preset.Index)).
		Int("pillars", len(c.Pillars())).
		Msg("projection curve bootstrapped")
	return c, results, nil
}

// solveDeposit prices the index fixing deposit off the spot stub:
// px = 1 / (1 + r*alpha).
func (p *Projection) solveDeposit(st *curve.State, inst Instrument) (float64, error) {
	pxEff, ok := st.Value(inst.Effective)
	if !ok {
		pxEff = 1.0
	}
	px := pxEff / (1.0 + inst.Rate*inst.Accrual)
	if px <= 0 {
		return 0, fmt.Errorf("solveDeposit: non-positive pseudo discount factor %.9g", px)
	}
	return px, nil
}

// projectionContext fixes everything about one solve that does not depend on
// the candidate pillar value: the fixed leg PV off the discount curve, the
// committed pseudo pillars, and the floating period times with their pay
// date discount factors.
type projectionContext struct {
	fixedPV  float64
	tAnchor  float64
	dfAnchor float64
	tFinal   float64
	snap     func(t float64) float64
	periods  []floatPeriod
}

type floatPeriod struct {
	tStart float64
	tEnd   float64
	dfPay  float64
	end    time.Time
}

func (p *Projection) newContext(st *curve.State, inst Instrument) (*projectionContext, error) {
	if len(inst.FixedPeriods) == 0 || len(inst.FloatPeriods) == 0 {
		return nil, fmt.Errorf("newContext: missing schedules")
	}

	annuity, err := valuation.Annuity(p.discount, inst.FixedPeriods)
	if err != nil {
		return nil, fmt.Errorf("newContext: %w", err)
	}

	snap, err := committedInterp(st, p.opts.method)
	if err != nil {
		return nil, fmt.Errorf("newContext: %w", err)
	}
	snapFn := func(float64) float64 { return 1.0 }
	if snap != nil {
		snapFn = snap.Value
	}

	_, tAnchor, dfAnchor := st.Anchor()
	lastEnd := inst.FloatPeriods[len(inst.FloatPeriods)-1].EndDate
	if !lastEnd.Equal(inst.Maturity) {
		return nil, fmt.Errorf("newContext: floating leg ends %s, maturity %s",
			lastEnd.Format("2006-01-02"), inst.Maturity.Format("2006-01-02"))
	}

	periods := make([]floatPeriod, len(inst.FloatPeriods))
	for i, fp := range inst.FloatPeriods {
		periods[i] = floatPeriod{
			tStart: st.TimeOf(fp.StartDate),
			tEnd:   st.TimeOf(fp.EndDate),
			dfPay:  p.discount.DF(fp.PayDate),
			end:    fp.EndDate,
		}
	}

	return &projectionContext{
		fixedPV:  inst.Rate * annuity,
		tAnchor:  tAnchor,
		dfAnchor: dfAnchor,
		tFinal:   st.TimeOf(inst.Maturity),
		snap:     snapFn,
		periods:  periods,
	}, nil
}

// pseudoDF evaluates the pseudo discount factor at time t given candidate
// final pillar x. Committed times interpolate on the frozen snapshot; times
// past the anchor ride the candidate step-forward arc, which passes through
// x exactly at the final time.
func (ctx *projectionContext) pseudoDF(t, x float64) float64 {
	if t <= ctx.tAnchor {
		return ctx.snap(t)
	}
	df, _ := candidateDF(t, ctx.tAnchor, ctx.dfAnchor, ctx.tFinal, x)
	return df
}

// residual is fixed leg PV minus floating leg PV; its root makes the quote
// par.
func (ctx *projectionContext) residual(x float64) float64 {
	floatPV := 0.0
	for _, fp := range ctx.periods {
		pxS := ctx.pseudoDF(fp.tStart, x)
		pxE := ctx.pseudoDF(fp.tEnd, x)
		floatPV += (pxS/pxE - 1.0) * fp.dfPay
	}
	return ctx.fixedPV - floatPV
}

func (p *Projection) solveSwap(st *curve.State, inst Instrument) (float64, int, error) {
	ctx, err := p.newContext(st, inst)
	if err != nil {
		return 0, 0, err
	}

	res, err := p.finder.Solve(ctx.residual, ctx.dfAnchor)
	if err != nil {
		return 0, 0, fmt.Errorf("solveSwap: %w", err)
	}
	x := res.Root

	// Commit every floating accrual end the solve interpolated, then the
	// pillar itself. The committed values lie on the same constant-forward
	// arc, so re-reading them later reproduces the solved forwards exactly.
	anchorDate, _, _ := st.Anchor()
	for _, fp := range ctx.periods {
		if !fp.end.After(anchorDate) || !fp.end.Before(inst.Maturity) {
			continue
		}
		if err := st.Append(fp.end, ctx.pseudoDF(fp.tEnd, x)); err != nil {
			return 0, 0, fmt.Errorf("solveSwap: interim pillar: %w", err)
		}
	}
	if err := st.Append(inst.Maturity, x); err != nil {
		return 0, 0, fmt.Errorf("solveSwap: %w", err)
	}
	return x, res.Iterations, nil
}
