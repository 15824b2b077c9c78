package scoring

import (
	"fmt"
	"math"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
)

const (
	ComponentSignalQuality = "signal_quality"
	ComponentLiquidity     = "liquidity"
	ComponentRegime        = "market_regime"
	ComponentTimeframe     = "timeframe_alignment"
	ComponentTiming        = "timing"
)

func component(name string, score, ceiling float64, reason string) contracts.Component {
	score = math.Round(score*100) / 100
	impact := "neutral"
	switch {
	case score > 0:
		impact = "positive"
	case score < 0:
		impact = "negative"
	}
	return contracts.Component{Name: name, Score: score, Max: ceiling, Reason: reason, Impact: impact}
}

func (e *Engine) signalQuality(r *contracts.InspectionResult) contracts.Component {
	w := e.cfg.SignalQuality
	if r == nil {
		return component(ComponentSignalQuality, 0, w.Max, "signal not inspected")
	}

	var pts float64
	switch r.Strength {
	case contracts.StrengthStrong:
		pts = w.Strong
	case contracts.StrengthModerate:
		pts = w.Moderate
	case contracts.StrengthWeak:
		pts = w.Weak
	default:
		pts = w.VeryWeak
	}
	pts = market.Clamp(pts, w.Min, w.Max)

	reason := fmt.Sprintf("%s %s, R:R %.2f, trap %s",
		r.Strength, r.Pattern, r.RiskReward, r.TrapRisk)
	return component(ComponentSignalQuality, pts, w.Max, reason)
}

func (e *Engine) liquidity(r *contracts.LiquidityResult) contracts.Component {
	b := e.cfg.Liquidity
	if r == nil || b.Divisor == 0 {
		return component(ComponentLiquidity, 0, b.Cap, "liquidity not mapped")
	}
	pts := market.Clamp((r.LiquidityScore-5)/b.Divisor, -b.Cap, b.Cap)

	reason := fmt.Sprintf("liquidity score %.1f, trap %s", r.LiquidityScore, r.TrapProbability)
	if r.SweepDetected && r.SweepAligned {
		reason += ", aligned sweep"
	}
	return component(ComponentLiquidity, pts, b.Cap, reason)
}

func (e *Engine) regime(sig contracts.Signal, r *contracts.RegimeResult, ins *contracts.InspectionResult) contracts.Component {
	w := e.cfg.RegimeWeights
	if r == nil {
		return component(ComponentRegime, 0, w.Max, "regime unknown")
	}

	var pts float64
	switch r.Regime {
	case contracts.RegimeTrendingBull, contracts.RegimeTrendingBear:
		if r.Trend.Agrees(sig.Direction) {
			pts = w.TrendAligned
		} else {
			pts = w.TrendOpposed
		}
	case contracts.RegimeBreakout:
		switch {
		case r.Trend.Agrees(sig.Direction):
			pts = w.BreakoutAligned
		case r.Trend.Opposes(sig.Direction):
			pts = w.TrendOpposed
		}
	case contracts.RegimeRangingCalm:
		// 조용한 레인지에서는 반전 진입만 가점
		if ins != nil && ins.Pattern == contracts.PatternReversal {
			pts = w.RangingCalmReversal
		}
	case contracts.RegimeRangingVolatile:
		pts = w.RangingVolatile
	case contracts.RegimeNewsDriven:
		pts = w.NewsDriven
	}
	pts = market.Clamp(pts, w.Min, w.Max)

	reason := fmt.Sprintf("%s, trend %s (%d/5)", r.Regime, r.Trend, r.TrendStrength)
	return component(ComponentRegime, pts, w.Max, reason)
}

func (e *Engine) timeframe(r *contracts.TimeframeResult) contracts.Component {
	w := e.cfg.Timeframe
	if r == nil {
		return component(ComponentTimeframe, 0, w.Max, "timeframes not validated")
	}
	pts := market.Clamp((r.Score-5)/5*w.Scale, w.Min, w.Max)

	reason := fmt.Sprintf("%d/%d timeframes aligned (%s)", r.AlignedCount, r.Total, r.Quality)
	return component(ComponentTimeframe, pts, w.Max, reason)
}

func (e *Engine) timing(r *contracts.RegimeResult) contracts.Component {
	w := e.cfg.Timing
	if r == nil {
		return component(ComponentTiming, 0, 0, "timing unknown")
	}

	var pts float64
	var notes []string
	if r.Session == contracts.SessionWeekend {
		pts += w.Weekend
		notes = append(notes, "weekend")
	} else if r.LowLiquidityHour {
		pts += w.OffHours
		notes = append(notes, "off-hours")
	}
	if r.SessionFit == contracts.FitPoor {
		pts += w.PoorFit
		notes = append(notes, "poor session fit")
	}
	if r.NewsRisk == contracts.NewsYellow {
		pts += w.YellowNews
		notes = append(notes, "news approaching")
	}
	pts = math.Max(pts, w.Min)

	reason := fmt.Sprintf("%s session, %s fit", r.Session, r.SessionFit)
	for _, n := range notes {
		reason += ", " + n
	}
	return component(ComponentTiming, pts, 0, reason)
}

// penalties are discrete and each applies at most once
func (e *Engine) penalties(in contracts.ScoringInput) []contracts.Contribution {
	p := e.cfg.Penalties
	var out []contracts.Contribution
	add := func(reason string, pts float64) {
		out = append(out, contracts.Contribution{Reason: reason, Points: pts})
	}

	if r := in.Regime; r != nil && r.NewsRisk == contracts.NewsRed {
		add("high-impact news imminent", p.RedNews)
	}

	insHigh := in.Inspection != nil && in.Inspection.TrapRisk == contracts.RiskHigh
	liqHigh := in.Liquidity != nil && in.Liquidity.TrapProbability == contracts.RiskHigh
	if insHigh || liqHigh {
		add("high trap probability", p.HighTrap)
	}

	if r := in.Regime; r != nil && r.Volatility == contracts.VolatilityHigh {
		add("extreme volatility", p.ExtremeVolatility)
	}

	if tf := in.Timeframe; tf != nil && len(tf.Conflicts) >= p.ConflictsMin {
		add(fmt.Sprintf("%d higher-timeframe conflicts", len(tf.Conflicts)), p.Conflicts)
	}

	if r := in.Regime; r != nil && lowLiquiditySession(in.Signal.Symbol, r) {
		add("low-liquidity session", p.LowLiquiditySession)
	}

	return out
}

// lowLiquiditySession: weekend, or the Asian session for a pair with no
// Asia-Pacific currency
func lowLiquiditySession(symbol string, r *contracts.RegimeResult) bool {
	switch r.Session {
	case contracts.SessionWeekend:
		return true
	case contracts.SessionAsian:
		return !market.IsAsianPair(symbol)
	default:
		return false
	}
}

func (e *Engine) bonuses(in contracts.ScoringInput) []contracts.Contribution {
	b := e.cfg.Bonuses
	var out []contracts.Contribution
	add := func(reason string, pts float64) {
		out = append(out, contracts.Contribution{Reason: reason, Points: pts})
	}

	if l := in.Liquidity; l != nil && l.SweepDetected && l.SweepAligned && l.Sweep != nil {
		q := l.Sweep.Quality
		if (q == contracts.SweepQualityHigh || q == contracts.SweepQualityMedium) && l.Sweep.BarsAgo <= b.PostSweepMaxBars {
			add(fmt.Sprintf("entry after %s-quality sweep %d bars ago", q, l.Sweep.BarsAgo), b.PostSweep)
		}
	}

	if tf := in.Timeframe; tf != nil && tf.Quality == contracts.AlignmentExcellent {
		add("excellent timeframe alignment", b.ExcellentAlignment)
	}

	if r := in.Regime; r != nil && r.TrendStrength >= b.StrongTrendMin && r.Trend.Agrees(in.Signal.Direction) {
		add(fmt.Sprintf("strong %s trend continuation", r.Trend), b.StrongTrend)
	}

	if tf := in.Timeframe; tf != nil && tf.ConfluenceCount >= b.ConfluenceMin {
		add(fmt.Sprintf("%d-timeframe level confluence", tf.ConfluenceCount), b.Confluence)
	}

	if r := in.Regime; r != nil && r.SessionFit == contracts.FitOptimal {
		add(fmt.Sprintf("optimal %s session for pair", r.Session), b.OptimalSession)
	}

	return out
}
