package timeframe

import (
	"context"
	"fmt"
	"math"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Validator checks trend, momentum and structure agreement across timeframes
// ⭐ SSOT: 멀티 타임프레임 검증은 여기서만
type Validator struct {
	cfg    shieldconfig.Timeframe
	logger *logger.Logger
}

// New creates a new cross-timeframe validator
func New(cfg *shieldconfig.Config, log *logger.Logger) *Validator {
	return &Validator{
		cfg:    cfg.Timeframe,
		logger: log.Component("timeframe"),
	}
}

// Validate analyzes snapshot timeframes ordered short → long
func (v *Validator) Validate(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot) *contracts.TimeframeResult {
	var frames []contracts.TimeframeData
	if snap != nil {
		frames = snap.Timeframes
	}
	n := len(frames)

	if n == 0 || !sig.Direction.Valid() {
		return &contracts.TimeframeResult{
			Score:          5.0,
			Quality:        contracts.AlignmentModerate,
			Recommendation: "no timeframe data, alignment unverified",
		}
	}

	result := &contracts.TimeframeResult{Total: n}
	aligned := make([]bool, n)

	for i, tf := range frames {
		a := v.analyzeFrame(tf, sig.Direction)
		// 상위 절반 타임프레임의 추세 역행만 충돌로 간주
		if i >= n/2 && a.Trend.Opposes(sig.Direction) {
			a.Conflict = true
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("%s trend %s against %s", tf.Timeframe, a.Trend, sig.Direction))
		}
		if a.Aligned {
			result.AlignedCount++
			aligned[i] = true
		}
		result.Timeframes = append(result.Timeframes, a)
	}

	result.Score = Score(aligned)
	result.Quality = v.quality(result.Score)

	result.Confluences = v.confluences(sig, frames)
	result.ConfluenceCount = len(result.Confluences)

	minRequired := v.cfg.MinAligned.For(sig.Category())
	if minRequired > n {
		minRequired = n
	}
	result.MinRequired = minRequired
	result.PassesValidation = result.AlignedCount >= minRequired
	result.Recommendation = recommend(result)

	v.logger.WithFields(map[string]interface{}{
		"signal_id": sig.ID,
		"symbol":    sig.Symbol,
		"aligned":   result.AlignedCount,
		"total":     n,
		"score":     result.Score,
		"quality":   result.Quality,
		"conflicts": len(result.Conflicts),
	}).Debug("Validated timeframes")

	return result
}

// Score is 10·(aligned_count + weighted_fraction)/(n+1) with weights growing
// toward the longer timeframes. Non-decreasing in aligned_count.
func Score(aligned []bool) float64 {
	n := len(aligned)
	if n == 0 {
		return 0
	}
	var count int
	var weighted, total float64
	for i, ok := range aligned {
		w := float64(i + 1)
		total += w
		if ok {
			count++
			weighted += w
		}
	}
	s := 10 * (float64(count) + weighted/total) / float64(n+1)
	return math.Round(s*10) / 10
}

func (v *Validator) analyzeFrame(tf contracts.TimeframeData, dir contracts.Direction) contracts.TimeframeAnalysis {
	a := contracts.TimeframeAnalysis{
		Timeframe: tf.Timeframe,
		Trend:     frameTrend(tf),
	}

	a.Momentum, a.Divergence = v.momentum(tf)
	a.Structure, a.BreakOfStructure = structure(tf, dir)

	agree := 0
	for _, t := range []contracts.Trend{a.Trend, a.Momentum, a.Structure} {
		if t.Agrees(dir) {
			agree++
		}
	}
	a.Aligned = agree >= 2
	a.Confidence = math.Round(float64(agree)/3*100) / 100
	return a
}

func frameTrend(tf contracts.TimeframeData) contracts.Trend {
	if tf.Price <= 0 || tf.FastMA <= 0 || tf.SlowMA <= 0 {
		return contracts.TrendNeutral
	}
	switch {
	case tf.FastMA > tf.SlowMA && tf.Price > tf.SlowMA:
		return contracts.TrendBullish
	case tf.FastMA < tf.SlowMA && tf.Price < tf.SlowMA:
		return contracts.TrendBearish
	default:
		return contracts.TrendNeutral
	}
}

// momentum from RSI bands; a divergence between the last two swings
// overrides the band reading
func (v *Validator) momentum(tf contracts.TimeframeData) (contracts.Trend, bool) {
	if bearishDivergence(tf) {
		return contracts.TrendBearish, true
	}
	if bullishDivergence(tf) {
		return contracts.TrendBullish, true
	}
	switch {
	case tf.RSI <= 0:
		return contracts.TrendNeutral, false
	case tf.RSI >= v.cfg.RSIBullish:
		return contracts.TrendBullish, false
	case tf.RSI <= v.cfg.RSIBearish:
		return contracts.TrendBearish, false
	default:
		return contracts.TrendNeutral, false
	}
}

// higher price high with a lower RSI high
func bearishDivergence(tf contracts.TimeframeData) bool {
	h, r := tf.SwingHighs, tf.RSIAtHighs
	if len(h) < 2 || len(r) < 2 {
		return false
	}
	return h[len(h)-1] > h[len(h)-2] && r[len(r)-1] < r[len(r)-2]
}

// lower price low with a higher RSI low
func bullishDivergence(tf contracts.TimeframeData) bool {
	l, r := tf.SwingLows, tf.RSIAtLows
	if len(l) < 2 || len(r) < 2 {
		return false
	}
	return l[len(l)-1] < l[len(l)-2] && r[len(r)-1] > r[len(r)-2]
}

// structure reads HH+HL / LH+LL; price through the last swing against the
// trade is a break of structure
func structure(tf contracts.TimeframeData, dir contracts.Direction) (contracts.Trend, bool) {
	hs, ls := tf.SwingHighs, tf.SwingLows

	if dir == contracts.DirectionBuy && len(ls) > 0 && tf.Price > 0 && tf.Price < ls[len(ls)-1] {
		return contracts.TrendBearish, true
	}
	if dir == contracts.DirectionSell && len(hs) > 0 && tf.Price > hs[len(hs)-1] {
		return contracts.TrendBullish, true
	}

	if len(hs) < 2 || len(ls) < 2 {
		return contracts.TrendNeutral, false
	}
	hh := hs[len(hs)-1] > hs[len(hs)-2]
	hl := ls[len(ls)-1] > ls[len(ls)-2]
	lh := hs[len(hs)-1] < hs[len(hs)-2]
	ll := ls[len(ls)-1] < ls[len(ls)-2]

	switch {
	case hh && hl:
		return contracts.TrendBullish, false
	case lh && ll:
		return contracts.TrendBearish, false
	default:
		return contracts.TrendNeutral, false
	}
}

func (v *Validator) quality(score float64) contracts.AlignmentQuality {
	switch {
	case score >= v.cfg.Excellent:
		return contracts.AlignmentExcellent
	case score >= v.cfg.Good:
		return contracts.AlignmentGood
	case score >= v.cfg.Moderate:
		return contracts.AlignmentModerate
	default:
		return contracts.AlignmentPoor
	}
}

// confluences lists timeframes holding a key level near the entry
func (v *Validator) confluences(sig contracts.Signal, frames []contracts.TimeframeData) []string {
	tol := market.FromPips(sig.Symbol, v.cfg.ConfluenceTolPips)
	var out []string
	for _, tf := range frames {
		for _, lvl := range tf.KeyLevels {
			if math.Abs(lvl-sig.Entry) <= tol {
				out = append(out, fmt.Sprintf("%s key level %.5f", tf.Timeframe, lvl))
				break
			}
		}
	}
	return out
}

func recommend(r *contracts.TimeframeResult) string {
	switch {
	case !r.PassesValidation:
		return fmt.Sprintf("only %d/%d timeframes aligned, %d required", r.AlignedCount, r.Total, r.MinRequired)
	case len(r.Conflicts) > 0:
		return fmt.Sprintf("aligned %d/%d but higher timeframes conflict", r.AlignedCount, r.Total)
	case r.Quality == contracts.AlignmentExcellent:
		return "strong multi-timeframe agreement"
	default:
		return fmt.Sprintf("aligned %d/%d timeframes", r.AlignedCount, r.Total)
	}
}
