package inspector

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Inspector classifies a raw signal's pattern, trap risk and strength
// ⭐ SSOT: 시그널 패턴/트랩 분석은 여기서만
type Inspector struct {
	cfg    shieldconfig.Inspector
	logger *logger.Logger
	clock  contracts.Clock
}

// New creates a new signal inspector
func New(cfg *shieldconfig.Config, log *logger.Logger, clock contracts.Clock) *Inspector {
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &Inspector{
		cfg:    cfg.Inspector,
		logger: log.Component("inspector"),
		clock:  clock,
	}
}

// Inspect never fails; missing data yields neutral values
func (i *Inspector) Inspect(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot) *contracts.InspectionResult {
	if !sig.Direction.Valid() || sig.Entry <= 0 {
		return &contracts.InspectionResult{
			Pattern:        contracts.PatternUnknown,
			EntryStructure: "insufficient signal data",
			TrapRisk:       contracts.RiskMinimal,
			Strength:       contracts.StrengthWeak,
			Contributions:  []contracts.Contribution{{Reason: "invalid signal fields", Points: 0}},
		}
	}

	high, low := i.recentRange(snap)
	pattern := i.classifyPattern(sig, snap, high, low)
	trapScore, trapContrib := i.trapScore(sig, snap, pattern, high)
	trapRisk := i.cfg.Buckets.Bucket(trapScore)
	volZone := i.volatilityZone(snap)
	rr := sig.RiskReward()
	strength, strengthContrib := i.strength(rr, trapRisk, pattern, volZone)

	result := &contracts.InspectionResult{
		Pattern:        pattern,
		EntryStructure: describeEntry(sig, pattern, high, low),
		VolatilityZone: volZone,
		TrapRisk:       trapRisk,
		TrapScore:      trapScore,
		RiskReward:     math.Round(rr*100) / 100,
		Strength:       strength,
		Contributions:  append(trapContrib, strengthContrib...),
	}

	i.logger.WithFields(map[string]interface{}{
		"signal_id":  sig.ID,
		"symbol":     sig.Symbol,
		"pattern":    pattern,
		"trap_score": trapScore,
		"trap_risk":  trapRisk,
		"rr":         result.RiskReward,
		"strength":   strength,
	}).Debug("Inspected signal")

	return result
}

// recentRange prefers snapshot extremes over the candle window
func (i *Inspector) recentRange(snap *contracts.MarketSnapshot) (float64, float64) {
	if snap == nil {
		return 0, 0
	}
	high, low := snap.RecentHigh, snap.RecentLow
	if high <= 0 || low <= 0 {
		ch, cl := market.HighLow(snap.RecentCandles())
		if high <= 0 {
			high = ch
		}
		if low <= 0 {
			low = cl
		}
	}
	return high, low
}

func (i *Inspector) classifyPattern(sig contracts.Signal, snap *contracts.MarketSnapshot, high, low float64) contracts.Pattern {
	if snap == nil || (high <= 0 && low <= 0 && len(snap.Candles) == 0) {
		return patternFromHint(sig.SignalType)
	}

	buy := sig.Direction == contracts.DirectionBuy
	entry := sig.Entry

	// 돌파
	if buy && high > 0 && entry > high {
		return contracts.PatternBreakout
	}
	if !buy && low > 0 && entry < low {
		return contracts.PatternBreakout
	}

	// 리테스트: 돌파된 레벨로 되돌림
	for _, lvl := range snap.BrokenLevels {
		dist := market.ToPips(sig.Symbol, math.Abs(entry-lvl))
		if dist > i.cfg.RetestTolPips {
			continue
		}
		if (buy && lvl <= entry) || (!buy && lvl >= entry) {
			return contracts.PatternRetest
		}
	}

	// 반전: 레인지 하단/상단 25%
	if rng := high - low; rng > 0 {
		pos := (entry - low) / rng
		if buy && pos <= i.cfg.ReversalZonePct {
			return contracts.PatternReversal
		}
		if !buy && pos >= 1-i.cfg.ReversalZonePct {
			return contracts.PatternReversal
		}
	}

	if trendingCloses(snap.RecentCandles(), i.cfg.ContinuationBars, sig.Direction) {
		return contracts.PatternContinuation
	}

	return contracts.PatternUnknown
}

func patternFromHint(hint string) contracts.Pattern {
	h := strings.ToUpper(hint)
	switch {
	case strings.Contains(h, "BREAKOUT"):
		return contracts.PatternBreakout
	case strings.Contains(h, "RETEST"):
		return contracts.PatternRetest
	case strings.Contains(h, "REVERS"):
		return contracts.PatternReversal
	case strings.Contains(h, "TREND"), strings.Contains(h, "CONTINUATION"):
		return contracts.PatternContinuation
	default:
		return contracts.PatternUnknown
	}
}

// trendingCloses reports a net move in direction over the last bars
// with most individual closes agreeing
func trendingCloses(candles []contracts.Candle, bars int, dir contracts.Direction) bool {
	if len(candles) < bars+1 {
		return false
	}
	window := candles[len(candles)-bars-1:]
	sign := dir.Sign()

	agree := 0
	for k := 1; k < len(window); k++ {
		if (window[k].Close-window[k-1].Close)*sign > 0 {
			agree++
		}
	}
	net := (window[len(window)-1].Close - window[0].Close) * sign
	return net > 0 && agree*2 > bars
}

// trapScore sums the retail-trap heuristics
func (i *Inspector) trapScore(sig contracts.Signal, snap *contracts.MarketSnapshot, pattern contracts.Pattern, high float64) (int, []contracts.Contribution) {
	var contrib []contracts.Contribution
	add := func(reason string, points int) {
		contrib = append(contrib, contracts.Contribution{Reason: "trap: " + reason, Points: float64(points)})
	}

	if pattern == contracts.PatternBreakout {
		add("breakout entry", i.cfg.BreakoutPoints)
	}

	if snap != nil {
		if i.nearOppositeCluster(sig, snap, high) {
			add("unswept liquidity cluster ahead of entry", i.cfg.ClusterPoints)
		}
		if priorFalseBreakout(snap.RecentCandles(), i.cfg.FalseBreakoutBars, sig.Direction) {
			add("prior false breakout", i.cfg.FalseBreakoutPoints)
		}
	}

	if ok, _ := market.NearRoundNumber(sig.Symbol, sig.Entry, i.cfg.RoundNumberTolPips); ok {
		add("round-number entry", i.cfg.RoundNumberPoints)
	}

	if market.IsLowLiquidityHour(i.now(snap)) {
		add("off-hours timing", i.cfg.OffHoursPoints)
	}

	score := 0
	for _, c := range contrib {
		score += int(c.Points)
	}
	return score, contrib
}

// nearOppositeCluster checks for resting stops just beyond the extreme
// the trade has to push through (recent high for BUY, low for SELL)
func (i *Inspector) nearOppositeCluster(sig contracts.Signal, snap *contracts.MarketSnapshot, high float64) bool {
	tol := math.Max(market.FromPips(sig.Symbol, i.cfg.ClusterMinPips), snap.ATR*i.cfg.ClusterATRMult)

	if sig.Direction == contracts.DirectionBuy {
		return high > sig.Entry && high-sig.Entry <= tol && !sweptLevel(snap, contracts.SweepHigh)
	}
	low := snap.RecentLow
	if low <= 0 {
		_, low = market.HighLow(snap.RecentCandles())
	}
	return low > 0 && low < sig.Entry && sig.Entry-low <= tol && !sweptLevel(snap, contracts.SweepLow)
}

func sweptLevel(snap *contracts.MarketSnapshot, t contracts.SweepType) bool {
	for _, ev := range snap.LiquidityEvents {
		if ev.Type == t {
			return true
		}
	}
	return false
}

// priorFalseBreakout finds a bar that pierced the prior 5-bar extreme in the
// trade direction and closed back inside
func priorFalseBreakout(candles []contracts.Candle, bars int, dir contracts.Direction) bool {
	const lookback = 5
	start := len(candles) - bars
	if start < lookback {
		start = lookback
	}
	for k := start; k < len(candles); k++ {
		prev := candles[k-lookback : k]
		ph, pl := market.HighLow(prev)
		c := candles[k]
		if dir == contracts.DirectionBuy && c.High > ph && c.Close < ph {
			return true
		}
		if dir == contracts.DirectionSell && c.Low < pl && c.Close > pl {
			return true
		}
	}
	return false
}

// volatilityZone flags an expanded last bar or an ATR well above its norm
func (i *Inspector) volatilityZone(snap *contracts.MarketSnapshot) bool {
	if snap == nil {
		return false
	}
	candles := snap.RecentCandles()
	atr := snap.ATR
	if atr <= 0 {
		atr = market.ATR(candles, 14)
	}
	if atr <= 0 {
		return false
	}
	if n := len(candles); n > 0 && candles[n-1].Range() > i.cfg.VolatilityRangeMult*atr {
		return true
	}
	if med := market.Median(snap.ATRHistory); med > 0 && atr > i.cfg.VolatilityATRMult*med {
		return true
	}
	return false
}

func (i *Inspector) strength(rr float64, trap contracts.RiskLevel, pattern contracts.Pattern, volZone bool) (contracts.Strength, []contracts.Contribution) {
	var contrib []contracts.Contribution
	add := func(reason string, points float64) {
		contrib = append(contrib, contracts.Contribution{Reason: "strength: " + reason, Points: points})
	}

	// float 나눗셈 오차 보정
	const eps = 1e-9
	switch {
	case rr+eps >= i.cfg.RRStrong:
		add(fmt.Sprintf("risk/reward %.2f", rr), 2)
	case rr+eps >= i.cfg.RRGood:
		add(fmt.Sprintf("risk/reward %.2f", rr), 1)
	}

	switch trap {
	case contracts.RiskMinimal, contracts.RiskLow:
		add("low trap risk", 1)
	case contracts.RiskHigh:
		add("high trap risk", -2)
	}

	if pattern == contracts.PatternRetest || pattern == contracts.PatternContinuation {
		add(strings.ToLower(string(pattern))+" structure", 1)
	}

	if volZone {
		add("volatility zone", -1)
	}

	points := contracts.SumPoints(contrib)
	switch {
	case points >= 3:
		return contracts.StrengthStrong, contrib
	case points >= 2:
		return contracts.StrengthModerate, contrib
	case points >= 1:
		return contracts.StrengthWeak, contrib
	default:
		return contracts.StrengthVeryWeak, contrib
	}
}

func (i *Inspector) now(snap *contracts.MarketSnapshot) time.Time {
	if snap != nil && !snap.Timestamp.IsZero() {
		return snap.Timestamp
	}
	return i.clock()
}

func describeEntry(sig contracts.Signal, pattern contracts.Pattern, high, low float64) string {
	if high <= 0 || low <= 0 {
		return fmt.Sprintf("%s %s at %.5f, no range context", sig.Direction, strings.ToLower(string(pattern)), sig.Entry)
	}
	pos := 0.0
	if rng := high - low; rng > 0 {
		pos = (sig.Entry - low) / rng * 100
	}
	return fmt.Sprintf("%s %s at %.5f, %.0f%% of range %.5f-%.5f",
		sig.Direction, strings.ToLower(string(pattern)), sig.Entry, pos, low, high)
}
