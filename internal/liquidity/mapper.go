package liquidity

import (
	"context"
	"math"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Mapper detects sweeps, stop clusters, order blocks and trap probability
// ⭐ SSOT: 유동성/트랩 분석은 여기서만
type Mapper struct {
	cfg    shieldconfig.Liquidity
	logger *logger.Logger
	clock  contracts.Clock
}

// New creates a new liquidity mapper
func New(cfg *shieldconfig.Config, log *logger.Logger, clock contracts.Clock) *Mapper {
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &Mapper{
		cfg:    cfg.Liquidity,
		logger: log.Component("liquidity"),
		clock:  clock,
	}
}

// Map never fails; without candles only the psychological level and
// timing contribute
func (m *Mapper) Map(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot) *contracts.LiquidityResult {
	result := &contracts.LiquidityResult{
		TrapProbability: contracts.RiskMinimal,
		LiquidityScore:  m.cfg.Score.Base,
	}
	if sig.Entry <= 0 || !sig.Direction.Valid() {
		return result
	}

	result.Psychological = market.Psychological(sig.Symbol, sig.Entry)

	var candles []contracts.Candle
	if snap != nil {
		candles = snap.RecentCandles()
	}

	sweep, knownSweeps := m.findSweep(sig, snap, candles)
	if sweep != nil {
		result.SweepDetected = true
		result.Sweep = sweep
		result.SweepAligned = sweep.AlignedWith(sig.Direction)
	}

	if snap != nil {
		result.Clusters = m.clusters(sig, snap, candles, knownSweeps)
		result.NearestCluster = m.nearestAhead(sig, result.Clusters)
		result.OrderBlock = m.orderBlock(candles, sig.Direction)
	}

	trapScore, trapContrib := m.trapScore(sig, snap, candles, result)
	result.TrapScore = trapScore
	result.TrapProbability = m.cfg.Buckets.Bucket(trapScore)
	result.Contributions = trapContrib

	score, scoreContrib := m.liquidityScore(sig, result)
	result.LiquidityScore = score
	result.Contributions = append(result.Contributions, scoreContrib...)

	m.logger.WithFields(map[string]interface{}{
		"signal_id":       sig.ID,
		"symbol":          sig.Symbol,
		"sweep":           result.SweepDetected,
		"sweep_aligned":   result.SweepAligned,
		"trap_score":      trapScore,
		"trap":            result.TrapProbability,
		"liquidity_score": score,
	}).Debug("Mapped liquidity")

	return result
}

// findSweep returns the sweep that drives the trap credit plus every sweep
// known for cluster bookkeeping. Supplied events win unless only the candle
// scan found one aligned with the signal.
func (m *Mapper) findSweep(sig contracts.Signal, snap *contracts.MarketSnapshot, candles []contracts.Candle) (*contracts.LiquidityEvent, []contracts.LiquidityEvent) {
	var known []contracts.LiquidityEvent
	var best *contracts.LiquidityEvent
	if snap != nil {
		for k := range snap.LiquidityEvents {
			ev := snap.LiquidityEvents[k]
			known = append(known, ev)
			if best == nil || betterSweep(ev, *best, sig.Direction) {
				e := ev
				best = &e
			}
		}
	}

	if scanned := m.scanSweep(candles); scanned != nil {
		known = append(known, *scanned)
		if best == nil || (scanned.AlignedWith(sig.Direction) && !best.AlignedWith(sig.Direction)) {
			best = scanned
		}
	}
	return best, known
}

func betterSweep(a, b contracts.LiquidityEvent, dir contracts.Direction) bool {
	aa, ba := a.AlignedWith(dir), b.AlignedWith(dir)
	if aa != ba {
		return aa
	}
	return a.BarsAgo < b.BarsAgo
}

// scanSweep looks for a spike through the prior extreme that closed back
// inside, newest bar first
func (m *Mapper) scanSweep(candles []contracts.Candle) *contracts.LiquidityEvent {
	n := len(candles)
	lookback := m.cfg.SweepLookback
	start := n - m.cfg.SweepWindow
	if start < lookback {
		start = lookback
	}

	for k := n - 1; k >= start; k-- {
		c := candles[k]
		rng := c.Range()
		if rng <= 0 {
			continue
		}
		prevHigh, prevLow := market.HighLow(candles[k-lookback : k])

		if c.Low < prevLow && c.Close > prevLow {
			if q, ok := m.grade(c.LowerWick() / rng); ok {
				return &contracts.LiquidityEvent{Type: contracts.SweepLow, Level: prevLow, Quality: q, BarsAgo: n - 1 - k, Time: c.Time}
			}
		}
		if c.High > prevHigh && c.Close < prevHigh {
			if q, ok := m.grade(c.UpperWick() / rng); ok {
				return &contracts.LiquidityEvent{Type: contracts.SweepHigh, Level: prevHigh, Quality: q, BarsAgo: n - 1 - k, Time: c.Time}
			}
		}
	}
	return nil
}

func (m *Mapper) grade(wickRatio float64) (contracts.SweepQuality, bool) {
	switch {
	case wickRatio >= m.cfg.WickHigh:
		return contracts.SweepQualityHigh, true
	case wickRatio >= m.cfg.WickMedium:
		return contracts.SweepQualityMedium, true
	case wickRatio >= m.cfg.WickLow:
		return contracts.SweepQualityLow, true
	default:
		return "", false
	}
}

// trapScore: aligned sweep lowers, unswept cluster ahead and counter-trend
// entries into a level raise, thin hours add a point
func (m *Mapper) trapScore(sig contracts.Signal, snap *contracts.MarketSnapshot, candles []contracts.Candle, r *contracts.LiquidityResult) (int, []contracts.Contribution) {
	var contrib []contracts.Contribution
	add := func(reason string, points int) {
		contrib = append(contrib, contracts.Contribution{Reason: "trap: " + reason, Points: float64(points)})
	}

	if r.SweepDetected && r.SweepAligned {
		add("liquidity already swept", m.cfg.SweepPoints)
	}

	if c := r.NearestCluster; c != nil && !c.Swept && c.DistancePips <= m.cfg.ClusterProximityPips {
		add("unswept stop cluster ahead", m.cfg.ClusterPoints)
	}

	if snap != nil && m.counterTrendIntoLevel(sig, snap, candles) {
		add("counter-trend entry into level", m.cfg.CounterTrendPoints)
	}

	now := m.clock()
	if snap != nil && !snap.Timestamp.IsZero() {
		now = snap.Timestamp
	}
	if market.IsLowLiquidityHour(now) {
		add("low-liquidity hour", m.cfg.LowLiquidityPoints)
	}

	score := 0
	for _, c := range contrib {
		score += int(c.Points)
	}
	return score, contrib
}

// counterTrendIntoLevel: a BUY under falling MAs close to resistance
// (or the mirrored SELL) is likely to be faded
func (m *Mapper) counterTrendIntoLevel(sig contracts.Signal, snap *contracts.MarketSnapshot, candles []contracts.Candle) bool {
	closes := market.Closes(candles)
	fast, okFast := market.SMA(closes, 10)
	slow, okSlow := market.SMA(closes, 30)
	if !okFast || !okSlow {
		return false
	}
	localTrend := contracts.TrendNeutral
	switch {
	case fast > slow:
		localTrend = contracts.TrendBullish
	case fast < slow:
		localTrend = contracts.TrendBearish
	}
	if !localTrend.Opposes(sig.Direction) {
		return false
	}

	high, low := extremes(snap, candles)
	prox := m.cfg.ClusterProximityPips
	if sig.Direction == contracts.DirectionBuy {
		return high > 0 && high >= sig.Entry && market.ToPips(sig.Symbol, high-sig.Entry) <= prox
	}
	return low > 0 && low <= sig.Entry && market.ToPips(sig.Symbol, sig.Entry-low) <= prox
}

func (m *Mapper) liquidityScore(sig contracts.Signal, r *contracts.LiquidityResult) (float64, []contracts.Contribution) {
	s := m.cfg.Score
	contrib := []contracts.Contribution{{Reason: "liquidity baseline", Points: s.Base}}
	add := func(reason string, points float64) {
		contrib = append(contrib, contracts.Contribution{Reason: reason, Points: points})
	}

	if r.SweepDetected && r.SweepAligned {
		switch r.Sweep.Quality {
		case contracts.SweepQualityHigh:
			add("high-quality sweep", s.SweepHigh)
		case contracts.SweepQualityMedium:
			add("medium-quality sweep", s.SweepMedium)
		case contracts.SweepQualityLow:
			add("low-quality sweep", s.SweepLow)
		}
	}

	switch r.TrapProbability {
	case contracts.RiskHigh:
		add("high trap probability", s.TrapHigh)
	case contracts.RiskMedium:
		add("medium trap probability", s.TrapMedium)
	case contracts.RiskMinimal:
		add("minimal trap probability", s.TrapMinimal)
	}

	if ob := r.OrderBlock; ob != nil && !ob.Mitigated && ob.Bullish == (sig.Direction == contracts.DirectionBuy) {
		add("supportive order block", s.OrderBlock)
		if ob.Retested {
			add("order block retested", s.OrderBlockRetested)
		}
	}

	score := market.Clamp(contracts.SumPoints(contrib), 0, 10)
	return math.Round(score*10) / 10, contrib
}

func extremes(snap *contracts.MarketSnapshot, candles []contracts.Candle) (float64, float64) {
	high, low := snap.RecentHigh, snap.RecentLow
	if high <= 0 || low <= 0 {
		ch, cl := market.HighLow(candles)
		if high <= 0 {
			high = ch
		}
		if low <= 0 {
			low = cl
		}
	}
	return high, low
}
