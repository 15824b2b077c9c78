package regime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// sessionCurrencies 세션별 주 거래 통화
var sessionCurrencies = map[contracts.Session][]string{
	contracts.SessionAsian:   {"JPY", "AUD", "NZD", "CNH", "SGD", "HKD"},
	contracts.SessionLondon:  {"EUR", "GBP", "CHF", "USD", "XAU", "XAG"},
	contracts.SessionOverlap: {"EUR", "GBP", "CHF", "USD", "CAD", "XAU", "XAG"},
	contracts.SessionNewYork: {"USD", "CAD", "XAU", "XAG"},
}

// Analyzer classifies trend, volatility, session and news state
// ⭐ SSOT: 시장 레짐 판단은 여기서만
type Analyzer struct {
	cfg      shieldconfig.Regime
	calendar *Calendar
	logger   *logger.Logger
	clock    contracts.Clock
}

// New creates a new regime analyzer using the default news calendar
func New(cfg *shieldconfig.Config, log *logger.Logger, clock contracts.Clock) *Analyzer {
	return NewWithCalendar(cfg, NewCalendar(nil), log, clock)
}

// NewWithCalendar creates a regime analyzer with a custom calendar
func NewWithCalendar(cfg *shieldconfig.Config, cal *Calendar, log *logger.Logger, clock contracts.Clock) *Analyzer {
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &Analyzer{
		cfg:      cfg.Regime,
		calendar: cal,
		logger:   log.Component("regime"),
		clock:    clock,
	}
}

// Analyze is deterministic for a given snapshot timestamp
func (a *Analyzer) Analyze(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot) *contracts.RegimeResult {
	now := a.now(snap)

	trend, strength, trendOK := a.trend(snap)
	volLevel, volPct := a.volatility(snap)

	session := market.SessionAt(now)
	if snap != nil && snap.Timestamp.IsZero() && snap.Session != "" {
		session = snap.Session
	}
	fit := SessionFit(sig.Symbol, session)

	newsRisk, events := a.newsRisk(sig.Symbol, now, snap)

	regime := a.decide(trend, strength, trendOK, volLevel, newsRisk)

	result := &contracts.RegimeResult{
		Regime:               regime,
		Trend:                trend,
		TrendStrength:        strength,
		Volatility:           volLevel,
		VolatilityPercentile: math.Round(volPct*10) / 10,
		Session:              session,
		SessionFit:           fit,
		LowLiquidityHour:     market.IsLowLiquidityHour(now),
		NewsRisk:             newsRisk,
		NewsEvents:           events,
		Stability:            a.stability(trend, volLevel, newsRisk, session),
		Sensitivity:          a.sensitivity(regime),
		Contributions: []contracts.Contribution{
			{Reason: fmt.Sprintf("trend %s", trend), Points: float64(strength)},
			{Reason: fmt.Sprintf("volatility %s (p%.0f)", volLevel, volPct), Points: 0},
			{Reason: fmt.Sprintf("session %s fit %s", session, fit), Points: 0},
			{Reason: fmt.Sprintf("news %s", newsRisk), Points: 0},
		},
	}

	a.logger.WithFields(map[string]interface{}{
		"symbol":         sig.Symbol,
		"regime":         regime,
		"trend":          trend,
		"trend_strength": strength,
		"volatility":     volLevel,
		"session":        session,
		"news_risk":      newsRisk,
	}).Debug("Classified market regime")

	return result
}

func (a *Analyzer) now(snap *contracts.MarketSnapshot) time.Time {
	if snap != nil && !snap.Timestamp.IsZero() {
		return snap.Timestamp.UTC()
	}
	return a.clock().UTC()
}

// trend uses candle MAs when there is enough history, else the longest
// timeframe bundle. ok is false when neither is available.
func (a *Analyzer) trend(snap *contracts.MarketSnapshot) (contracts.Trend, int, bool) {
	if snap == nil {
		return contracts.TrendNeutral, 0, false
	}

	closes := market.Closes(snap.RecentCandles())
	if len(closes) >= a.cfg.SlowPeriod {
		fast, _ := market.SMA(closes, a.cfg.FastPeriod)
		slow, _ := market.SMA(closes, a.cfg.SlowPeriod)
		price := closes[len(closes)-1]
		trend, points := maOrdering(price, fast, slow)

		window := a.cfg.ChangeWindow
		if window >= len(closes) {
			window = len(closes) - 1
		}
		base := closes[len(closes)-1-window]
		if base > 0 {
			changePct := (price - base) / base * 100
			if trend == contracts.TrendNeutral && math.Abs(changePct) >= a.cfg.ChangeStepsPct[0] {
				trend = contracts.TrendBullish
				if changePct < 0 {
					trend = contracts.TrendBearish
				}
			}
			if (changePct > 0 && trend == contracts.TrendBullish) || (changePct < 0 && trend == contracts.TrendBearish) {
				points += a.changePoints(math.Abs(changePct))
			}
		}
		return trend, minInt(points, 5), true
	}

	if n := len(snap.Timeframes); n > 0 {
		tf := snap.Timeframes[n-1]
		if tf.FastMA <= 0 || tf.SlowMA <= 0 {
			return contracts.TrendNeutral, 0, false
		}
		trend, points := maOrdering(tf.Price, tf.FastMA, tf.SlowMA)
		spreadPct := math.Abs(tf.FastMA-tf.SlowMA) / tf.SlowMA * 100
		if trend != contracts.TrendNeutral {
			points += a.changePoints(spreadPct)
		}
		return trend, minInt(points, 5), true
	}

	return contracts.TrendNeutral, 0, false
}

// maOrdering: full price/fast/slow ordering +2, fast/slow only +1
func maOrdering(price, fast, slow float64) (contracts.Trend, int) {
	switch {
	case price > fast && fast > slow:
		return contracts.TrendBullish, 2
	case price < fast && fast < slow:
		return contracts.TrendBearish, 2
	case fast > slow:
		return contracts.TrendBullish, 1
	case fast < slow:
		return contracts.TrendBearish, 1
	default:
		return contracts.TrendNeutral, 0
	}
}

func (a *Analyzer) changePoints(absPct float64) int {
	points := 0
	for _, step := range a.cfg.ChangeStepsPct {
		if absPct >= step {
			points++
		}
	}
	return points
}

func (a *Analyzer) volatility(snap *contracts.MarketSnapshot) (contracts.VolatilityLevel, float64) {
	if snap == nil {
		return contracts.VolatilityNormal, 50
	}
	atr := snap.ATR
	if atr <= 0 {
		atr = market.ATR(snap.RecentCandles(), 14)
	}
	if atr <= 0 || len(snap.ATRHistory) == 0 {
		return contracts.VolatilityNormal, 50
	}

	pct := market.PercentileRank(atr, snap.ATRHistory)
	switch {
	case pct < a.cfg.VolLowPct:
		return contracts.VolatilityLow, pct
	case pct < a.cfg.VolNormalPct:
		return contracts.VolatilityNormal, pct
	case pct < a.cfg.VolElevatedPct:
		return contracts.VolatilityElevated, pct
	default:
		return contracts.VolatilityHigh, pct
	}
}

// SessionFit grades how actively a pair trades in a session
func SessionFit(symbol string, session contracts.Session) contracts.SessionFit {
	if session == contracts.SessionWeekend {
		return contracts.FitPoor
	}
	ccys := market.Currencies(symbol)
	active := sessionCurrencies[session]

	matched := 0
	for _, c := range ccys {
		for _, s := range active {
			if c == s {
				matched++
				break
			}
		}
	}

	switch {
	case len(ccys) > 0 && matched == len(ccys):
		return contracts.FitOptimal
	case matched > 0:
		return contracts.FitGood
	default:
		return contracts.FitPoor
	}
}

// newsRisk merges calendar events with snapshot-supplied ones
func (a *Analyzer) newsRisk(symbol string, now time.Time, snap *contracts.MarketSnapshot) (contracts.NewsRisk, []contracts.NewsEvent) {
	red := time.Duration(a.cfg.NewsRedMinutes) * time.Minute
	yellow := time.Duration(a.cfg.NewsYellowMinutes) * time.Minute
	ccys := market.Currencies(symbol)

	events := a.calendar.Between(now.Add(-yellow), now.Add(yellow), ccys)
	if snap != nil {
		for _, ev := range snap.NewsEvents {
			if matchesCurrency(ev.Currency, ccys) && absDuration(ev.Time.Sub(now)) <= yellow {
				events = append(events, ev)
			}
		}
	}

	risk := contracts.NewsGreen
	for _, ev := range events {
		d := absDuration(ev.Time.Sub(now))
		switch {
		case ev.Impact == contracts.ImpactHigh && d <= red:
			return contracts.NewsRed, events
		case ev.Impact == contracts.ImpactHigh && d <= yellow,
			ev.Impact == contracts.ImpactMedium && d <= red:
			risk = contracts.NewsYellow
		}
	}
	return risk, events
}

// decide is the regime decision table over trend strength and volatility
func (a *Analyzer) decide(trend contracts.Trend, strength int, trendOK bool, vol contracts.VolatilityLevel, news contracts.NewsRisk) contracts.Regime {
	if news == contracts.NewsRed {
		return contracts.RegimeNewsDriven
	}
	if !trendOK {
		return contracts.RegimeUndefined
	}

	trending := contracts.RegimeRangingCalm
	switch trend {
	case contracts.TrendBullish:
		trending = contracts.RegimeTrendingBull
	case contracts.TrendBearish:
		trending = contracts.RegimeTrendingBear
	}

	switch {
	case strength >= a.cfg.StrongTrend:
		if vol == contracts.VolatilityHigh {
			return contracts.RegimeBreakout
		}
		return trending
	case strength <= a.cfg.WeakTrend:
		if vol == contracts.VolatilityLow || vol == contracts.VolatilityNormal {
			return contracts.RegimeRangingCalm
		}
		return contracts.RegimeRangingVolatile
	default:
		switch vol {
		case contracts.VolatilityElevated:
			return contracts.RegimeBreakout
		case contracts.VolatilityHigh:
			return contracts.RegimeRangingVolatile
		default:
			return trending
		}
	}
}

func (a *Analyzer) stability(trend contracts.Trend, vol contracts.VolatilityLevel, news contracts.NewsRisk, session contracts.Session) float64 {
	s := 1.0
	switch vol {
	case contracts.VolatilityHigh:
		s -= 0.3
	case contracts.VolatilityElevated:
		s -= 0.15
	}
	switch news {
	case contracts.NewsRed:
		s -= 0.4
	case contracts.NewsYellow:
		s -= 0.2
	}
	if session == contracts.SessionWeekend {
		s -= 0.3
	}
	if trend == contracts.TrendNeutral {
		s -= 0.1
	}
	return math.Round(market.Clamp(s, 0, 1)*100) / 100
}

func (a *Analyzer) sensitivity(r contracts.Regime) float64 {
	s := a.cfg.Sensitivity
	switch r {
	case contracts.RegimeTrendingBull, contracts.RegimeTrendingBear:
		return s.Trending
	case contracts.RegimeRangingCalm:
		return s.RangingCalm
	case contracts.RegimeRangingVolatile:
		return s.RangingVolatile
	case contracts.RegimeBreakout:
		return s.Breakout
	case contracts.RegimeNewsDriven:
		return s.NewsDriven
	default:
		return s.Undefined
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
