package contracts

import "time"

// Candle is one OHLCV bar
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}

// Range returns high - low
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Body returns |close - open|
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// IsBullish reports close > open
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports close < open
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// UpperWick returns the distance from the body top to the high
func (c Candle) UpperWick() float64 {
	top := c.Open
	if c.Close > top {
		top = c.Close
	}
	return c.High - top
}

// LowerWick returns the distance from the body bottom to the low
func (c Candle) LowerWick() float64 {
	bottom := c.Open
	if c.Close < bottom {
		bottom = c.Close
	}
	return bottom - c.Low
}

// TimeframeData is the indicator bundle for one chart timeframe
type TimeframeData struct {
	Timeframe  string    `json:"timeframe"` // M5, M15, H1, H4 ...
	Price      float64   `json:"price"`
	FastMA     float64   `json:"fast_ma"`
	SlowMA     float64   `json:"slow_ma"`
	RSI        float64   `json:"rsi"`
	SwingHighs []float64 `json:"swing_highs,omitempty"` // oldest → newest
	SwingLows  []float64 `json:"swing_lows,omitempty"`
	RSIAtHighs []float64 `json:"rsi_at_highs,omitempty"` // RSI at each swing high
	RSIAtLows  []float64 `json:"rsi_at_lows,omitempty"`
	KeyLevels  []float64 `json:"key_levels,omitempty"`
}

// SweepType tells which side's stops were taken
type SweepType string

const (
	SweepHigh SweepType = "SWEEP_HIGH" // buy stops above highs taken, bearish reversal
	SweepLow  SweepType = "SWEEP_LOW"  // sell stops below lows taken, bullish reversal
)

// SweepQuality grades a sweep by its wick-to-range ratio
type SweepQuality string

const (
	SweepQualityHigh   SweepQuality = "high"
	SweepQualityMedium SweepQuality = "medium"
	SweepQualityLow    SweepQuality = "low"
)

// LiquidityEvent is a detected or externally supplied sweep
type LiquidityEvent struct {
	Type    SweepType    `json:"type"`
	Level   float64      `json:"level"`
	Quality SweepQuality `json:"quality"`
	BarsAgo int          `json:"bars_ago"`
	Time    time.Time    `json:"time,omitempty"`
}

// AlignedWith reports whether the sweep supports a trade in direction d
func (e LiquidityEvent) AlignedWith(d Direction) bool {
	return (d == DirectionBuy && e.Type == SweepLow) || (d == DirectionSell && e.Type == SweepHigh)
}

// NewsImpact is the expected market impact of a scheduled release
type NewsImpact string

const (
	ImpactHigh   NewsImpact = "high"
	ImpactMedium NewsImpact = "medium"
	ImpactLow    NewsImpact = "low"
)

// NewsEvent is a scheduled economic release
type NewsEvent struct {
	Name     string     `json:"name"`
	Currency string     `json:"currency"`
	Impact   NewsImpact `json:"impact"`
	Time     time.Time  `json:"time"`
}

// Session is the trading session of a UTC instant
type Session string

const (
	SessionAsian   Session = "ASIAN"
	SessionLondon  Session = "LONDON"
	SessionNewYork Session = "NEW_YORK"
	SessionOverlap Session = "OVERLAP"
	SessionWeekend Session = "WEEKEND"
)

// MaxCandles bounds the candle window kept from a snapshot
const MaxCandles = 200

// MarketSnapshot is the market context supplied with every analysis call.
// The engine never owns or mutates it.
type MarketSnapshot struct {
	Timestamp       time.Time        `json:"timestamp"`
	Candles         []Candle         `json:"candles,omitempty"` // oldest → newest
	RecentHigh      float64          `json:"recent_high"`
	RecentLow       float64          `json:"recent_low"`
	ATR             float64          `json:"atr"`
	ATRHistory      []float64        `json:"atr_history,omitempty"`
	Timeframes      []TimeframeData  `json:"timeframes,omitempty"` // short → long
	Session         Session          `json:"session,omitempty"`
	NewsEvents      []NewsEvent      `json:"news_events,omitempty"`
	LiquidityEvents []LiquidityEvent `json:"liquidity_events,omitempty"`
	BrokenLevels    []float64        `json:"broken_levels,omitempty"`
}

// RecentCandles returns at most MaxCandles of the newest candles
func (m *MarketSnapshot) RecentCandles() []Candle {
	if m == nil {
		return nil
	}
	if len(m.Candles) > MaxCandles {
		return m.Candles[len(m.Candles)-MaxCandles:]
	}
	return m.Candles
}

// Clock is an injectable time source
type Clock func() time.Time

// SystemClock returns the current UTC time
func SystemClock() time.Time {
	return time.Now().UTC()
}
