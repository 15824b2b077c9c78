// Package scenario holds reproducible market fixtures used by tests and the
// CLI demo mode.
package scenario

import (
	"sort"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// Scenario is a signal with the market context it was generated in
type Scenario struct {
	Name        string
	Description string
	Signal      contracts.Signal
	Snapshot    *contracts.MarketSnapshot
}

const barInterval = 15 * time.Minute

// TrendPullback: EURUSD BUY retesting a broken level in a London uptrend,
// right after the lows below were swept
func TrendPullback() Scenario {
	ts := time.Date(2024, 3, 12, 9, 30, 0, 0, time.UTC) // Tuesday

	candles := make([]contracts.Candle, 40)
	for i := range candles {
		c := 1.0770 + 0.0002*float64(i)
		candles[i] = contracts.Candle{
			Time:  ts.Add(-time.Duration(40-i) * barInterval),
			Open:  c - 0.0001,
			High:  c + 0.0001,
			Low:   c - 0.0003,
			Close: c,
		}
	}
	// 직전 저점 아래 스탑 사냥 후 회복
	candles[37].Low = 1.0826

	bullish := func(tf string) contracts.TimeframeData {
		return contracts.TimeframeData{
			Timeframe:  tf,
			Price:      1.0848,
			FastMA:     1.0840,
			SlowMA:     1.0825,
			RSI:        60,
			SwingHighs: []float64{1.0830, 1.0849},
			SwingLows:  []float64{1.0810, 1.0826},
		}
	}
	h1, h4 := bullish("H1"), bullish("H4")
	h1.KeyLevels = []float64{1.0845}
	h4.KeyLevels = []float64{1.0845}

	return Scenario{
		Name:        "trend-pullback",
		Description: "London uptrend retest after a sell-side sweep",
		Signal: contracts.Signal{
			ID:         "demo-trend-pullback",
			Symbol:     "EURUSD",
			Direction:  contracts.DirectionBuy,
			Entry:      1.0850,
			StopLoss:   1.0820,
			TakeProfit: 1.0910,
			SignalType: "TREND",
		},
		Snapshot: &contracts.MarketSnapshot{
			Timestamp:  ts,
			Candles:    candles,
			RecentHigh: 1.0870,
			RecentLow:  1.0765,
			ATR:        0.0008,
			ATRHistory: []float64{0.0005, 0.0006, 0.0007, 0.0008, 0.0009, 0.0010, 0.0011},
			Timeframes: []contracts.TimeframeData{
				{
					Timeframe: "M5",
					Price:     1.0848,
					FastMA:    1.0846,
					SlowMA:    1.0849,
					RSI:       48,
				},
				bullish("M15"),
				h1,
				h4,
			},
			BrokenLevels: []float64{1.0842},
		},
	}
}

// WeekendTrap: the same BUY on a Saturday, counter-trend, pressed against
// an unswept high
func WeekendTrap() Scenario {
	ts := time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC) // Saturday

	candles := make([]contracts.Candle, 40)
	for i := range candles {
		c := 1.0845 - 0.0001*float64(i)
		candles[i] = contracts.Candle{
			Time:  ts.Add(-time.Duration(40-i) * barInterval),
			Open:  c + 0.0001,
			High:  c + 0.0003,
			Low:   c - 0.0001,
			Close: c,
		}
	}

	bearish := func(tf string) contracts.TimeframeData {
		return contracts.TimeframeData{
			Timeframe:  tf,
			Price:      1.0806,
			FastMA:     1.0815,
			SlowMA:     1.0830,
			RSI:        38,
			SwingHighs: []float64{1.0850, 1.0840},
			SwingLows:  []float64{1.0820, 1.0805},
		}
	}

	return Scenario{
		Name:        "weekend-trap",
		Description: "weekend counter-trend entry under an unswept high",
		Signal: contracts.Signal{
			ID:         "demo-weekend-trap",
			Symbol:     "EURUSD",
			Direction:  contracts.DirectionBuy,
			Entry:      1.0850,
			StopLoss:   1.0820,
			TakeProfit: 1.0910,
			SignalType: "TREND",
		},
		Snapshot: &contracts.MarketSnapshot{
			Timestamp:  ts,
			Candles:    candles,
			RecentHigh: 1.0852,
			RecentLow:  1.0800,
			ATR:        0.0008,
			ATRHistory: []float64{0.0005, 0.0006, 0.0007, 0.0008, 0.0009, 0.0010, 0.0011},
			Timeframes: []contracts.TimeframeData{
				{
					Timeframe:  "M5",
					Price:      1.0808,
					FastMA:     1.0805,
					SlowMA:     1.0802,
					RSI:        58,
					SwingHighs: []float64{1.0804, 1.0809},
					SwingLows:  []float64{1.0799, 1.0803},
				},
				{
					Timeframe: "M15",
					Price:     1.0806,
					FastMA:    1.0806,
					SlowMA:    1.0806,
					RSI:       50,
				},
				bearish("H1"),
				bearish("H4"),
			},
		},
	}
}

var registry = map[string]func() Scenario{
	"trend-pullback": TrendPullback,
	"weekend-trap":   WeekendTrap,
}

// Get returns a scenario by name
func Get(name string) (Scenario, bool) {
	fn, ok := registry[name]
	if !ok {
		return Scenario{}, false
	}
	return fn(), true
}

// Names lists the registered scenarios
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
