package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalCategory(t *testing.T) {
	tests := []struct {
		signalType string
		want       SignalCategory
	}{
		{"TREND", CategoryTrend},
		{"sniper", CategoryTrend},
		{"BREAKOUT_CONTINUATION", CategoryTrend},
		{"SCALP", CategoryScalp},
		{"RAPID_ASSAULT", CategoryScalp},
		{"REVERSAL", CategoryReversal},
		{"mean_reversion", CategoryReversal},
		{"", CategoryUnknown},
		{"GRID", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.signalType, func(t *testing.T) {
			assert.Equal(t, tt.want, Signal{SignalType: tt.signalType}.Category())
		})
	}
}

func TestSignalRiskReward(t *testing.T) {
	sig := Signal{Direction: DirectionBuy, Entry: 1.0850, StopLoss: 1.0820, TakeProfit: 1.0910}
	assert.InDelta(t, 2.0, sig.RiskReward(), 1e-9)

	assert.Equal(t, 0.0, Signal{Entry: 1.1, StopLoss: 1.1, TakeProfit: 1.2}.RiskReward())
	assert.Equal(t, 0.0, Signal{Entry: 1.1}.RiskReward())
}

func TestCandleShape(t *testing.T) {
	c := Candle{Open: 1.0840, High: 1.0850, Low: 1.0800, Close: 1.0845}
	assert.True(t, c.IsBullish())
	assert.InDelta(t, 0.0050, c.Range(), 1e-9)
	assert.InDelta(t, 0.0005, c.Body(), 1e-9)
	assert.InDelta(t, 0.0005, c.UpperWick(), 1e-9)
	assert.InDelta(t, 0.0040, c.LowerWick(), 1e-9)
}

func TestTrendAgreement(t *testing.T) {
	assert.True(t, TrendBullish.Agrees(DirectionBuy))
	assert.True(t, TrendBearish.Opposes(DirectionBuy))
	assert.False(t, TrendNeutral.Agrees(DirectionSell))
	assert.False(t, TrendNeutral.Opposes(DirectionSell))
}

func TestSweepAlignment(t *testing.T) {
	assert.True(t, LiquidityEvent{Type: SweepLow}.AlignedWith(DirectionBuy))
	assert.False(t, LiquidityEvent{Type: SweepLow}.AlignedWith(DirectionSell))
	assert.True(t, LiquidityEvent{Type: SweepHigh}.AlignedWith(DirectionSell))
}

func TestBucketStats(t *testing.T) {
	var b BucketStats
	b.Add(Outcome{Outcome: OutcomeWin, PipsResult: 30})
	b.Add(Outcome{Outcome: OutcomeWin, PipsResult: 20})
	b.Add(Outcome{Outcome: OutcomeLoss, PipsResult: -15})
	b.Add(Outcome{Outcome: OutcomeBreakEven})
	b.Add(Outcome{Outcome: OutcomeSkipped, PipsResult: 99})
	b.Finalize()

	assert.Equal(t, 4, b.Resolved)
	assert.Equal(t, 1, b.Skipped)
	assert.InDelta(t, 0.5, b.WinRate, 1e-9)
	assert.InDelta(t, 35.0/4, b.AvgPips, 1e-9)
}

func TestShieldResultClone(t *testing.T) {
	orig := &ShieldResult{
		SignalID:    "a",
		RiskFactors: []string{"x"},
		Timestamp:   time.Unix(0, 0),
	}
	c := orig.Clone()
	c.RiskFactors[0] = "y"
	c.Personalization = &UserAnnotation{UserID: "u"}

	assert.Equal(t, "x", orig.RiskFactors[0])
	assert.Nil(t, orig.Personalization)
}

func TestRecentCandlesBounded(t *testing.T) {
	snap := &MarketSnapshot{Candles: make([]Candle, MaxCandles+50)}
	assert.Len(t, snap.RecentCandles(), MaxCandles)

	var nilSnap *MarketSnapshot
	assert.Nil(t, nilSnap.RecentCandles())
}
