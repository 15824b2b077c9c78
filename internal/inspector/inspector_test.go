package inspector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scenario"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// 화요일 런던 세션
var tuesday = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

func newInspector() *Inspector {
	return New(shieldconfig.Default(), logger.Nop(), func() time.Time { return tuesday })
}

func TestInspector_TrendPullback(t *testing.T) {
	s := scenario.TrendPullback()

	r := newInspector().Inspect(context.Background(), s.Signal, s.Snapshot)
	require.NotNil(t, r)

	assert.Equal(t, contracts.PatternRetest, r.Pattern)
	assert.Equal(t, 1, r.TrapScore, "round-number entry only")
	assert.Equal(t, contracts.RiskLow, r.TrapRisk)
	assert.InDelta(t, 2.0, r.RiskReward, 1e-9)
	assert.Equal(t, contracts.StrengthStrong, r.Strength)
	assert.False(t, r.VolatilityZone)
	assert.NotEmpty(t, r.EntryStructure)
}

func TestInspector_WeekendTrap(t *testing.T) {
	s := scenario.WeekendTrap()

	r := newInspector().Inspect(context.Background(), s.Signal, s.Snapshot)

	assert.Equal(t, contracts.PatternUnknown, r.Pattern)
	// cluster 3 + round number 1 + weekend 1
	assert.Equal(t, 5, r.TrapScore)
	assert.Equal(t, contracts.RiskHigh, r.TrapRisk)
	assert.Equal(t, contracts.StrengthVeryWeak, r.Strength)

	var reasons []string
	for _, c := range r.Contributions {
		reasons = append(reasons, c.Reason)
	}
	assert.Contains(t, reasons, "trap: unswept liquidity cluster ahead of entry")
	assert.Contains(t, reasons, "trap: off-hours timing")
}

func TestInspector_ClassifyPattern(t *testing.T) {
	base := func(levels ...float64) *contracts.MarketSnapshot {
		return &contracts.MarketSnapshot{
			Timestamp:    tuesday,
			RecentHigh:   1.1000,
			RecentLow:    1.0900,
			BrokenLevels: levels,
		}
	}

	tests := []struct {
		name  string
		dir   contracts.Direction
		entry float64
		snap  *contracts.MarketSnapshot
		want  contracts.Pattern
	}{
		{"buy above high", contracts.DirectionBuy, 1.1010, base(), contracts.PatternBreakout},
		{"sell below low", contracts.DirectionSell, 1.0890, base(), contracts.PatternBreakout},
		{"buy bottom quarter", contracts.DirectionBuy, 1.0920, base(), contracts.PatternReversal},
		{"sell top quarter", contracts.DirectionSell, 1.0980, base(), contracts.PatternReversal},
		{"buy over broken level", contracts.DirectionBuy, 1.0960, base(1.0955), contracts.PatternRetest},
		{"sell over broken level is not a retest", contracts.DirectionSell, 1.0960, base(1.0955), contracts.PatternUnknown},
		{"mid range", contracts.DirectionBuy, 1.0960, base(), contracts.PatternUnknown},
	}

	ins := newInspector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := contracts.Signal{Symbol: "EURUSD", Direction: tt.dir, Entry: tt.entry}
			got := ins.classifyPattern(sig, tt.snap, tt.snap.RecentHigh, tt.snap.RecentLow)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInspector_NoSnapshotUsesHint(t *testing.T) {
	sig := contracts.Signal{
		Symbol:     "EURUSD",
		Direction:  contracts.DirectionBuy,
		Entry:      1.0873,
		StopLoss:   1.0853,
		TakeProfit: 1.0903,
		SignalType: "BREAKOUT",
	}

	r := newInspector().Inspect(context.Background(), sig, nil)

	assert.Equal(t, contracts.PatternBreakout, r.Pattern)
	assert.Equal(t, 2, r.TrapScore)
	assert.Equal(t, contracts.RiskLow, r.TrapRisk)
	assert.InDelta(t, 1.5, r.RiskReward, 1e-9)
	assert.Contains(t, r.EntryStructure, "no range context")
}

func TestInspector_InvalidSignal(t *testing.T) {
	r := newInspector().Inspect(context.Background(), contracts.Signal{Symbol: "EURUSD", Direction: "HOLD", Entry: 1.1}, nil)

	assert.Equal(t, contracts.PatternUnknown, r.Pattern)
	assert.Equal(t, contracts.RiskMinimal, r.TrapRisk)
	assert.Equal(t, contracts.StrengthWeak, r.Strength)
}

func TestInspector_VolatilityZone(t *testing.T) {
	snap := &contracts.MarketSnapshot{
		Timestamp: tuesday,
		ATR:       0.0010,
		Candles: []contracts.Candle{
			{Open: 1.1000, High: 1.1005, Low: 1.0998, Close: 1.1003},
			{Open: 1.1003, High: 1.1030, Low: 1.1001, Close: 1.1025},
		},
	}
	assert.True(t, newInspector().volatilityZone(snap), "last bar range 2.9x ATR")

	snap.Candles[1].High = 1.1010
	assert.False(t, newInspector().volatilityZone(snap))

	snap.ATRHistory = []float64{0.0004, 0.0005, 0.0006}
	assert.True(t, newInspector().volatilityZone(snap), "ATR 2x its median")
}

func TestInspector_PriorFalseBreakout(t *testing.T) {
	candles := make([]contracts.Candle, 10)
	for i := range candles {
		candles[i] = contracts.Candle{Open: 1.1000, High: 1.1010, Low: 1.0990, Close: 1.1002}
	}
	assert.False(t, priorFalseBreakout(candles, 20, contracts.DirectionBuy))

	// 고점 돌파 후 다시 안으로 마감
	candles[7] = contracts.Candle{Open: 1.1002, High: 1.1020, Low: 1.0998, Close: 1.1004}
	assert.True(t, priorFalseBreakout(candles, 20, contracts.DirectionBuy))
	assert.False(t, priorFalseBreakout(candles, 20, contracts.DirectionSell))
}

func TestInspector_Deterministic(t *testing.T) {
	s := scenario.TrendPullback()
	ins := newInspector()

	a := ins.Inspect(context.Background(), s.Signal, s.Snapshot)
	b := ins.Inspect(context.Background(), s.Signal, s.Snapshot)
	assert.Equal(t, a, b)
}
