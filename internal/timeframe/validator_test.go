package timeframe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scenario"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

func newValidator() *Validator {
	return New(shieldconfig.Default(), logger.Nop())
}

func TestScore(t *testing.T) {
	tests := []struct {
		name    string
		aligned []bool
		want    float64
	}{
		{"empty", nil, 0},
		{"all aligned", []bool{true, true, true, true}, 10},
		{"none aligned", []bool{false, false, false, false}, 0},
		{"short one missing", []bool{false, true, true, true}, 7.8},
		{"only shortest", []bool{true, false, false, false}, 2.2},
		{"only longest", []bool{false, false, false, true}, 2.8},
		{"single aligned", []bool{true}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.aligned), 1e-9)
		})
	}
}

// 정렬된 타임프레임이 하나 늘면 점수는 줄지 않음
func TestScore_MonotonicInAlignedCount(t *testing.T) {
	const n = 5
	for mask := 0; mask < 1<<n; mask++ {
		base := make([]bool, n)
		for i := 0; i < n; i++ {
			base[i] = mask&(1<<i) != 0
		}
		for i := 0; i < n; i++ {
			if base[i] {
				continue
			}
			more := append([]bool(nil), base...)
			more[i] = true
			assert.GreaterOrEqual(t, Score(more), Score(base), "mask %05b + %d", mask, i)
		}
	}
}

func TestValidator_TrendPullback(t *testing.T) {
	s := scenario.TrendPullback()

	r := newValidator().Validate(context.Background(), s.Signal, s.Snapshot)
	require.Len(t, r.Timeframes, 4)

	assert.False(t, r.Timeframes[0].Aligned)
	assert.Equal(t, 3, r.AlignedCount)
	assert.InDelta(t, 7.8, r.Score, 1e-9)
	assert.Equal(t, contracts.AlignmentGood, r.Quality)
	assert.Empty(t, r.Conflicts)
	assert.Equal(t, 2, r.ConfluenceCount)
	assert.Equal(t, 3, r.MinRequired)
	assert.True(t, r.PassesValidation)
}

func TestValidator_WeekendTrap(t *testing.T) {
	s := scenario.WeekendTrap()

	r := newValidator().Validate(context.Background(), s.Signal, s.Snapshot)

	assert.Equal(t, 1, r.AlignedCount)
	assert.True(t, r.Timeframes[0].Aligned)
	assert.Len(t, r.Conflicts, 2)
	assert.True(t, r.Timeframes[2].Conflict)
	assert.True(t, r.Timeframes[3].Conflict)
	assert.InDelta(t, 2.2, r.Score, 1e-9)
	assert.Equal(t, contracts.AlignmentPoor, r.Quality)
	assert.False(t, r.PassesValidation)
	assert.Contains(t, r.Recommendation, "only 1/4")
}

func TestValidator_NoTimeframes(t *testing.T) {
	sig := contracts.Signal{Symbol: "EURUSD", Direction: contracts.DirectionBuy, Entry: 1.1}

	r := newValidator().Validate(context.Background(), sig, &contracts.MarketSnapshot{})

	assert.InDelta(t, 5.0, r.Score, 1e-9)
	assert.Equal(t, contracts.AlignmentModerate, r.Quality)
	assert.False(t, r.PassesValidation)
	assert.Zero(t, r.Total)
}

func TestValidator_MinRequiredCappedAtAvailable(t *testing.T) {
	sig := contracts.Signal{Symbol: "EURUSD", Direction: contracts.DirectionSell, Entry: 1.1, SignalType: "SCALP"}
	snap := &contracts.MarketSnapshot{
		Timeframes: []contracts.TimeframeData{
			{Timeframe: "M1", Price: 1.0990, FastMA: 1.0995, SlowMA: 1.1000, RSI: 40},
		},
	}

	r := newValidator().Validate(context.Background(), sig, snap)

	assert.Equal(t, 1, r.MinRequired)
	assert.Equal(t, 1, r.AlignedCount)
	assert.True(t, r.PassesValidation)
	assert.Len(t, r.Conflicts, 0)
}

func TestAnalyzeFrame_Overrides(t *testing.T) {
	v := newValidator()

	t.Run("bearish divergence overrides RSI band", func(t *testing.T) {
		tf := contracts.TimeframeData{
			Timeframe:  "H1",
			Price:      1.1050,
			FastMA:     1.1040,
			SlowMA:     1.1020,
			RSI:        62,
			SwingHighs: []float64{1.1030, 1.1055},
			SwingLows:  []float64{1.1000, 1.1015},
			RSIAtHighs: []float64{70, 64},
		}
		a := v.analyzeFrame(tf, contracts.DirectionBuy)
		assert.True(t, a.Divergence)
		assert.Equal(t, contracts.TrendBearish, a.Momentum)
		assert.Equal(t, contracts.TrendBullish, a.Structure)
		assert.True(t, a.Aligned, "trend and structure still agree")
	})

	t.Run("break of structure", func(t *testing.T) {
		tf := contracts.TimeframeData{
			Timeframe:  "H1",
			Price:      1.1010,
			FastMA:     1.1040,
			SlowMA:     1.1020,
			RSI:        50,
			SwingHighs: []float64{1.1030, 1.1055},
			SwingLows:  []float64{1.1000, 1.1015},
		}
		a := v.analyzeFrame(tf, contracts.DirectionBuy)
		assert.True(t, a.BreakOfStructure)
		assert.Equal(t, contracts.TrendBearish, a.Structure)
		assert.False(t, a.Aligned)
	})

	t.Run("missing indicators are neutral", func(t *testing.T) {
		a := v.analyzeFrame(contracts.TimeframeData{Timeframe: "D1"}, contracts.DirectionSell)
		assert.Equal(t, contracts.TrendNeutral, a.Trend)
		assert.Equal(t, contracts.TrendNeutral, a.Momentum)
		assert.Equal(t, contracts.TrendNeutral, a.Structure)
		assert.False(t, a.Aligned)
		assert.Zero(t, a.Confidence)
	})
}
