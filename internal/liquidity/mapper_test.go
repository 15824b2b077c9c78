package liquidity

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

var tuesday = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)

func newMapper() *Mapper {
	return New(shieldconfig.Default(), logger.Nop(), func() time.Time { return tuesday })
}

func TestMapper_TrendPullback(t *testing.T) {
	s := scenario.TrendPullback()

	r := newMapper().Map(context.Background(), s.Signal, s.Snapshot)
	require.NotNil(t, r)

	require.True(t, r.SweepDetected)
	assert.True(t, r.SweepAligned)
	assert.Equal(t, contracts.SweepLow, r.Sweep.Type)
	assert.Equal(t, contracts.SweepQualityHigh, r.Sweep.Quality)
	assert.Equal(t, 2, r.Sweep.BarsAgo)

	assert.Equal(t, -3, r.TrapScore)
	assert.Equal(t, contracts.RiskMinimal, r.TrapProbability)
	assert.InDelta(t, 9.0, r.LiquidityScore, 1e-9)

	require.NotNil(t, r.NearestCluster)
	assert.True(t, r.NearestCluster.Above)
	assert.InDelta(t, 1.0880, r.NearestCluster.Price, 1e-9)
	assert.InDelta(t, 30.0, r.NearestCluster.DistancePips, 1e-9)
	assert.Len(t, r.Clusters, 8)
}

func TestMapper_WeekendTrap(t *testing.T) {
	s := scenario.WeekendTrap()

	r := newMapper().Map(context.Background(), s.Signal, s.Snapshot)

	assert.False(t, r.SweepDetected)
	require.NotNil(t, r.NearestCluster)
	assert.InDelta(t, 12.0, r.NearestCluster.DistancePips, 1e-9)
	assert.False(t, r.NearestCluster.Swept)

	// cluster 4 + counter-trend 2 + weekend 1
	assert.Equal(t, 7, r.TrapScore)
	assert.Equal(t, contracts.RiskHigh, r.TrapProbability)
	assert.InDelta(t, 2.0, r.LiquidityScore, 1e-9)
	assert.Nil(t, r.OrderBlock)
}

func TestMapper_SweepNeverRaisesTrap(t *testing.T) {
	ctx := context.Background()
	m := newMapper()

	// 제공된 정렬 스윕 이벤트
	b := scenario.WeekendTrap()
	before := m.Map(ctx, b.Signal, b.Snapshot)
	b.Snapshot.LiquidityEvents = []contracts.LiquidityEvent{
		{Type: contracts.SweepLow, Level: 1.0800, Quality: contracts.SweepQualityHigh, BarsAgo: 1},
	}
	after := m.Map(ctx, b.Signal, b.Snapshot)
	assert.LessOrEqual(t, after.TrapProbability.Rank(), before.TrapProbability.Rank())
	assert.Less(t, after.TrapScore, before.TrapScore)

	// 캔들에서 감지된 스윕 제거
	a := scenario.TrendPullback()
	withSweep := m.Map(ctx, a.Signal, a.Snapshot)
	a.Snapshot.Candles[37].Low = a.Snapshot.Candles[37].Close - 0.0003
	withoutSweep := m.Map(ctx, a.Signal, a.Snapshot)
	assert.False(t, withoutSweep.SweepDetected)
	assert.LessOrEqual(t, withSweep.TrapProbability.Rank(), withoutSweep.TrapProbability.Rank())

	// 역방향 이벤트만 제공되어도 캔들 스윕 크레딧 유지
	c := scenario.TrendPullback()
	scanned := m.Map(ctx, c.Signal, c.Snapshot)
	require.True(t, scanned.SweepAligned)
	c.Snapshot.LiquidityEvents = []contracts.LiquidityEvent{
		{Type: contracts.SweepHigh, Level: 1.0868, Quality: contracts.SweepQualityHigh, BarsAgo: 0},
	}
	supplied := m.Map(ctx, c.Signal, c.Snapshot)
	assert.True(t, supplied.SweepAligned)
	assert.Equal(t, contracts.SweepLow, supplied.Sweep.Type)
	assert.LessOrEqual(t, supplied.TrapScore, scanned.TrapScore)
	assert.LessOrEqual(t, supplied.TrapProbability.Rank(), scanned.TrapProbability.Rank())
}

func TestMapper_SuppliedAlignedSweepTakesPrecedence(t *testing.T) {
	m := newMapper()
	s := scenario.TrendPullback()
	supplied := contracts.LiquidityEvent{Type: contracts.SweepLow, Level: 1.0824, Quality: contracts.SweepQualityMedium, BarsAgo: 5}
	s.Snapshot.LiquidityEvents = []contracts.LiquidityEvent{supplied}

	r := m.Map(context.Background(), s.Signal, s.Snapshot)
	require.NotNil(t, r.Sweep)
	assert.Equal(t, supplied, *r.Sweep)
}

func TestMapper_ClusterProximityNeverLowersTrap(t *testing.T) {
	ctx := context.Background()
	m := newMapper()

	prevRank := -1
	for high := 1.0900; high > 1.0851; high -= 0.0005 {
		s := scenario.TrendPullback()
		s.Snapshot.RecentHigh = high

		r := m.Map(ctx, s.Signal, s.Snapshot)
		rank := r.TrapProbability.Rank()
		assert.GreaterOrEqual(t, rank, prevRank, "recent high %.4f", high)
		prevRank = rank
	}
}

func TestMapper_OrderBlock(t *testing.T) {
	var candles []contracts.Candle
	for i := 0; i < 5; i++ {
		c := 1.0996 + 0.0001*float64(i)
		candles = append(candles, contracts.Candle{Open: c - 0.0001, High: c + 0.0001, Low: c - 0.0002, Close: c})
	}
	candles = append(candles,
		contracts.Candle{Open: 1.1010, High: 1.1012, Low: 1.0998, Close: 1.1000}, // 마지막 음봉
		contracts.Candle{Open: 1.1000, High: 1.1022, Low: 1.0999, Close: 1.1020},
		contracts.Candle{Open: 1.1020, High: 1.1037, Low: 1.1018, Close: 1.1035},
		contracts.Candle{Open: 1.1035, High: 1.1052, Low: 1.1033, Close: 1.1050},
		contracts.Candle{Open: 1.1045, High: 1.1050, Low: 1.1008, Close: 1.1048}, // 되돌림
	)

	m := newMapper()
	ob := m.orderBlock(candles, contracts.DirectionBuy)
	require.NotNil(t, ob)
	assert.True(t, ob.Bullish)
	assert.Equal(t, 4, ob.BarsAgo)
	assert.InDelta(t, 1.1012, ob.High, 1e-9)
	assert.True(t, ob.Retested)
	assert.False(t, ob.Mitigated)
	assert.InDelta(t, 1.0, ob.Strength, 1e-9)

	assert.Nil(t, m.orderBlock(candles, contracts.DirectionSell))
}

func TestMapper_NoSnapshot(t *testing.T) {
	sig := contracts.Signal{Symbol: "EURUSD", Direction: contracts.DirectionBuy, Entry: 1.0873}

	r := newMapper().Map(context.Background(), sig, nil)

	assert.False(t, r.SweepDetected)
	assert.Empty(t, r.Clusters)
	assert.Equal(t, 0, r.TrapScore)
	assert.Equal(t, contracts.RiskMinimal, r.TrapProbability)
	assert.InDelta(t, 6.0, r.LiquidityScore, 1e-9)
	assert.InDelta(t, 1.09, r.Psychological.Level, 1e-9)
}

func TestMapper_InvalidSignal(t *testing.T) {
	r := newMapper().Map(context.Background(), contracts.Signal{Symbol: "EURUSD"}, nil)

	assert.Equal(t, contracts.RiskMinimal, r.TrapProbability)
	assert.InDelta(t, 5.0, r.LiquidityScore, 1e-9)
}

func TestMapper_ClusterDistancesByPair(t *testing.T) {
	sig := contracts.Signal{Symbol: "USDJPY", Direction: contracts.DirectionSell, Entry: 150.20}
	snap := &contracts.MarketSnapshot{Timestamp: tuesday, RecentHigh: 150.50, RecentLow: 149.80}

	r := newMapper().Map(context.Background(), sig, snap)

	require.Len(t, r.Clusters, 6)
	require.NotNil(t, r.NearestCluster)
	assert.False(t, r.NearestCluster.Above)
	assert.InDelta(t, 149.65, r.NearestCluster.Price, 1e-9)
	assert.InDelta(t, 55.0, r.NearestCluster.DistancePips, 1e-9)
}

func TestScanSweep_WickGrades(t *testing.T) {
	m := newMapper()

	build := func(lastLow float64) []contracts.Candle {
		candles := make([]contracts.Candle, 6)
		for i := 0; i < 5; i++ {
			candles[i] = contracts.Candle{Open: 1.1000, High: 1.1030, Low: 1.0990, Close: 1.1005}
		}
		// 몸통 1.1000-1.1004, 고가 1.1020
		candles[5] = contracts.Candle{Open: 1.1000, High: 1.1020, Low: lastLow, Close: 1.1004}
		return candles
	}

	tests := []struct {
		name string
		low  float64
		want contracts.SweepQuality
	}{
		{"long wick", 1.0950, contracts.SweepQualityHigh},     // 50/70
		{"medium wick", 1.0965, contracts.SweepQualityMedium}, // 35/55
		{"short wick", 1.0985, contracts.SweepQualityLow},     // 15/35
		{"too short", 1.0988, ""},                             // 12/32
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := m.scanSweep(build(tt.low))
			if tt.want == "" {
				assert.Nil(t, ev)
				return
			}
			require.NotNil(t, ev)
			assert.Equal(t, contracts.SweepLow, ev.Type)
			assert.Equal(t, tt.want, ev.Quality)
			assert.Equal(t, 0, ev.BarsAgo)
			assert.InDelta(t, 1.0990, ev.Level, 1e-9)
		})
	}
}
