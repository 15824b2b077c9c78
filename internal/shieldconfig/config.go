package shieldconfig

import "github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"

// Config holds every tunable weight and threshold of the shield engine.
// Values are empirical; defaults reproduce the production calibration.
type Config struct {
	Thresholds  Thresholds  `yaml:"thresholds" json:"thresholds"`
	Inspector   Inspector   `yaml:"inspector" json:"inspector"`
	Regime      Regime      `yaml:"regime" json:"regime"`
	Liquidity   Liquidity   `yaml:"liquidity" json:"liquidity"`
	Timeframe   Timeframe   `yaml:"timeframe" json:"timeframe"`
	Scoring     Scoring     `yaml:"scoring" json:"scoring"`
	Performance Performance `yaml:"performance" json:"performance"`
}

// Thresholds 분류 기준 점수
type Thresholds struct {
	Approved       float64 `yaml:"approved" json:"approved" default:"8.0"`
	Active         float64 `yaml:"active" json:"active" default:"6.0"`
	VolatilityZone float64 `yaml:"volatility_zone" json:"volatility_zone" default:"4.0"`
}

// Classify buckets a score into its tier
func (t Thresholds) Classify(score float64) contracts.Classification {
	switch {
	case score >= t.Approved:
		return contracts.ClassApproved
	case score >= t.Active:
		return contracts.ClassActive
	case score >= t.VolatilityZone:
		return contracts.ClassVolatilityZone
	default:
		return contracts.ClassUnverified
	}
}

// TrapBuckets maps a trap point sum onto a risk level
type TrapBuckets struct {
	High   int `yaml:"high" json:"high" default:"5"`
	Medium int `yaml:"medium" json:"medium" default:"3"`
	Low    int `yaml:"low" json:"low" default:"1"`
}

// Bucket returns the risk level of points
func (b TrapBuckets) Bucket(points int) contracts.RiskLevel {
	switch {
	case points >= b.High:
		return contracts.RiskHigh
	case points >= b.Medium:
		return contracts.RiskMedium
	case points >= b.Low:
		return contracts.RiskLow
	default:
		return contracts.RiskMinimal
	}
}

// Inspector S1: 시그널 패턴/트랩
type Inspector struct {
	BreakoutPoints      int         `yaml:"breakout_points" json:"breakout_points" default:"2"`
	ClusterPoints       int         `yaml:"cluster_points" json:"cluster_points" default:"3"`
	FalseBreakoutPoints int         `yaml:"false_breakout_points" json:"false_breakout_points" default:"2"`
	RoundNumberPoints   int         `yaml:"round_number_points" json:"round_number_points" default:"1"`
	OffHoursPoints      int         `yaml:"off_hours_points" json:"off_hours_points" default:"1"`
	ClusterMinPips      float64     `yaml:"cluster_min_pips" json:"cluster_min_pips" default:"15"`
	ClusterATRMult      float64     `yaml:"cluster_atr_mult" json:"cluster_atr_mult" default:"0.5"`
	RoundNumberTolPips  float64     `yaml:"round_number_tol_pips" json:"round_number_tol_pips" default:"5"`
	RetestTolPips       float64     `yaml:"retest_tol_pips" json:"retest_tol_pips" default:"10"`
	ReversalZonePct     float64     `yaml:"reversal_zone_pct" json:"reversal_zone_pct" default:"0.25"`
	ContinuationBars    int         `yaml:"continuation_bars" json:"continuation_bars" default:"5"`
	FalseBreakoutBars   int         `yaml:"false_breakout_bars" json:"false_breakout_bars" default:"20"`
	VolatilityRangeMult float64     `yaml:"volatility_range_mult" json:"volatility_range_mult" default:"1.5"`
	VolatilityATRMult   float64     `yaml:"volatility_atr_mult" json:"volatility_atr_mult" default:"1.5"`
	RRStrong            float64     `yaml:"rr_strong" json:"rr_strong" default:"2.0"`
	RRGood              float64     `yaml:"rr_good" json:"rr_good" default:"1.5"`
	Buckets             TrapBuckets `yaml:"buckets" json:"buckets"`
}

// Regime S2: 시장 레짐
type Regime struct {
	FastPeriod        int         `yaml:"fast_period" json:"fast_period" default:"10"`
	SlowPeriod        int         `yaml:"slow_period" json:"slow_period" default:"30"`
	ChangeWindow      int         `yaml:"change_window" json:"change_window" default:"20"`
	ChangeStepsPct    []float64   `yaml:"change_steps_pct" json:"change_steps_pct" default:"[0.1,0.3,0.6]"`
	VolLowPct         float64     `yaml:"vol_low_pct" json:"vol_low_pct" default:"25"`
	VolNormalPct      float64     `yaml:"vol_normal_pct" json:"vol_normal_pct" default:"75"`
	VolElevatedPct    float64     `yaml:"vol_elevated_pct" json:"vol_elevated_pct" default:"90"`
	NewsRedMinutes    int         `yaml:"news_red_minutes" json:"news_red_minutes" default:"30"`
	NewsYellowMinutes int         `yaml:"news_yellow_minutes" json:"news_yellow_minutes" default:"120"`
	StrongTrend       int         `yaml:"strong_trend" json:"strong_trend" default:"3"`
	WeakTrend         int         `yaml:"weak_trend" json:"weak_trend" default:"1"`
	Sensitivity       Sensitivity `yaml:"sensitivity" json:"sensitivity"`
}

// Sensitivity recommended signal sensitivity multiplier per regime
type Sensitivity struct {
	Trending        float64 `yaml:"trending" json:"trending" default:"1.0"`
	RangingCalm     float64 `yaml:"ranging_calm" json:"ranging_calm" default:"0.9"`
	RangingVolatile float64 `yaml:"ranging_volatile" json:"ranging_volatile" default:"1.2"`
	Breakout        float64 `yaml:"breakout" json:"breakout" default:"1.1"`
	NewsDriven      float64 `yaml:"news_driven" json:"news_driven" default:"1.5"`
	Undefined       float64 `yaml:"undefined" json:"undefined" default:"1.0"`
}

// Liquidity S3: 유동성/트랩
type Liquidity struct {
	SweepWindow          int            `yaml:"sweep_window" json:"sweep_window" default:"10"`
	SweepLookback        int            `yaml:"sweep_lookback" json:"sweep_lookback" default:"5"`
	WickHigh             float64        `yaml:"wick_high" json:"wick_high" default:"0.65"`
	WickMedium           float64        `yaml:"wick_medium" json:"wick_medium" default:"0.5"`
	WickLow              float64        `yaml:"wick_low" json:"wick_low" default:"0.4"`
	ClusterPips          ClusterPips    `yaml:"cluster_pips" json:"cluster_pips"`
	ClusterProximityPips float64        `yaml:"cluster_proximity_pips" json:"cluster_proximity_pips" default:"15"`
	ConfluenceTolPips    float64        `yaml:"confluence_tol_pips" json:"confluence_tol_pips" default:"5"`
	OrderBlockMult       float64        `yaml:"order_block_mult" json:"order_block_mult" default:"2.0"`
	OrderBlockLookback   int            `yaml:"order_block_lookback" json:"order_block_lookback" default:"20"`
	SweepPoints          int            `yaml:"sweep_points" json:"sweep_points" default:"-3"`
	ClusterPoints        int            `yaml:"cluster_points" json:"cluster_points" default:"4"`
	CounterTrendPoints   int            `yaml:"counter_trend_points" json:"counter_trend_points" default:"2"`
	LowLiquidityPoints   int            `yaml:"low_liquidity_points" json:"low_liquidity_points" default:"1"`
	Buckets              TrapBuckets    `yaml:"buckets" json:"buckets"`
	Score                LiquidityScore `yaml:"score" json:"score"`
}

// ClusterPips canonical stop-cluster distances per pair type
type ClusterPips struct {
	Major []float64 `yaml:"major" json:"major" default:"[10,20,30,50]"`
	JPY   []float64 `yaml:"jpy" json:"jpy" default:"[15,25,40]"`
	Metal []float64 `yaml:"metal" json:"metal" default:"[50,100,200]"`
	Index []float64 `yaml:"index" json:"index" default:"[20,50,100]"`
}

// LiquidityScore weights of the 0-10 liquidity score
type LiquidityScore struct {
	Base               float64 `yaml:"base" json:"base" default:"5"`
	SweepHigh          float64 `yaml:"sweep_high" json:"sweep_high" default:"3"`
	SweepMedium        float64 `yaml:"sweep_medium" json:"sweep_medium" default:"2"`
	SweepLow           float64 `yaml:"sweep_low" json:"sweep_low" default:"1"`
	TrapHigh           float64 `yaml:"trap_high" json:"trap_high" default:"-3"`
	TrapMedium         float64 `yaml:"trap_medium" json:"trap_medium" default:"-1.5"`
	TrapMinimal        float64 `yaml:"trap_minimal" json:"trap_minimal" default:"1"`
	OrderBlock         float64 `yaml:"order_block" json:"order_block" default:"1"`
	OrderBlockRetested float64 `yaml:"order_block_retested" json:"order_block_retested" default:"0.5"`
}

// Timeframe S4: 멀티 타임프레임
type Timeframe struct {
	RSIBullish        float64    `yaml:"rsi_bullish" json:"rsi_bullish" default:"55"`
	RSIBearish        float64    `yaml:"rsi_bearish" json:"rsi_bearish" default:"45"`
	ConfluenceTolPips float64    `yaml:"confluence_tol_pips" json:"confluence_tol_pips" default:"10"`
	MinAligned        MinAligned `yaml:"min_aligned" json:"min_aligned"`
	Excellent         float64    `yaml:"excellent" json:"excellent" default:"8"`
	Good              float64    `yaml:"good" json:"good" default:"6"`
	Moderate          float64    `yaml:"moderate" json:"moderate" default:"4"`
}

// MinAligned minimum aligned timeframes per signal category
type MinAligned struct {
	Trend    int `yaml:"trend" json:"trend" default:"3"`
	Scalp    int `yaml:"scalp" json:"scalp" default:"2"`
	Reversal int `yaml:"reversal" json:"reversal" default:"2"`
	Unknown  int `yaml:"unknown" json:"unknown" default:"2"`
}

// For returns the minimum for a category
func (m MinAligned) For(c contracts.SignalCategory) int {
	switch c {
	case contracts.CategoryTrend:
		return m.Trend
	case contracts.CategoryScalp:
		return m.Scalp
	case contracts.CategoryReversal:
		return m.Reversal
	default:
		return m.Unknown
	}
}

// Scoring S5: 점수 합산
type Scoring struct {
	Baseline      float64       `yaml:"baseline" json:"baseline" default:"5.0"`
	SignalQuality SignalQuality `yaml:"signal_quality" json:"signal_quality"`
	Liquidity     Bound         `yaml:"liquidity" json:"liquidity"`
	RegimeWeights RegimeWeights `yaml:"regime" json:"regime"`
	Timeframe     TFWeights     `yaml:"timeframe" json:"timeframe"`
	Timing        Timing        `yaml:"timing" json:"timing"`
	Penalties     Penalties     `yaml:"penalties" json:"penalties"`
	Bonuses       Bonuses       `yaml:"bonuses" json:"bonuses"`
}

// SignalQuality component points by inspected strength
type SignalQuality struct {
	Strong   float64 `yaml:"strong" json:"strong" default:"2.0"`
	Moderate float64 `yaml:"moderate" json:"moderate" default:"1.2"`
	Weak     float64 `yaml:"weak" json:"weak" default:"0.4"`
	VeryWeak float64 `yaml:"very_weak" json:"very_weak" default:"-0.5"`
	Min      float64 `yaml:"min" json:"min" default:"-1.0"`
	Max      float64 `yaml:"max" json:"max" default:"2.0"`
}

// Bound is a symmetric component cap with a divisor
type Bound struct {
	Divisor float64 `yaml:"divisor" json:"divisor" default:"2.0"`
	Cap     float64 `yaml:"cap" json:"cap" default:"2.5"`
}

// RegimeWeights component points by regime fit
type RegimeWeights struct {
	TrendAligned        float64 `yaml:"trend_aligned" json:"trend_aligned" default:"1.5"`
	TrendOpposed        float64 `yaml:"trend_opposed" json:"trend_opposed" default:"-1.0"`
	RangingCalmReversal float64 `yaml:"ranging_calm_reversal" json:"ranging_calm_reversal" default:"0.5"`
	RangingVolatile     float64 `yaml:"ranging_volatile" json:"ranging_volatile" default:"-0.5"`
	BreakoutAligned     float64 `yaml:"breakout_aligned" json:"breakout_aligned" default:"1.0"`
	NewsDriven          float64 `yaml:"news_driven" json:"news_driven" default:"-1.0"`
	Min                 float64 `yaml:"min" json:"min" default:"-1.0"`
	Max                 float64 `yaml:"max" json:"max" default:"1.5"`
}

// TFWeights maps the 0-10 alignment score onto a component range
type TFWeights struct {
	Scale float64 `yaml:"scale" json:"scale" default:"2.0"`
	Min   float64 `yaml:"min" json:"min" default:"-1.5"`
	Max   float64 `yaml:"max" json:"max" default:"2.0"`
}

// Timing component points
type Timing struct {
	Weekend    float64 `yaml:"weekend" json:"weekend" default:"-1.5"`
	PoorFit    float64 `yaml:"poor_fit" json:"poor_fit" default:"-0.75"`
	YellowNews float64 `yaml:"yellow_news" json:"yellow_news" default:"-0.5"`
	OffHours   float64 `yaml:"off_hours" json:"off_hours" default:"-0.5"`
	Min        float64 `yaml:"min" json:"min" default:"-1.5"`
}

// Penalties discrete risk penalties
type Penalties struct {
	RedNews             float64 `yaml:"red_news" json:"red_news" default:"-2.0"`
	HighTrap            float64 `yaml:"high_trap" json:"high_trap" default:"-2.5"`
	ExtremeVolatility   float64 `yaml:"extreme_volatility" json:"extreme_volatility" default:"-1.5"`
	Conflicts           float64 `yaml:"conflicts" json:"conflicts" default:"-1.0"`
	ConflictsMin        int     `yaml:"conflicts_min" json:"conflicts_min" default:"2"`
	LowLiquiditySession float64 `yaml:"low_liquidity_session" json:"low_liquidity_session" default:"-0.5"`
}

// Bonuses discrete quality bonuses
type Bonuses struct {
	PostSweep          float64 `yaml:"post_sweep" json:"post_sweep" default:"2.0"`
	PostSweepMaxBars   int     `yaml:"post_sweep_max_bars" json:"post_sweep_max_bars" default:"5"`
	ExcellentAlignment float64 `yaml:"excellent_alignment" json:"excellent_alignment" default:"1.5"`
	StrongTrend        float64 `yaml:"strong_trend" json:"strong_trend" default:"1.0"`
	StrongTrendMin     int     `yaml:"strong_trend_min" json:"strong_trend_min" default:"4"`
	Confluence         float64 `yaml:"confluence" json:"confluence" default:"1.0"`
	ConfluenceMin      int     `yaml:"confluence_min" json:"confluence_min" default:"2"`
	OptimalSession     float64 `yaml:"optimal_session" json:"optimal_session" default:"0.5"`
}

// Performance S6: 성과 분석
type Performance struct {
	WindowDays           int              `yaml:"window_days" json:"window_days" default:"30"`
	TrustMinOutcomes     int              `yaml:"trust_min_outcomes" json:"trust_min_outcomes" default:"5"`
	MinSamples           int              `yaml:"min_samples" json:"min_samples" default:"5"`
	Tolerance            float64          `yaml:"tolerance" json:"tolerance" default:"0.05"`
	RiskFactorLossMargin float64          `yaml:"risk_factor_loss_margin" json:"risk_factor_loss_margin" default:"0.1"`
	Expected             ExpectedWinRates `yaml:"expected_win_rates" json:"expected_win_rates"`
}

// ExpectedWinRates target win rate per classification
type ExpectedWinRates struct {
	Approved       float64 `yaml:"approved" json:"approved" default:"0.6"`
	Active         float64 `yaml:"active" json:"active" default:"0.5"`
	VolatilityZone float64 `yaml:"volatility_zone" json:"volatility_zone" default:"0.4"`
	Unverified     float64 `yaml:"unverified" json:"unverified" default:"0.3"`
}

// For returns the expected win rate of a classification
func (e ExpectedWinRates) For(c contracts.Classification) float64 {
	switch c {
	case contracts.ClassApproved:
		return e.Approved
	case contracts.ClassActive:
		return e.Active
	case contracts.ClassVolatilityZone:
		return e.VolatilityZone
	default:
		return e.Unverified
	}
}
