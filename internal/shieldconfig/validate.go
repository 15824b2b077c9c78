package shieldconfig

import (
	"fmt"
	"sort"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Thresholds ===
	t := cfg.Thresholds
	if !(t.Approved > t.Active && t.Active > t.VolatilityZone && t.VolatilityZone > 0) {
		return ValidationError{"thresholds", "must satisfy approved > active > volatility_zone > 0"}
	}
	if t.Approved > 10 {
		return ValidationError{"thresholds.approved", "must be <= 10"}
	}

	// === Trap buckets ===
	if err := validateBuckets("inspector.buckets", cfg.Inspector.Buckets); err != nil {
		return err
	}
	if err := validateBuckets("liquidity.buckets", cfg.Liquidity.Buckets); err != nil {
		return err
	}

	// === Inspector ===
	if cfg.Inspector.ReversalZonePct <= 0 || cfg.Inspector.ReversalZonePct >= 0.5 {
		return ValidationError{"inspector.reversal_zone_pct", "must be in (0, 0.5)"}
	}
	if cfg.Inspector.ContinuationBars < 2 {
		return ValidationError{"inspector.continuation_bars", "must be >= 2"}
	}

	// === Regime ===
	r := cfg.Regime
	if r.FastPeriod <= 0 || r.FastPeriod >= r.SlowPeriod {
		return ValidationError{"regime.fast_period", "must be > 0 and < slow_period"}
	}
	if !(r.VolLowPct < r.VolNormalPct && r.VolNormalPct < r.VolElevatedPct && r.VolElevatedPct <= 100) {
		return ValidationError{"regime", "vol_low_pct < vol_normal_pct < vol_elevated_pct <= 100 required"}
	}
	if r.NewsRedMinutes <= 0 || r.NewsYellowMinutes < r.NewsRedMinutes {
		return ValidationError{"regime.news_yellow_minutes", "must be >= news_red_minutes > 0"}
	}
	if !sort.Float64sAreSorted(r.ChangeStepsPct) || len(r.ChangeStepsPct) == 0 {
		return ValidationError{"regime.change_steps_pct", "must be a non-empty ascending list"}
	}

	// === Liquidity ===
	l := cfg.Liquidity
	if !(l.WickHigh > l.WickMedium && l.WickMedium > l.WickLow && l.WickLow > 0) {
		return ValidationError{"liquidity", "wick_high > wick_medium > wick_low > 0 required"}
	}
	if l.SweepWindow <= 0 || l.SweepLookback <= 0 {
		return ValidationError{"liquidity.sweep_window", "sweep_window and sweep_lookback must be > 0"}
	}
	for name, pips := range map[string][]float64{
		"major": l.ClusterPips.Major,
		"jpy":   l.ClusterPips.JPY,
		"metal": l.ClusterPips.Metal,
		"index": l.ClusterPips.Index,
	} {
		if len(pips) == 0 {
			return ValidationError{"liquidity.cluster_pips." + name, "must not be empty"}
		}
	}
	if l.SweepPoints > 0 {
		return ValidationError{"liquidity.sweep_points", "must be <= 0"}
	}
	if l.ClusterPoints < 0 {
		return ValidationError{"liquidity.cluster_points", "must be >= 0"}
	}

	// === Timeframe ===
	tf := cfg.Timeframe
	if tf.RSIBearish >= tf.RSIBullish {
		return ValidationError{"timeframe.rsi_bearish", "must be < rsi_bullish"}
	}
	if !(tf.Excellent > tf.Good && tf.Good > tf.Moderate) {
		return ValidationError{"timeframe", "excellent > good > moderate required"}
	}

	// === Scoring ===
	s := cfg.Scoring
	if s.Baseline < 0 || s.Baseline > 10 {
		return ValidationError{"scoring.baseline", "must be in [0, 10]"}
	}
	if s.Liquidity.Divisor <= 0 {
		return ValidationError{"scoring.liquidity.divisor", "must be > 0"}
	}
	if s.SignalQuality.Min > s.SignalQuality.Max {
		return ValidationError{"scoring.signal_quality", "min must be <= max"}
	}
	if s.Timeframe.Min > s.Timeframe.Max {
		return ValidationError{"scoring.timeframe", "min must be <= max"}
	}
	if s.RegimeWeights.Min > s.RegimeWeights.Max {
		return ValidationError{"scoring.regime", "min must be <= max"}
	}
	if s.Timing.Min > 0 {
		return ValidationError{"scoring.timing.min", "must be <= 0"}
	}

	// === Performance ===
	if cfg.Performance.WindowDays <= 0 {
		return ValidationError{"performance.window_days", "must be > 0"}
	}

	return nil
}

func validateBuckets(field string, b TrapBuckets) error {
	if !(b.High > b.Medium && b.Medium > b.Low && b.Low > 0) {
		return ValidationError{field, "high > medium > low > 0 required"}
	}
	return nil
}
