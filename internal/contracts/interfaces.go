package contracts

import "context"

// SignalInspector classifies the signal pattern and trap risk
// ⭐ SSOT: 시그널 패턴 분석 인터페이스
type SignalInspector interface {
	Inspect(ctx context.Context, sig Signal, snap *MarketSnapshot) *InspectionResult
}

// RegimeAnalyzer classifies trend, volatility, session and news state
// ⭐ SSOT: 시장 레짐 분석 인터페이스
type RegimeAnalyzer interface {
	Analyze(ctx context.Context, sig Signal, snap *MarketSnapshot) *RegimeResult
}

// LiquidityMapper detects sweeps, clusters, order blocks and traps
// ⭐ SSOT: 유동성 분석 인터페이스
type LiquidityMapper interface {
	Map(ctx context.Context, sig Signal, snap *MarketSnapshot) *LiquidityResult
}

// TimeframeValidator checks multi-timeframe agreement
// ⭐ SSOT: 멀티 타임프레임 검증 인터페이스
type TimeframeValidator interface {
	Validate(ctx context.Context, sig Signal, snap *MarketSnapshot) *TimeframeResult
}

// Scorer fuses analyzer outputs into a ShieldResult
// ⭐ SSOT: Shield 점수 계산 인터페이스
type Scorer interface {
	Score(in ScoringInput) *ShieldResult
}
