package contracts

// Contribution is one reason-tagged point adjustment
type Contribution struct {
	Reason string  `json:"reason"`
	Points float64 `json:"points"`
}

// SumPoints adds up the points of a contribution list
func SumPoints(cs []Contribution) float64 {
	var total float64
	for _, c := range cs {
		total += c.Points
	}
	return total
}

// Pattern is the structural pattern of a signal entry
type Pattern string

const (
	PatternBreakout     Pattern = "BREAKOUT"
	PatternReversal     Pattern = "REVERSAL"
	PatternContinuation Pattern = "CONTINUATION"
	PatternRetest       Pattern = "RETEST"
	PatternUnknown      Pattern = "UNKNOWN"
)

// RiskLevel buckets a trap point sum
type RiskLevel string

const (
	RiskHigh    RiskLevel = "HIGH"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskLow     RiskLevel = "LOW"
	RiskMinimal RiskLevel = "MINIMAL"
)

// Rank orders risk levels, MINIMAL=0 … HIGH=3
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Strength grades the inspected signal
type Strength string

const (
	StrengthStrong   Strength = "STRONG"
	StrengthModerate Strength = "MODERATE"
	StrengthWeak     Strength = "WEAK"
	StrengthVeryWeak Strength = "VERY_WEAK"
)

// InspectionResult is the Signal Inspector output
type InspectionResult struct {
	Pattern        Pattern        `json:"pattern"`
	EntryStructure string         `json:"entry_structure"`
	VolatilityZone bool           `json:"volatility_zone"`
	TrapRisk       RiskLevel      `json:"trap_risk"`
	TrapScore      int            `json:"trap_score"`
	RiskReward     float64        `json:"risk_reward"`
	Strength       Strength       `json:"strength"`
	Contributions  []Contribution `json:"contributions"`
}

// Regime is the overall market state
type Regime string

const (
	RegimeTrendingBull    Regime = "TRENDING_BULL"
	RegimeTrendingBear    Regime = "TRENDING_BEAR"
	RegimeRangingCalm     Regime = "RANGING_CALM"
	RegimeRangingVolatile Regime = "RANGING_VOLATILE"
	RegimeBreakout        Regime = "BREAKOUT"
	RegimeNewsDriven      Regime = "NEWS_DRIVEN"
	RegimeUndefined       Regime = "UNDEFINED"
)

// Trend is a directional bias
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Agrees reports whether the trend points the way of d
func (t Trend) Agrees(d Direction) bool {
	return (t == TrendBullish && d == DirectionBuy) || (t == TrendBearish && d == DirectionSell)
}

// Opposes reports whether the trend points against d
func (t Trend) Opposes(d Direction) bool {
	return (t == TrendBearish && d == DirectionBuy) || (t == TrendBullish && d == DirectionSell)
}

// VolatilityLevel buckets the ATR percentile
type VolatilityLevel string

const (
	VolatilityLow      VolatilityLevel = "low"
	VolatilityNormal   VolatilityLevel = "normal"
	VolatilityElevated VolatilityLevel = "elevated"
	VolatilityHigh     VolatilityLevel = "high"
)

// SessionFit grades how well a pair trades in a session
type SessionFit string

const (
	FitOptimal SessionFit = "optimal"
	FitGood    SessionFit = "good"
	FitPoor    SessionFit = "poor"
)

// NewsRisk is the traffic-light news state around the analysis time
type NewsRisk string

const (
	NewsGreen  NewsRisk = "green"
	NewsYellow NewsRisk = "yellow"
	NewsRed    NewsRisk = "red"
)

// RegimeResult is the Market Regime Analyzer output
type RegimeResult struct {
	Regime               Regime          `json:"regime"`
	Trend                Trend           `json:"trend"`
	TrendStrength        int             `json:"trend_strength"` // 0-5
	Volatility           VolatilityLevel `json:"volatility"`
	VolatilityPercentile float64         `json:"volatility_percentile"`
	Session              Session         `json:"session"`
	SessionFit           SessionFit      `json:"session_fit"`
	LowLiquidityHour     bool            `json:"low_liquidity_hour"`
	NewsRisk             NewsRisk        `json:"news_risk"`
	NewsEvents           []NewsEvent     `json:"news_events,omitempty"`
	Stability            float64         `json:"stability"`   // 0-1
	Sensitivity          float64         `json:"sensitivity"` // multiplier
	Contributions        []Contribution  `json:"contributions"`
}

// StopCluster is a synthesized pool of resting stops
type StopCluster struct {
	Price        float64 `json:"price"`
	Above        bool    `json:"above"`
	DistancePips float64 `json:"distance_pips"`
	Strength     float64 `json:"strength"` // 0-1
	Swept        bool    `json:"swept"`
}

// OrderBlock is the last opposite candle before an impulsive move
type OrderBlock struct {
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Bullish   bool    `json:"bullish"`
	Strength  float64 `json:"strength"` // 0-1
	BarsAgo   int     `json:"bars_ago"`
	Retested  bool    `json:"retested"`
	Mitigated bool    `json:"mitigated"`
}

// PsychLevel classifies a round price level
type PsychLevel string

const (
	PsychMajor  PsychLevel = "major"
	PsychStrong PsychLevel = "strong"
	PsychMedium PsychLevel = "medium"
	PsychMinor  PsychLevel = "minor"
)

// PsychologicalLevel is the nearest round level to a price
type PsychologicalLevel struct {
	Level        float64    `json:"level"`
	Kind         PsychLevel `json:"kind"`
	DistancePips float64    `json:"distance_pips"`
}

// LiquidityResult is the Liquidity Mapper output
type LiquidityResult struct {
	SweepDetected   bool               `json:"sweep_detected"`
	Sweep           *LiquidityEvent    `json:"sweep,omitempty"`
	SweepAligned    bool               `json:"sweep_aligned"`
	Clusters        []StopCluster      `json:"clusters,omitempty"`
	NearestCluster  *StopCluster       `json:"nearest_cluster,omitempty"`
	OrderBlock      *OrderBlock        `json:"order_block,omitempty"`
	TrapProbability RiskLevel          `json:"trap_probability"`
	TrapScore       int                `json:"trap_score"`
	Psychological   PsychologicalLevel `json:"psychological_level"`
	LiquidityScore  float64            `json:"liquidity_score"` // 0-10
	Contributions   []Contribution     `json:"contributions"`
}

// AlignmentQuality grades cross-timeframe agreement
type AlignmentQuality string

const (
	AlignmentExcellent AlignmentQuality = "EXCELLENT"
	AlignmentGood      AlignmentQuality = "GOOD"
	AlignmentModerate  AlignmentQuality = "MODERATE"
	AlignmentPoor      AlignmentQuality = "POOR"
)

// TimeframeAnalysis is the per-timeframe verdict
type TimeframeAnalysis struct {
	Timeframe        string  `json:"timeframe"`
	Trend            Trend   `json:"trend"`
	Momentum         Trend   `json:"momentum"`
	Structure        Trend   `json:"structure"`
	Divergence       bool    `json:"divergence"`
	BreakOfStructure bool    `json:"break_of_structure"`
	Aligned          bool    `json:"aligned"`
	Conflict         bool    `json:"conflict"`
	Confidence       float64 `json:"confidence"`
}

// TimeframeResult is the Cross-Timeframe Validator output
type TimeframeResult struct {
	Timeframes       []TimeframeAnalysis `json:"timeframes"`
	AlignedCount     int                 `json:"aligned_count"`
	Total            int                 `json:"total"`
	Score            float64             `json:"score"` // 0-10
	Quality          AlignmentQuality    `json:"quality"`
	Conflicts        []string            `json:"conflicts,omitempty"`
	Confluences      []string            `json:"confluences,omitempty"`
	ConfluenceCount  int                 `json:"confluence_count"`
	MinRequired      int                 `json:"min_required"`
	PassesValidation bool                `json:"passes_validation"`
	Recommendation   string              `json:"recommendation"`
}

// ScoringInput bundles the four analyzer outputs for the scoring engine
type ScoringInput struct {
	Signal     Signal
	Inspection *InspectionResult
	Regime     *RegimeResult
	Liquidity  *LiquidityResult
	Timeframe  *TimeframeResult
}
