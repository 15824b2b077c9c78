package scoring

import (
	"math"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/market"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Engine combines analyzer outputs into a shield score
// ⭐ SSOT: 점수 합산/분류는 여기서만
type Engine struct {
	cfg        shieldconfig.Scoring
	thresholds shieldconfig.Thresholds
	logger     *logger.Logger
}

// New creates a new scoring engine
func New(cfg *shieldconfig.Config, log *logger.Logger) *Engine {
	return &Engine{
		cfg:        cfg.Scoring,
		thresholds: cfg.Thresholds,
		logger:     log.Component("scoring"),
	}
}

// Score is pure: identical input gives an identical result.
// ID, timestamp and version are stamped by the caller.
func (e *Engine) Score(in contracts.ScoringInput) *contracts.ShieldResult {
	components := []contracts.Component{
		e.signalQuality(in.Inspection),
		e.liquidity(in.Liquidity),
		e.regime(in.Signal, in.Regime, in.Inspection),
		e.timeframe(in.Timeframe),
		e.timing(in.Regime),
	}

	penalties := e.penalties(in)
	bonuses := e.bonuses(in)

	raw := e.cfg.Baseline
	for _, c := range components {
		raw += c.Score
	}
	raw += contracts.SumPoints(penalties) + contracts.SumPoints(bonuses)

	score := market.Round1(market.Clamp(raw, 0, 10))
	class := e.thresholds.Classify(score)

	adjustments := make([]contracts.Contribution, 0, len(penalties)+len(bonuses))
	adjustments = append(adjustments, penalties...)
	adjustments = append(adjustments, bonuses...)
	risks, qualities := factors(components, penalties, bonuses)

	result := &contracts.ShieldResult{
		SignalID:       in.Signal.ID,
		Symbol:         in.Signal.Symbol,
		Direction:      in.Signal.Direction,
		ShieldScore:    score,
		Classification: class,
		Components:     components,
		Adjustments:    adjustments,
		RiskFactors:    risks,
		QualityFactors: qualities,
		Confidence:     confidence(score, e.cfg.Baseline, components, adjustments),
	}
	result.Explanation = explain(result)
	result.Recommendation = recommend(class)

	e.logger.WithFields(map[string]interface{}{
		"signal_id":      in.Signal.ID,
		"symbol":         in.Signal.Symbol,
		"raw":            math.Round(raw*100) / 100,
		"score":          score,
		"classification": class,
		"penalties":      len(penalties),
		"bonuses":        len(bonuses),
	}).Debug("Scored signal")

	return result
}

// confidence = half score extremity + half share of contributions pointing
// the same way as the final score
func confidence(score, baseline float64, components []contracts.Component, adjustments []contracts.Contribution) float64 {
	extremity := math.Min(math.Abs(score-baseline)/5, 1)

	sign := 0.0
	switch {
	case score > baseline:
		sign = 1
	case score < baseline:
		sign = -1
	}

	var total, agree int
	count := func(v float64) {
		if v == 0 {
			return
		}
		total++
		if v*sign > 0 {
			agree++
		}
	}
	for _, c := range components {
		count(c.Score)
	}
	for _, a := range adjustments {
		count(a.Points)
	}

	agreement := 0.0
	if total > 0 {
		agreement = float64(agree) / float64(total)
	}
	return math.Round((0.5*extremity+0.5*agreement)*100) / 100
}
