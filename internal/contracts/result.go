package contracts

import (
	"slices"
	"time"
)

// Classification is the tier of a shield score
type Classification string

const (
	ClassApproved       Classification = "SHIELD_APPROVED"
	ClassActive         Classification = "SHIELD_ACTIVE"
	ClassVolatilityZone Classification = "VOLATILITY_ZONE"
	ClassUnverified     Classification = "UNVERIFIED"
)

// Classifications lists every tier, best first
var Classifications = []Classification{
	ClassApproved,
	ClassActive,
	ClassVolatilityZone,
	ClassUnverified,
}

// Component is one bounded score contribution shown to users
type Component struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Max    float64 `json:"max"`
	Reason string  `json:"reason"`
	Impact string  `json:"impact"` // positive, negative, neutral
}

// ShieldResult is the scored verdict for one signal
// ⭐ SSOT: Shield → 외부 출력
type ShieldResult struct {
	SignalID        string          `json:"signal_id"`
	Symbol          string          `json:"symbol"`
	Direction       Direction       `json:"direction"`
	ShieldScore     float64         `json:"shield_score"`
	Classification  Classification  `json:"classification"`
	Components      []Component     `json:"components"`
	Adjustments     []Contribution  `json:"adjustments"`
	RiskFactors     []string        `json:"risk_factors"`
	QualityFactors  []string        `json:"quality_factors"`
	Explanation     string          `json:"explanation"`
	Recommendation  string          `json:"recommendation"`
	Confidence      float64         `json:"confidence"`
	Timestamp       time.Time       `json:"timestamp"`
	Version         string          `json:"version"`
	Personalization *UserAnnotation `json:"personalization,omitempty"`
}

// Clone returns a copy safe to annotate without touching the original
func (r *ShieldResult) Clone() *ShieldResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Components = slices.Clone(r.Components)
	c.Adjustments = slices.Clone(r.Adjustments)
	c.RiskFactors = slices.Clone(r.RiskFactors)
	c.QualityFactors = slices.Clone(r.QualityFactors)
	if r.Personalization != nil {
		p := *r.Personalization
		c.Personalization = &p
	}
	return &c
}

// UserAnnotation is read-only per-user context attached to a result
type UserAnnotation struct {
	UserID           string  `json:"user_id"`
	TrustScore       float64 `json:"trust_score"`
	Compliance       float64 `json:"compliance"`
	WinRateFollowing float64 `json:"win_rate_following"`
	WinRateIgnoring  float64 `json:"win_rate_ignoring"`
	ClassWinRate     float64 `json:"class_win_rate"`
	ClassSamples     int     `json:"class_samples"`
	Note             string  `json:"note"`
}
