package contracts

import "strings"

// Direction is the side of a proposed trade
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Valid reports whether d is BUY or SELL
func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// Sign returns +1 for BUY, -1 for SELL and 0 otherwise
func (d Direction) Sign() float64 {
	switch d {
	case DirectionBuy:
		return 1
	case DirectionSell:
		return -1
	default:
		return 0
	}
}

// SignalCategory groups upstream strategy labels by how much confirmation they need
type SignalCategory string

const (
	CategoryTrend    SignalCategory = "trend_following"
	CategoryScalp    SignalCategory = "scalp"
	CategoryReversal SignalCategory = "reversal"
	CategoryUnknown  SignalCategory = "unknown"
)

// Signal is a proposed trade produced by an upstream strategy generator
// ⭐ SSOT: 외부 → Shield 입력 시그널
type Signal struct {
	ID         string    `json:"id,omitempty"`
	Symbol     string    `json:"symbol" validate:"required,min=3,max=12"`
	Direction  Direction `json:"direction" validate:"required,oneof=BUY SELL"`
	Entry      float64   `json:"entry" validate:"gt=0"`
	StopLoss   float64   `json:"stop_loss" validate:"gte=0"`
	TakeProfit float64   `json:"take_profit" validate:"gte=0"`
	SignalType string    `json:"signal_type,omitempty"` // 전략 라벨 (TREND, SCALP, SNIPER ...)
}

// Category maps the free-text strategy label onto a SignalCategory
func (s Signal) Category() SignalCategory {
	t := strings.ToUpper(s.SignalType)
	switch {
	case t == "":
		return CategoryUnknown
	case strings.Contains(t, "REVERS"), strings.Contains(t, "FADE"), strings.Contains(t, "COUNTER"):
		return CategoryReversal
	case strings.Contains(t, "SCALP"), strings.Contains(t, "RAPID"):
		return CategoryScalp
	case strings.Contains(t, "TREND"), strings.Contains(t, "CONTINUATION"),
		strings.Contains(t, "BREAKOUT"), strings.Contains(t, "SWING"),
		strings.Contains(t, "SNIPER"), strings.Contains(t, "MOMENTUM"):
		return CategoryTrend
	default:
		return CategoryUnknown
	}
}

// RiskReward returns |target-entry| / |entry-stop|, or 0 when undefined
func (s Signal) RiskReward() float64 {
	risk := s.Entry - s.StopLoss
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 || s.TakeProfit == 0 || s.StopLoss == 0 {
		return 0
	}
	reward := s.TakeProfit - s.Entry
	if reward < 0 {
		reward = -reward
	}
	return reward / risk
}
