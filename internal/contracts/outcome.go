package contracts

import "time"

// OutcomeType is the reported result of a delivered signal
type OutcomeType string

const (
	OutcomeWin       OutcomeType = "WIN"
	OutcomeLoss      OutcomeType = "LOSS"
	OutcomeBreakEven OutcomeType = "BREAK_EVEN"
	OutcomeSkipped   OutcomeType = "SKIPPED"
)

// Valid reports whether o is a known outcome
func (o OutcomeType) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLoss, OutcomeBreakEven, OutcomeSkipped:
		return true
	}
	return false
}

// Resolved reports whether the trade was actually taken
func (o OutcomeType) Resolved() bool {
	return o == OutcomeWin || o == OutcomeLoss || o == OutcomeBreakEven
}

// Outcome is reported by trade tracking after a signal plays out
type Outcome struct {
	SignalID       string      `json:"signal_id" validate:"required"`
	UserID         string      `json:"user_id"`
	Outcome        OutcomeType `json:"outcome" validate:"required,oneof=WIN LOSS BREAK_EVEN SKIPPED"`
	PipsResult     float64     `json:"pips_result"`
	FollowedShield bool        `json:"followed_shield"`
	Orphan         bool        `json:"orphan"`
	RecordedAt     time.Time   `json:"recorded_at"`
}

// BucketStats is the win-rate breakdown of a group of outcomes
type BucketStats struct {
	Label     string  `json:"label"`
	Signals   int     `json:"signals"`
	Resolved  int     `json:"resolved"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	BreakEven int     `json:"break_even"`
	Skipped   int     `json:"skipped"`
	WinRate   float64 `json:"win_rate"`
	TotalPips float64 `json:"total_pips"`
	AvgPips   float64 `json:"avg_pips"`
}

// Add folds one outcome into the bucket
func (b *BucketStats) Add(o Outcome) {
	switch o.Outcome {
	case OutcomeWin:
		b.Wins++
	case OutcomeLoss:
		b.Losses++
	case OutcomeBreakEven:
		b.BreakEven++
	case OutcomeSkipped:
		b.Skipped++
		return
	default:
		return
	}
	b.Resolved++
	b.TotalPips += o.PipsResult
}

// Finalize computes the derived rates
func (b *BucketStats) Finalize() {
	if b.Resolved == 0 {
		b.WinRate = 0
		b.AvgPips = 0
		return
	}
	b.WinRate = float64(b.Wins) / float64(b.Resolved)
	b.AvgPips = b.TotalPips / float64(b.Resolved)
}

// PerformanceReport aggregates stored results and outcomes over a window
type PerformanceReport struct {
	Since            time.Time      `json:"since"`
	Until            time.Time      `json:"until"`
	TotalSignals     int            `json:"total_signals"`
	TotalOutcomes    int            `json:"total_outcomes"`
	Orphans          int            `json:"orphans"`
	Overall          BucketStats    `json:"overall"`
	ByClassification []BucketStats  `json:"by_classification"`
	ByScoreBucket    []BucketStats  `json:"by_score_bucket"`
	Followed         BucketStats    `json:"followed"`
	Ignored          BucketStats    `json:"ignored"`
	AverageScore     float64        `json:"average_score"`
	Distribution     map[string]int `json:"distribution"`
}

// UserStats is the derived per-user profile over a rolling window
type UserStats struct {
	UserID           string        `json:"user_id"`
	Days             int           `json:"days"`
	TotalOutcomes    int           `json:"total_outcomes"`
	Overall          BucketStats   `json:"overall"`
	Followed         BucketStats   `json:"followed"`
	Ignored          BucketStats   `json:"ignored"`
	Compliance       float64       `json:"compliance"`
	TrustScore       float64       `json:"trust_score"`
	ByClassification []BucketStats `json:"by_classification"`
}

// Improvement is one under-performing area worth investigating
type Improvement struct {
	Kind     string  `json:"kind"` // classification, score_bucket, risk_factor
	Subject  string  `json:"subject"`
	Samples  int     `json:"samples"`
	Observed float64 `json:"observed"`
	Expected float64 `json:"expected"`
	Message  string  `json:"message"`
}

// ImprovementReport lists improvement opportunities
type ImprovementReport struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	Days          int           `json:"days"`
	Opportunities []Improvement `json:"opportunities"`
}
