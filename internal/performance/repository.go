package performance

import (
	"context"
	"errors"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// ErrNotFound is returned when no result is stored for a signal_id
var ErrNotFound = errors.New("shield result not found")

// OutcomeRecord is an outcome joined with the result it refers to.
// Orphan is derived from the join at read time, so an outcome reported
// before its result was stored is adopted once the result lands.
type OutcomeRecord struct {
	contracts.Outcome
	Classification contracts.Classification
	ShieldScore    float64
	RiskFactors    []string
}

// adopt copies the joined result fields and recomputes Orphan
func (r *OutcomeRecord) adopt(class contracts.Classification, score float64, risks []string) {
	r.Classification = class
	r.ShieldScore = score
	r.RiskFactors = risks
	r.Orphan = class == ""
}

// OutcomeFilter narrows outcome queries; zero values match everything
type OutcomeFilter struct {
	Since  time.Time
	Until  time.Time
	UserID string
}

func (f OutcomeFilter) matches(o contracts.Outcome) bool {
	if !f.Since.IsZero() && o.RecordedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !o.RecordedAt.Before(f.Until) {
		return false
	}
	return f.UserID == "" || o.UserID == f.UserID
}

// Repository persists shield results and outcomes.
// Results upsert by signal_id; one outcome per (signal_id, user_id), latest report wins.
// ⭐ SSOT: Shield 결과/성과 저장은 이 인터페이스로만
type Repository interface {
	Migrate(ctx context.Context) error
	SaveResult(ctx context.Context, r *contracts.ShieldResult) error
	GetResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error)
	ResultExists(ctx context.Context, signalID string) (bool, error)
	ListResults(ctx context.Context, since, until time.Time) ([]contracts.ShieldResult, error)
	SaveOutcome(ctx context.Context, o contracts.Outcome) error
	ListOutcomes(ctx context.Context, f OutcomeFilter) ([]OutcomeRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

func inWindow(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	return until.IsZero() || t.Before(until)
}
