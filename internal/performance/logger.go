package performance

import (
	"context"
	"fmt"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/metrics"
)

// Logger writes results and outcomes to the repository
// ⭐ SSOT: 결과/성과 기록은 여기서만
type Logger struct {
	repo    Repository
	logger  *logger.Logger
	metrics *metrics.Recorder
	clock   contracts.Clock
}

// NewLogger creates a new shield logger
func NewLogger(repo Repository, log *logger.Logger, rec *metrics.Recorder, clock contracts.Clock) *Logger {
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &Logger{
		repo:    repo,
		logger:  log.Component("shield_logger"),
		metrics: rec,
		clock:   clock,
	}
}

// LogResult persists a result. Failures are logged and counted, never returned.
func (l *Logger) LogResult(ctx context.Context, r *contracts.ShieldResult) {
	if r == nil {
		return
	}
	if err := l.repo.SaveResult(ctx, r); err != nil {
		l.metrics.RecordError("store")
		l.logger.WithError(err).WithFields(map[string]interface{}{
			"signal_id": r.SignalID,
		}).Error("Failed to log shield result")
		return
	}

	l.logger.WithFields(map[string]interface{}{
		"signal_id":      r.SignalID,
		"shield_score":   r.ShieldScore,
		"classification": r.Classification,
	}).Debug("Logged shield result")
}

// LogOutcome stores an outcome and reports whether its signal is unknown
// yet. Reads re-derive orphan status from the stored results, so an outcome
// that beats its result write is counted once the result lands.
func (l *Logger) LogOutcome(ctx context.Context, o contracts.Outcome) (bool, error) {
	if o.SignalID == "" {
		return false, fmt.Errorf("outcome signal_id is required")
	}
	if !o.Outcome.Valid() {
		return false, fmt.Errorf("invalid outcome %q", o.Outcome)
	}
	if o.RecordedAt.IsZero() {
		o.RecordedAt = l.clock()
	}

	exists, err := l.repo.ResultExists(ctx, o.SignalID)
	if err != nil {
		l.metrics.RecordError("store")
		return false, fmt.Errorf("failed to check signal: %w", err)
	}
	o.Orphan = !exists

	if err := l.repo.SaveOutcome(ctx, o); err != nil {
		l.metrics.RecordError("store")
		return o.Orphan, fmt.Errorf("failed to log outcome: %w", err)
	}
	l.metrics.RecordOutcome(string(o.Outcome))

	fields := map[string]interface{}{
		"signal_id": o.SignalID,
		"user_id":   o.UserID,
		"outcome":   o.Outcome,
		"pips":      o.PipsResult,
		"followed":  o.FollowedShield,
	}
	if o.Orphan {
		l.logger.WithFields(fields).Warn("Outcome stored as orphan, no matching signal")
	} else {
		l.logger.WithFields(fields).Info("Outcome logged")
	}
	return o.Orphan, nil
}
