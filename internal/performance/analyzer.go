package performance

import (
	"context"
	"fmt"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Analyzer derives performance reports, user profiles and improvement
// opportunities from stored outcomes
type Analyzer struct {
	repo       Repository
	cfg        shieldconfig.Performance
	thresholds shieldconfig.Thresholds
	logger     *logger.Logger
	clock      contracts.Clock
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(repo Repository, cfg *shieldconfig.Config, log *logger.Logger, clock contracts.Clock) *Analyzer {
	if clock == nil {
		clock = contracts.SystemClock
	}
	return &Analyzer{
		repo:       repo,
		cfg:        cfg.Performance,
		thresholds: cfg.Thresholds,
		logger:     log.Component("performance"),
		clock:      clock,
	}
}

func (a *Analyzer) window(days int) (int, time.Time, time.Time) {
	if days <= 0 {
		days = a.cfg.WindowDays
	}
	until := a.clock().UTC()
	return days, until.AddDate(0, 0, -days), until.Add(time.Nanosecond)
}

// Report builds the performance report over the last days
func (a *Analyzer) Report(ctx context.Context, days int) (*contracts.PerformanceReport, error) {
	_, since, until := a.window(days)

	results, err := a.repo.ListResults(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	records, err := a.repo.ListOutcomes(ctx, OutcomeFilter{Since: since, Until: until})
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	rep := BuildReport(results, records, since, until)
	a.logger.WithFields(map[string]interface{}{
		"signals":  rep.TotalSignals,
		"outcomes": rep.TotalOutcomes,
		"orphans":  rep.Orphans,
		"win_rate": rep.Overall.WinRate,
	}).Debug("Performance report built")
	return rep, nil
}

// UserStats builds one user's profile over the last days
func (a *Analyzer) UserStats(ctx context.Context, userID string, days int) (*contracts.UserStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	days, since, until := a.window(days)

	records, err := a.repo.ListOutcomes(ctx, OutcomeFilter{Since: since, Until: until, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return BuildUserStats(userID, days, records, a.cfg.TrustMinOutcomes), nil
}

// Annotate builds the read-only personalization attached to a result.
// The score itself is never changed.
func (a *Analyzer) Annotate(ctx context.Context, userID string, r *contracts.ShieldResult) (*contracts.UserAnnotation, error) {
	st, err := a.UserStats(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	ann := &contracts.UserAnnotation{
		UserID:           userID,
		TrustScore:       st.TrustScore,
		Compliance:       st.Compliance,
		WinRateFollowing: st.Followed.WinRate,
		WinRateIgnoring:  st.Ignored.WinRate,
	}
	for _, b := range st.ByClassification {
		if b.Label == string(r.Classification) {
			ann.ClassWinRate = b.WinRate
			ann.ClassSamples = b.Resolved
		}
	}
	ann.Note = annotationNote(st, ann, r.Classification, a.cfg.TrustMinOutcomes)
	return ann, nil
}

func annotationNote(st *contracts.UserStats, ann *contracts.UserAnnotation, class contracts.Classification, minOutcomes int) string {
	if st.Overall.Resolved < minOutcomes {
		return "not enough history yet for a personal profile"
	}
	if ann.ClassSamples > 0 {
		return fmt.Sprintf("you won %.0f%% of %d %s trades", ann.ClassWinRate*100, ann.ClassSamples, class)
	}
	if st.Followed.Resolved > 0 && st.Ignored.Resolved > 0 && ann.WinRateFollowing > ann.WinRateIgnoring {
		return fmt.Sprintf("you win %.0f%% when following the shield vs %.0f%% when ignoring it",
			ann.WinRateFollowing*100, ann.WinRateIgnoring*100)
	}
	return fmt.Sprintf("overall win rate %.0f%% over %d trades", st.Overall.WinRate*100, st.Overall.Resolved)
}

// Improvements lists under-performing areas over the last days
func (a *Analyzer) Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error) {
	days, since, until := a.window(days)

	results, err := a.repo.ListResults(ctx, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	records, err := a.repo.ListOutcomes(ctx, OutcomeFilter{Since: since, Until: until})
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	rep := BuildReport(results, records, since, until)
	opps := FindImprovements(rep, records, a.cfg, a.thresholds)
	if opps == nil {
		opps = []contracts.Improvement{}
	}

	a.logger.WithFields(map[string]interface{}{
		"days":          days,
		"opportunities": len(opps),
	}).Info("Improvement analysis complete")

	return &contracts.ImprovementReport{
		GeneratedAt:   a.clock().UTC(),
		Days:          days,
		Opportunities: opps,
	}, nil
}
