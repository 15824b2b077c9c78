package shield

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/cache"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/inspector"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/liquidity"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/performance"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/regime"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scoring"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/timeframe"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/metrics"
)

// Unavailable is the explanation of the fallback result
const Unavailable = "analysis unavailable"

// Analyzers are the pipeline stages. Any of them may be swapped out.
type Analyzers struct {
	Inspector contracts.SignalInspector
	Regime    contracts.RegimeAnalyzer
	Liquidity contracts.LiquidityMapper
	Timeframe contracts.TimeframeValidator
	Scorer    contracts.Scorer
}

// DefaultAnalyzers builds the standard stages from cfg
func DefaultAnalyzers(cfg *shieldconfig.Config, log *logger.Logger, clock contracts.Clock) Analyzers {
	return Analyzers{
		Inspector: inspector.New(cfg, log, clock),
		Regime:    regime.New(cfg, log, clock),
		Liquidity: liquidity.New(cfg, log, clock),
		Timeframe: timeframe.New(cfg, log),
		Scorer:    scoring.New(cfg, log),
	}
}

// Options are the runtime settings of an Engine
type Options struct {
	Version    string
	LogTimeout time.Duration
	Cache      *cache.ResultCache
	Metrics    *metrics.Recorder
	Clock      contracts.Clock

	// PersonalizeTimeout bounds the per-user history read on Analyze
	PersonalizeTimeout time.Duration
}

// Engine is the single entry point of the shield
// ⭐ SSOT: 분석 파이프라인 조율은 여기서만
type Engine struct {
	analyzers  Analyzers
	repo       performance.Repository
	shieldLog  *performance.Logger
	analyzer   *performance.Analyzer
	cache      *cache.ResultCache
	metrics    *metrics.Recorder
	version    string
	logTimeout time.Duration
	annTimeout time.Duration
	clock      contracts.Clock
	logger     *logger.Logger

	pending sync.WaitGroup
}

// New creates an engine. Only configuration errors are returned.
func New(cfg *shieldconfig.Config, an Analyzers, repo performance.Repository, opts Options, log *logger.Logger) (*Engine, error) {
	if err := shieldconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid shield config: %w", err)
	}
	if an.Inspector == nil || an.Regime == nil || an.Liquidity == nil || an.Timeframe == nil || an.Scorer == nil {
		return nil, fmt.Errorf("all analyzers are required")
	}
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}

	version, err := shieldconfig.VersionTag(opts.Version, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp version: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = contracts.SystemClock
	}
	logTimeout := opts.LogTimeout
	if logTimeout <= 0 {
		logTimeout = 5 * time.Second
	}
	annTimeout := opts.PersonalizeTimeout
	if annTimeout <= 0 {
		annTimeout = 250 * time.Millisecond
	}
	resultCache := opts.Cache
	if resultCache == nil {
		resultCache = cache.New(1000, 5*time.Minute, nil, log, clock)
	}

	e := &Engine{
		analyzers:  an,
		repo:       repo,
		shieldLog:  performance.NewLogger(repo, log, opts.Metrics, clock),
		analyzer:   performance.NewAnalyzer(repo, cfg, log, clock),
		cache:      resultCache,
		metrics:    opts.Metrics,
		version:    version,
		logTimeout: logTimeout,
		annTimeout: annTimeout,
		clock:      clock,
		logger:     log.Component("shield"),
	}

	e.logger.WithField("version", version).Info("Shield engine ready")
	return e, nil
}

// Version returns the version stamped into every result
func (e *Engine) Version() string {
	return e.version
}

// Analyze scores one signal. It never fails: unexpected errors produce the
// fallback result. userID may be empty; personalization never changes the score.
func (e *Engine) Analyze(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot, userID string) *contracts.ShieldResult {
	start := time.Now()

	if sig.ID == "" {
		sig.ID = uuid.NewString()
	} else if cached, ok := e.cache.Get(ctx, sig.ID); ok {
		e.metrics.RecordCacheLookup(true)
		e.logger.WithField("signal_id", sig.ID).Debug("Served cached result")
		return e.personalize(ctx, cached, userID)
	}
	e.metrics.RecordCacheLookup(false)

	result, ok := e.run(ctx, sig, snap)
	result.SignalID = sig.ID
	result.Timestamp = e.clock()
	result.Version = e.version

	if ok {
		e.cache.Put(ctx, result)
		e.logAsync(result.Clone())
	}

	elapsed := time.Since(start)
	e.metrics.RecordAnalysis(string(result.Classification), result.ShieldScore, elapsed.Seconds())
	e.logger.WithFields(map[string]interface{}{
		"signal_id":      result.SignalID,
		"symbol":         result.Symbol,
		"shield_score":   result.ShieldScore,
		"classification": result.Classification,
		"duration_ms":    elapsed.Milliseconds(),
	}).Info("Signal analyzed")

	return e.personalize(ctx, result, userID)
}

// run fans the four analyzers out in parallel and scores their outputs.
// ok is false when the fallback result was produced.
func (e *Engine) run(ctx context.Context, sig contracts.Signal, snap *contracts.MarketSnapshot) (result *contracts.ShieldResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			result, ok = e.fallback(sig, fmt.Errorf("scoring panicked: %v", rec)), false
		}
	}()

	in := contracts.ScoringInput{Signal: sig}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return guard("inspector", func() { in.Inspection = e.analyzers.Inspector.Inspect(gctx, sig, snap) })
	})
	g.Go(func() error {
		return guard("regime", func() { in.Regime = e.analyzers.Regime.Analyze(gctx, sig, snap) })
	})
	g.Go(func() error {
		return guard("liquidity", func() { in.Liquidity = e.analyzers.Liquidity.Map(gctx, sig, snap) })
	})
	g.Go(func() error {
		return guard("timeframe", func() { in.Timeframe = e.analyzers.Timeframe.Validate(gctx, sig, snap) })
	})
	if err := g.Wait(); err != nil {
		return e.fallback(sig, err), false
	}

	result = e.analyzers.Scorer.Score(in)
	if result == nil {
		return e.fallback(sig, fmt.Errorf("scorer returned no result")), false
	}
	return result, true
}

// guard turns a panic inside fn into an error
func guard(stage string, fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s panicked: %v", stage, rec)
		}
	}()
	fn()
	return nil
}

// fallback is the safe result returned when analysis fails
func (e *Engine) fallback(sig contracts.Signal, cause error) *contracts.ShieldResult {
	e.metrics.RecordError("computation")
	e.logger.WithError(cause).WithFields(map[string]interface{}{
		"signal_id": sig.ID,
		"symbol":    sig.Symbol,
	}).Error("Analysis failed, returning fallback result")

	return &contracts.ShieldResult{
		SignalID:       sig.ID,
		Symbol:         sig.Symbol,
		Direction:      sig.Direction,
		ShieldScore:    5.0,
		Classification: contracts.ClassUnverified,
		Components:     []contracts.Component{},
		Adjustments:    []contracts.Contribution{},
		RiskFactors:    []string{Unavailable},
		QualityFactors: []string{},
		Explanation:    Unavailable,
		Recommendation: "Unverified setup. Skip or paper trade.",
	}
}

func (e *Engine) personalize(ctx context.Context, r *contracts.ShieldResult, userID string) *contracts.ShieldResult {
	if userID == "" {
		return r
	}
	// 개인화는 부가 정보: 저장소가 느리면 주석 없이 반환
	ctx, cancel := context.WithTimeout(ctx, e.annTimeout)
	defer cancel()
	ann, err := e.analyzer.Annotate(ctx, userID, r)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Warn("Failed to personalize result")
		return r
	}
	r.Personalization = ann
	return r
}

func (e *Engine) logAsync(r *contracts.ShieldResult) {
	e.pending.Add(1)
	e.metrics.AddPendingLogs(1)

	go func() {
		defer e.pending.Done()
		defer e.metrics.AddPendingLogs(-1)

		ctx, cancel := context.WithTimeout(context.Background(), e.logTimeout)
		defer cancel()
		e.shieldLog.LogResult(ctx, r)
	}()
}

// CachedResult returns a scored result from the cache, falling back to the store.
// performance.ErrNotFound is returned for unknown ids.
func (e *Engine) CachedResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error) {
	if r, ok := e.cache.Get(ctx, signalID); ok {
		e.metrics.RecordCacheLookup(true)
		return r, nil
	}
	e.metrics.RecordCacheLookup(false)

	r, err := e.repo.GetResult(ctx, signalID)
	if err != nil {
		return nil, err
	}
	e.cache.Put(ctx, r)
	return r, nil
}

// Insight renders the user-facing text of a stored result
func (e *Engine) Insight(ctx context.Context, signalID string) (string, error) {
	r, err := e.CachedResult(ctx, signalID)
	if err != nil {
		return "", err
	}
	return RenderInsight(r)
}

// LogOutcome records a trade outcome; orphan is true when no result exists for it
func (e *Engine) LogOutcome(ctx context.Context, o contracts.Outcome) (bool, error) {
	return e.shieldLog.LogOutcome(ctx, o)
}

// PerformanceReport aggregates outcomes over the last days (0 means the configured window)
func (e *Engine) PerformanceReport(ctx context.Context, days int) (*contracts.PerformanceReport, error) {
	return e.analyzer.Report(ctx, days)
}

// UserStats returns one user's profile over the last days
func (e *Engine) UserStats(ctx context.Context, userID string, days int) (*contracts.UserStats, error) {
	return e.analyzer.UserStats(ctx, userID, days)
}

// Improvements lists under-performing areas over the last days
func (e *Engine) Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error) {
	return e.analyzer.Improvements(ctx, days)
}

// Ping checks the backing store
func (e *Engine) Ping(ctx context.Context) error {
	return e.repo.Ping(ctx)
}

// SweepCache drops expired cache entries
func (e *Engine) SweepCache() int {
	return e.cache.CleanExpired()
}

// CacheStats returns result cache statistics
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// Close waits for pending result writes. The repository is owned by the caller.
func (e *Engine) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Shield engine closed")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending result writes not drained: %w", ctx.Err())
	}
}
