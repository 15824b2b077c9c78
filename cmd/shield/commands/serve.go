package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/api"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/api/handlers"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/cache"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scheduler"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scheduler/jobs"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/metrics"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 시작",
	Long: `Shield REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 캐시 정리 / 개선점 리포트 스케줄러 실행
- Redis 활성화 시 L2 캐시와 분산 rate limit 사용

Endpoints:
  GET  /health                          - Health check
  GET  /metrics                         - Prometheus metrics
  POST /api/shield/analyze              - 시그널 평가
  GET  /api/shield/{signal_id}          - 평가 결과 조회
  GET  /api/shield/{signal_id}/insight  - 인사이트 텍스트
  POST /api/outcomes                    - 거래 결과 기록
  GET  /api/performance                 - 성과 리포트
  GET  /api/performance/improvements    - 개선점
  GET  /api/users/{user_id}/stats       - 사용자 통계

Example:
  go run ./cmd/shield serve
  go run ./cmd/shield serve --port 9000`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Signal Shield API Server ===")

	// 1. Load config (Redis must be known before the engine is built)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// 2. Connect to Redis (disabled config yields a no-op client)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	var l2 cache.SecondTier
	if redisClient.Enabled() {
		l2 = redis.NewCache(redisClient, redis.KeyPrefix)
	}

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	// 3. Build engine and store
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt, err := bootstrap(ctx, engineSetup{l2: l2, metrics: rec})
	if err != nil {
		return err
	}
	// pending result writes are bounded by SHIELD_LOG_TIMEOUT each
	defer rt.Close(context.Background())
	if servePort != "" {
		rt.cfg.Port = servePort
	}
	log := rt.log

	log.WithFields(map[string]interface{}{
		"port":    rt.cfg.Port,
		"env":     rt.cfg.Env,
		"redis":   redisClient.Enabled(),
		"metrics": rec != nil,
	}).Info("Initializing API server")

	// 4. Scheduled maintenance
	sched := scheduler.New(log, scheduler.WithRetry(2, 10*time.Second))
	if err := sched.AddJob(jobs.NewCacheSweepJob(rt.engine, log)); err != nil {
		return fmt.Errorf("register cache sweep: %w", err)
	}
	if err := sched.AddJob(jobs.NewImprovementReportJob(rt.engine, rt.shieldCfg.Performance.WindowDays, log)); err != nil {
		return fmt.Errorf("register improvement report: %w", err)
	}
	limiter := newLimiter(rt.cfg, redisClient)
	if local, ok := limiter.(*api.LocalLimiter); ok {
		if err := sched.AddJob(jobs.NewLimiterSweepJob(local, limiterIdle, log)); err != nil {
			return fmt.Errorf("register limiter sweep: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// 5. Router and server
	deps := api.RouterDeps{
		Shield:  handlers.NewShieldHandler(rt.engine, log),
		Limiter: limiter,
		Checks: map[string]api.HealthChecker{
			"store": rt.engine,
			"redis": redisClient,
		},
		Version: rt.engine.Version(),
	}
	if rec != nil {
		deps.Metrics = rec.Handler()
	}
	server := api.New(rt.cfg, log, api.NewRouter(deps, log))

	// 6. Start server with graceful shutdown
	if err := server.Listen(); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://%s (shield %s)\n", server.Addr(), rt.engine.Version())
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a failed listener
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// limiterIdle is how long a client may stay quiet before its bucket is dropped
const limiterIdle = 10 * time.Minute

// newLimiter prefers the shared Redis window over the per-process bucket
func newLimiter(cfg *config.Config, client *redis.Client) api.Limiter {
	if cfg.API.RateLimit <= 0 {
		return nil
	}
	if client.Enabled() {
		perMinute := int(cfg.API.RateLimit * 60)
		return api.NewRedisLimiter(redis.NewRateLimiter(client, redis.KeyPrefix), perMinute, time.Minute)
	}
	return api.NewLocalLimiter(cfg.API.RateLimit, cfg.API.RateBurst)
}
