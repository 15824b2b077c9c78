package jobs

import (
	"context"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// IdleEvicter forgets clients that stopped calling
type IdleEvicter interface {
	EvictIdle(idle time.Duration) int
}

// LimiterSweepJob keeps the per-process rate limiter from growing with
// every remote address it has ever seen
type LimiterSweepJob struct {
	evicter IdleEvicter
	idle    time.Duration
	logger  *logger.Logger
}

// NewLimiterSweepJob drops clients idle for longer than idle
func NewLimiterSweepJob(evicter IdleEvicter, idle time.Duration, log *logger.Logger) *LimiterSweepJob {
	return &LimiterSweepJob{
		evicter: evicter,
		idle:    idle,
		logger:  log,
	}
}

func (j *LimiterSweepJob) Name() string {
	return "limiter_sweep"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *LimiterSweepJob) Schedule() string {
	return "30 */5 * * * *"
}

func (j *LimiterSweepJob) Run(ctx context.Context) error {
	if removed := j.evicter.EvictIdle(j.idle); removed > 0 {
		j.logger.WithField("removed", removed).Debug("Idle rate-limit clients evicted")
	}
	return nil
}
