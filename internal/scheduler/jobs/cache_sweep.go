package jobs

import (
	"context"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// CacheSweeper drops expired cache entries
type CacheSweeper interface {
	SweepCache() int
}

// CacheSweepJob removes expired results from the local cache tier
type CacheSweepJob struct {
	sweeper CacheSweeper
	logger  *logger.Logger
}

// NewCacheSweepJob creates a new cache sweep job
func NewCacheSweepJob(sweeper CacheSweeper, log *logger.Logger) *CacheSweepJob {
	return &CacheSweepJob{
		sweeper: sweeper,
		logger:  log,
	}
}

// Name returns the job name
func (j *CacheSweepJob) Name() string {
	return "cache_sweep"
}

// Schedule returns the cron schedule (every minute)
func (j *CacheSweepJob) Schedule() string {
	return "0 * * * * *"
}

// Run executes the sweep
func (j *CacheSweepJob) Run(ctx context.Context) error {
	if removed := j.sweeper.SweepCache(); removed > 0 {
		j.logger.WithField("removed", removed).Info("Cache sweep completed")
	}
	return nil
}
