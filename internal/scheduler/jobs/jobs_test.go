package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

type fakeSweeper struct{ removed, calls int }

func (f *fakeSweeper) SweepCache() int {
	f.calls++
	return f.removed
}

type fakeEvicter struct {
	idle    time.Duration
	removed int
}

func (f *fakeEvicter) EvictIdle(idle time.Duration) int {
	f.idle = idle
	return f.removed
}

type fakeFinder struct {
	rep  *contracts.ImprovementReport
	err  error
	days int
}

func (f *fakeFinder) Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error) {
	f.days = days
	return f.rep, f.err
}

func TestSchedulesParse(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for _, schedule := range []string{
		NewCacheSweepJob(nil, logger.Nop()).Schedule(),
		NewImprovementReportJob(nil, 0, logger.Nop()).Schedule(),
		NewLimiterSweepJob(nil, 0, logger.Nop()).Schedule(),
	} {
		_, err := parser.Parse(schedule)
		assert.NoError(t, err, schedule)
	}
}

func TestCacheSweepJob(t *testing.T) {
	sw := &fakeSweeper{removed: 3}
	job := NewCacheSweepJob(sw, logger.Nop())

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, sw.calls)
	assert.Equal(t, "cache_sweep", job.Name())
}

func TestLimiterSweepJob(t *testing.T) {
	ev := &fakeEvicter{removed: 2}
	job := NewLimiterSweepJob(ev, 10*time.Minute, logger.Nop())

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 10*time.Minute, ev.idle)
	assert.Equal(t, "limiter_sweep", job.Name())
}

func TestImprovementReportJob(t *testing.T) {
	finder := &fakeFinder{rep: &contracts.ImprovementReport{
		Days: 30,
		Opportunities: []contracts.Improvement{
			{Kind: "classification", Subject: "SHIELD_APPROVED", Message: "SHIELD_APPROVED wins 40% of 20 trades, expected 60%"},
		},
	}}
	job := NewImprovementReportJob(finder, 30, logger.Nop())

	assert.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 30, finder.days)
}

func TestImprovementReportJob_Error(t *testing.T) {
	job := NewImprovementReportJob(&fakeFinder{err: errors.New("db down")}, 0, logger.Nop())
	assert.Error(t, job.Run(context.Background()))
}
