package scheduler

import (
	"context"
	"time"
)

// Job is a maintenance task run on a cron schedule
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run must honor ctx; it is cancelled on Stop or when the job timeout passes
	Run(ctx context.Context) error

	// Schedule is a cron expression with a seconds field, evaluated in UTC.
	// Examples: "0 * * * * *" (every minute), "@daily"
	Schedule() string
}

// JobResult is the outcome of one run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// maxHistory 잡별 보관 결과 수
const maxHistory = 100

// runLog keeps the last maxHistory results plus lifetime counters
type runLog struct {
	recent      []JobResult
	runs        int
	failures    int
	lastSuccess time.Time
	lastFailure time.Time
}

func (l *runLog) record(r JobResult) {
	l.recent = append(l.recent, r)
	if len(l.recent) > maxHistory {
		l.recent = append(l.recent[:0:0], l.recent[len(l.recent)-maxHistory:]...)
	}

	l.runs++
	if r.Success {
		l.lastSuccess = r.StartTime
	} else {
		l.failures++
		l.lastFailure = r.StartTime
	}
}

func (l *runLog) stats(name, schedule string) JobStats {
	st := JobStats{
		JobName:      name,
		Schedule:     schedule,
		TotalRuns:    l.runs,
		SuccessCount: l.runs - l.failures,
		FailureCount: l.failures,
	}
	if l.runs > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(l.runs)
		last := l.recent[len(l.recent)-1].StartTime
		st.LastRun = &last
	}
	if !l.lastSuccess.IsZero() {
		t := l.lastSuccess
		st.LastSuccess = &t
	}
	if !l.lastFailure.IsZero() {
		t := l.lastFailure
		st.LastFailure = &t
	}
	return st
}

// JobStats summarizes every run of a job since it was registered
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}
