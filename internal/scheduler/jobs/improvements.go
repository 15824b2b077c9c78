package jobs

import (
	"context"
	"fmt"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// ImprovementFinder produces the improvement-opportunities report
type ImprovementFinder interface {
	Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error)
}

// ImprovementReportJob logs under-performing areas once a day
type ImprovementReportJob struct {
	finder ImprovementFinder
	days   int
	logger *logger.Logger
}

// NewImprovementReportJob creates a new improvement report job. days 0 uses the configured window.
func NewImprovementReportJob(finder ImprovementFinder, days int, log *logger.Logger) *ImprovementReportJob {
	return &ImprovementReportJob{
		finder: finder,
		days:   days,
		logger: log,
	}
}

// Name returns the job name
func (j *ImprovementReportJob) Name() string {
	return "improvement_report"
}

// Schedule returns the cron schedule (06:00 UTC daily)
func (j *ImprovementReportJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run builds the report and logs every opportunity
func (j *ImprovementReportJob) Run(ctx context.Context) error {
	rep, err := j.finder.Improvements(ctx, j.days)
	if err != nil {
		return fmt.Errorf("build improvements: %w", err)
	}

	for _, o := range rep.Opportunities {
		j.logger.WithFields(map[string]interface{}{
			"kind":     o.Kind,
			"subject":  o.Subject,
			"samples":  o.Samples,
			"observed": o.Observed,
			"expected": o.Expected,
		}).Warn(o.Message)
	}

	j.logger.WithFields(map[string]interface{}{
		"days":          rep.Days,
		"opportunities": len(rep.Opportunities),
	}).Info("Improvement report completed")
	return nil
}
