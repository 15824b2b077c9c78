package commands

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/httputil"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// analyticsSource is implemented by the local engine and the remote API
type analyticsSource interface {
	PerformanceReport(ctx context.Context, days int) (*contracts.PerformanceReport, error)
	UserStats(ctx context.Context, userID string, days int) (*contracts.UserStats, error)
	Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error)
}

// openAnalytics returns the API client when server is set, the local engine otherwise
func openAnalytics(ctx context.Context, server string) (analyticsSource, func(), error) {
	if server != "" {
		client := httputil.New(server, logger.Nop()).WithTimeout(30 * time.Second)
		return &remoteAnalytics{client: client}, func() {}, nil
	}

	rt, err := bootstrap(ctx, engineSetup{})
	if err != nil {
		return nil, nil, err
	}
	return rt.engine, func() { rt.Close(context.Background()) }, nil
}

// remoteAnalytics reads analytics over the REST API
type remoteAnalytics struct {
	client *httputil.Client
}

func daysQuery(days int) string {
	if days <= 0 {
		return ""
	}
	return fmt.Sprintf("?days=%d", days)
}

func (r *remoteAnalytics) PerformanceReport(ctx context.Context, days int) (*contracts.PerformanceReport, error) {
	var rep contracts.PerformanceReport
	if err := r.client.GetJSON(ctx, "/api/performance"+daysQuery(days), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *remoteAnalytics) UserStats(ctx context.Context, userID string, days int) (*contracts.UserStats, error) {
	var st contracts.UserStats
	if err := r.client.GetJSON(ctx, "/api/users/"+url.PathEscape(userID)+"/stats"+daysQuery(days), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *remoteAnalytics) Improvements(ctx context.Context, days int) (*contracts.ImprovementReport, error) {
	var rep contracts.ImprovementReport
	if err := r.client.GetJSON(ctx, "/api/performance/improvements"+daysQuery(days), &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}
