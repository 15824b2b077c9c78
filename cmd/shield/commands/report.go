package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "성과 리포트",
	Long: `저장된 Shield 결과와 거래 결과로 성과 리포트를 만듭니다.

Example:
  go run ./cmd/shield report --days 30
  go run ./cmd/shield report --days 7 --xlsx weekly.xlsx
  go run ./cmd/shield report --server http://localhost:8089 --json`,
	RunE: runReport,
}

var (
	reportDays   int
	reportXLSX   string
	reportJSON   bool
	reportServer string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportDays, "days", 0, "window in days (default performance.window_days)")
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "also export the report to this .xlsx file")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the raw report as JSON")
	reportCmd.Flags().StringVar(&reportServer, "server", "", "API server base URL")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeFn, err := openAnalytics(ctx, reportServer)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := src.PerformanceReport(ctx, reportDays)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	imp, err := src.Improvements(ctx, reportDays)
	if err != nil {
		return fmt.Errorf("find improvements: %w", err)
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		if err := PrintJSON(out, rep); err != nil {
			return err
		}
	} else {
		printReport(out, rep, imp)
	}

	if reportXLSX != "" {
		if err := writeReportXLSX(reportXLSX, rep, imp); err != nil {
			return err
		}
		PrintSuccess(out, "Exported "+reportXLSX)
	}
	return nil
}

func printReport(w io.Writer, rep *contracts.PerformanceReport, imp *contracts.ImprovementReport) {
	PrintHeader(w, "Shield Performance Report")
	PrintKeyValue(w, "Window", fmt.Sprintf("%s ~ %s", rep.Since.Format("2006-01-02"), rep.Until.Format("2006-01-02")), 14)
	PrintKeyValue(w, "Signals", fmt.Sprintf("%d", rep.TotalSignals), 14)
	PrintKeyValue(w, "Outcomes", fmt.Sprintf("%d (%d orphan)", rep.TotalOutcomes, rep.Orphans), 14)
	PrintKeyValue(w, "Average score", fmt.Sprintf("%.2f", rep.AverageScore), 14)
	PrintKeyValue(w, "Distribution", formatDistribution(rep.Distribution), 14)
	PrintSeparator(w)

	PrintBuckets(w, rep.Overall, rep.Followed, rep.Ignored)
	fmt.Fprintln(w)
	PrintBuckets(w, rep.ByClassification...)
	fmt.Fprintln(w)
	PrintBuckets(w, rep.ByScoreBucket...)

	if imp != nil && len(imp.Opportunities) > 0 {
		fmt.Fprintln(w)
		PrintWarning(w, fmt.Sprintf("%d improvement opportunities", len(imp.Opportunities)))
		for i, o := range imp.Opportunities {
			fmt.Fprintf(w, "   %d. [%s] %s\n", i+1, o.Kind, o.Message)
		}
	}
	PrintSeparator(w)
}

// formatDistribution renders "SHIELD_APPROVED=3 SHIELD_ACTIVE=1 ..." best tier first
func formatDistribution(dist map[string]int) string {
	if len(dist) == 0 {
		return "-"
	}

	parts := make([]string, 0, len(contracts.Classifications))
	for _, c := range contracts.Classifications {
		parts = append(parts, fmt.Sprintf("%s=%d", c, dist[string(c)]))
	}
	return strings.Join(parts, " ")
}
