package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// userStatsCmd represents the user-stats command
var userStatsCmd = &cobra.Command{
	Use:   "user-stats <user_id>",
	Short: "사용자별 성과/신뢰도",
	Args:  cobra.ExactArgs(1),
	Example: `  go run ./cmd/shield user-stats trader-42 --days 30
  go run ./cmd/shield user-stats trader-42 --server http://localhost:8089`,
	RunE: runUserStats,
}

// improvementsCmd represents the improvements command
var improvementsCmd = &cobra.Command{
	Use:     "improvements",
	Short:   "기대 승률에 못 미치는 영역",
	Example: `  go run ./cmd/shield improvements --days 90`,
	RunE:    runImprovements,
}

var (
	statsDays   int
	statsJSON   bool
	statsServer string
)

func init() {
	rootCmd.AddCommand(userStatsCmd)
	rootCmd.AddCommand(improvementsCmd)

	for _, c := range []*cobra.Command{userStatsCmd, improvementsCmd} {
		c.Flags().IntVar(&statsDays, "days", 0, "window in days (default performance.window_days)")
		c.Flags().BoolVar(&statsJSON, "json", false, "print raw JSON")
		c.Flags().StringVar(&statsServer, "server", "", "API server base URL")
	}
}

func runUserStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeFn, err := openAnalytics(ctx, statsServer)
	if err != nil {
		return err
	}
	defer closeFn()

	st, err := src.UserStats(ctx, args[0], statsDays)
	if err != nil {
		return fmt.Errorf("user stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		return PrintJSON(out, st)
	}

	PrintHeader(out, "User "+st.UserID)
	PrintKeyValue(out, "Window", fmt.Sprintf("%d days", st.Days), 12)
	PrintKeyValue(out, "Outcomes", fmt.Sprintf("%d", st.TotalOutcomes), 12)
	PrintKeyValue(out, "Compliance", fmt.Sprintf("%.0f%%", st.Compliance*100), 12)
	PrintKeyValue(out, "Trust", fmt.Sprintf("%.0f%%", st.TrustScore*100), 12)
	PrintSeparator(out)
	PrintBuckets(out, st.Overall, st.Followed, st.Ignored)
	fmt.Fprintln(out)
	PrintBuckets(out, st.ByClassification...)
	return nil
}

func runImprovements(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	src, closeFn, err := openAnalytics(ctx, statsServer)
	if err != nil {
		return err
	}
	defer closeFn()

	rep, err := src.Improvements(ctx, statsDays)
	if err != nil {
		return fmt.Errorf("improvements: %w", err)
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		return PrintJSON(out, rep)
	}

	PrintHeader(out, fmt.Sprintf("Improvement Opportunities (%d days)", rep.Days))
	if len(rep.Opportunities) == 0 {
		PrintSuccess(out, "Every tier meets its expected win rate")
		return nil
	}

	rows := make([][]string, 0, len(rep.Opportunities))
	for _, o := range rep.Opportunities {
		rows = append(rows, []string{
			o.Kind,
			o.Subject,
			fmt.Sprintf("%d", o.Samples),
			fmt.Sprintf("%.0f%%", o.Observed*100),
			fmt.Sprintf("%.0f%%", o.Expected*100),
		})
	}
	PrintTable(out, []string{"Kind", "Subject", "Samples", "Observed", "Expected"}, []int{14, 32, 8, 9, 9}, rows)
	return nil
}
