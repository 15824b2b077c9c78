package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile      string
	shieldConfig string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shield",
	Short: "Signal Shield - 시그널 품질 평가 엔진",
	Long: `Signal Shield Unified CLI

트레이딩 시그널을 시장 구조/레짐/유동성/멀티 타임프레임 기준으로
0-10 점수로 평가하고, 결과와 실제 성과를 추적합니다.

Usage:
  go run ./cmd/shield [command]

Examples:
  go run ./cmd/shield serve
  go run ./cmd/shield analyze --demo trend-pullback
  go run ./cmd/shield report --days 30 --xlsx report.xlsx
  go run ./cmd/shield config check --file shield.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file loaded before the environment (default is .env)")
	rootCmd.PersistentFlags().StringVar(&shieldConfig, "shield-config", "", "scoring YAML (overrides SHIELD_CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
