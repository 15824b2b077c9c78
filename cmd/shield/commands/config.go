package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
)

// configCmd groups scoring-config utilities
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "스코어링 설정 도구",
}

// configCheckCmd validates a scoring YAML and prints its version tag
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "스코어링 YAML 검증",
	Long: `스코어링 YAML을 기본값 위에 적용하고 검증합니다.
알 수 없는 키, 범위를 벗어난 값은 모두 에러입니다.

Example:
  go run ./cmd/shield config check --file configs/shield.yaml
  go run ./cmd/shield config check --dump`,
	RunE: runConfigCheck,
}

var (
	configCheckFile string
	configDump      bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)

	configCheckCmd.Flags().StringVar(&configCheckFile, "file", "", "scoring YAML (default: built-in calibration)")
	configCheckCmd.Flags().BoolVar(&configDump, "dump", false, "print the effective config as JSON")
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := configCheckFile
	if path == "" {
		path = shieldConfig
	}

	out := cmd.OutOrStdout()

	cfg, _, err := shieldconfig.Load(path)
	if err != nil {
		return fmt.Errorf("invalid shield config: %w", err)
	}

	hash, err := shieldconfig.Hash(cfg)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "built-in defaults"
	}
	PrintHeader(out, "Shield Config")
	PrintKeyValue(out, "Source", source, 8)
	PrintKeyValue(out, "Hash", hash, 8)
	PrintSeparator(out)

	if configDump {
		return PrintJSON(out, cfg)
	}
	PrintSuccess(out, "Config is valid")
	return nil
}
