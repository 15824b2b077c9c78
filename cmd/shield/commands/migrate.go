package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/performance"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "저장소 스키마 생성/갱신",
	Long: `STORE_DRIVER 에 맞는 스키마를 생성합니다 (postgres, sqlite).
이미 존재하는 테이블은 그대로 둡니다.

Example:
  STORE_DRIVER=postgres DATABASE_URL=postgres://... go run ./cmd/shield migrate`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Open runs the migration for the configured driver
	repo, err := performance.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	PrintSuccess(cmd.OutOrStdout(), "Store ready ("+cfg.StoreDriver+")")
	return nil
}
