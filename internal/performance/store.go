package performance

import (
	"context"
	"fmt"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/database"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// Open selects the repository backend from config and migrates it
// ⭐ SSOT: 저장소 선택은 여기서만
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Repository, error) {
	var repo Repository

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.New(cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		repo = NewPostgresRepository(db)
	case config.StoreDriverSQLite:
		db, err := database.NewSQLite(cfg, log)
		if err != nil {
			return nil, err
		}
		repo = NewSQLiteRepository(db)
	case config.StoreDriverMemory, "":
		repo = NewMemoryRepository()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"driver": cfg.StoreDriver,
	}).Info("Shield store ready")
	return repo, nil
}
