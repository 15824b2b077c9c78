package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// slowQuery SQLite 느린 쿼리 기준
const slowQuery = 200 * time.Millisecond

// NewSQLite opens the embedded store used when no Postgres is available.
// Path ":memory:" gives a throwaway database.
func NewSQLite(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	path := cfg.SQLite.Path
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: &gormLogger{log: log.Component("sqlite"), level: gormlogger.Warn},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// gormLogger routes GORM messages to zerolog. Slow queries are warnings,
// everything but ErrRecordNotFound is an error.
type gormLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
}

func (g *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{log: g.log, level: level}
}

func (g *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Debug(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warnf(msg, args...)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Errorf(msg, args...)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormlogger.Error:
		query, rows := fc()
		g.log.WithError(err).WithFields(map[string]interface{}{
			"sql":      query,
			"rows":     rows,
			"duration": elapsed,
		}).Error("SQLite query failed")
	case elapsed > slowQuery && g.level >= gormlogger.Warn:
		query, rows := fc()
		g.log.WithFields(map[string]interface{}{
			"sql":      query,
			"rows":     rows,
			"duration": elapsed,
		}).Warn("Slow SQLite query")
	case g.level >= gormlogger.Info:
		query, rows := fc()
		g.log.WithFields(map[string]interface{}{
			"sql":  query,
			"rows": rows,
		}).Debug("SQLite query")
	}
}
