package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/HydraXdev/HydraX-v2-sub003/pkg/config"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

func postgresConfig(t *testing.T) *config.Config {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	return &config.Config{
		Database: config.DatabaseConfig{
			URL:             url,
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}
}

func TestNewAndMigrate(t *testing.T) {
	db, err := New(postgresConfig(t), logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	require.NoError(t, db.Migrate(ctx))
	// second run must be a no-op
	require.NoError(t, db.Migrate(ctx))
	assert.NoError(t, db.Ping(ctx))
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:      "invalid://url",
			MaxConns: 4,
			MinConns: 1,
		},
	}

	_, err := New(cfg, logger.Nop())
	assert.Error(t, err)
}

func TestNewSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shield.db")

	db, err := NewSQLite(&config.Config{SQLite: config.SQLiteConfig{Path: path}}, logger.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.NoError(t, sqlDB.Ping())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewSQLiteEmptyPath(t *testing.T) {
	_, err := NewSQLite(&config.Config{}, logger.Nop())
	assert.Error(t, err)
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(l), &entry))
		out = append(out, entry)
	}
	return out
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	g := &gormLogger{log: logger.NewWithWriter(&buf, "debug"), level: gormlogger.Warn}
	query := func() (string, int64) { return "SELECT 1", 1 }
	now := time.Now()

	// fast, successful query below Info: nothing
	g.Trace(context.Background(), now, query, nil)
	assert.Zero(t, buf.Len())

	// not-found is an expected miss
	g.Trace(context.Background(), now, query, gorm.ErrRecordNotFound)
	assert.Zero(t, buf.Len())

	g.Trace(context.Background(), now, query, errors.New("disk I/O error"))
	g.Trace(context.Background(), now.Add(-time.Second), query, nil)

	entries := lines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "disk I/O error", entries[0]["error"])
	assert.Equal(t, "SELECT 1", entries[0]["sql"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "Slow SQLite query", entries[1]["message"])

	// Silent drops everything
	buf.Reset()
	g.LogMode(gormlogger.Silent).Trace(context.Background(), now, query, errors.New("boom"))
	assert.Zero(t, buf.Len())
}

func TestPgxLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := pgxLogger(logger.NewWithWriter(&buf, "debug"))

	log(context.Background(), tracelog.LogLevelError, "Query", map[string]interface{}{"sql": "SELECT 1"})
	log(context.Background(), tracelog.LogLevelWarn, "slow", nil)
	log(context.Background(), tracelog.LogLevelInfo, "Query", nil)

	entries := lines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "SELECT 1", entries[0]["sql"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "debug", entries[2]["level"])
}
