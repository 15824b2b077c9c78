package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Storage
	StoreDriver string // postgres, sqlite, memory
	Database    DatabaseConfig
	SQLite      SQLiteConfig

	// Redis
	Redis RedisConfig

	// Shield engine
	Shield ShieldConfig

	// API
	API APIConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// SQLiteConfig holds the embedded store location
type SQLiteConfig struct {
	Path string
}

// ShieldConfig holds engine runtime settings.
// Scoring weights live in the YAML file referenced by ConfigPath.
type ShieldConfig struct {
	ConfigPath string
	Version    string
	CacheTTL   time.Duration
	CacheSize  int
	LogTimeout time.Duration

	// PersonalizeTimeout bounds the user-history read done on Analyze
	PersonalizeTimeout time.Duration
}

// APIConfig holds HTTP API settings
type APIConfig struct {
	RateLimit float64 // requests per second per client
	RateBurst int
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: env("PORT", "8089"),
		Env:  env("ENV", "development"),

		StoreDriver: env("STORE_DRIVER", StoreDriverSQLite),
		Database: DatabaseConfig{
			URL:             env("DATABASE_URL", ""),
			MaxConns:        envInt("DB_MAX_CONNS", 10),
			MinConns:        envInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: envDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxConnIdleTime: envDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		SQLite: SQLiteConfig{Path: env("SQLITE_PATH", "data/shield.db")},

		Redis: RedisConfig{
			Host:     env("REDIS_HOST", "localhost"),
			Port:     env("REDIS_PORT", "6379"),
			Password: env("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
			Enabled:  envBool("REDIS_ENABLED", false),
		},

		Shield: ShieldConfig{
			ConfigPath: env("SHIELD_CONFIG_PATH", ""),
			Version:    env("SHIELD_VERSION", "2.0.0"),
			CacheTTL:   envDuration("SHIELD_CACHE_TTL", 5*time.Minute),
			CacheSize:  envInt("SHIELD_CACHE_SIZE", 1000),
			LogTimeout: envDuration("SHIELD_LOG_TIMEOUT", 5*time.Second),

			PersonalizeTimeout: envDuration("SHIELD_PERSONALIZE_TIMEOUT", 250*time.Millisecond),
		},

		API: APIConfig{
			RateLimit: envFloat("API_RATE_LIMIT", 20),
			RateBurst: envInt("API_RATE_BURST", 40),
		},

		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "json"),

		MetricsEnabled: envBool("METRICS_ENABLED", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate reports every invalid setting at once
func (c *Config) validate() error {
	var errs []error

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q must be one of: postgres, sqlite, memory", c.StoreDriver))
	}

	switch c.Env {
	case "development", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("ENV %q must be one of: development, staging, production", c.Env))
	}

	if c.Shield.CacheSize <= 0 {
		errs = append(errs, errors.New("SHIELD_CACHE_SIZE must be > 0"))
	}
	if c.Shield.CacheTTL <= 0 {
		errs = append(errs, errors.New("SHIELD_CACHE_TTL must be > 0"))
	}

	return errors.Join(errs...)
}

// RedisAddr returns host:port of the Redis server
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, c.Redis.Port)
}

// loadEnvFile loads the first .env found next to the working dir or binary.
// Variables already set in the environment win.
func loadEnvFile() {
	candidates := []string{".env"}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, ".env"), filepath.Join(dir, "..", ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// envAs parses key with parse, keeping def when unset or malformed
func envAs[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func env(key, def string) string {
	return envAs(key, def, func(s string) (string, error) { return s, nil })
}

func envInt(key string, def int) int {
	return envAs(key, def, strconv.Atoi)
}

func envFloat(key string, def float64) float64 {
	return envAs(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envBool(key string, def bool) bool {
	return envAs(key, def, strconv.ParseBool)
}

func envDuration(key string, def time.Duration) time.Duration {
	return envAs(key, def, time.ParseDuration)
}
