package database

import (
	"context"
	"fmt"
)

// migrations are applied in order; every statement must be idempotent
var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS shield`,
	`CREATE TABLE IF NOT EXISTS shield.results (
		signal_id       TEXT PRIMARY KEY,
		symbol          TEXT NOT NULL,
		direction       TEXT NOT NULL,
		shield_score    NUMERIC(4,1) NOT NULL,
		classification  TEXT NOT NULL,
		confidence      NUMERIC(5,4) NOT NULL DEFAULT 0,
		risk_factors    JSONB NOT NULL DEFAULT '[]',
		quality_factors JSONB NOT NULL DEFAULT '[]',
		payload         JSONB NOT NULL,
		version         TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shield_results_created_at ON shield.results (created_at)`,
	`CREATE TABLE IF NOT EXISTS shield.outcomes (
		id              BIGSERIAL PRIMARY KEY,
		signal_id       TEXT NOT NULL,
		user_id         TEXT NOT NULL DEFAULT '',
		outcome         TEXT NOT NULL,
		pips_result     NUMERIC(10,2) NOT NULL DEFAULT 0,
		followed_shield BOOLEAN NOT NULL DEFAULT FALSE,
		orphan          BOOLEAN NOT NULL DEFAULT FALSE,
		recorded_at     TIMESTAMPTZ NOT NULL,
		UNIQUE (signal_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shield_outcomes_user ON shield.outcomes (user_id, recorded_at)`,
}

// Migrate creates the shield schema and tables
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
