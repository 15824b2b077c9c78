package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/database"
)

// PostgresRepository stores results in the shield schema
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a Postgres-backed repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the schema and tables
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	return r.db.Migrate(ctx)
}

// SaveResult upserts by signal_id
func (r *PostgresRepository) SaveResult(ctx context.Context, res *contracts.ShieldResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	risks, err := json.Marshal(nonNil(res.RiskFactors))
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}
	qualities, err := json.Marshal(nonNil(res.QualityFactors))
	if err != nil {
		return fmt.Errorf("failed to marshal quality factors: %w", err)
	}

	query := `
		INSERT INTO shield.results (
			signal_id, symbol, direction, shield_score, classification,
			confidence, risk_factors, quality_factors, payload, version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (signal_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			direction = EXCLUDED.direction,
			shield_score = EXCLUDED.shield_score,
			classification = EXCLUDED.classification,
			confidence = EXCLUDED.confidence,
			risk_factors = EXCLUDED.risk_factors,
			quality_factors = EXCLUDED.quality_factors,
			payload = EXCLUDED.payload,
			version = EXCLUDED.version,
			created_at = EXCLUDED.created_at
	`

	_, err = r.db.Pool.Exec(ctx, query,
		res.SignalID, res.Symbol, string(res.Direction), res.ShieldScore, string(res.Classification),
		res.Confidence, risks, qualities, payload, res.Version, res.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// GetResult returns ErrNotFound for unknown ids
func (r *PostgresRepository) GetResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT payload FROM shield.results WHERE signal_id = $1`, signalID,
	).Scan(&payload)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var res contracts.ShieldResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &res, nil
}

// ResultExists reports whether a result is stored for signalID
func (r *PostgresRepository) ResultExists(ctx context.Context, signalID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM shield.results WHERE signal_id = $1)`, signalID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check result: %w", err)
	}
	return exists, nil
}

// ListResults returns results stamped in [since, until), oldest first
func (r *PostgresRepository) ListResults(ctx context.Context, since, until time.Time) ([]contracts.ShieldResult, error) {
	if until.IsZero() {
		until = time.Now().UTC().Add(time.Hour)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT payload
		FROM shield.results
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, signal_id
	`, since, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var out []contracts.ShieldResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var res contracts.ShieldResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return out, nil
}

// SaveOutcome replaces any earlier report of the same user for the signal
func (r *PostgresRepository) SaveOutcome(ctx context.Context, o contracts.Outcome) error {
	query := `
		INSERT INTO shield.outcomes (
			signal_id, user_id, outcome, pips_result, followed_shield, orphan, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (signal_id, user_id) DO UPDATE SET
			outcome = EXCLUDED.outcome,
			pips_result = EXCLUDED.pips_result,
			followed_shield = EXCLUDED.followed_shield,
			orphan = EXCLUDED.orphan,
			recorded_at = EXCLUDED.recorded_at
	`

	_, err := r.db.Pool.Exec(ctx, query,
		o.SignalID, o.UserID, string(o.Outcome), o.PipsResult, o.FollowedShield, o.Orphan, o.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns matching outcomes joined with their results
func (r *PostgresRepository) ListOutcomes(ctx context.Context, f OutcomeFilter) ([]OutcomeRecord, error) {
	until := f.Until
	if until.IsZero() {
		until = time.Now().UTC().Add(time.Hour)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT o.signal_id, o.user_id, o.outcome, o.pips_result::float8, o.followed_shield,
		       o.recorded_at,
		       COALESCE(r.classification, ''), COALESCE(r.shield_score, 0)::float8,
		       COALESCE(r.risk_factors, '[]'::jsonb)
		FROM shield.outcomes o
		LEFT JOIN shield.results r ON r.signal_id = o.signal_id
		WHERE o.recorded_at >= $1 AND o.recorded_at < $2
		  AND ($3 = '' OR o.user_id = $3)
		ORDER BY o.recorded_at, o.id
	`, f.Since, until, f.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var out []OutcomeRecord
	for rows.Next() {
		var rec OutcomeRecord
		var outcome, class string
		var score float64
		var risks []byte
		if err := rows.Scan(
			&rec.SignalID, &rec.UserID, &outcome, &rec.PipsResult, &rec.FollowedShield,
			&rec.RecordedAt, &class, &score, &risks,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		rec.Outcome.Outcome = contracts.OutcomeType(outcome)
		var factors []string
		if err := json.Unmarshal(risks, &factors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
		}
		rec.adopt(contracts.Classification(class), score, factors)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}
	return out, nil
}

// Ping checks the pool
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close releases the pool
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
