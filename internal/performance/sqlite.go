package performance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

type resultRow struct {
	SignalID       string    `gorm:"column:signal_id;primaryKey"`
	Symbol         string    `gorm:"column:symbol;not null"`
	Direction      string    `gorm:"column:direction;not null"`
	ShieldScore    float64   `gorm:"column:shield_score;not null"`
	Classification string    `gorm:"column:classification;not null;index"`
	Confidence     float64   `gorm:"column:confidence"`
	RiskFactors    string    `gorm:"column:risk_factors"`
	QualityFactors string    `gorm:"column:quality_factors"`
	Payload        string    `gorm:"column:payload;not null"`
	Version        string    `gorm:"column:version"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
}

func (resultRow) TableName() string { return "shield_results" }

type outcomeRow struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement"`
	SignalID       string    `gorm:"column:signal_id;not null;uniqueIndex:idx_outcome_signal_user"`
	UserID         string    `gorm:"column:user_id;not null;uniqueIndex:idx_outcome_signal_user;index:idx_outcome_user"`
	Outcome        string    `gorm:"column:outcome;not null"`
	PipsResult     float64   `gorm:"column:pips_result"`
	FollowedShield bool      `gorm:"column:followed_shield"`
	Orphan         bool      `gorm:"column:orphan"`
	RecordedAt     time.Time `gorm:"column:recorded_at;index"`
}

func (outcomeRow) TableName() string { return "shield_outcomes" }

// SQLiteRepository is the embedded single-file store
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository wraps an open GORM handle
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the tables
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&resultRow{}, &outcomeRow{}); err != nil {
		return fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return nil
}

// SaveResult upserts by signal_id
func (r *SQLiteRepository) SaveResult(ctx context.Context, res *contracts.ShieldResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	risks, _ := json.Marshal(nonNil(res.RiskFactors))
	qualities, _ := json.Marshal(nonNil(res.QualityFactors))

	row := resultRow{
		SignalID:       res.SignalID,
		Symbol:         res.Symbol,
		Direction:      string(res.Direction),
		ShieldScore:    res.ShieldScore,
		Classification: string(res.Classification),
		Confidence:     res.Confidence,
		RiskFactors:    string(risks),
		QualityFactors: string(qualities),
		Payload:        string(payload),
		Version:        res.Version,
		CreatedAt:      res.Timestamp.UTC(),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signal_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// GetResult returns ErrNotFound for unknown ids
func (r *SQLiteRepository) GetResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error) {
	var row resultRow
	err := r.db.WithContext(ctx).Where("signal_id = ?", signalID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return decodeResult(row)
}

// ResultExists reports whether a result is stored for signalID
func (r *SQLiteRepository) ResultExists(ctx context.Context, signalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&resultRow{}).Where("signal_id = ?", signalID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check result: %w", err)
	}
	return count > 0, nil
}

// ListResults returns results stamped in [since, until), oldest first
func (r *SQLiteRepository) ListResults(ctx context.Context, since, until time.Time) ([]contracts.ShieldResult, error) {
	q := r.db.WithContext(ctx).Order("created_at, signal_id")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since.UTC())
	}
	if !until.IsZero() {
		q = q.Where("created_at < ?", until.UTC())
	}

	var rows []resultRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	out := make([]contracts.ShieldResult, 0, len(rows))
	for _, row := range rows {
		res, err := decodeResult(row)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}

// SaveOutcome replaces any earlier report of the same user for the signal
func (r *SQLiteRepository) SaveOutcome(ctx context.Context, o contracts.Outcome) error {
	row := outcomeRow{
		SignalID:       o.SignalID,
		UserID:         o.UserID,
		Outcome:        string(o.Outcome),
		PipsResult:     o.PipsResult,
		FollowedShield: o.FollowedShield,
		Orphan:         o.Orphan,
		RecordedAt:     o.RecordedAt.UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "signal_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"outcome", "pips_result", "followed_shield", "orphan", "recorded_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns matching outcomes joined with their results
func (r *SQLiteRepository) ListOutcomes(ctx context.Context, f OutcomeFilter) ([]OutcomeRecord, error) {
	q := r.db.WithContext(ctx).Order("recorded_at, id")
	if !f.Since.IsZero() {
		q = q.Where("recorded_at >= ?", f.Since.UTC())
	}
	if !f.Until.IsZero() {
		q = q.Where("recorded_at < ?", f.Until.UTC())
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}

	var rows []outcomeRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.SignalID)
	}
	var results []resultRow
	if err := r.db.WithContext(ctx).
		Select("signal_id", "shield_score", "classification", "risk_factors").
		Where("signal_id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to query outcome results: %w", err)
	}
	bySignal := make(map[string]resultRow, len(results))
	for _, res := range results {
		bySignal[res.SignalID] = res
	}

	out := make([]OutcomeRecord, 0, len(rows))
	for _, row := range rows {
		rec := OutcomeRecord{Outcome: contracts.Outcome{
			SignalID:       row.SignalID,
			UserID:         row.UserID,
			Outcome:        contracts.OutcomeType(row.Outcome),
			PipsResult:     row.PipsResult,
			FollowedShield: row.FollowedShield,
			RecordedAt:     row.RecordedAt,
		}}
		res, ok := bySignal[row.SignalID]
		if !ok {
			rec.adopt("", 0, nil)
			out = append(out, rec)
			continue
		}
		var factors []string
		if res.RiskFactors != "" {
			if err := json.Unmarshal([]byte(res.RiskFactors), &factors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
			}
		}
		rec.adopt(contracts.Classification(res.Classification), res.ShieldScore, factors)
		out = append(out, rec)
	}
	return out, nil
}

// Ping checks the underlying handle
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying handle
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	return sqlDB.Close()
}

func decodeResult(row resultRow) (*contracts.ShieldResult, error) {
	var res contracts.ShieldResult
	if err := json.Unmarshal([]byte(row.Payload), &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &res, nil
}
