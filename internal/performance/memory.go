package performance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// MemoryRepository keeps everything in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	results  map[string]*contracts.ShieldResult
	outcomes map[outcomeKey]contracts.Outcome
	order    []outcomeKey
}

type outcomeKey struct {
	signalID string
	userID   string
}

// NewMemoryRepository creates an empty in-memory store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		results:  make(map[string]*contracts.ShieldResult),
		outcomes: make(map[outcomeKey]contracts.Outcome),
	}
}

// Migrate is a no-op
func (m *MemoryRepository) Migrate(ctx context.Context) error {
	return nil
}

// SaveResult upserts by signal_id
func (m *MemoryRepository) SaveResult(ctx context.Context, r *contracts.ShieldResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.SignalID] = r.Clone()
	return nil
}

// GetResult returns ErrNotFound for unknown ids
func (m *MemoryRepository) GetResult(ctx context.Context, signalID string) (*contracts.ShieldResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[signalID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// ResultExists reports whether a result is stored for signalID
func (m *MemoryRepository) ResultExists(ctx context.Context, signalID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.results[signalID]
	return ok, nil
}

// ListResults returns results stamped in [since, until), oldest first
func (m *MemoryRepository) ListResults(ctx context.Context, since, until time.Time) ([]contracts.ShieldResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.ShieldResult
	for _, r := range m.results {
		if inWindow(r.Timestamp, since, until) {
			out = append(out, *r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].SignalID < out[j].SignalID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// SaveOutcome replaces any earlier report of the same user for the signal
func (m *MemoryRepository) SaveOutcome(ctx context.Context, o contracts.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := outcomeKey{o.SignalID, o.UserID}
	if _, ok := m.outcomes[key]; !ok {
		m.order = append(m.order, key)
	}
	m.outcomes[key] = o
	return nil
}

// ListOutcomes returns matching outcomes joined with their results
func (m *MemoryRepository) ListOutcomes(ctx context.Context, f OutcomeFilter) ([]OutcomeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []OutcomeRecord
	for _, key := range m.order {
		o := m.outcomes[key]
		if !f.matches(o) {
			continue
		}
		rec := OutcomeRecord{Outcome: o}
		if r, ok := m.results[o.SignalID]; ok {
			rec.adopt(r.Classification, r.ShieldScore, append([]string(nil), r.RiskFactors...))
		} else {
			rec.adopt("", 0, nil)
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// Ping always succeeds
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryRepository) Close() error {
	return nil
}
