package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/api/handlers"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/performance"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scenario"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shield"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shieldconfig"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/metrics"
)

func newTestRouter(t *testing.T, limiter Limiter) (http.Handler, *shield.Engine) {
	t.Helper()
	cfg := shieldconfig.Default()
	log := logger.Nop()

	engine, err := shield.New(cfg, shield.DefaultAnalyzers(cfg, log, nil), performance.NewMemoryRepository(),
		shield.Options{Version: "2.0.0", LogTimeout: time.Second}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close(context.Background()) })

	router := NewRouter(RouterDeps{
		Shield:  handlers.NewShieldHandler(engine, log),
		Metrics: metrics.New().Handler(),
		Limiter: limiter,
		Checks:  map[string]HealthChecker{"store": engine},
		Version: engine.Version(),
	}, log)
	return router, engine
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, engine := newTestRouter(t, nil)

	rec := do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, engine.Version(), body["version"])
	assert.Equal(t, "ok", body["store"])
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealth_StoreDown(t *testing.T) {
	router := NewRouter(RouterDeps{
		Shield: handlers.NewShieldHandler(nil, logger.Nop()),
		Checks: map[string]HealthChecker{"store": downStore{}},
	}, logger.Nop())

	rec := do(t, router, "GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "connection refused", body["store"])
}

func TestAnalyzeAndLookup(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	s := scenario.TrendPullback()

	rec := do(t, router, "POST", "/api/shield/analyze", handlers.AnalyzeRequest{
		Signal:   s.Signal,
		Snapshot: s.Snapshot,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result contracts.ShieldResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, contracts.ClassApproved, result.Classification)
	assert.GreaterOrEqual(t, result.ShieldScore, 8.0)

	rec = do(t, router, "GET", "/api/shield/"+s.Signal.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cached contracts.ShieldResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cached))
	assert.Equal(t, result.ShieldScore, cached.ShieldScore)

	rec = do(t, router, "GET", "/api/shield/"+s.Signal.ID+"/insight", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var insight map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insight))
	assert.Contains(t, insight["insight"], "[APPROVED]")
}

func TestAnalyzeValidation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	tests := []struct {
		name      string
		body      interface{}
		wantField string
	}{
		{"malformed json", "{not json", ""},
		{"bad direction", map[string]interface{}{
			"signal": map[string]interface{}{"symbol": "EURUSD", "direction": "UP", "entry": 1.08},
		}, "signal.direction"},
		{"missing symbol", map[string]interface{}{
			"signal": map[string]interface{}{"direction": "BUY", "entry": 1.08},
		}, "signal.symbol"},
		{"zero entry", map[string]interface{}{
			"signal": map[string]interface{}{"symbol": "EURUSD", "direction": "BUY"},
		}, "signal.entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/api/shield/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			if tt.wantField != "" {
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
			}
		})
	}
}

func TestGetResultNotFound(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	assert.Equal(t, http.StatusNotFound, do(t, router, "GET", "/api/shield/unknown", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, "GET", "/api/shield/unknown/insight", nil).Code)
}

func TestOutcomesAndPerformance(t *testing.T) {
	router, engine := newTestRouter(t, nil)
	s := scenario.TrendPullback()
	ctx := context.Background()

	engine.Analyze(ctx, s.Signal, s.Snapshot, "")
	require.NoError(t, engine.Close(ctx))

	rec := do(t, router, "POST", "/api/outcomes", contracts.Outcome{
		SignalID: s.Signal.ID, UserID: "trader-7", Outcome: contracts.OutcomeWin, PipsResult: 60, FollowedShield: true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"orphan":false`)

	rec = do(t, router, "POST", "/api/outcomes", map[string]interface{}{
		"signal_id": "ghost", "user_id": "trader-7", "outcome": "LOSS", "orphan": false,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"orphan":true`)

	rec = do(t, router, "POST", "/api/outcomes", map[string]interface{}{"signal_id": "x", "outcome": "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, "GET", "/api/performance?days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rep contracts.PerformanceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 1, rep.Orphans)
	assert.Equal(t, 1, rep.Overall.Wins)

	rec = do(t, router, "GET", "/api/users/trader-7/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats contracts.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalOutcomes)
	assert.Equal(t, 0.5, stats.TrustScore)

	rec = do(t, router, "GET", "/api/performance/improvements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"opportunities":[]`)
}

func TestDaysParamValidation(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	for _, q := range []string{"abc", "0", "-3", "1000"} {
		rec := do(t, router, "GET", "/api/performance?days="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, "GET", "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, NewLocalLimiter(0.001, 1))

	first := do(t, router, "GET", "/api/performance", nil)
	second := do(t, router, "GET", "/api/performance", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	// health is never limited
	assert.Equal(t, http.StatusOK, do(t, router, "GET", "/health", nil).Code)
}

func TestLocalLimiter_EvictIdle(t *testing.T) {
	now := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	l := NewLocalLimiter(1, 1)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, err := l.Allow(ctx, ip)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	now = now.Add(8 * time.Minute)
	_, _ = l.Allow(ctx, "10.0.0.2")

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 2, l.EvictIdle(10*time.Minute))
	assert.Equal(t, 1, l.Clients())

	// the survivor keeps its bucket state
	ok, _ := l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.False(t, ok)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	router, _ := newTestRouter(t, brokenLimiter{})
	assert.Equal(t, http.StatusOK, do(t, router, "GET", "/api/performance", nil).Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Internal server error"))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.7:52311"
	assert.Equal(t, "10.0.0.7", clientKey(req))

	req.RemoteAddr = "unix"
	assert.Equal(t, "unix", clientKey(req))
}
