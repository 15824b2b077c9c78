package shieldconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8.0, cfg.Thresholds.Approved)
	assert.Equal(t, 5.0, cfg.Scoring.Baseline)
	assert.Equal(t, -2.5, cfg.Scoring.Penalties.HighTrap)
	assert.Equal(t, []float64{10, 20, 30, 50}, cfg.Liquidity.ClusterPips.Major)
	assert.Equal(t, -3, cfg.Liquidity.SweepPoints)
	assert.Equal(t, 3, cfg.Timeframe.MinAligned.Trend)
	require.NoError(t, Validate(cfg))
}

func TestClassify(t *testing.T) {
	th := Default().Thresholds
	tests := []struct {
		score float64
		want  contracts.Classification
	}{
		{10, contracts.ClassApproved},
		{8.0, contracts.ClassApproved},
		{7.9, contracts.ClassActive},
		{6.0, contracts.ClassActive},
		{5.9, contracts.ClassVolatilityZone},
		{4.0, contracts.ClassVolatilityZone},
		{3.9, contracts.ClassUnverified},
		{0, contracts.ClassUnverified},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Classify(tt.score), "score %.1f", tt.score)
	}
}

func TestTrapBuckets(t *testing.T) {
	b := Default().Inspector.Buckets
	assert.Equal(t, contracts.RiskHigh, b.Bucket(6))
	assert.Equal(t, contracts.RiskHigh, b.Bucket(5))
	assert.Equal(t, contracts.RiskMedium, b.Bucket(3))
	assert.Equal(t, contracts.RiskLow, b.Bucket(1))
	assert.Equal(t, contracts.RiskMinimal, b.Bucket(0))
	assert.Equal(t, contracts.RiskMinimal, b.Bucket(-3))
}

func TestParseOverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse([]byte(`
thresholds:
  approved: 8.5
scoring:
  bonuses:
    post_sweep: 1.5
`))
	require.NoError(t, err)

	assert.Equal(t, 8.5, cfg.Thresholds.Approved)
	assert.Equal(t, 6.0, cfg.Thresholds.Active)
	assert.Equal(t, 1.5, cfg.Scoring.Bonuses.PostSweep)
	assert.Equal(t, 1.5, cfg.Scoring.Bonuses.ExcellentAlignment)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("thresholds:\n  aproved: 8\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"thresholds out of order", func(c *Config) { c.Thresholds.Active = 9 }, "thresholds"},
		{"buckets out of order", func(c *Config) { c.Liquidity.Buckets.Medium = 7 }, "liquidity.buckets"},
		{"positive sweep points", func(c *Config) { c.Liquidity.SweepPoints = 1 }, "liquidity.sweep_points"},
		{"fast >= slow", func(c *Config) { c.Regime.FastPeriod = 30 }, "regime.fast_period"},
		{"empty cluster table", func(c *Config) { c.Liquidity.ClusterPips.JPY = nil }, "liquidity.cluster_pips.jpy"},
		{"rsi bands", func(c *Config) { c.Timeframe.RSIBearish = 60 }, "timeframe.rsi_bearish"},
		{"window", func(c *Config) { c.Performance.WindowDays = 0 }, "performance.window_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, _ := Hash(Default())
	assert.Equal(t, a, b)

	changed := Default()
	changed.Scoring.Baseline = 4.5
	c, _ := Hash(changed)
	assert.NotEqual(t, a, c)

	tag, err := VersionTag("2.0.0", Default())
	require.NoError(t, err)
	assert.Equal(t, "2.0.0+"+a[:8], tag)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shield.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeframe:\n  min_aligned:\n    trend: 4\n"), 0o644))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, 4, cfg.Timeframe.MinAligned.Trend)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cfg, raw, err = Load("")
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Equal(t, 8.0, cfg.Thresholds.Approved)
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	path := "../../config/shield.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, _, err := Load(path)
	require.NoError(t, err)

	shipped, _ := Hash(cfg)
	builtin, _ := Hash(Default())
	assert.Equal(t, builtin, shipped)
}
