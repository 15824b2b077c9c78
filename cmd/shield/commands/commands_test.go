package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scenario"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shield"
)

func TestBuildAnalyzeRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"signal": {"id": "sig-9", "symbol": "GBPUSD", "direction": "SELL", "entry": 1.27, "stop_loss": 1.275, "take_profit": 1.26},
		"user_id": "u1"
	}`), 0o644))

	tests := []struct {
		name    string
		file    string
		demo    string
		wantErr string
		wantID  string
	}{
		{name: "demo", demo: "trend-pullback", wantID: scenario.TrendPullback().Signal.ID},
		{name: "file", file: path, wantID: "sig-9"},
		{name: "unknown demo", demo: "nope", wantErr: "unknown scenario"},
		{name: "both", file: path, demo: "weekend-trap", wantErr: "mutually exclusive"},
		{name: "neither", wantErr: "required"},
		{name: "missing file", file: filepath.Join(dir, "missing.json"), wantErr: "read request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := buildAnalyzeRequest(tt.file, tt.demo)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, req.Signal.ID)
		})
	}
}

func TestDecodeOutcomes(t *testing.T) {
	single, err := decodeOutcomes([]byte(`{"signal_id":"a","outcome":"WIN","pips_result":12}`))
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, contracts.OutcomeWin, single[0].Outcome)

	many, err := decodeOutcomes([]byte(` [{"signal_id":"a","outcome":"WIN"},{"signal_id":"b","outcome":"LOSS"}]`))
	require.NoError(t, err)
	assert.Len(t, many, 2)

	_, err = decodeOutcomes([]byte(`[]`))
	assert.Error(t, err)
	_, err = decodeOutcomes([]byte("  "))
	assert.Error(t, err)
	_, err = decodeOutcomes([]byte(`{"signal_id":`))
	assert.Error(t, err)
}

func TestAnalyzeLocal_DemoReplay(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	s := scenario.TrendPullback()
	req, err := buildAnalyzeRequest("", "trend-pullback")
	require.NoError(t, err)

	r, err := analyzeLocal(context.Background(), req, true)
	require.NoError(t, err)

	assert.Equal(t, s.Signal.ID, r.SignalID)
	assert.Equal(t, s.Snapshot.Timestamp, r.Timestamp)
	assert.NotEqual(t, shield.Unavailable, r.Explanation)
	assert.True(t, strings.HasPrefix(r.Version, "2.0.0+"))
}

func TestFormatDistribution(t *testing.T) {
	assert.Equal(t, "-", formatDistribution(nil))
	assert.Equal(t,
		"SHIELD_APPROVED=2 SHIELD_ACTIVE=0 VOLATILITY_ZONE=1 UNVERIFIED=0",
		formatDistribution(map[string]int{"SHIELD_APPROVED": 2, "VOLATILITY_ZONE": 1}))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	PrintTable(&buf, []string{"A", "B"}, []int{3, 2}, [][]string{{"x", "yy"}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A    B ", lines[0])
	assert.Equal(t, strings.Repeat("─", 7), lines[1])
	assert.Equal(t, "x    yy", lines[2])
}

func TestWriteReportXLSX(t *testing.T) {
	since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rep := &contracts.PerformanceReport{
		Since:         since,
		Until:         since.AddDate(0, 0, 30),
		TotalSignals:  4,
		TotalOutcomes: 3,
		Overall:       contracts.BucketStats{Label: "overall", Resolved: 2, Wins: 1, Losses: 1, WinRate: 0.5},
		Followed:      contracts.BucketStats{Label: "followed"},
		Ignored:       contracts.BucketStats{Label: "ignored"},
		ByClassification: []contracts.BucketStats{
			{Label: "SHIELD_APPROVED", Resolved: 1, Wins: 1, WinRate: 1},
		},
		ByScoreBucket: []contracts.BucketStats{{Label: "8-10"}},
		AverageScore:  7.25,
		Distribution:  map[string]int{"SHIELD_APPROVED": 3, "UNVERIFIED": 1},
	}
	imp := &contracts.ImprovementReport{
		Days: 30,
		Opportunities: []contracts.Improvement{
			{Kind: "classification", Subject: "SHIELD_ACTIVE", Samples: 12, Observed: 0.4, Expected: 0.6, Message: "low"},
		},
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, writeReportXLSX(path, rep, imp))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetClassification, sheetScore, sheetImprovements}, f.GetSheetList())

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])
	assert.Equal(t, []string{"Signals", "4"}, summary[3])

	classRows, err := f.GetRows(sheetClassification)
	require.NoError(t, err)
	assert.Equal(t, "overall", classRows[1][0])
	assert.Equal(t, "SHIELD_APPROVED", classRows[5][0])

	opps, err := f.GetRows(sheetImprovements)
	require.NoError(t, err)
	require.Len(t, opps, 2)
	assert.Equal(t, "SHIELD_ACTIVE", opps[1][1])
}

func TestRunConfigCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("thresholds:\n  approved: 8.5\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("thresholds:\n  approved: 1\n"), 0o644))

	run := func(file string) (string, error) {
		configCheckFile = file
		t.Cleanup(func() { configCheckFile = "" })

		var buf bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&buf)
		err := runConfigCheck(cmd, nil)
		return buf.String(), err
	}

	out, err := run("")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in defaults")

	out, err = run(good)
	require.NoError(t, err)
	assert.Contains(t, out, "Config is valid")

	_, err = run(bad)
	assert.Error(t, err)
}
