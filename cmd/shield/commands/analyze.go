package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/api/handlers"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/scenario"
	"github.com/HydraXdev/HydraX-v2-sub003/internal/shield"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/httputil"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "시그널 하나를 평가",
	Long: `시그널을 평가하고 인사이트를 출력합니다.

입력은 둘 중 하나:
  --file   {"signal": {...}, "snapshot": {...}, "user_id": "..."} 형식 JSON
  --demo   내장 시나리오 (trend-pullback, weekend-trap)

--server 를 주면 실행 중인 API 서버에 요청하고, 없으면 로컬 엔진을 사용합니다.

Example:
  go run ./cmd/shield analyze --demo trend-pullback
  go run ./cmd/shield analyze --file signal.json --json
  go run ./cmd/shield analyze --file signal.json --server http://localhost:8089`,
	RunE: runAnalyze,
}

var (
	analyzeFile   string
	analyzeDemo   string
	analyzeServer string
	analyzeUser   string
	analyzeJSON   bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "request JSON file (- for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeDemo, "demo", "", "built-in scenario: "+strings.Join(scenario.Names(), ", "))
	analyzeCmd.Flags().StringVar(&analyzeServer, "server", "", "API server base URL")
	analyzeCmd.Flags().StringVar(&analyzeUser, "user", "", "user id for personalization")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	req, err := buildAnalyzeRequest(analyzeFile, analyzeDemo)
	if err != nil {
		return err
	}
	if analyzeUser != "" {
		req.UserID = analyzeUser
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result *contracts.ShieldResult
	if analyzeServer != "" {
		result, err = analyzeRemote(ctx, analyzeServer, req)
	} else {
		result, err = analyzeLocal(ctx, req, analyzeDemo != "")
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return PrintJSON(out, result)
	}

	text, err := shield.RenderInsight(result)
	if err != nil {
		return fmt.Errorf("render insight: %w", err)
	}
	PrintHeader(out, "Shield Analysis "+result.SignalID)
	fmt.Fprintln(out, text)
	PrintSeparator(out)
	return nil
}

// buildAnalyzeRequest reads exactly one of file or demo
func buildAnalyzeRequest(file, demo string) (handlers.AnalyzeRequest, error) {
	var req handlers.AnalyzeRequest

	switch {
	case file != "" && demo != "":
		return req, fmt.Errorf("--file and --demo are mutually exclusive")
	case demo != "":
		s, ok := scenario.Get(demo)
		if !ok {
			return req, fmt.Errorf("unknown scenario %q (available: %s)", demo, strings.Join(scenario.Names(), ", "))
		}
		req.Signal = s.Signal
		req.Snapshot = s.Snapshot
		return req, nil
	case file != "":
		var data []byte
		var err error
		if file == "-" {
			data, err = readAll(os.Stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("decode request: %w", err)
		}
		return req, nil
	default:
		return req, fmt.Errorf("one of --file or --demo is required")
	}
}

func analyzeRemote(ctx context.Context, server string, req handlers.AnalyzeRequest) (*contracts.ShieldResult, error) {
	client := httputil.New(server, logger.Nop()).WithTimeout(10 * time.Second)

	var result contracts.ShieldResult
	if err := client.PostJSON(ctx, "/api/shield/analyze", req, &result); err != nil {
		return nil, fmt.Errorf("remote analyze: %w", err)
	}
	return &result, nil
}

// analyzeLocal runs the engine in-process. Demo scenarios are replayed at
// their own snapshot time so the output is reproducible.
func analyzeLocal(ctx context.Context, req handlers.AnalyzeRequest, replay bool) (*contracts.ShieldResult, error) {
	var setup engineSetup
	if replay && req.Snapshot != nil && !req.Snapshot.Timestamp.IsZero() {
		at := req.Snapshot.Timestamp
		setup.clock = func() time.Time { return at }
	}

	rt, err := bootstrap(ctx, setup)
	if err != nil {
		return nil, err
	}
	defer rt.Close(context.Background())

	return rt.engine.Analyze(ctx, req.Signal, req.Snapshot, req.UserID), nil
}
