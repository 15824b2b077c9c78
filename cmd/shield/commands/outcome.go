package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/httputil"
	"github.com/HydraXdev/HydraX-v2-sub003/pkg/logger"
)

// outcomeCmd represents the outcome command
var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "거래 결과 기록",
	Long: `트레이드 트래킹에서 받은 결과를 기록합니다.

--file 은 Outcome 객체 하나 또는 배열(JSON)을 받습니다.
플래그로 한 건을 직접 기록할 수도 있습니다.

Example:
  go run ./cmd/shield outcome --file outcomes.json
  go run ./cmd/shield outcome --signal sig-1 --user u1 --result WIN --pips 18.5 --followed`,
	RunE: runOutcome,
}

var (
	outcomeFile     string
	outcomeServer   string
	outcomeSignal   string
	outcomeUser     string
	outcomeResult   string
	outcomePips     float64
	outcomeFollowed bool
)

func init() {
	rootCmd.AddCommand(outcomeCmd)

	outcomeCmd.Flags().StringVar(&outcomeFile, "file", "", "outcome JSON file (- for stdin)")
	outcomeCmd.Flags().StringVar(&outcomeServer, "server", "", "API server base URL")
	outcomeCmd.Flags().StringVar(&outcomeSignal, "signal", "", "signal id")
	outcomeCmd.Flags().StringVar(&outcomeUser, "user", "", "user id")
	outcomeCmd.Flags().StringVar(&outcomeResult, "result", "", "WIN, LOSS, BREAK_EVEN or SKIPPED")
	outcomeCmd.Flags().Float64Var(&outcomePips, "pips", 0, "pips result")
	outcomeCmd.Flags().BoolVar(&outcomeFollowed, "followed", false, "the user followed the shield recommendation")
}

func runOutcome(cmd *cobra.Command, args []string) error {
	var outcomes []contracts.Outcome

	if outcomeFile != "" {
		var data []byte
		var err error
		if outcomeFile == "-" {
			data, err = readAll(os.Stdin)
		} else {
			data, err = os.ReadFile(outcomeFile)
		}
		if err != nil {
			return fmt.Errorf("read outcomes: %w", err)
		}
		if outcomes, err = decodeOutcomes(data); err != nil {
			return err
		}
	} else {
		outcomes = []contracts.Outcome{{
			SignalID:       outcomeSignal,
			UserID:         outcomeUser,
			Outcome:        contracts.OutcomeType(strings.ToUpper(outcomeResult)),
			PipsResult:     outcomePips,
			FollowedShield: outcomeFollowed,
		}}
	}

	for i, o := range outcomes {
		if o.SignalID == "" {
			return fmt.Errorf("outcome %d: signal_id is required", i)
		}
		if !o.Outcome.Valid() {
			return fmt.Errorf("outcome %d: invalid outcome %q", i, o.Outcome)
		}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	record, closeFn, err := outcomeRecorder(ctx, outcomeServer)
	if err != nil {
		return err
	}
	defer closeFn()

	out := cmd.OutOrStdout()
	orphans := 0
	for _, o := range outcomes {
		orphan, err := record(ctx, o)
		if err != nil {
			return fmt.Errorf("record outcome %s: %w", o.SignalID, err)
		}
		if orphan {
			orphans++
			PrintWarning(out, fmt.Sprintf("%s has no stored shield result (kept as orphan)", o.SignalID))
		}
	}

	PrintSuccess(out, fmt.Sprintf("Recorded %d outcome(s), %d orphan(s)", len(outcomes), orphans))
	return nil
}

type recordFunc func(ctx context.Context, o contracts.Outcome) (bool, error)

// outcomeRecorder returns a remote or local recorder and its cleanup
func outcomeRecorder(ctx context.Context, server string) (recordFunc, func(), error) {
	if server != "" {
		client := httputil.New(server, logger.Nop()).WithTimeout(10 * time.Second)
		return func(ctx context.Context, o contracts.Outcome) (bool, error) {
			var resp struct {
				Orphan bool `json:"orphan"`
			}
			if err := client.PostJSON(ctx, "/api/outcomes", o, &resp); err != nil {
				return false, err
			}
			return resp.Orphan, nil
		}, func() {}, nil
	}

	rt, err := bootstrap(ctx, engineSetup{})
	if err != nil {
		return nil, nil, err
	}
	return rt.engine.LogOutcome, func() { rt.Close(context.Background()) }, nil
}

// decodeOutcomes accepts a single object or an array
func decodeOutcomes(data []byte) ([]contracts.Outcome, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no outcomes in input")
	}

	if trimmed[0] == '[' {
		var outcomes []contracts.Outcome
		if err := json.Unmarshal(trimmed, &outcomes); err != nil {
			return nil, fmt.Errorf("decode outcomes: %w", err)
		}
		if len(outcomes) == 0 {
			return nil, fmt.Errorf("no outcomes in input")
		}
		return outcomes, nil
	}

	var o contracts.Outcome
	if err := json.Unmarshal(trimmed, &o); err != nil {
		return nil, fmt.Errorf("decode outcome: %w", err)
	}
	return []contracts.Outcome{o}, nil
}
