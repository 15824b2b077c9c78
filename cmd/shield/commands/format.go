package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a titled block header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTable prints a header, a rule and the rows with fixed column widths
func PrintTable(w io.Writer, columns []string, widths []int, rows [][]string) {
	printRow(w, columns, widths)

	total := 0
	for i, width := range widths {
		total += width
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprintf(w, "%-*s", widths[i], val)
		}
	}
	fmt.Fprintln(w)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var bucketColumns = []string{"Bucket", "Signals", "Resolved", "W/L/BE", "Skipped", "Win rate", "Pips"}
var bucketWidths = []int{14, 8, 9, 10, 8, 9, 9}

// bucketRow renders one BucketStats as a table row
func bucketRow(b contracts.BucketStats) []string {
	return []string{
		b.Label,
		fmt.Sprintf("%d", b.Signals),
		fmt.Sprintf("%d", b.Resolved),
		fmt.Sprintf("%d/%d/%d", b.Wins, b.Losses, b.BreakEven),
		fmt.Sprintf("%d", b.Skipped),
		fmt.Sprintf("%.1f%%", b.WinRate*100),
		fmt.Sprintf("%+.1f", b.TotalPips),
	}
}

// PrintBuckets prints a table of bucket statistics
func PrintBuckets(w io.Writer, buckets ...contracts.BucketStats) {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, bucketRow(b))
	}
	PrintTable(w, bucketColumns, bucketWidths, rows)
}
