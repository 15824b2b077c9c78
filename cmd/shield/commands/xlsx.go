package commands

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/HydraXdev/HydraX-v2-sub003/internal/contracts"
)

// Sheet names of the exported workbook
const (
	sheetSummary        = "Summary"
	sheetClassification = "By Classification"
	sheetScore          = "By Score"
	sheetImprovements   = "Improvements"
)

var bucketHeader = []interface{}{"Bucket", "Signals", "Resolved", "Wins", "Losses", "Break even", "Skipped", "Win rate", "Total pips", "Avg pips"}

// writeReportXLSX exports the report as a workbook, one sheet per breakdown
func writeReportXLSX(path string, rep *contracts.PerformanceReport, imp *contracts.ImprovementReport) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Since", rep.Since.Format(time.RFC3339)},
		{"Until", rep.Until.Format(time.RFC3339)},
		{"Signals", rep.TotalSignals},
		{"Outcomes", rep.TotalOutcomes},
		{"Orphans", rep.Orphans},
		{"Average score", rep.AverageScore},
	}
	for _, c := range contracts.Classifications {
		summary = append(summary, []interface{}{string(c), rep.Distribution[string(c)]})
	}
	if err := writeRows(f, sheetSummary, summary, bold); err != nil {
		return err
	}

	overall := [][]interface{}{bucketHeader}
	for _, b := range []contracts.BucketStats{rep.Overall, rep.Followed, rep.Ignored} {
		overall = append(overall, bucketCells(b))
	}
	overall = append(overall, []interface{}{})
	for _, b := range rep.ByClassification {
		overall = append(overall, bucketCells(b))
	}
	if err := writeSheet(f, sheetClassification, overall, bold); err != nil {
		return err
	}

	scores := [][]interface{}{bucketHeader}
	for _, b := range rep.ByScoreBucket {
		scores = append(scores, bucketCells(b))
	}
	if err := writeSheet(f, sheetScore, scores, bold); err != nil {
		return err
	}

	opps := [][]interface{}{{"Kind", "Subject", "Samples", "Observed", "Expected", "Message"}}
	if imp != nil {
		for _, o := range imp.Opportunities {
			opps = append(opps, []interface{}{o.Kind, o.Subject, o.Samples, o.Observed, o.Expected, o.Message})
		}
	}
	if err := writeSheet(f, sheetImprovements, opps, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func bucketCells(b contracts.BucketStats) []interface{} {
	return []interface{}{b.Label, b.Signals, b.Resolved, b.Wins, b.Losses, b.BreakEven, b.Skipped, b.WinRate, b.TotalPips, b.AvgPips}
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows, headerStyle)
}

// writeRows writes rows from A1 down and bolds the first one
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if len(rows) > 0 && len(rows[0]) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}
	return nil
}
