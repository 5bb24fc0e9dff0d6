package progress

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/fennlabs/fennlingo/internal/dialogue"
)

// WriteReport writes a user's progress as an XLSX workbook: one sheet
// with the per-quiz scores, one with the correction history.
func WriteReport(w io.Writer, userID string, sum dialogue.ProgressSummary, corrections []dialogue.CorrectionEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	const scoreSheet = "Scores"
	f.SetSheetName(f.GetSheetName(0), scoreSheet)

	if err := f.SetSheetRow(scoreSheet, "A1", &[]any{"User", userID}); err != nil {
		return fmt.Errorf("writing report header: %w", err)
	}
	if err := f.SetSheetRow(scoreSheet, "A2", &[]any{"Total score", sum.TotalScore}); err != nil {
		return fmt.Errorf("writing total score: %w", err)
	}
	if err := f.SetSheetRow(scoreSheet, "A4", &[]any{"Quiz", "Score"}); err != nil {
		return fmt.Errorf("writing score header: %w", err)
	}

	keys := make([]string, 0, len(sum.Quizzes))
	for k := range sum.Quizzes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, key := range keys {
		cell := fmt.Sprintf("A%d", 5+i)
		if err := f.SetSheetRow(scoreSheet, cell, &[]any{key, sum.Quizzes[key]}); err != nil {
			return fmt.Errorf("writing score row %s: %w", key, err)
		}
	}

	const corrSheet = "Corrections"
	if _, err := f.NewSheet(corrSheet); err != nil {
		return fmt.Errorf("creating corrections sheet: %w", err)
	}
	if err := f.SetSheetRow(corrSheet, "A1", &[]any{"Original", "Corrected", "At"}); err != nil {
		return fmt.Errorf("writing corrections header: %w", err)
	}
	for i, e := range corrections {
		cell := fmt.Sprintf("A%d", 2+i)
		row := []any{e.Original, e.Corrected, e.At.Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow(corrSheet, cell, &row); err != nil {
			return fmt.Errorf("writing correction row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
