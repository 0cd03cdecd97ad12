package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quarterglass/earnviz/analysis"
)

const topicsSheet = "Topics"

// WriteWorkbook exports the result set as an xlsx workbook with one row per
// topic, for people who want the numbers in a spreadsheet rather than the
// HTML report.
func WriteWorkbook(path string, res analysis.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(topicsSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}

	headers := []any{"Topic", "Sentiment", "Minutes", "Word Count", "Rationale"}
	if err := f.SetSheetRow(topicsSheet, "A1", &headers); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i, r := range res {
		row := []any{r.Topic, r.Sentiment, r.Minutes, r.WordCount, r.Rationale}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(topicsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
