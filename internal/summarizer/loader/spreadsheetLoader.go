package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/xuri/excelize/v2"
)

// loadSpreadsheet yields one segment per sheet, cells tab separated and rows newline separated.
func loadSpreadsheet(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("closing spreadsheet", "error", err)
		}
	}()

	var segments []summaryModel.DocumentSegment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		var b strings.Builder
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t")
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if b.Len() == 0 {
			continue
		}
		segments = append(segments, summaryModel.DocumentSegment{
			Text:   strings.TrimSuffix(b.String(), "\n"),
			Source: summaryModel.SegmentSource{Sheet: sheet},
		})
	}
	return segments, nil
}
