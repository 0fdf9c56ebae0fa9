package loader

import (
	"context"
	"fmt"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/lu4p/cat"
)

// loadText reads .docx, .odt, .rtf and plain text files into a single segment.
func loadText(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc", "error", err)
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	return []summaryModel.DocumentSegment{{Text: text}}, nil
}
