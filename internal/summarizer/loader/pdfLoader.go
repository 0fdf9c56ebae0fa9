package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/dslipak/pdf"
)

// loadPDF yields one segment per page. Pages that fail or time out are skipped.
func loadPDF(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	f, err := pdf.Open(path)
	if err != nil {
		logger.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var segments []summaryModel.DocumentSegment
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(ctx, page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}

		segments = append(segments, summaryModel.DocumentSegment{
			Text:   content,
			Source: summaryModel.SegmentSource{Page: i},
		})
	}
	return segments, nil
}

func protectExtract(ctx context.Context, page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(config.PageExtractTimeout)
	defer timer.Stop()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errors.New("page extraction timeout")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
