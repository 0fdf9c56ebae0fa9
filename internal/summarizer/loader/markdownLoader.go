package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type markdownSection struct {
	start int
	title string
}

// loadMarkdown yields one segment per top level heading section, plus any text before the first heading.
func loadMarkdown(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}
	return splitMarkdown(source), nil
}

func splitMarkdown(source []byte) []summaryModel.DocumentSegment {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	sections := []markdownSection{{start: 0}}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		first := heading.Lines().At(0)
		lineStart := bytes.LastIndexByte(source[:first.Start], '\n') + 1
		sections = append(sections, markdownSection{
			start: lineStart,
			title: strings.TrimSpace(string(heading.Lines().Value(source))),
		})
	}

	var segments []summaryModel.DocumentSegment
	for i, section := range sections {
		end := len(source)
		if i+1 < len(sections) {
			end = sections[i+1].start
		}
		if section.start >= end {
			continue
		}
		body := strings.TrimSpace(string(source[section.start:end]))
		if body == "" {
			continue
		}
		segments = append(segments, summaryModel.DocumentSegment{
			Text:   body,
			Source: summaryModel.SegmentSource{Section: section.title},
		})
	}
	return segments
}
