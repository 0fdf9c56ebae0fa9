package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF         = "application/pdf"
	MIMEDocx        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEOdt         = "application/vnd.oasis.opendocument.text"
	MIMERtf         = "text/rtf"
	MIMEText        = "text/plain"
	MIMEMarkdown    = "text/markdown"
	MIMESpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEZip         = "application/zip"
)

var audioMIMETypes = []string{"audio/mpeg", "audio/wav", "audio/mp4", "audio/x-m4a", "audio/ogg", "audio/flac", "audio/webm"}

// zip containers are told apart by extension when content sniffing stops at the archive
var byExtension = map[string]string{
	".docx":     MIMEDocx,
	".odt":      MIMEOdt,
	".xlsx":     MIMESpreadsheet,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
}

var logger = logger_i.NewLogger("Loader")

// Loader turns a file on disk into ordered text segments.
type Loader interface {
	Load(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error)
}

type LoaderFunc func(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error)

func (f LoaderFunc) Load(ctx context.Context, path string) ([]summaryModel.DocumentSegment, error) {
	return f(ctx, path)
}

type Options struct {
	// Transcriber enables audio uploads when set.
	Transcriber Transcriber
}

// Registry is the MIME type dispatch table of the loaders.
type Registry struct {
	loaders map[string]Loader
}

func NewRegistry(opts Options) *Registry {
	text := LoaderFunc(loadText)
	r := &Registry{loaders: map[string]Loader{
		MIMEPDF:         LoaderFunc(loadPDF),
		MIMEDocx:        text,
		MIMEOdt:         text,
		MIMERtf:         text,
		MIMEText:        text,
		MIMEMarkdown:    LoaderFunc(loadMarkdown),
		MIMESpreadsheet: LoaderFunc(loadSpreadsheet),
	}}
	if opts.Transcriber != nil {
		audio := NewAudioLoader(opts.Transcriber)
		for _, m := range audioMIMETypes {
			r.loaders[m] = audio
		}
	}
	return r
}

// Register adds or replaces the loader of a MIME type.
func (r *Registry) Register(mimeType string, l Loader) {
	r.loaders[mimeType] = l
}

// Supported lists the accepted MIME types in a stable order.
func (r *Registry) Supported() []string {
	types := make([]string, 0, len(r.loaders))
	for m := range r.loaders {
		types = append(types, m)
	}
	slices.Sort(types)
	return types
}

// Detect sniffs the MIME type of the file content, without parameters.
func (r *Registry) Detect(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", summaryModel.WrapError(summaryModel.ErrInvalidInput, "detect mime type", err)
	}
	detected := strings.TrimSpace(strings.SplitN(m.String(), ";", 2)[0])

	if detected == MIMEText || detected == MIMEZip {
		if byExt, ok := byExtension[strings.ToLower(filepath.Ext(path))]; ok {
			return byExt, nil
		}
	}
	return detected, nil
}

// ForMIME resolves the loader of a MIME type.
func (r *Registry) ForMIME(mimeType string) (Loader, error) {
	l, ok := r.loaders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not supported, supported types are [%s]",
			summaryModel.ErrUnsupportedMedia, mimeType, strings.Join(r.Supported(), ", "))
	}
	return l, nil
}

// Load detects the file type and loads it. The detected MIME type is returned for metadata.
// A file that cannot be parsed or holds no text is invalid input.
func (r *Registry) Load(ctx context.Context, path string) ([]summaryModel.DocumentSegment, string, error) {
	mimeType, err := r.Detect(path)
	if err != nil {
		return nil, "", err
	}
	l, err := r.ForMIME(mimeType)
	if err != nil {
		return nil, mimeType, err
	}
	logger.Debug("loading document", "mimeType", mimeType, "file", filepath.Base(path))

	segments, err := l.Load(ctx, path)
	if err != nil {
		if ctx.Err() != nil || summaryModel.IsKind(err, summaryModel.ErrTemporary) {
			return nil, mimeType, err
		}
		return nil, mimeType, summaryModel.WrapError(summaryModel.ErrInvalidInput, "extract "+mimeType, err)
	}
	if !slices.ContainsFunc(segments, func(s summaryModel.DocumentSegment) bool { return strings.TrimSpace(s.Text) != "" }) {
		return nil, mimeType, summaryModel.WrapError(summaryModel.ErrInvalidInput, "no text found in "+mimeType+" document", nil)
	}
	for i := range segments {
		segments[i].Ordinal = i
	}
	return segments, mimeType, nil
}
