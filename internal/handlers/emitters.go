package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/summarizer"
)

var (
	_ summarizer.Emitter = (*ndjsonEmitter)(nil)
	_ summarizer.Emitter = (*bufferedEmitter)(nil)
)

// ndjsonEmitter writes one JSON object per line and flushes after each.
// The status line is only sent with the first message so earlier failures can still be reported as JSON errors.
type ndjsonEmitter struct {
	w       http.ResponseWriter
	encoder *json.Encoder
	started bool
}

func newNDJSONEmitter(w http.ResponseWriter) *ndjsonEmitter {
	return &ndjsonEmitter{w: w, encoder: json.NewEncoder(w)}
}

func (e *ndjsonEmitter) Emit(chunk api.SummarizeChunk) error {
	if !e.started {
		e.w.Header().Set("Content-Type", "application/x-ndjson")
		e.w.Header().Set("Cache-Control", "no-cache")
		e.w.Header().Set("X-Content-Type-Options", "nosniff")
		e.w.WriteHeader(http.StatusOK)
		e.started = true
	}
	if err := e.encoder.Encode(chunk); err != nil {
		return err
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// bufferedEmitter keeps the single message of an invoke response until the request succeeded.
type bufferedEmitter struct {
	chunk *api.SummarizeChunk
}

func (e *bufferedEmitter) Emit(chunk api.SummarizeChunk) error {
	e.chunk = &chunk
	return nil
}
