package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer"
	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker/v2"
)

type MockService struct {
	Mode            config.ExecutionMode
	OnSummarize     func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error)
	OnStoreFeedback func(ctx context.Context, feedback summaryModel.FeedbackRecord) error
	OnGetSummary    func(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error)
}

func (m *MockService) Summarize(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
	return m.OnSummarize(ctx, doc, mode, emitter)
}

func (m *MockService) StoreFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	return m.OnStoreFeedback(ctx, feedback)
}

func (m *MockService) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	return m.OnGetSummary(ctx, id)
}

func (m *MockService) DefaultMode() config.ExecutionMode {
	if m.Mode == "" {
		return config.ModeStream
	}
	return m.Mode
}

func (m *MockService) SupportedMIMETypes() []string {
	return []string{"application/pdf", "text/plain"}
}

func useService(t *testing.T, m *MockService) {
	t.Helper()
	t.Chdir(t.TempDir())
	previous := handlerInstance
	handlerInstance = &SummaryHandler{service: m}
	t.Cleanup(func() { handlerInstance = previous })
}

func uploadRequest(t *testing.T, target string, fileName string, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(config.UploadFormField, fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err = writer.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeLines(t *testing.T, body string) []api.SummarizeChunk {
	t.Helper()
	var chunks []api.SummarizeChunk
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		var c api.SummarizeChunk
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			t.Fatalf("line %q is not json: %v", scanner.Text(), err)
		}
		chunks = append(chunks, c)
	}
	return chunks
}

func streamHello(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
	for _, delta := range []string{"Hel", "lo", " world"} {
		if err := emitter.Emit(api.SummarizeChunk{Content: delta}); err != nil {
			return "", err
		}
	}
	return "sum-1", emitter.Emit(api.SummarizeChunk{SummaryID: "sum-1"})
}

func TestSummarizeStreamHandler_NDJSON(t *testing.T) {
	var gotDoc summarizer.Document
	var gotMode config.ExecutionMode
	useService(t, &MockService{Mode: config.ModeInvoke, OnSummarize: func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
		gotDoc, gotMode = doc, mode
		return streamHello(ctx, doc, mode, emitter)
	}})
	rr := httptest.NewRecorder()

	SummarizeStreamHandler(rr, uploadRequest(t, "/summarize/stream", "report.pdf", "%PDF-1.4 body"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("content type %q", ct)
	}
	chunks := decodeLines(t, rr.Body.String())
	if len(chunks) != 4 || chunks[3].SummaryID != "sum-1" || chunks[3].Content != "" {
		t.Fatalf("unexpected messages %+v", chunks)
	}
	if !strings.Contains(rr.Body.String(), `{"content":""`) {
		t.Error("terminal message must carry an empty content field")
	}
	if gotMode != config.ModeStream {
		t.Errorf("stream route must force streaming, got %s", gotMode)
	}
	if gotDoc.FileName != "report.pdf" || string(gotDoc.Content) != "%PDF-1.4 body" {
		t.Errorf("unexpected document %+v", gotDoc)
	}
	if _, err := os.Stat(gotDoc.Path); !os.IsNotExist(err) {
		t.Errorf("temporary upload not removed: %v", err)
	}
}

func TestSummarizeHandler_ModeSelection(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		def      config.ExecutionMode
		wantMode config.ExecutionMode
		wantCode int
	}{
		{"default stream", "", config.ModeStream, config.ModeStream, http.StatusOK},
		{"default invoke", "", config.ModeInvoke, config.ModeInvoke, http.StatusOK},
		{"override invoke", "?mode=invoke", config.ModeStream, config.ModeInvoke, http.StatusOK},
		{"override stream", "?mode=STREAM", config.ModeInvoke, config.ModeStream, http.StatusOK},
		{"unknown mode", "?mode=batch", config.ModeStream, "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMode config.ExecutionMode
			useService(t, &MockService{Mode: tt.def, OnSummarize: func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
				gotMode = mode
				if mode == config.ModeInvoke {
					return "sum-1", emitter.Emit(api.SummarizeChunk{Content: "Hello world", SummaryID: "sum-1"})
				}
				return streamHello(ctx, doc, mode, emitter)
			}})
			rr := httptest.NewRecorder()

			SummarizeHandler(rr, uploadRequest(t, "/summarize"+tt.query, "notes.txt", "text"))

			if rr.Code != tt.wantCode {
				t.Fatalf("status %d, want %d: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if gotMode != tt.wantMode {
				t.Errorf("mode %q, want %q", gotMode, tt.wantMode)
			}
			if tt.wantMode == config.ModeInvoke {
				var chunk api.SummarizeChunk
				if err := json.Unmarshal(rr.Body.Bytes(), &chunk); err != nil {
					t.Fatalf("invoke body is not one json object: %v", err)
				}
				if chunk.Content != "Hello world" || chunk.SummaryID != "sum-1" {
					t.Errorf("unexpected body %+v", chunk)
				}
				if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("content type %q", ct)
				}
			}
		})
	}
}

func TestSummarizeHandler_MissingFile(t *testing.T) {
	useService(t, &MockService{OnSummarize: func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
		t.Error("service called without a file")
		return "", nil
	}})
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("other", "value")
	_ = writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/summarize", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	SummarizeHandler(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status %d", rr.Code)
	}
}

func TestSummarizeHandler_ErrorsBeforeOutput(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantCode         int
		wantCollaborator string
	}{
		{
			name:             "unsupported media",
			err:              summaryModel.WithCollaborator(summaryModel.CollaboratorLoader, summaryModel.WrapError(summaryModel.ErrUnsupportedMedia, "load", errors.New("image/png"))),
			wantCode:         http.StatusUnsupportedMediaType,
			wantCollaborator: "loader",
		},
		{
			name:             "unreadable document",
			err:              summaryModel.WithCollaborator(summaryModel.CollaboratorLoader, summaryModel.WrapError(summaryModel.ErrInvalidInput, "extract application/pdf", errors.New("malformed xref"))),
			wantCode:         http.StatusBadRequest,
			wantCollaborator: "loader",
		},
		{
			name:             "model circuit open",
			err:              summaryModel.WithCollaborator(summaryModel.CollaboratorModel, gobreaker.ErrOpenState),
			wantCode:         http.StatusServiceUnavailable,
			wantCollaborator: "model",
		},
		{
			name:             "model down",
			err:              summaryModel.WithCollaborator(summaryModel.CollaboratorModel, errors.New("connection refused")),
			wantCode:         http.StatusBadGateway,
			wantCollaborator: "model",
		},
		{
			name:             "store down",
			err:              summaryModel.WithCollaborator(summaryModel.CollaboratorStore, errors.New("timeout")),
			wantCode:         http.StatusBadGateway,
			wantCollaborator: "store",
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useService(t, &MockService{OnSummarize: func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
				return "", tt.err
			}})
			rr := httptest.NewRecorder()

			SummarizeHandler(rr, uploadRequest(t, "/summarize", "image.png", "png"))

			if rr.Code != tt.wantCode {
				t.Fatalf("status %d, want %d", rr.Code, tt.wantCode)
			}
			var body api.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not json: %v", err)
			}
			if body.Code != tt.wantCode || body.Collaborator != tt.wantCollaborator || body.Message == "" {
				t.Errorf("unexpected error body %+v", body)
			}
		})
	}
}

func TestSummarizeHandler_FailureAfterStreamStarted(t *testing.T) {
	useService(t, &MockService{OnSummarize: func(ctx context.Context, doc summarizer.Document, mode config.ExecutionMode, emitter summarizer.Emitter) (string, error) {
		_ = emitter.Emit(api.SummarizeChunk{Content: "par"})
		return "", summaryModel.WithCollaborator(summaryModel.CollaboratorModel, errors.New("reset"))
	}})
	rr := httptest.NewRecorder()

	SummarizeHandler(rr, uploadRequest(t, "/summarize", "notes.txt", "text"))

	if rr.Code != http.StatusOK {
		t.Errorf("status %d", rr.Code)
	}
	chunks := decodeLines(t, rr.Body.String())
	if len(chunks) != 1 || chunks[0].Content != "par" || chunks[0].SummaryID != "" {
		t.Errorf("stream must end without terminal message, got %+v", chunks)
	}
}

func TestFeedbackHandler(t *testing.T) {
	var stored summaryModel.FeedbackRecord
	useService(t, &MockService{OnStoreFeedback: func(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
		if feedback.DocumentID == "abc" {
			return summaryModel.WithCollaborator(summaryModel.CollaboratorStore, summaryModel.NotFound("abc"))
		}
		stored = feedback
		return nil
	}})

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"stored", `{"user":"jane","document_id":"sum-1","feedback":"good","written_feedback":"clear"}`, http.StatusOK},
		{"unknown id", `{"user":"jane","document_id":"abc"}`, http.StatusNotFound},
		{"missing user", `{"document_id":"sum-1"}`, http.StatusBadRequest},
		{"not json", `feedback`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			FeedbackHandler(rr, httptest.NewRequest(http.MethodPost, "/summarize/feedback", strings.NewReader(tt.body)))
			if rr.Code != tt.wantCode {
				t.Fatalf("status %d, want %d: %s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode == http.StatusNotFound && !strings.Contains(rr.Body.String(), "abc") {
				t.Errorf("not found message must name the id: %s", rr.Body.String())
			}
		})
	}

	if stored.User != "jane" || *stored.Feedback != "good" || *stored.WrittenFeedback != "clear" {
		t.Errorf("unexpected stored feedback %+v", stored)
	}
}

func TestFeedbackHandler_EchoesUserAndDocument(t *testing.T) {
	useService(t, &MockService{OnStoreFeedback: func(ctx context.Context, feedback summaryModel.FeedbackRecord) error { return nil }})
	rr := httptest.NewRecorder()

	FeedbackHandler(rr, httptest.NewRequest(http.MethodPost, "/summarize/feedback", strings.NewReader(`{"user":"jane","document_id":"sum-1","feedback":"bad"}`)))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 2 || body["user"] != "jane" || body["document_id"] != "sum-1" {
		t.Errorf("unexpected echo %v", body)
	}
}

func TestGetSummaryHandler(t *testing.T) {
	useService(t, &MockService{OnGetSummary: func(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
		if id != "sum-1" {
			return summaryModel.StoredSummaryRecord{}, summaryModel.NotFound(id)
		}
		good := "good"
		return summaryModel.StoredSummaryRecord{
			ID:               "sum-1",
			Summary:          "Hello world",
			Metadata:         map[string]any{"loader": "application/pdf"},
			OriginalDocument: []byte("%PDF"),
			Feedback:         &summaryModel.Feedback{User: "jane", Feedback: &good},
		}, nil
	}})
	router := chi.NewRouter()
	router.Get("/summarize/{id}", GetSummaryHandler)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/summarize/sum-1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body api.SummaryRecordResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Summary != "Hello world" || !body.HasOriginalDocument || body.Feedback == nil || body.Feedback.User != "jane" {
		t.Errorf("unexpected body %+v", body)
	}
	if strings.Contains(rr.Body.String(), "original_document_in_bytes") {
		t.Error("document bytes must not be returned")
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/summarize/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status %d for unknown id", rr.Code)
	}
}

func TestGetHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	GetHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health response %d %s", rr.Code, rr.Body.String())
	}
}
