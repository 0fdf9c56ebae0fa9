package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/GoSummary/internal/adapter/utils"
	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/data/store"
	"github.com/akolanti/GoSummary/internal/handlers"
	"github.com/akolanti/GoSummary/internal/mcpserver"
	"github.com/akolanti/GoSummary/internal/middleware"
	"github.com/akolanti/GoSummary/internal/summarizer"
	"github.com/akolanti/GoSummary/internal/summarizer/llm/llmMocks"
)

const token = "test-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Chdir(t.TempDir())

	service, err := summarizer.NewService(summarizer.ServiceConfig{
		Variant:     config.VariantSimple,
		DefaultMode: config.ModeStream,
		ChatModel:   config.ChatModelSettings{Service: config.ChatModelOllama, Model: "mock-model"},
		Invoker:     &llmMocks.MockInvoker{},
		Store:       store.InitInMemorySummaryStore(),
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	handlers.InitSummaryHandler(service)
	middleware.Configure(config.Settings{AuthToken: token, RateLimit: false})

	mcp, err := mcpserver.NewServer(service)
	if err != nil {
		t.Fatalf("mcp server failed: %v", err)
	}
	r := utils.NewRouter()
	RegisterRoutes(r.Router, mcp.Handler())
	ts := httptest.NewServer(r.Router)
	t.Cleanup(ts.Close)
	return ts
}

func authorized(t *testing.T, method string, url string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func upload(t *testing.T, name string, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(config.UploadFormField, name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte(content))
	_ = writer.Close()
	return &body, writer.FormDataContentType()
}

func TestSummaryLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	body, contentType := upload(t, "notes.txt", "A short note about the quarterly numbers.\n")
	resp := authorized(t, http.MethodPost, ts.URL+"/summarize/stream", body, contentType)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summarize status %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Trace-Id") == "" {
		t.Error("missing trace header")
	}

	var chunks []api.SummarizeChunk
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var c api.SummarizeChunk
		if err := json.Unmarshal(scanner.Bytes(), &c); err != nil {
			t.Fatalf("bad line %q: %v", scanner.Text(), err)
		}
		chunks = append(chunks, c)
	}
	if len(chunks) != 3 || chunks[2].SummaryID == "" {
		t.Fatalf("unexpected stream %+v", chunks)
	}
	id := chunks[2].SummaryID

	resp = authorized(t, http.MethodGet, ts.URL+"/summarize/"+id, nil, "")
	var record api.SummaryRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || record.Summary != "mocked summary" || !record.HasOriginalDocument {
		t.Errorf("unexpected record %d %+v", resp.StatusCode, record)
	}

	feedback := bytes.NewBufferString(`{"user":"jane","document_id":"` + id + `","feedback":"good"}`)
	resp = authorized(t, http.MethodPost, ts.URL+"/summarize/feedback", feedback, "application/json")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("feedback status %d", resp.StatusCode)
	}

	missing := bytes.NewBufferString(`{"user":"jane","document_id":"abc"}`)
	resp = authorized(t, http.MethodPost, ts.URL+"/summarize/feedback", missing, "application/json")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("feedback for unknown id status %d", resp.StatusCode)
	}
}

func TestInvokeModeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := upload(t, "notes.txt", "Another document.\n")

	resp := authorized(t, http.MethodPost, ts.URL+"/summarize/?mode=invoke", body, contentType)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var chunk api.SummarizeChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		t.Fatal(err)
	}
	if chunk.Content != "mocked summary" || chunk.SummaryID == "" {
		t.Errorf("unexpected invoke answer %+v", chunk)
	}
}

func TestUnsupportedUploadOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := upload(t, "image.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	resp := authorized(t, http.MethodPost, ts.URL+"/summarize", body, contentType)
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var e api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if e.Collaborator != "loader" || !strings.Contains(e.Message, "image/png") {
		t.Errorf("unexpected error body %+v", e)
	}
}

func TestUnreadableUploadOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	body, contentType := upload(t, "broken.pdf", "%PDF-1.4\nnot really a pdf\n")

	resp := authorized(t, http.MethodPost, ts.URL+"/summarize", body, contentType)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var e api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatal(err)
	}
	if e.Collaborator != "loader" {
		t.Errorf("unexpected error body %+v", e)
	}
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status %d", path, resp.StatusCode)
		}
	}

	resp, err := http.Get(ts.URL + "/summarize/some-id")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated request status %d", resp.StatusCode)
	}
}
