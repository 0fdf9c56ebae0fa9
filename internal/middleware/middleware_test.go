package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/GoSummary/internal/config"
)

func configure(t *testing.T, s config.Settings) {
	t.Helper()
	Configure(s)
	t.Cleanup(func() { Configure(config.Settings{RateLimit: true}) })
}

func traceEcho(w http.ResponseWriter, r *http.Request) {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	w.Header().Set("X-Seen-Trace", trace)
	w.WriteHeader(http.StatusNoContent)
}

func TestWrap_Authentication(t *testing.T) {
	tests := []struct {
		name     string
		settings config.Settings
		header   string
		wantCode int
	}{
		{"valid token", config.Settings{AuthToken: "secret"}, "Bearer secret", http.StatusNoContent},
		{"wrong token", config.Settings{AuthToken: "secret"}, "Bearer nope", http.StatusUnauthorized},
		{"missing header", config.Settings{AuthToken: "secret"}, "", http.StatusUnauthorized},
		{"not bearer", config.Settings{AuthToken: "secret"}, "Basic secret", http.StatusUnauthorized},
		{"no token configured", config.Settings{}, "Bearer ", http.StatusUnauthorized},
		{"bypass", config.Settings{NoAuthBypass: true}, "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configure(t, tt.settings)
			req := httptest.NewRequest(http.MethodGet, "/summarize/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			Wrap(traceEcho)(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status %d, want %d", rr.Code, tt.wantCode)
			}
			if rr.Code == http.StatusUnauthorized {
				if rr.Header().Get("Content-Type") != "application/json" {
					t.Error("rejections must be JSON")
				}
				if !strings.Contains(rr.Body.String(), "unauthorized") {
					t.Errorf("rejection does not name the failure: %s", rr.Body.String())
				}
			}
		})
	}
}

func TestWrap_TraceIDPropagation(t *testing.T) {
	configure(t, config.Settings{NoAuthBypass: true})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-Id", "trace-42")
	rr := httptest.NewRecorder()
	Wrap(traceEcho)(rr, req)
	if rr.Header().Get("X-Seen-Trace") != "trace-42" || rr.Header().Get("X-Trace-Id") != "trace-42" {
		t.Errorf("trace not propagated: %v", rr.Header())
	}

	rr = httptest.NewRecorder()
	Wrap(traceEcho)(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Header().Get("X-Seen-Trace") == "" {
		t.Error("a trace id must be generated when none is sent")
	}
}

func TestWrap_RateLimit(t *testing.T) {
	configure(t, config.Settings{NoAuthBypass: true, RateLimit: true})
	handler := Wrap(traceEcho)

	limited := 0
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/summarize/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		handler(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Error("expected requests above the burst to be limited")
	}

	req := httptest.NewRequest(http.MethodGet, "/summarize/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rr := httptest.NewRecorder()
	handler(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("other clients must not be limited, got %d", rr.Code)
	}
}

func TestWrap_RateLimitDisabled(t *testing.T) {
	configure(t, config.Settings{NoAuthBypass: true, RateLimit: false})
	handler := Wrap(traceEcho)
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND*3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/summarize/x", nil)
		req.RemoteAddr = "10.0.0.3:1234"
		rr := httptest.NewRecorder()
		handler(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("request %d limited with rate limiting disabled", i)
		}
	}
}

func TestWrapPublic_SkipsAuth(t *testing.T) {
	configure(t, config.Settings{AuthToken: "secret"})
	rr := httptest.NewRecorder()
	WrapPublic(traceEcho)(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("status %d", rr.Code)
	}
	if rr.Header().Get("X-Seen-Trace") == "" {
		t.Error("public routes still get a trace id")
	}
}
