package middleware

import (
	"net/http"
	"sync"

	"github.com/akolanti/GoSummary/internal/adapter/utils"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/handlers"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type securitySettings struct {
	authToken    string
	noAuthBypass bool
	rateLimit    bool
}

var (
	settingsMu sync.RWMutex
	security   = securitySettings{rateLimit: true}
)

// Configure installs the auth and rate limit settings used by every wrapped handler.
func Configure(settings config.Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	security = securitySettings{
		authToken:    settings.AuthToken,
		noAuthBypass: settings.NoAuthBypass,
		rateLimit:    settings.RateLimit,
	}
	limiterInstance = NewIPRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND)
}

func currentSettings() securitySettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return security
}

var GetHandler = WrapPublic(handlers.GetHandler)

var SummarizeHandler = Wrap(handlers.SummarizeHandler)
var SummarizeStreamHandler = Wrap(handlers.SummarizeStreamHandler)
var FeedbackHandler = Wrap(handlers.FeedbackHandler)
var GetSummaryHandler = Wrap(handlers.GetSummaryHandler)

// Wrap runs trace, auth and rate limiting ahead of next and records the response status.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

// WrapPublic skips auth and rate limiting, used for probes.
func WrapPublic(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, false)
}

func wrap(next http.HandlerFunc, guarded bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, guarded)

		if !handleBadRequest(re) {
			metrics.CaptureRequest(utils.RoutePattern(r), rec.Status)
			return
		}
		next(rec, re.req)

		metrics.CaptureRequest(utils.RoutePattern(r), rec.Status) //metrics
	}
}

func processRequest(re requestResponseStruct, guarded bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest || !guarded {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	settings := currentSettings()
	re = authenticate(re, settings)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	if settings.rateLimit {
		re = rateLimiter(re)
	}
	return re
}
