package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var summariesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "summaries_total",
	Help: "Summary generations labelled by execution mode and outcome",
}, []string{"mode", "outcome"})

var fragmentsEmitted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "summary_fragments_emitted_total",
	Help: "Number of streamed fragments forwarded to clients",
})

var activeSummaries = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_summaries",
	Help: "Number of summaries currently being generated",
})

var promptCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "prompt_cache_lookups_total",
	Help: "Prompt cache lookups labelled by result",
}, []string{"result"})

var storedSummaries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "stored_summaries_total",
	Help: "Store calls labelled by whether a new record was written or an existing one kept",
}, []string{"result"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "summary_duration_seconds",
	Help:    "Total time spent generating a summary.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"mode"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30},
}, []string{"service"})

var lifecycleEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "lifecycle_events_total",
	Help: "Lifecycle events labelled by type and outcome",
}, []string{"type", "outcome"})

var activeEventWorkers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_event_workers",
	Help: "Number of running lifecycle event workers",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func CaptureRequest(path string, status int) {
	HttpRequestsTotal.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

func SummaryStarted() {
	activeSummaries.Inc()
}

func SummaryFinished(mode string, outcome string, timeElapsed time.Duration) {
	activeSummaries.Dec()
	summariesTotal.WithLabelValues(mode, outcome).Inc()
	requestDuration.WithLabelValues(mode).Observe(timeElapsed.Seconds())
}

func IncrementFragmentsEmitted() {
	fragmentsEmitted.Inc()
}

func CaptureCacheLookup(hit bool) {
	if hit {
		promptCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	promptCacheLookups.WithLabelValues("miss").Inc()
}

func CaptureStoredSummary(existing bool) {
	if existing {
		storedSummaries.WithLabelValues("existing").Inc()
		return
	}
	storedSummaries.WithLabelValues("created").Inc()
}

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureLifecycleEvent(eventType string, outcome string) {
	lifecycleEvents.WithLabelValues(eventType, outcome).Inc()
}

func IncrementActiveEventWorkers() {
	activeEventWorkers.Inc()
}

func DecrementActiveEventWorkers() {
	activeEventWorkers.Dec()
}
