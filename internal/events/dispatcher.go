package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

// Sink delivers one lifecycle event to an external consumer.
type Sink interface {
	Deliver(ctx context.Context, event summaryModel.LifecycleEvent) error
}

type SinkFunc func(ctx context.Context, event summaryModel.LifecycleEvent) error

func (f SinkFunc) Deliver(ctx context.Context, event summaryModel.LifecycleEvent) error {
	return f(ctx, event)
}

// Dispatcher is a fixed worker pool fanning lifecycle events out to its sinks.
// Publish never blocks: events are dropped once the buffer is full.
type Dispatcher struct {
	eventChannel       chan summaryModel.LifecycleEvent
	sinks              []Sink
	workerCount        int
	workerWaitGroup    sync.WaitGroup
	currentWorkerCount atomic.Int64

	mu      sync.RWMutex
	stopped bool
	logger  *logger_i.Logger
}

func NewDispatcher(workerCount int, bufferLimit int, sinks ...Sink) *Dispatcher {
	if workerCount < 1 {
		workerCount = 1
	}
	if bufferLimit < 0 {
		bufferLimit = 0
	}
	return &Dispatcher{
		eventChannel: make(chan summaryModel.LifecycleEvent, bufferLimit),
		sinks:        sinks,
		workerCount:  workerCount,
		logger:       logger_i.NewLogger("EventDispatcher"),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.logger.Info("Initializing event worker pool", "workers", d.workerCount, "sinks", len(d.sinks))
	for range d.workerCount {
		d.createWorker()
	}
}

func (d *Dispatcher) Publish(ctx context.Context, event summaryModel.LifecycleEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.CaptureLifecycleEvent(string(event.Type), "dropped")
		return
	}

	select {
	case d.eventChannel <- event:
	default:
		d.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("event buffer full, dropping event", "type", event.Type, "summaryId", event.SummaryID)
		metrics.CaptureLifecycleEvent(string(event.Type), "dropped")
	}
}

// Stop refuses new events, lets the workers drain what is queued and waits for them
// or for ctx, whichever comes first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.eventChannel)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workerWaitGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("Event workers drained")
		return nil
	case <-ctx.Done():
		d.logger.Warn("Event workers did not drain in time", "remaining", len(d.eventChannel))
		return ctx.Err()
	}
}

func (d *Dispatcher) WorkerCount() int64 {
	return d.currentWorkerCount.Load()
}

func (d *Dispatcher) createWorker() {
	d.workerWaitGroup.Add(1)
	d.currentWorkerCount.Add(1)
	metrics.IncrementActiveEventWorkers()
	go d.worker()
}

func (d *Dispatcher) worker() {
	defer d.removeWorker()
	for event := range d.eventChannel {
		d.deliver(event)
	}
}

func (d *Dispatcher) removeWorker() {
	d.currentWorkerCount.Add(-1)
	metrics.DecrementActiveEventWorkers()
	d.workerWaitGroup.Done()
}

func (d *Dispatcher) deliver(event summaryModel.LifecycleEvent) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, event.TraceID)
	ctx, cancel := context.WithTimeout(ctxTrace, config.EventDeliveryTimeout)
	defer cancel()

	outcome := "delivered"
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, event); err != nil {
			outcome = "failed"
			d.logger.WithTrace(ctx, config.TRACE_ID_KEY).Error("event delivery failed", "type", event.Type, "summaryId", event.SummaryID, "error", err)
		}
	}
	metrics.CaptureLifecycleEvent(string(event.Type), outcome)
}
