package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/sony/gobreaker/v2"
)

var ErrEmptyStream = errors.New("model stream ended without output")

type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

// DefaultClassifier retries temporary failures; caller cancellation is neither retried nor counted.
func DefaultClassifier(err error) ErrorClassification {
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorClassification{Retryable: false, RecordFailure: false}
	case summaryModel.IsKind(err, summaryModel.ErrTemporary):
		return ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

// Executor runs an operation with bounded retries behind a per operation circuit breaker.
type Executor struct {
	cfg        config.ResilienceSettings
	multiplier float64
	logger     *logger_i.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(cfg config.ResilienceSettings) *Executor {
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = 1
	}
	if cfg.RetryMaxBackoff < cfg.RetryInitialBackoff {
		cfg.RetryMaxBackoff = cfg.RetryInitialBackoff
	}
	if cfg.BreakerFailureRatio <= 0 || cfg.BreakerFailureRatio > 1 {
		cfg.BreakerFailureRatio = 0.5
	}
	return &Executor{
		cfg:        cfg,
		multiplier: 2.0,
		logger:     logger_i.NewLogger("Resilience"),
		breakers:   make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, classifier ErrorClassifier) error {
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classifier == nil {
		classifier = DefaultClassifier
	}
	if !e.cfg.BreakerEnabled {
		return e.executeWithRetry(ctx, op, fn, classifier)
	}

	_, err := e.circuitBreaker(op, classifier).Execute(func() (any, error) {
		return nil, e.executeWithRetry(ctx, op, fn, classifier)
	})
	return err
}

func (e *Executor) executeWithRetry(ctx context.Context, operation string, fn func(context.Context) error, classifier ErrorClassifier) error {
	backoff := e.cfg.RetryInitialBackoff
	for attempt := 1; attempt <= e.cfg.RetryMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := fn(ctx)
		metrics.CaptureExecutionMetrics(operation, time.Since(start))
		if err == nil {
			return nil
		}
		if !classifier(err).Retryable || attempt == e.cfg.RetryMaxAttempts {
			return err
		}

		wait := min(backoff, e.cfg.RetryMaxBackoff)
		e.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.RetryMaxAttempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
		backoff = min(time.Duration(float64(backoff)*e.multiplier), e.cfg.RetryMaxBackoff)
	}
	return nil
}

func (e *Executor) circuitBreaker(operation string, classifier ErrorClassifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}
	settings := gobreaker.Settings{
		Name:        operation,
		MaxRequests: 2,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}
	breaker := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[operation] = breaker
	return breaker
}

// IsCircuitOpen reports a call rejected by an open or half-open breaker without reaching the model.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// ResilientInvoker retries model calls. A stream is only retried until its first fragment arrives,
// so no delta is ever delivered twice.
type ResilientInvoker struct {
	inner      Invoker
	executor   *Executor
	classifier ErrorClassifier
}

func NewResilientInvoker(inner Invoker, executor *Executor) *ResilientInvoker {
	return &ResilientInvoker{inner: inner, executor: executor, classifier: DefaultClassifier}
}

func (r *ResilientInvoker) Model() string {
	return r.inner.Model()
}

func (r *ResilientInvoker) operation(mode string) string {
	return fmt.Sprintf("model.%s.%s", r.inner.Model(), mode)
}

func (r *ResilientInvoker) Invoke(ctx context.Context, prompt Prompt) (GenerationResult, error) {
	var result GenerationResult
	err := r.executor.Execute(ctx, r.operation("invoke"), func(ctx context.Context) error {
		var err error
		result, err = r.inner.Invoke(ctx, prompt)
		return err
	}, r.classifier)
	return result, err
}

func (r *ResilientInvoker) Stream(ctx context.Context, prompt Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		var (
			next  func() (summaryModel.SummaryFragment, error, bool)
			stop  func()
			first summaryModel.SummaryFragment
		)
		err := r.executor.Execute(ctx, r.operation("stream"), func(ctx context.Context) error {
			n, s := iter.Pull2(r.inner.Stream(ctx, prompt))
			fragment, err, ok := n()
			if err != nil || !ok {
				s()
				if err == nil {
					err = ErrEmptyStream
				}
				return err
			}
			next, stop, first = n, s, fragment
			return nil
		}, r.classifier)
		if err != nil {
			yield(summaryModel.SummaryFragment{}, err)
			return
		}
		defer stop()

		if !yield(first, nil) || first.Final {
			return
		}
		for {
			fragment, err, ok := next()
			if !ok {
				return
			}
			if !yield(fragment, err) || err != nil {
				return
			}
		}
	}
}
