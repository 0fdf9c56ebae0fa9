package llm_test

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/data/cache"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/internal/summarizer/llm/llmMocks"
)

var testPrompt = llm.Prompt{Messages: []llm.Message{
	{Role: llm.RoleSystem, Content: "Summarize."},
	{Role: llm.RoleUser, Content: "some text"},
}}

func collect(t *testing.T, seq iter.Seq2[summaryModel.SummaryFragment, error]) ([]summaryModel.SummaryFragment, error) {
	t.Helper()
	var fragments []summaryModel.SummaryFragment
	for f, err := range seq {
		if err != nil {
			return fragments, err
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

func TestPromptString(t *testing.T) {
	want := "system: Summarize.\nuser: some text"
	if got := testPrompt.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCachedInvokerInvokeHit(t *testing.T) {
	mock := &llmMocks.MockInvoker{}
	invoker := llm.NewCachedInvoker(mock, cache.NewInMemoryPromptCache(time.Minute))

	first, err := invoker.Invoke(context.Background(), testPrompt)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	second, err := invoker.Invoke(context.Background(), testPrompt)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if first.Text != second.Text {
		t.Errorf("cached text mismatch: %q vs %q", first.Text, second.Text)
	}
	if calls := mock.InvokeCalls.Load(); calls != 1 {
		t.Errorf("expected 1 model call, got %d", calls)
	}
	if second.Generation.ResponseMetadata["cached"] != true {
		t.Errorf("expected cached marker in metadata")
	}
}

func TestCachedInvokerStreamReplaysSingleFragment(t *testing.T) {
	mock := &llmMocks.MockInvoker{}
	invoker := llm.NewCachedInvoker(mock, cache.NewInMemoryPromptCache(time.Minute))

	fragments, err := collect(t, invoker.Stream(context.Background(), testPrompt))
	if err != nil || len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d err=%v", len(fragments), err)
	}

	replayed, err := collect(t, invoker.Stream(context.Background(), testPrompt))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if len(replayed) != 1 || !replayed[0].Final || replayed[0].Delta != "mocked summary" {
		t.Fatalf("expected one terminal fragment with the cached text, got %+v", replayed)
	}
	if calls := mock.StreamCalls.Load(); calls != 1 {
		t.Errorf("expected 1 model call, got %d", calls)
	}
}

func TestCachedInvokerDoesNotCacheFailedStream(t *testing.T) {
	boom := errors.New("boom")
	mock := &llmMocks.MockInvoker{
		OnStream: func(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
			return llmMocks.FailingAfter(boom, "partial")
		},
	}
	memory := cache.NewInMemoryPromptCache(time.Minute)
	invoker := llm.NewCachedInvoker(mock, memory)

	if _, err := collect(t, invoker.Stream(context.Background(), testPrompt)); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := collect(t, invoker.Stream(context.Background(), testPrompt)); !errors.Is(err, boom) {
		t.Fatalf("a failed stream must not be cached, got %v", err)
	}
}

func testExecutor() *llm.Executor {
	return llm.NewExecutor(config.ResilienceSettings{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		BreakerEnabled:      true,
		BreakerMinRequests:  100,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Second,
	})
}

func TestResilientInvokerRetriesTemporaryInvoke(t *testing.T) {
	mock := &llmMocks.MockInvoker{}
	mock.OnInvoke = func(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
		if mock.InvokeCalls.Load() < 3 {
			return llm.GenerationResult{}, summaryModel.WrapError(summaryModel.ErrTemporary, "test", nil)
		}
		return llm.GenerationResult{Text: "ok"}, nil
	}

	result, err := llm.NewResilientInvoker(mock, testExecutor()).Invoke(context.Background(), testPrompt)
	if err != nil || result.Text != "ok" {
		t.Fatalf("expected ok after retries, got %q %v", result.Text, err)
	}
	if calls := mock.InvokeCalls.Load(); calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestResilientInvokerDoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("bad request")
	mock := &llmMocks.MockInvoker{
		OnInvoke: func(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
			return llm.GenerationResult{}, permanent
		},
	}
	_, err := llm.NewResilientInvoker(mock, testExecutor()).Invoke(context.Background(), testPrompt)
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls := mock.InvokeCalls.Load(); calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestResilientInvokerRetriesStreamOnlyBeforeFirstFragment(t *testing.T) {
	temporary := summaryModel.WrapError(summaryModel.ErrTemporary, "test", nil)
	mock := &llmMocks.MockInvoker{}
	mock.OnStream = func(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
		if mock.StreamCalls.Load() == 1 {
			return llmMocks.FailingAfter(temporary)
		}
		return llmMocks.Fragments(nil, "a", "b")
	}

	fragments, err := collect(t, llm.NewResilientInvoker(mock, testExecutor()).Stream(context.Background(), testPrompt))
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	var text strings.Builder
	for _, f := range fragments {
		text.WriteString(f.Delta)
	}
	if text.String() != "ab" || !fragments[len(fragments)-1].Final {
		t.Errorf("unexpected fragments %+v", fragments)
	}

	mock.StreamCalls.Store(0)
	mock.OnStream = func(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
		return llmMocks.FailingAfter(temporary, "partial")
	}
	fragments, err = collect(t, llm.NewResilientInvoker(mock, testExecutor()).Stream(context.Background(), testPrompt))
	if !summaryModel.IsKind(err, summaryModel.ErrTemporary) {
		t.Fatalf("expected the mid-stream error, got %v", err)
	}
	if len(fragments) != 1 || fragments[0].Delta != "partial" {
		t.Errorf("expected the partial fragment once, got %+v", fragments)
	}
	if calls := mock.StreamCalls.Load(); calls != 1 {
		t.Errorf("mid-stream failures must not be retried, got %d calls", calls)
	}
}

func TestResilientInvokerOpenCircuitSkipsModel(t *testing.T) {
	executor := llm.NewExecutor(config.ResilienceSettings{
		RetryMaxAttempts:    1,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  time.Minute,
	})
	mock := &llmMocks.MockInvoker{
		OnInvoke: func(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
			return llm.GenerationResult{}, errors.New("provider down")
		},
	}
	invoker := llm.NewResilientInvoker(mock, executor)

	for i := 0; i < 2; i++ {
		if _, err := invoker.Invoke(context.Background(), testPrompt); err == nil || llm.IsCircuitOpen(err) {
			t.Fatalf("call %d: expected the provider error, got %v", i, err)
		}
	}
	_, err := invoker.Invoke(context.Background(), testPrompt)
	if !llm.IsCircuitOpen(err) {
		t.Fatalf("expected an open circuit, got %v", err)
	}
	if calls := mock.InvokeCalls.Load(); calls != 2 {
		t.Errorf("model called through an open circuit: %d calls", calls)
	}
}
