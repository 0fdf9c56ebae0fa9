package llmMocks

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
)

// MockInvoker implements llm.Invoker
type MockInvoker struct {
	ModelName string
	OnInvoke  func(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error)
	OnStream  func(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error]

	InvokeCalls atomic.Int32
	StreamCalls atomic.Int32
}

func (m *MockInvoker) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

func (m *MockInvoker) Invoke(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
	m.InvokeCalls.Add(1)
	if m.OnInvoke != nil {
		return m.OnInvoke(ctx, prompt)
	}
	return llm.GenerationResult{Text: "mocked summary", Generation: &summaryModel.GenerationInfo{Model: m.Model()}}, nil
}

func (m *MockInvoker) Stream(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	m.StreamCalls.Add(1)
	if m.OnStream != nil {
		return m.OnStream(ctx, prompt)
	}
	return Fragments(&summaryModel.GenerationInfo{Model: m.Model()}, "mocked ", "summary")
}

// Fragments streams the deltas followed by a terminal fragment carrying generation.
func Fragments(generation *summaryModel.GenerationInfo, deltas ...string) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		for _, d := range deltas {
			if !yield(summaryModel.SummaryFragment{Delta: d}, nil) {
				return
			}
		}
		yield(summaryModel.SummaryFragment{Final: true, Generation: generation}, nil)
	}
}

// FailingAfter streams the deltas and then fails with err, without a terminal fragment.
func FailingAfter(err error, deltas ...string) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		for _, d := range deltas {
			if !yield(summaryModel.SummaryFragment{Delta: d}, nil) {
				return
			}
		}
		yield(summaryModel.SummaryFragment{}, err)
	}
}
