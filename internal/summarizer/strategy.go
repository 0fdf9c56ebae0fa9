package summarizer

import (
	"context"
	"errors"
	"iter"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
)

var ErrIncompleteStream = errors.New("model stream ended without a terminal fragment")

// ErrSummaryConflict ends a stream whose text lost the insert race for its id.
var ErrSummaryConflict = errors.New("a different summary of this document was stored concurrently")

// Emitter delivers response messages to the caller in order.
type Emitter interface {
	Emit(chunk api.SummarizeChunk) error
}

type EmitterFunc func(chunk api.SummarizeChunk) error

func (f EmitterFunc) Emit(chunk api.SummarizeChunk) error {
	return f(chunk)
}

// ExecutionStrategy decides how model output reaches the caller.
type ExecutionStrategy interface {
	Mode() config.ExecutionMode
	Run(ctx context.Context, invoker llm.Invoker, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error]
	ProcessSummaryGeneration(ctx context.Context, s *Summarizer, doc Document, emitter Emitter) (string, error)
}

// NewStrategy resolves an execution mode to its strategy.
func NewStrategy(mode config.ExecutionMode, results *ResultManager) (ExecutionStrategy, error) {
	switch mode {
	case config.ModeStream:
		return &Streaming{results: results}, nil
	case config.ModeInvoke:
		return &Invoke{results: results}, nil
	default:
		_, err := config.ParseExecutionMode(string(mode))
		return nil, err
	}
}
