package llm

import (
	"context"
	"iter"
	"strings"

	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

type Prompt struct {
	Messages []Message
}

// String renders the prompt one message per line, used for cache keys and metadata.
func (p Prompt) String() string {
	var b strings.Builder
	for i, m := range p.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

type GenerationResult struct {
	Text       string
	Generation *summaryModel.GenerationInfo
}

// Invoker drives one chat model. Stream yields fragments in arrival order and ends with a Final fragment;
// an error is always the last item yielded.
type Invoker interface {
	Invoke(ctx context.Context, prompt Prompt) (GenerationResult, error)
	Stream(ctx context.Context, prompt Prompt) iter.Seq2[summaryModel.SummaryFragment, error]
	Model() string
}
