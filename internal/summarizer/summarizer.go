package summarizer

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/internal/summarizer/loader"
)

// Document is one uploaded file as seen by the pipeline.
type Document struct {
	Path     string
	FileName string
	Content  []byte
}

// Summarizer turns segments into a prompt and drives the model through the execution strategy.
// It neither persists nor retries.
type Summarizer struct {
	variant   config.SummarizerVariant
	chatModel config.ChatModelSettings
	invoker   llm.Invoker
	loaders   *loader.Registry
	strategy  ExecutionStrategy
}

// withStrategy returns a copy bound to another execution strategy.
func (s *Summarizer) withStrategy(strategy ExecutionStrategy) *Summarizer {
	c := *s
	c.strategy = strategy
	return &c
}

func (s *Summarizer) Variant() config.SummarizerVariant {
	return s.variant
}

func (s *Summarizer) Model() string {
	return s.invoker.Model()
}

// Load reads the document into ordered segments and reports the detected MIME type.
func (s *Summarizer) Load(ctx context.Context, doc Document) ([]summaryModel.DocumentSegment, string, error) {
	segments, mimeType, err := s.loaders.Load(ctx, doc.Path)
	if err != nil {
		return nil, mimeType, summaryModel.WithCollaborator(summaryModel.CollaboratorLoader, err)
	}
	return segments, mimeType, nil
}

// BuildInput concatenates the segment texts in ordinal order, each followed by a newline.
func BuildInput(segments []summaryModel.DocumentSegment) string {
	ordered := slices.Clone(segments)
	slices.SortStableFunc(ordered, func(a, b summaryModel.DocumentSegment) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})

	var b strings.Builder
	for _, segment := range ordered {
		b.WriteString(segment.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Summarizer) Prompt(segments []summaryModel.DocumentSegment) llm.Prompt {
	return BuildPrompt(BuildInput(segments), s.chatModel.HasSystemMessageSupport())
}

// Summarize formats the prompt and hands it to the configured strategy.
func (s *Summarizer) Summarize(ctx context.Context, segments []summaryModel.DocumentSegment) iter.Seq2[summaryModel.SummaryFragment, error] {
	return s.strategy.Run(ctx, s.invoker, s.Prompt(segments))
}

// Metadata merges the static description of the pipeline with what the model reported.
// Missing model fields get zero values.
func (s *Summarizer) Metadata(fileName string, loaderName string, generation *summaryModel.GenerationInfo) map[string]any {
	metadata := map[string]any{
		"summarizer":             string(s.variant),
		"loader":                 loaderName,
		"input_file":             fileName,
		"chatmodel":              string(s.chatModel.Service),
		"model_name":             s.invoker.Model(),
		"has_system_msg_support": s.chatModel.HasSystemMessageSupport(),
		"prompt":                 PromptTemplate(s.chatModel.HasSystemMessageSupport()),
	}

	if generation == nil {
		generation = &summaryModel.GenerationInfo{}
	}
	responseMetadata := generation.ResponseMetadata
	if responseMetadata == nil {
		responseMetadata = map[string]any{}
	}
	metadata["response_metadata"] = responseMetadata
	metadata["generation_id"] = generation.ID
	metadata["finish_reason"] = generation.FinishReason
	metadata["usage"] = map[string]any{
		"prompt_tokens":     generation.PromptTokens,
		"completion_tokens": generation.CompletionTokens,
		"total_tokens":      generation.TotalTokens,
	}
	if generation.Model != "" {
		metadata["model_name"] = generation.Model
	}
	if !generation.CreatedAt.IsZero() {
		metadata["created_at"] = generation.CreatedAt
	}
	return metadata
}
