package summarizer

import (
	"context"
	"iter"
	"strings"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

var invokeLogger = logger_i.NewLogger("Invoke")

// Invoke waits for the complete summary and answers with a single message.
type Invoke struct {
	results *ResultManager
}

func (i *Invoke) Mode() config.ExecutionMode {
	return config.ModeInvoke
}

// Run yields the whole result as one terminal fragment.
func (i *Invoke) Run(ctx context.Context, invoker llm.Invoker, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		result, err := invoker.Invoke(ctx, prompt)
		if err != nil {
			yield(summaryModel.SummaryFragment{}, err)
			return
		}
		yield(summaryModel.SummaryFragment{Delta: result.Text, Final: true, Generation: result.Generation}, nil)
	}
}

func (i *Invoke) ProcessSummaryGeneration(ctx context.Context, sum *Summarizer, doc Document, emitter Emitter) (string, error) {
	log := invokeLogger.WithTrace(ctx, config.TRACE_ID_KEY).With("file", doc.FileName)

	sum = sum.withStrategy(i)

	id := SummaryID(sum.Variant(), sum.Model(), doc.Content)
	existing, found, err := i.results.Existing(ctx, id)
	if err != nil {
		return "", err
	}
	if found {
		log.Info("replaying stored summary", "summaryId", id)
		return id, emitter.Emit(api.SummarizeChunk{Content: existing.Summary, SummaryID: id})
	}

	segments, loaderName, err := sum.Load(ctx, doc)
	if err != nil {
		return "", err
	}

	var (
		text       strings.Builder
		generation *summaryModel.GenerationInfo
		completed  bool
	)
	for fragment, err := range sum.Summarize(ctx, segments) {
		if err != nil {
			log.Error("generation failed, nothing stored", "error", err)
			return "", summaryModel.WithCollaborator(summaryModel.CollaboratorModel, err)
		}
		text.WriteString(fragment.Delta)
		if fragment.Final {
			generation = fragment.Generation
			completed = true
			break
		}
	}
	if !completed {
		return "", summaryModel.WithCollaborator(summaryModel.CollaboratorModel, ErrIncompleteStream)
	}

	storedID, storedText, err := i.results.Persist(ctx, id, text.String(), sum.Metadata(doc.FileName, loaderName, generation), doc.Content)
	if err != nil {
		return "", err
	}
	if storedText != text.String() {
		log.Info("another generation of this document was stored first, answering with it", "summaryId", storedID)
	}
	return storedID, emitter.Emit(api.SummarizeChunk{Content: storedText, SummaryID: storedID})
}
