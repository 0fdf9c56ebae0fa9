package summarizer

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/akolanti/GoSummary/internal/api"
	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

const persistTimeout = 30 * time.Second

var streamLogger = logger_i.NewLogger("Streaming")

// Streaming forwards every fragment as soon as it arrives and persists once the model is done.
type Streaming struct {
	results *ResultManager
}

func (s *Streaming) Mode() config.ExecutionMode {
	return config.ModeStream
}

func (s *Streaming) Run(ctx context.Context, invoker llm.Invoker, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return invoker.Stream(ctx, prompt)
}

func (s *Streaming) ProcessSummaryGeneration(ctx context.Context, sum *Summarizer, doc Document, emitter Emitter) (string, error) {
	log := streamLogger.WithTrace(ctx, config.TRACE_ID_KEY).With("file", doc.FileName)

	sum = sum.withStrategy(s)

	id := SummaryID(sum.Variant(), sum.Model(), doc.Content)
	existing, found, err := s.results.Existing(ctx, id)
	if err != nil {
		return "", err
	}
	if found {
		log.Info("replaying stored summary", "summaryId", id)
		if err = emitter.Emit(api.SummarizeChunk{Content: existing.Summary}); err != nil {
			return "", err
		}
		return id, emitter.Emit(api.SummarizeChunk{Content: "", SummaryID: id})
	}

	segments, loaderName, err := sum.Load(ctx, doc)
	if err != nil {
		return "", err
	}

	// one producer pulls from the model, one consumer forwards; the channel holds at most one fragment
	g, gctx := errgroup.WithContext(ctx)
	fragments := make(chan summaryModel.SummaryFragment, 1)

	g.Go(func() error {
		defer close(fragments)
		for fragment, err := range sum.Summarize(gctx, segments) {
			if err != nil {
				return summaryModel.WithCollaborator(summaryModel.CollaboratorModel, err)
			}
			select {
			case fragments <- fragment:
			case <-gctx.Done():
				return gctx.Err()
			}
			if fragment.Final {
				return nil
			}
		}
		return nil
	})

	var (
		text       strings.Builder
		generation *summaryModel.GenerationInfo
		completed  bool
	)
	g.Go(func() error {
		for fragment := range fragments {
			text.WriteString(fragment.Delta)
			if fragment.Delta != "" {
				if err := emitter.Emit(api.SummarizeChunk{Content: fragment.Delta}); err != nil {
					return err
				}
				metrics.IncrementFragmentsEmitted()
			}
			if fragment.Final {
				generation = fragment.Generation
				completed = true
			}
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		log.Error("stream aborted, nothing stored", "error", err)
		return "", err
	}
	if !completed {
		return "", summaryModel.WithCollaborator(summaryModel.CollaboratorModel, ErrIncompleteStream)
	}

	// the model finished, a caller that leaves now no longer prevents the record
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	storedID, storedText, err := s.results.Persist(persistCtx, id, text.String(), sum.Metadata(doc.FileName, loaderName, generation), doc.Content)
	if err != nil {
		log.Error("could not persist summary", "error", err)
		return "", err
	}
	if storedText != text.String() {
		// the record under this id does not hold what was streamed, so its id is not sent
		log.Warn("another generation of this document was stored first", "summaryId", storedID)
		return "", summaryModel.WithCollaborator(summaryModel.CollaboratorStore, ErrSummaryConflict)
	}
	return storedID, emitter.Emit(api.SummarizeChunk{Content: "", SummaryID: storedID})
}
