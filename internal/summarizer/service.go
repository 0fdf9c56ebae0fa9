package summarizer

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/internal/summarizer/loader"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

type Service interface {
	Summarize(ctx context.Context, doc Document, mode config.ExecutionMode, emitter Emitter) (string, error)
	StoreFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error
	GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error)
	DefaultMode() config.ExecutionMode
	SupportedMIMETypes() []string
}

// ServiceConfig is read once by NewService.
type ServiceConfig struct {
	Variant     config.SummarizerVariant
	DefaultMode config.ExecutionMode
	ChatModel   config.ChatModelSettings
	Invoker     llm.Invoker
	Loaders     *loader.Registry
	Store       summaryModel.SummaryStore
	Publisher   summaryModel.EventPublisher
}

type service struct {
	defaultMode config.ExecutionMode
	summarizers map[config.ExecutionMode]*Summarizer
	results     *ResultManager
	loaders     *loader.Registry
	logger      *logger_i.Logger
}

func NewService(cfg ServiceConfig) (Service, error) {
	if _, err := config.ParseSummarizerVariant(string(cfg.Variant)); err != nil {
		return nil, err
	}
	if _, err := config.ParseExecutionMode(string(cfg.DefaultMode)); err != nil {
		return nil, err
	}
	if cfg.Invoker == nil || cfg.Store == nil {
		return nil, errors.New("summarizer service needs an invoker and a store")
	}
	if cfg.Loaders == nil {
		cfg.Loaders = loader.NewRegistry(loader.Options{})
	}

	results := NewResultManager(cfg.Store, cfg.Publisher)
	base := &Summarizer{
		variant:   cfg.Variant,
		chatModel: cfg.ChatModel,
		invoker:   cfg.Invoker,
		loaders:   cfg.Loaders,
	}

	summarizers := make(map[config.ExecutionMode]*Summarizer, len(config.ExecutionModes))
	for _, mode := range config.ExecutionModes {
		strategy, err := NewStrategy(mode, results)
		if err != nil {
			return nil, err
		}
		summarizers[mode] = base.withStrategy(strategy)
	}

	return &service{
		defaultMode: cfg.DefaultMode,
		summarizers: summarizers,
		results:     results,
		loaders:     cfg.Loaders,
		logger:      logger_i.NewLogger("SummarizerService"),
	}, nil
}

func (s *service) DefaultMode() config.ExecutionMode {
	return s.defaultMode
}

func (s *service) SupportedMIMETypes() []string {
	return s.loaders.Supported()
}

// Summarize runs the whole pipeline for one document and returns the summary id.
func (s *service) Summarize(ctx context.Context, doc Document, mode config.ExecutionMode, emitter Emitter) (string, error) {
	if mode == "" {
		mode = s.defaultMode
	}
	sum, ok := s.summarizers[mode]
	if !ok {
		_, err := config.ParseExecutionMode(string(mode))
		return "", summaryModel.WrapError(summaryModel.ErrInvalidInput, "execution mode", err)
	}

	start := time.Now()
	metrics.SummaryStarted()
	id, err := sum.strategy.ProcessSummaryGeneration(ctx, sum, doc, emitter)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.SummaryFinished(string(mode), outcome, time.Since(start))
	s.logger.WithTrace(ctx, config.TRACE_ID_KEY).Info("summary request finished", "mode", mode, "outcome", outcome, "summaryId", id)
	return id, err
}

func (s *service) StoreFeedback(ctx context.Context, feedback summaryModel.FeedbackRecord) error {
	return s.results.StoreSummaryFeedback(ctx, feedback)
}

func (s *service) GetSummary(ctx context.Context, id string) (summaryModel.StoredSummaryRecord, error) {
	return s.results.GetSummary(ctx, id)
}
