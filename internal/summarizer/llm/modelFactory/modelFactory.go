package modelFactory

import (
	"context"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/customHttpClient"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/internal/summarizer/llm/gemini"
	"github.com/akolanti/GoSummary/internal/summarizer/llm/openaiLLM"
	"github.com/akolanti/GoSummary/internal/summarizer/loader"
)

type invokerFactory func(ctx context.Context, settings config.ChatModelSettings) (llm.Invoker, error)

var invokerFactories = map[config.ChatModelService]invokerFactory{
	config.ChatModelGoogleGenAI:  newGemini,
	config.ChatModelGoogleVertex: newGemini,
	config.ChatModelOllama:       newOpenAICompatible,
	config.ChatModelOpenAI:       newOpenAICompatible,
}

func newGemini(ctx context.Context, settings config.ChatModelSettings) (llm.Invoker, error) {
	return gemini.NewGeminiClient(ctx, settings, customHttpClient.NewHTTPClient(config.LLMRequestTimeout))
}

func newOpenAICompatible(_ context.Context, settings config.ChatModelSettings) (llm.Invoker, error) {
	client := openaiLLM.NewClient(settings, customHttpClient.NewHTTPClient(config.LLMRequestTimeout))
	return openaiLLM.NewOpenAIInvoker(client, settings.Model), nil
}

// NewInvoker builds the configured model client wrapped as cache -> resilience -> client.
func NewInvoker(ctx context.Context, settings config.Settings, cache summaryModel.PromptCache) (llm.Invoker, error) {
	factory, ok := invokerFactories[settings.ChatModel.Service]
	if !ok {
		_, err := config.ParseChatModelService(string(settings.ChatModel.Service))
		return nil, err
	}
	base, err := factory(ctx, settings.ChatModel)
	if err != nil {
		return nil, summaryModel.WithCollaborator(summaryModel.CollaboratorModel, err)
	}

	var invoker llm.Invoker = llm.NewResilientInvoker(base, llm.NewExecutor(settings.Resilience))
	if cache != nil {
		invoker = llm.NewCachedInvoker(invoker, cache)
	}
	return invoker, nil
}

// NewTranscriber returns nil when no transcription model is configured, which leaves audio uploads disabled.
func NewTranscriber(settings config.ChatModelSettings) loader.Transcriber {
	if settings.TranscriptionModel == "" {
		return nil
	}
	switch settings.Service {
	case config.ChatModelOpenAI, config.ChatModelOllama:
		client := openaiLLM.NewClient(settings, customHttpClient.NewHTTPClient(config.LLMRequestTimeout))
		return loader.NewOpenAITranscriber(client, settings.TranscriptionModel)
	default:
		return nil
	}
}
