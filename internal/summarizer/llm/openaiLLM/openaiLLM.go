package openaiLLM

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	client    *openai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewClient returns the raw SDK client for an OpenAI compatible server. Ollama is served under /v1.
func NewClient(settings config.ChatModelSettings, httpClient *http.Client) *openai.Client {
	opts := []option.RequestOption{option.WithHTTPClient(httpClient)}
	apiKey := settings.APIKey
	if settings.Service == config.ChatModelOllama {
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = config.DefaultOllamaBaseURL
		}
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/v1/"))
		if apiKey == "" {
			apiKey = "ollama"
		}
	} else if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	opts = append(opts, option.WithAPIKey(apiKey))

	c := openai.NewClient(opts...)
	return &c
}

func NewOpenAIInvoker(client *openai.Client, modelName string) llm.Invoker {
	return &llmClient{client: client, modelName: modelName, logger: logger_i.NewLogger("llm_openai")}
}

func (c *llmClient) Model() string {
	return c.modelName
}

func (c *llmClient) params(prompt llm.Prompt) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt.Messages))
	for _, m := range prompt.Messages {
		if m.Role == llm.RoleSystem {
			messages = append(messages, openai.SystemMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(config.ModelTemperature),
	}
}

func (c *llmClient) Invoke(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
	c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("invoking chat completion", "model", c.modelName)
	resp, err := c.client.Chat.Completions.New(ctx, c.params(prompt))
	if err != nil {
		return llm.GenerationResult{}, classify(err)
	}
	if len(resp.Choices) == 0 {
		return llm.GenerationResult{}, errors.New("openai: response carries no choices")
	}

	generation := &summaryModel.GenerationInfo{
		ID:               resp.ID,
		Model:            resp.Model,
		FinishReason:     resp.Choices[0].FinishReason,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		ResponseMetadata: map[string]any{},
		CreatedAt:        time.Unix(resp.Created, 0).UTC(),
	}
	if resp.SystemFingerprint != "" {
		generation.ResponseMetadata["system_fingerprint"] = resp.SystemFingerprint
	}
	return llm.GenerationResult{Text: resp.Choices[0].Message.Content, Generation: generation}, nil
}

func (c *llmClient) Stream(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("streaming chat completion", "model", c.modelName)
		params := c.params(prompt)
		params.StreamOptions = openai.ChatCompletionStreamOptionsParam{IncludeUsage: openai.Bool(true)}

		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		generation := &summaryModel.GenerationInfo{Model: c.modelName, ResponseMetadata: map[string]any{}}
		for stream.Next() {
			chunk := stream.Current()
			if chunk.ID != "" {
				generation.ID = chunk.ID
			}
			if chunk.Model != "" {
				generation.Model = chunk.Model
			}
			if chunk.Created != 0 {
				generation.CreatedAt = time.Unix(chunk.Created, 0).UTC()
			}
			if chunk.Usage.TotalTokens > 0 {
				generation.PromptTokens = chunk.Usage.PromptTokens
				generation.CompletionTokens = chunk.Usage.CompletionTokens
				generation.TotalTokens = chunk.Usage.TotalTokens
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			if reason := chunk.Choices[0].FinishReason; reason != "" {
				generation.FinishReason = reason
			}
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if !yield(summaryModel.SummaryFragment{Delta: delta}, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(summaryModel.SummaryFragment{}, classify(err))
			return
		}
		yield(summaryModel.SummaryFragment{Final: true, Generation: generation}, nil)
	}
}

// classify marks rate limits and server side failures as temporary.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError {
			return summaryModel.WrapError(summaryModel.ErrTemporary, "openai", err)
		}
	}
	return fmt.Errorf("openai: %w", err)
}
