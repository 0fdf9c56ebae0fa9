package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/summarizer/llm"
	"github.com/akolanti/GoSummary/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

// NewGeminiClient builds an invoker for the Gemini API, or for Vertex AI when settings name google-vertex.
func NewGeminiClient(ctx context.Context, settings config.ChatModelSettings, httpClient *http.Client) (llm.Invoker, error) {
	clientConfig := &genai.ClientConfig{HTTPClient: httpClient}
	switch settings.Service {
	case config.ChatModelGoogleVertex:
		clientConfig.Backend = genai.BackendVertexAI
		clientConfig.Project = settings.Project
		clientConfig.Location = settings.Location
	default:
		clientConfig.Backend = genai.BackendGeminiAPI
		clientConfig.APIKey = settings.APIKey
	}

	c, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", settings.Model, "service", string(settings.Service))
	return newLLMClient(c, settings.Model), nil
}

func newLLMClient(c *genai.Client, modelName string) *llmClient {
	return &llmClient{client: c, modelName: modelName, logger: logger_i.NewLogger("llm_gemini")}
}

func (c *llmClient) Model() string {
	return c.modelName
}

// buildRequest maps system messages to the system instruction and everything else to user content.
func (c *llmClient) buildRequest(prompt llm.Prompt) ([]*genai.Content, *genai.GenerateContentConfig) {
	contentConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](config.ModelTemperature),
	}
	var contents []*genai.Content
	var system []*genai.Part
	for _, m := range prompt.Messages {
		if m.Role == llm.RoleSystem {
			system = append(system, &genai.Part{Text: m.Content})
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	if len(system) > 0 {
		contentConfig.SystemInstruction = &genai.Content{Parts: system}
	}
	return contents, contentConfig
}

func (c *llmClient) Invoke(ctx context.Context, prompt llm.Prompt) (llm.GenerationResult, error) {
	c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("invoking gemini", "model", c.modelName)
	contents, contentConfig := c.buildRequest(prompt)

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		return llm.GenerationResult{}, classify(err)
	}
	generation := newGenerationInfo(c.modelName)
	mergeResponse(generation, result)
	return llm.GenerationResult{Text: result.Text(), Generation: generation}, nil
}

func (c *llmClient) Stream(ctx context.Context, prompt llm.Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Debug("streaming gemini", "model", c.modelName)
		contents, contentConfig := c.buildRequest(prompt)
		generation := newGenerationInfo(c.modelName)

		for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.modelName, contents, contentConfig) {
			if err != nil {
				yield(summaryModel.SummaryFragment{}, classify(err))
				return
			}
			mergeResponse(generation, chunk)
			delta := chunk.Text()
			if delta == "" {
				continue
			}
			if !yield(summaryModel.SummaryFragment{Delta: delta}, nil) {
				return
			}
		}
		yield(summaryModel.SummaryFragment{Final: true, Generation: generation}, nil)
	}
}

func newGenerationInfo(model string) *summaryModel.GenerationInfo {
	return &summaryModel.GenerationInfo{
		Model:            model,
		ResponseMetadata: map[string]any{},
	}
}

func mergeResponse(generation *summaryModel.GenerationInfo, resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	if resp.ResponseID != "" {
		generation.ID = resp.ResponseID
	}
	if resp.ModelVersion != "" {
		generation.Model = resp.ModelVersion
		generation.ResponseMetadata["model_version"] = resp.ModelVersion
	}
	if !resp.CreateTime.IsZero() {
		generation.CreatedAt = resp.CreateTime
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil && resp.Candidates[0].FinishReason != "" {
		generation.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if usage := resp.UsageMetadata; usage != nil {
		generation.PromptTokens = int64(usage.PromptTokenCount)
		generation.CompletionTokens = int64(usage.CandidatesTokenCount)
		generation.TotalTokens = int64(usage.TotalTokenCount)
	}
}

// classify marks rate limits and server side failures as temporary.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return summaryModel.WrapError(summaryModel.ErrTemporary, "gemini", err)
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
