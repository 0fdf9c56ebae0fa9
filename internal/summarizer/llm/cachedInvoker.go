package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"iter"
	"strings"

	"github.com/akolanti/GoSummary/internal/config"
	"github.com/akolanti/GoSummary/internal/domain/summaryModel"
	"github.com/akolanti/GoSummary/internal/metrics"
	"github.com/akolanti/GoSummary/pkg/logger_i"
)

// CachedInvoker answers repeated prompts from the prompt cache. Cache failures never fail a request.
type CachedInvoker struct {
	inner  Invoker
	cache  summaryModel.PromptCache
	logger *logger_i.Logger
}

func NewCachedInvoker(inner Invoker, cache summaryModel.PromptCache) *CachedInvoker {
	return &CachedInvoker{inner: inner, cache: cache, logger: logger_i.NewLogger("PromptCache")}
}

func (c *CachedInvoker) Model() string {
	return c.inner.Model()
}

func (c *CachedInvoker) key(prompt Prompt) string {
	sum := sha256.Sum256([]byte(c.inner.Model() + "\x00" + prompt.String()))
	return hex.EncodeToString(sum[:])
}

func (c *CachedInvoker) lookup(ctx context.Context, key string) (string, bool) {
	val, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("prompt cache lookup failed", "error", err)
		return "", false
	}
	metrics.CaptureCacheLookup(hit)
	return val, hit
}

func (c *CachedInvoker) store(ctx context.Context, key string, text string) {
	if err := c.cache.Set(ctx, key, text); err != nil {
		c.logger.WithTrace(ctx, config.TRACE_ID_KEY).Warn("prompt cache write failed", "error", err)
	}
}

func (c *CachedInvoker) cachedGeneration() *summaryModel.GenerationInfo {
	return &summaryModel.GenerationInfo{
		Model:            c.inner.Model(),
		FinishReason:     "stop",
		ResponseMetadata: map[string]any{"cached": true},
	}
}

func (c *CachedInvoker) Invoke(ctx context.Context, prompt Prompt) (GenerationResult, error) {
	key := c.key(prompt)
	if text, hit := c.lookup(ctx, key); hit {
		return GenerationResult{Text: text, Generation: c.cachedGeneration()}, nil
	}
	result, err := c.inner.Invoke(ctx, prompt)
	if err != nil {
		return result, err
	}
	c.store(ctx, key, result.Text)
	return result, nil
}

// Stream replays a cache hit as a single terminal fragment.
func (c *CachedInvoker) Stream(ctx context.Context, prompt Prompt) iter.Seq2[summaryModel.SummaryFragment, error] {
	return func(yield func(summaryModel.SummaryFragment, error) bool) {
		key := c.key(prompt)
		if text, hit := c.lookup(ctx, key); hit {
			yield(summaryModel.SummaryFragment{Delta: text, Final: true, Generation: c.cachedGeneration()}, nil)
			return
		}

		var text strings.Builder
		for fragment, err := range c.inner.Stream(ctx, prompt) {
			if err != nil {
				yield(fragment, err)
				return
			}
			text.WriteString(fragment.Delta)
			if fragment.Final {
				c.store(ctx, key, text.String())
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}
