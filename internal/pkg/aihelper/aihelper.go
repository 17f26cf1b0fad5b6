// Package aihelper wraps the Azure OpenAI deployment used for article
// summaries, FAQ question generation, webpage outlines and embeddings.
package aihelper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/rs/zerolog"

	"chatadmin/internal/pkg/normalize"
	"chatadmin/internal/pkg/retry"
)

// Token budgets per deployment family.
// https://learn.microsoft.com/en-us/azure/ai-services/openai/concepts/models
const (
	chatModelName      = "gpt-4o-mini"
	chatMaxInputTokens = 128000

	embeddingModelName      = "text-embedding-ada-002"
	embeddingMaxInputTokens = 8191

	// Outlines reject oversized pages outright instead of truncating:
	// an outline of half a page is misleading in a way a summary is not.
	// The ceiling is the gpt-4o-mini completion budget (16k), not the
	// model's 128k context window. Do not raise it to chatMaxInputTokens:
	// a page the model could not re-emit in full is too long to outline.
	outlineMaxInputTokens = 16000

	apiVersion = "2023-07-01-preview"
)

// ErrContentTooLong marks input over the outline ceiling. Batch callers
// treat it as a skipped item, not a fatal failure.
var ErrContentTooLong = errors.New("content exceeds the outline token ceiling")

// Helper is the caller-owned AI client. Every completion runs under the
// retry policy; exhausted retries propagate the provider error.
type Helper struct {
	client              openai.Client
	chatDeployment      string
	embeddingDeployment string
	language            string

	// Policy may be tightened by callers (and tests) before first use.
	Policy retry.Policy

	log zerolog.Logger
}

// New builds a Helper against an Azure OpenAI endpoint. The client rides on
// http.DefaultClient so the test transport can intercept it.
func New(endpoint, apiKey, chatDeployment, embeddingDeployment string, logger zerolog.Logger) *Helper {
	client := openai.NewClient(
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(apiKey),
		option.WithHTTPClient(http.DefaultClient),
		option.WithMaxRetries(0), // retries belong to our policy, not the SDK
	)

	return &Helper{
		client:              client,
		chatDeployment:      chatDeployment,
		embeddingDeployment: embeddingDeployment,
		language:            "English",
		Policy:              retry.DefaultPolicy(),
		log:                 logger,
	}
}

// Summarize produces a comprehensive guide of the given text. Oversized
// input is silently trimmed to the chat model's input budget.
func (h *Helper) Summarize(ctx context.Context, text string) (string, error) {
	text, err := normalize.TruncateToTokenBudget(text, chatModelName, chatMaxInputTokens)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Provide a comprehensive guide of the given text. Include all step-by-step instructions, definitions, and warranties. %s",
		text,
	)

	out, err := h.complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return normalize.CollapseWhitespace(out), nil
}

// GenerateFAQQuestions asks for n questions a customer would plausibly ask
// about the article, one per line.
func (h *Helper) GenerateFAQQuestions(ctx context.Context, article string, n int) ([]string, error) {
	article, err := normalize.TruncateToTokenBudget(article, chatModelName, chatMaxInputTokens)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Write %d frequently asked questions in %s that a customer would ask about the following help article. Output one question per line with no numbering. Article: %s",
		n, h.language, article,
	)

	out, err := h.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var questions []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			questions = append(questions, line)
		}
	}
	return questions, nil
}

// Outline produces a hierarchical outline of a scraped webpage. Input over
// the outline ceiling fails with ErrContentTooLong.
func (h *Helper) Outline(ctx context.Context, text string) (string, error) {
	if len(text) >= outlineMaxInputTokens {
		tokens, err := normalize.CountTokens(text, chatModelName)
		if err != nil {
			return "", err
		}
		if tokens > outlineMaxInputTokens {
			return "", fmt.Errorf("%w: %d tokens", ErrContentTooLong, tokens)
		}
	}

	prompt := fmt.Sprintf(
		"Outline the following webpage in %s as a nested list of its sections and the key points under each. Page content: %s",
		h.language, text,
	)

	return h.complete(ctx, prompt)
}

// GenerateEmbeddings returns the embedding vector for the text, trimmed to
// the embedding model's input budget.
func (h *Helper) GenerateEmbeddings(ctx context.Context, text string) ([]float64, error) {
	text, err := normalize.TruncateToTokenBudget(text, embeddingModelName, embeddingMaxInputTokens)
	if err != nil {
		return nil, err
	}

	return retry.Do(ctx, h.Policy, func() ([]float64, error) {
		resp, err := h.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Model: openai.EmbeddingModel(h.embeddingDeployment),
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: []string{text},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create embeddings: %w", err)
		}
		if len(resp.Data) == 0 {
			return nil, errors.New("provider returned no embedding")
		}
		return resp.Data[0].Embedding, nil
	})
}

func (h *Helper) complete(ctx context.Context, prompt string) (string, error) {
	return retry.Do(ctx, h.Policy, func() (string, error) {
		resp, err := h.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: openai.ChatModel(h.chatDeployment),
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Temperature: openai.Float(0.7),
			MaxTokens:   openai.Int(1000),
			N:           openai.Int(1),
		})
		if err != nil {
			return "", fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("provider returned no choices")
		}

		out := strings.TrimSpace(resp.Choices[0].Message.Content)
		if out == "" {
			return "", errors.New("provider returned an empty response")
		}

		h.log.Debug().
			Int64("prompt_tokens", resp.Usage.PromptTokens).
			Int64("completion_tokens", resp.Usage.CompletionTokens).
			Msg("chat completion done")
		return out, nil
	})
}
