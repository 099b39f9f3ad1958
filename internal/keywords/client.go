package keywords

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/observability"
)

// LLMClient is the interface every provider satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// NewClient builds the client selected by cfg.Provider.
func NewClient(cfg config.LLMConfig, logger *observability.Logger) (LLMClient, error) {
	switch cfg.Provider {
	case config.LLMProviderAPI:
		return NewAPIClient(cfg.APIKey, cfg.Model, logger), nil
	case config.LLMProviderCLI:
		return NewCLIClient(cfg.CLIPath), nil
	case config.LLMProviderMock, "":
		return NewMockClient(), nil
	default:
		return nil, apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "unknown llm provider %q", cfg.Provider)
	}
}

// ── APIClient: Anthropic SDK ───────────────────────────

type APIClient struct {
	client  *anthropic.Client
	model   string
	logger  *observability.Logger
	retries int
	backoff time.Duration
}

func NewAPIClient(apiKey, model string, logger *observability.Logger) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &APIClient{client: &client, model: model, logger: logger, retries: 2, backoff: time.Second}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   256,
		Temperature: param.NewOpt(0.2),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, apperrors.ErrorWithContextf(apperrors.ErrAIRequestFailed, "no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			wait := c.backoff << uint(attempt)
			c.logger.Warn(ctx, "Retrying Anthropic API call", map[string]interface{}{
				"attempt": attempt + 1,
				"wait":    wait.String(),
			})
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		c.logger.Error(ctx, "Anthropic API call failed", err, map[string]interface{}{"attempt": attempt + 1})
	}
	return nil, apperrors.WrapErrorf(apperrors.ErrAIRequestFailed, "anthropic API failed after %d attempts: %v", c.retries, lastErr)
}

// ── MockClient: local development ──────────────────────

// MockClient answers with the capitalized words of the prompt's event name,
// so local runs produce plausible keywords without a provider.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

var mockWord = regexp.MustCompile(`[A-Z][a-z]{3,}`)

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	name := userPrompt
	for _, line := range strings.Split(userPrompt, "\n") {
		if rest, ok := strings.CutPrefix(line, eventLinePrefix); ok {
			name = rest
			break
		}
	}
	words := mockWord.FindAllString(name, -1)
	if len(words) == 0 {
		words = []string{"History"}
	}
	return &LLMResponse{
		Content:      fmt.Sprintf("```\n%s\n```", strings.Join(words, ", ")),
		PromptTokens: len(userPrompt) / 4,
		OutputTokens: len(words) * 2,
	}, nil
}
