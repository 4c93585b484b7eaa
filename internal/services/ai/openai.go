package ai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
)

// OpenAIProvider implements CompletionProvider using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithConfig creates a new OpenAI provider with custom configuration
func NewOpenAIProviderWithConfig(apiKey string, baseURL string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, baseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Complete sends the system prompt and conversation to the chat completions
// API and returns the assistant's text.
func (p *OpenAIProvider) Complete(ctx context.Context, system string, messages []ChatMessage) (string, error) {
	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	openAIMessages = append(openAIMessages, openai.SystemMessage(system))

	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content))
		}
	}

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("model", p.model),
			zap.Int("message_count", len(openAIMessages)),
			zap.String("system_preview", SanitizePrompt(system)),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: openAIMessages,
		// Temperature omitted - some models only support their default value
	}

	startTime := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(startTime)

	if err != nil {
		if p.logger != nil {
			p.logger.Warn("llm_api_error",
				zap.String("model", p.model),
				zap.Int64("latency_ms", latency.Milliseconds()),
				zap.Error(err),
			)
		}
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion response")
	}
	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("model", p.model),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.String("response_preview", SanitizePrompt(content)),
		)
	}
	return content, nil
}
