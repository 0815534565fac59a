package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// ProviderOpenAI speaks the OpenAI chat-completions protocol.
	ProviderOpenAI = "openai"
	// ProviderAnthropic speaks the Anthropic messages protocol.
	ProviderAnthropic = "anthropic"

	// DefaultBaseURL is the chat-completion gateway root.
	DefaultBaseURL = "https://api.mulerun.ai"
	// DefaultModel is used for every task unless configured otherwise.
	DefaultModel = "claude-3.5-sonnet"
	// DefaultAnthropicModel is the default when talking to Anthropic directly.
	DefaultAnthropicModel = "claude-sonnet-4-20250514"

	defaultTimeout = 120 * time.Second
)

// ErrEmptyReply is returned when the provider answered without any content.
var ErrEmptyReply = errors.New("no content returned from AI provider")

// ProviderError is a non-2xx answer from the AI provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() (msg string) {
	msg = fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Message)
	return msg
}

// Completion is one prompt to send.
type Completion struct {
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// Completer sends a single prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, c Completion) (text string, err error)
}

// OpenAIClient talks to any OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client for {baseURL}/v1/chat/completions.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) (c *OpenAIClient) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	c = &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
	return c
}

// Complete implements Completer.
func (c *OpenAIClient) Complete(ctx context.Context, comp Completion) (text string, err error) {
	req := openai.ChatCompletionRequest{
		Model: comp.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: comp.Prompt,
			},
		},
		Temperature: float32(comp.Temperature),
		MaxTokens:   comp.MaxTokens,
	}

	if comp.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var resp openai.ChatCompletionResponse
	resp, err = c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		err = translateOpenAIError(err)
		return text, err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		err = ErrEmptyReply
		return text, err
	}

	text = resp.Choices[0].Message.Content
	return text, err
}

func translateOpenAIError(err error) (translated error) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		translated = &ProviderError{Provider: ProviderOpenAI, StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		return translated
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		translated = &ProviderError{Provider: ProviderOpenAI, StatusCode: reqErr.HTTPStatusCode, Message: msg}
		return translated
	}

	translated = errors.Wrap(err, "chat completion request failed")
	return translated
}

// AnthropicClient talks to the Anthropic messages API.
type AnthropicClient struct {
	client anthropic.Client
}

// NewAnthropicClient creates a client. An empty baseURL uses the SDK default.
func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) (c *AnthropicClient) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	c = &AnthropicClient{client: anthropic.NewClient(opts...)}
	return c
}

// Complete implements Completer. JSON replies are requested through the prompt.
func (c *AnthropicClient) Complete(ctx context.Context, comp Completion) (text string, err error) {
	var msg *anthropic.Message
	msg, err = c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(comp.Model),
		MaxTokens:   int64(comp.MaxTokens),
		Temperature: anthropic.Float(comp.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(comp.Prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = &ProviderError{Provider: ProviderAnthropic, StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
			return text, err
		}
		err = errors.Wrap(err, "messages request failed")
		return text, err
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text = sb.String()
	if text == "" {
		err = ErrEmptyReply
		return text, err
	}

	return text, err
}
