// Package openai implements inference.Client on the OpenAI chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/at-ishikawa/aiflashcard/internal/inference"
	"github.com/at-ishikawa/aiflashcard/internal/prompt"
)

const (
	ProviderName   = "openai"
	DefaultBaseURL = "https://api.openai.com/v1"
)

type Client struct {
	httpClient  *resty.Client
	retryConfig inference.RetryConfig
}

func NewClient(apiKey, baseURL string, retryConfig inference.RetryConfig, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &Client{
		httpClient:  client,
		retryConfig: retryConfig,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

type ChatCompletionRequest struct {
	Model               string    `json:"model"`
	Messages            []Message `json:"messages"`
	Temperature         *float64  `json:"temperature,omitempty"`
	MaxCompletionTokens int       `json:"max_completion_tokens,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete implements the inference.Client interface
func (client *Client) Complete(ctx context.Context, p prompt.Prompt, config inference.GenerationConfig) (string, error) {
	return inference.Retry(ctx, client.retryConfig, func() (string, error) {
		return client.complete(ctx, p, config)
	})
}

func getRequestBody(p prompt.Prompt, config inference.GenerationConfig) ChatCompletionRequest {
	temperature := config.Temperature
	var messages []Message
	if p.Instructions != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: p.Instructions})
	}
	messages = append(messages, Message{Role: RoleUser, Content: p.Content})

	return ChatCompletionRequest{
		Model:               config.Model,
		Messages:            messages,
		Temperature:         &temperature,
		MaxCompletionTokens: config.MaxOutputTokens,
	}
}

func (client *Client) complete(ctx context.Context, p prompt.Prompt, config inference.GenerationConfig) (string, error) {
	requestBody := getRequestBody(p, config)

	slog.Default().Info("Sending notes to the model",
		slog.String("provider", ProviderName),
		slog.String("model", config.Model),
		slog.Int("promptBytes", len(p.Instructions)+len(p.Content)),
	)
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", newError(&inference.APIError{
			Reason: inference.ReasonNetwork,
			Err:    fmt.Errorf("httpClient.Post > %w", err),
		})
	}
	if response.IsError() {
		return "", newError(&inference.APIError{
			Reason:     inference.ReasonForStatus(response.StatusCode()),
			StatusCode: response.StatusCode(),
			Message:    errorMessage(response.String()),
		})
	}

	responseBody, ok := response.Result().(*ChatCompletionResponse)
	if !ok || responseBody == nil || len(responseBody.Choices) == 0 {
		return "", newError(&inference.APIError{
			Reason:     inference.ReasonEmpty,
			StatusCode: response.StatusCode(),
			Message:    "empty response body or choices",
		})
	}

	choice := responseBody.Choices[0]
	content := choice.Message.Content
	if strings.TrimSpace(content) == "" {
		message := fmt.Sprintf("empty response content (finish reason %s)", choice.FinishReason)
		if choice.Message.Refusal != "" {
			message = "refused: " + choice.Message.Refusal
		}
		return "", newError(&inference.APIError{
			Reason:     inference.ReasonEmpty,
			StatusCode: response.StatusCode(),
			Message:    message,
		})
	}
	if choice.FinishReason == "length" {
		slog.Default().Warn("Response was cut off by max output tokens",
			slog.Int("maxOutputTokens", config.MaxOutputTokens),
		)
	}

	slog.Default().Info("Response from AI generated successfully",
		slog.Int("promptTokens", responseBody.Usage.PromptTokens),
		slog.Int("responseTokens", responseBody.Usage.CompletionTokens),
	)
	slog.Default().Debug("openai response content", slog.String("content", content))
	return content, nil
}

func errorMessage(body string) string {
	var decoded errorResponse
	if err := json.Unmarshal([]byte(body), &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(body)
}

func newError(err *inference.APIError) error {
	err.Provider = ProviderName
	return inference.NewError("openai.Complete", err)
}
