// Package gemini implements inference.Client on the Gemini generateContent API.
package gemini

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
	ProviderName   = "gemini"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

type Client struct {
	httpClient  *resty.Client
	retryConfig inference.RetryConfig
}

// NewClient returns a client authenticating with apiKey. An empty baseURL
// selects the public endpoint and a zero timeout leaves requests unbounded.
func NewClient(apiKey, baseURL string, retryConfig inference.RetryConfig, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("x-goog-api-key", apiKey)
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

type GenerateContentRequest struct {
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	Contents          []Content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type GenerationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  UsageMetadata   `json:"usageMetadata"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Complete implements the inference.Client interface
func (client *Client) Complete(ctx context.Context, p prompt.Prompt, config inference.GenerationConfig) (string, error) {
	return inference.Retry(ctx, client.retryConfig, func() (string, error) {
		return client.generateContent(ctx, p, config)
	})
}

func newRequestBody(p prompt.Prompt, config inference.GenerationConfig) GenerateContentRequest {
	temperature := config.Temperature
	body := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: p.Content}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:      &temperature,
			MaxOutputTokens:  config.MaxOutputTokens,
			ResponseMimeType: "text/plain",
		},
	}
	if p.Instructions != "" {
		body.SystemInstruction = &Content{Parts: []Part{{Text: p.Instructions}}}
	}
	return body
}

func (client *Client) generateContent(ctx context.Context, p prompt.Prompt, config inference.GenerationConfig) (string, error) {
	requestBody := newRequestBody(p, config)
	model := strings.TrimPrefix(config.Model, "models/")

	slog.Default().Info("Sending notes to the model",
		slog.String("provider", ProviderName),
		slog.String("model", model),
		slog.Int("promptBytes", len(p.Instructions)+len(p.Content)),
	)
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetBody(requestBody).
		SetResult(&GenerateContentResponse{}).
		Post("/models/{model}:generateContent")
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

	responseBody, ok := response.Result().(*GenerateContentResponse)
	if !ok || responseBody == nil || len(responseBody.Candidates) == 0 {
		message := "no candidates in response"
		if ok && responseBody != nil && responseBody.PromptFeedback != nil && responseBody.PromptFeedback.BlockReason != "" {
			message = "prompt blocked: " + responseBody.PromptFeedback.BlockReason
		}
		return "", newError(&inference.APIError{
			Reason:     inference.ReasonEmpty,
			StatusCode: response.StatusCode(),
			Message:    message,
		})
	}

	candidate := responseBody.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	content := text.String()
	if strings.TrimSpace(content) == "" {
		return "", newError(&inference.APIError{
			Reason:     inference.ReasonEmpty,
			StatusCode: response.StatusCode(),
			Message:    fmt.Sprintf("empty response content (finish reason %s)", candidate.FinishReason),
		})
	}
	if candidate.FinishReason == "MAX_TOKENS" {
		slog.Default().Warn("Response was cut off by max output tokens",
			slog.Int("maxOutputTokens", config.MaxOutputTokens),
		)
	}

	slog.Default().Info("Response from AI generated successfully",
		slog.Int("promptTokens", responseBody.UsageMetadata.PromptTokenCount),
		slog.Int("responseTokens", responseBody.UsageMetadata.CandidatesTokenCount),
	)
	slog.Default().Debug("gemini response content", slog.String("content", content))
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
	return inference.NewError("gemini.Complete", err)
}
