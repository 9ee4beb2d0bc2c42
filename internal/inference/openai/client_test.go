package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/at-ishikawa/aiflashcard/internal/apperr"
	"github.com/at-ishikawa/aiflashcard/internal/inference"
	"github.com/at-ishikawa/aiflashcard/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"
)

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name              string
		prompt            prompt.Prompt
		mockServerHandler func(t *testing.T, w http.ResponseWriter, r *http.Request)

		wantResponse string
		wantReason   inference.Reason
	}{
		{
			name:   "Success with system instructions",
			prompt: prompt.Prompt{Instructions: "Make flashcards.", Content: "Photosynthesis notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/chat/completions", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "gpt-4o-mini", reqBody.Model)
				assert.Equal(t, []Message{
					{Role: RoleSystem, Content: "Make flashcards."},
					{Role: RoleUser, Content: "Photosynthesis notes"},
				}, reqBody.Messages)
				require.NotNil(t, reqBody.Temperature)
				assert.Equal(t, 0.0, *reqBody.Temperature)
				assert.Equal(t, 1024, reqBody.MaxCompletionTokens)

				mockResponse := ChatCompletionResponse{
					ID:      "chatcmpl-123",
					Object:  "chat.completion",
					Created: 1677652288,
					Model:   "gpt-4o-mini",
					Choices: []Choice{
						{
							Index: 0,
							Message: ChoiceMessage{
								Role:    RoleAssistant,
								Content: "question,answer\n\"Q1\",\"A1\"\n",
							},
							FinishReason: "stop",
						},
					},
					Usage: Usage{
						PromptTokens:     100,
						CompletionTokens: 50,
						TotalTokens:      150,
					},
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(mockResponse)
			},
			wantResponse: "question,answer\n\"Q1\",\"A1\"\n",
		},
		{
			name:   "Without instructions only the user message is sent",
			prompt: prompt.Prompt{Content: "Photosynthesis notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				var reqBody ChatCompletionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, []Message{{Role: RoleUser, Content: "Photosynthesis notes"}}, reqBody.Messages)

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(ChatCompletionResponse{
					Choices: []Choice{{Message: ChoiceMessage{Role: RoleAssistant, Content: "question,answer"}}},
				})
			},
			wantResponse: "question,answer",
		},
		{
			name:   "HTTP 401 error",
			prompt: prompt.Prompt{Content: "notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
			},
			wantReason: inference.ReasonAuth,
		},
		{
			name:   "HTTP 500 error",
			prompt: prompt.Prompt{Content: "notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error": {"message": "Internal server error"}}`))
			},
			wantReason: inference.ReasonServer,
		},
		{
			name:   "Empty choices",
			prompt: prompt.Prompt{Content: "notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(ChatCompletionResponse{ID: "chatcmpl-789"})
			},
			wantReason: inference.ReasonEmpty,
		},
		{
			name:   "Refusal",
			prompt: prompt.Prompt{Content: "notes"},
			mockServerHandler: func(t *testing.T, w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(ChatCompletionResponse{
					Choices: []Choice{{Message: ChoiceMessage{Role: RoleAssistant, Refusal: "I can't help with that."}}},
				})
			},
			wantReason: inference.ReasonEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient: resty.New().SetBaseURL(server.URL),
			}
			defer func() {
				_ = client.Close()
			}()

			gotResponse, gotErr := client.Complete(context.Background(), tt.prompt, inference.GenerationConfig{
				Model:           "gpt-4o-mini",
				Temperature:     0,
				MaxOutputTokens: 1024,
			})

			if tt.wantReason != "" {
				require.Error(t, gotErr)
				assert.Equal(t, apperr.KindAPI, apperr.KindOf(gotErr))

				var apiErr *inference.APIError
				require.True(t, errors.As(gotErr, &apiErr))
				assert.Equal(t, tt.wantReason, apiErr.Reason)
				assert.Equal(t, ProviderName, apiErr.Provider)
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantResponse, gotResponse)
		})
	}
}
