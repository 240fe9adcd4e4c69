package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
)

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1727000000,
		"model":   "gpt-4o-2024-08-06",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			},
		},
	}
}

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAIClient("test-key", "", option.WithBaseURL(server.URL+"/"))
}

func TestOpenAIClient_Classify(t *testing.T) {
	t.Run("sends system and user messages with a strict json schema", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
				ResponseFormat struct {
					Type       string `json:"type"`
					JSONSchema struct {
						Name   string         `json:"name"`
						Strict bool           `json:"strict"`
						Schema map[string]any `json:"schema"`
					} `json:"json_schema"`
				} `json:"response_format"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			assert.Equal(t, "gpt-4o-2024-08-06", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, prompt.SystemPrompt, req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "Dataset Properties: iris\n{'sepal_length': 5.1}", req.Messages[1].Content)
			assert.Equal(t, "json_schema", req.ResponseFormat.Type)
			assert.Equal(t, "classification_response", req.ResponseFormat.JSONSchema.Name)
			assert.True(t, req.ResponseFormat.JSONSchema.Strict)
			assert.Contains(t, req.ResponseFormat.JSONSchema.Schema, "properties")

			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(chatCompletionBody(
				`{"predictions":[{"label_name":"setosa","value":true},{"label_name":"versicolor","value":false},{"label_name":"virginica","value":false}]}`,
			)))
		})

		got, err := client.Classify(context.Background(), "Dataset Properties: iris", "{'sepal_length': 5.1}")

		require.NoError(t, err)
		assert.Equal(t, []entity.Prediction{
			{LabelName: "setosa", Value: true},
			{LabelName: "versicolor", Value: false},
			{LabelName: "virginica", Value: false},
		}, got)
	})

	t.Run("prediction count matches label count", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatCompletionBody(
				`{"predictions":[{"label_name":"positive","value":false},{"label_name":"negative","value":true}]}`,
			))
		})

		got, err := client.Classify(context.Background(), "Dataset Properties: imdb", "bad movie")

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("rate limit is not retried and is detectable", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
		})

		_, err := client.Classify(context.Background(), "p", "x")

		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("server error propagates", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
		})

		_, err := client.Classify(context.Background(), "p", "x")

		require.Error(t, err)
		assert.False(t, IsRateLimited(err))
		assert.Contains(t, err.Error(), "openai API error")
	})

	t.Run("non conforming content", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatCompletionBody(`{"label":"setosa"}`))
		})

		_, err := client.Classify(context.Background(), "p", "x")

		assert.ErrorIs(t, err, ErrSchemaConformance)
	})

	t.Run("no choices", func(t *testing.T) {
		client := newTestOpenAIClient(t, func(w http.ResponseWriter, _ *http.Request) {
			body := chatCompletionBody("")
			body["choices"] = []any{}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)
		})

		_, err := client.Classify(context.Background(), "p", "x")

		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("connection error", func(t *testing.T) {
		client := NewOpenAIClient("test-key", "", option.WithBaseURL("http://127.0.0.1:1/"))

		_, err := client.Classify(context.Background(), "p", "x")

		assert.Error(t, err)
	})
}

func TestOpenAIClient_DescribeColumn(t *testing.T) {
	client := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, prompt.DescriptionSystemPrompt, req.Messages[0].Content)
		assert.Equal(t, "Generate a description for the column setosa in under 30 words.", req.Messages[1].Content)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletionBody(`{"description":"A small iris species with short petals."}`))
	})

	got, err := client.DescribeColumn(context.Background(), "setosa")

	require.NoError(t, err)
	assert.Equal(t, "A small iris species with short petals.", got)
}
