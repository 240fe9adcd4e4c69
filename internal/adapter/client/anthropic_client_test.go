package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

func anthropicMessageBody(text string) map[string]any {
	return map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultAnthropicModel,
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 20},
	}
}

func newTestAnthropicClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAnthropicClient("test-key", "", option.WithBaseURL(server.URL))
}

func TestAnthropicClient_Classify(t *testing.T) {
	t.Run("parses fenced JSON", func(t *testing.T) {
		client := newTestAnthropicClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/messages", r.URL.Path)
			assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

			var req struct {
				Model  string `json:"model"`
				System []struct {
					Text string `json:"text"`
				} `json:"system"`
				Messages []struct {
					Role    string `json:"role"`
					Content []struct {
						Text string `json:"text"`
					} `json:"content"`
				} `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, DefaultAnthropicModel, req.Model)
			require.Len(t, req.System, 1)
			assert.Contains(t, req.System[0].Text, "ONE true value at MOST")
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "Dataset Properties: imdb\nloved it", req.Messages[0].Content[0].Text)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(anthropicMessageBody(
				"```json\n{\"predictions\":[{\"label_name\":\"positive\",\"value\":true},{\"label_name\":\"negative\",\"value\":false}]}\n```",
			))
		})

		got, err := client.Classify(context.Background(), "Dataset Properties: imdb", "loved it")

		require.NoError(t, err)
		assert.Equal(t, []entity.Prediction{
			{LabelName: "positive", Value: true},
			{LabelName: "negative", Value: false},
		}, got)
	})

	t.Run("rate limit is detectable", func(t *testing.T) {
		client := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
		})

		_, err := client.Classify(context.Background(), "p", "x")

		require.Error(t, err)
		assert.True(t, IsRateLimited(err))
	})

	t.Run("prose without JSON", func(t *testing.T) {
		client := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(anthropicMessageBody("It is clearly positive."))
		})

		_, err := client.Classify(context.Background(), "p", "x")

		assert.ErrorIs(t, err, ErrSchemaConformance)
	})
}

func TestAnthropicClient_DescribeColumn(t *testing.T) {
	client := newTestAnthropicClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicMessageBody(`{"description":"Reviews expressing approval."}`))
	})

	got, err := client.DescribeColumn(context.Background(), "positive")

	require.NoError(t, err)
	assert.Equal(t, "Reviews expressing approval.", got)
}
