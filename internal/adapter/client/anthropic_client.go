package client

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
)

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = "claude-haiku-4-5"

const anthropicMaxTokens = 1024

const classificationOutputInstruction = `

# OUTPUT
Output JSON only, no other text:
{"predictions": [{"label_name": "<label>", "value": true}]}`

const descriptionOutputInstruction = `
Output JSON only, no other text: {"description": "<description>"}`

// AnthropicClient is a CompletionClient backed by the Anthropic Messages API.
// The API has no declared-schema mode, so the shape is requested in the
// system prompt and checked on decode.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ service.CompletionClient = (*AnthropicClient)(nil)

// NewAnthropicClient creates a new Anthropic completion client with SDK retries disabled
func NewAnthropicClient(apiKey, model string, opts ...option.RequestOption) *AnthropicClient {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := anthropic.NewClient(reqOpts...)

	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicClient{
		client: &client,
		model:  anthropic.Model(model),
	}
}

// Provider returns the provider name
func (c *AnthropicClient) Provider() string { return "anthropic" }

// Model returns the model used for completions
func (c *AnthropicClient) Model() string { return string(c.model) }

// Classify asks the model for one boolean prediction per label
func (c *AnthropicClient) Classify(ctx context.Context, userPrompt, inputData string) ([]entity.Prediction, error) {
	content, err := c.complete(ctx,
		prompt.SystemPrompt+classificationOutputInstruction,
		prompt.UserMessage(userPrompt, inputData),
	)
	if err != nil {
		return nil, err
	}

	return parsePredictions(content)
}

// DescribeColumn asks the model for a short description of a column name
func (c *AnthropicClient) DescribeColumn(ctx context.Context, columnName string) (string, error) {
	content, err := c.complete(ctx,
		prompt.DescriptionSystemPrompt+descriptionOutputInstruction,
		prompt.DescriptionRequest(columnName),
	)
	if err != nil {
		return "", err
	}

	return parseDescription(content)
}

func (c *AnthropicClient) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("%w: anthropic returned no text content", ErrEmptyResponse)
}
