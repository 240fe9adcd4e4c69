package client

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
)

// DefaultOpenAIModel is the first snapshot with strict structured outputs
const DefaultOpenAIModel = openai.ChatModelGPT4o2024_08_06

// OpenAIClient is a CompletionClient backed by OpenAI structured outputs
type OpenAIClient struct {
	client *openai.Client
	model  openai.ChatModel
}

var _ service.CompletionClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI completion client.
// SDK retries are disabled; failures surface on the first attempt.
func NewOpenAIClient(apiKey, model string, opts ...option.RequestOption) *OpenAIClient {
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(reqOpts...)

	chatModel := DefaultOpenAIModel
	if model != "" {
		chatModel = openai.ChatModel(model)
	}

	return &OpenAIClient{
		client: &client,
		model:  chatModel,
	}
}

// Provider returns the provider name
func (c *OpenAIClient) Provider() string { return "openai" }

// Model returns the chat model used for completions
func (c *OpenAIClient) Model() string { return string(c.model) }

// Classify asks the model for one boolean prediction per label
func (c *OpenAIClient) Classify(ctx context.Context, userPrompt, inputData string) ([]entity.Prediction, error) {
	content, err := c.complete(ctx,
		prompt.SystemPrompt,
		prompt.UserMessage(userPrompt, inputData),
		jsonSchemaFormat("classification_response", "List of label predictions from the model", predictionsSchema),
	)
	if err != nil {
		return nil, err
	}

	return parsePredictions(content)
}

// DescribeColumn asks the model for a short description of a column name
func (c *OpenAIClient) DescribeColumn(ctx context.Context, columnName string) (string, error) {
	content, err := c.complete(ctx,
		prompt.DescriptionSystemPrompt,
		prompt.DescriptionRequest(columnName),
		jsonSchemaFormat("column_description", "Short description of a dataset column", descriptionSchema),
	)
	if err != nil {
		return "", err
	}

	return parseDescription(content)
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, format openai.ChatCompletionNewParamsResponseFormatUnion) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		ResponseFormat: format,
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", ErrEmptyResponse)
	}

	msg := resp.Choices[0].Message
	if msg.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrSchemaConformance, msg.Refusal)
	}

	return msg.Content, nil
}

func jsonSchemaFormat(name, description string, schema map[string]any) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        name,
				Description: openai.String(description),
				Schema:      schema,
				Strict:      openai.Bool(true),
			},
		},
	}
}
