package service

import (
	"context"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// CompletionClient defines the interface for the remote structured-completion model
type CompletionClient interface {
	// Classify sends the user prompt and raw input and returns one prediction per label
	Classify(ctx context.Context, userPrompt, inputData string) ([]entity.Prediction, error)

	// DescribeColumn generates a short natural-language description for a column or label value
	DescribeColumn(ctx context.Context, columnName string) (string, error)

	// Provider returns the provider name (e.g. "openai")
	Provider() string

	// Model returns the model used for completions
	Model() string
}
