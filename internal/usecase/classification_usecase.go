package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/prompt"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
	"github.com/akramsystems/llm-n-class-classifier/internal/infrastructure/metrics"
)

var (
	// ErrInvalidRequest is returned for requests that cannot be classified
	ErrInvalidRequest = errors.New("invalid request")
	// ErrClientNotConfigured is returned when no completion provider is available
	ErrClientNotConfigured = errors.New("completion client not configured")
)

// LabelInput is a candidate label. Empty names and descriptions are allowed.
type LabelInput struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ClassifyInput represents the input for classifying one record
type ClassifyInput struct {
	DatasetName           string                  `json:"dataset_name"`
	InputData             string                  `json:"input_data"`
	CustomLabels          []LabelInput            `json:"custom_labels"`
	FewShotExamples       []entity.FewShotExample `json:"few_shot_examples"`
	InputSchemaDefinition *string                 `json:"input_schema_definition"`
}

// ClassifyOutput is the outcome of one classification.
// Matched is false when the model flagged no label as true.
type ClassifyOutput struct {
	Label       string
	Matched     bool
	Predictions []entity.Prediction
}

// ModelResponse returns the winning label or the wire sentinel "None"
func (o *ClassifyOutput) ModelResponse() string {
	if !o.Matched {
		return entity.NoneLabel
	}
	return o.Label
}

// ClassificationUsecase defines the classification business logic
type ClassificationUsecase interface {
	Classify(ctx context.Context, input *ClassifyInput) (*ClassifyOutput, error)
}

type classificationUsecase struct {
	client  service.CompletionClient
	builder *prompt.Builder
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewClassificationUsecase creates a new classification usecase
func NewClassificationUsecase(client service.CompletionClient, builder *prompt.Builder, m *metrics.Metrics, logger *zap.Logger) ClassificationUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = prompt.NewBuilder(logger)
	}
	return &classificationUsecase{
		client:  client,
		builder: builder,
		metrics: m,
		logger:  logger,
	}
}

func (u *classificationUsecase) Classify(ctx context.Context, input *ClassifyInput) (*ClassifyOutput, error) {
	if input == nil {
		return nil, ErrInvalidRequest
	}
	if u.client == nil {
		return nil, ErrClientNotConfigured
	}
	req := input.toRequest()

	userPrompt := u.builder.Build(prompt.Input{
		DatasetName:     req.DatasetName,
		Labels:          req.Labels,
		FewShotExamples: req.FewShotExamples,
		SchemaText:      req.SchemaText,
	})

	start := time.Now()
	predictions, err := u.client.Classify(ctx, userPrompt, req.InputData)
	u.metrics.ObserveCompletion(u.client.Provider(), time.Since(start))
	if err != nil {
		u.metrics.ObserveClassification(req.DatasetName, metrics.OutcomeError)
		return nil, err
	}

	u.logger.Info("Classification response",
		zap.String("dataset", req.DatasetName),
		zap.Any("predictions", predictions),
	)

	if len(predictions) != len(req.Labels) {
		u.logger.Warn("Prediction count does not match label count",
			zap.Int("predictions", len(predictions)),
			zap.Int("labels", len(req.Labels)),
		)
	}

	label, ok := entity.SelectLabel(predictions)
	if !ok {
		u.logger.Warn("No class was predicted to be correct", zap.String("dataset", req.DatasetName))
		u.metrics.ObserveClassification(req.DatasetName, metrics.OutcomeNone)
	} else {
		u.logger.Info("Predicted label", zap.String("label", label))
		u.metrics.ObserveClassification(req.DatasetName, metrics.OutcomeMatched)
	}

	return &ClassifyOutput{
		Label:       label,
		Matched:     ok,
		Predictions: predictions,
	}, nil
}

func (in *ClassifyInput) toRequest() entity.ClassificationRequest {
	req := entity.ClassificationRequest{
		DatasetName: in.DatasetName,
		InputData:   in.InputData,
		Labels: lo.Map(in.CustomLabels, func(l LabelInput, _ int) entity.Label {
			return entity.Label{Name: l.Label, Description: l.Description}
		}),
		FewShotExamples: in.FewShotExamples,
	}
	if in.InputSchemaDefinition != nil {
		req.SchemaText = *in.InputSchemaDefinition
	}
	return req
}
