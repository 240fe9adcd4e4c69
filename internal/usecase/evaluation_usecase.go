package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/repository"
)

// ErrNothingEvaluated is returned when every sampled row was skipped
var ErrNothingEvaluated = errors.New("no rows were evaluated")

// EvaluateInput represents the input for an accuracy run
type EvaluateInput struct {
	DatasetName     string
	Rows            []entity.Row
	Labels          []entity.Label
	FewShotExamples []entity.FewShotExample
	SchemaText      string
}

// Mismatch is one wrong prediction
type Mismatch struct {
	Index     int
	Expected  string
	Predicted string
}

// EvaluationReport is the outcome of an accuracy run
type EvaluationReport struct {
	Result     entity.EvaluationResult
	Mismatches []Mismatch
}

// EvaluationUsecase defines the accuracy harness
type EvaluationUsecase interface {
	Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluationReport, error)
}

type evaluationUsecase struct {
	classifier ClassificationUsecase
	repo       repository.DatasetRepository
	skippable  func(error) bool
	logger     *zap.Logger
	now        func() time.Time
}

// NewEvaluationUsecase creates a new evaluation usecase. Rows whose
// classification fails with an error accepted by skippable are skipped
// instead of aborting the run.
func NewEvaluationUsecase(classifier ClassificationUsecase, repo repository.DatasetRepository, skippable func(error) bool, logger *zap.Logger) EvaluationUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if skippable == nil {
		skippable = func(error) bool { return false }
	}
	return &evaluationUsecase{
		classifier: classifier,
		repo:       repo,
		skippable:  skippable,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *evaluationUsecase) Evaluate(ctx context.Context, input *EvaluateInput) (*EvaluationReport, error) {
	if input == nil || len(input.Rows) == 0 {
		return nil, ErrInvalidRequest
	}

	labels := make([]LabelInput, 0, len(input.Labels))
	for _, l := range input.Labels {
		labels = append(labels, LabelInput{Label: l.Name, Description: l.Description})
	}
	var schema *string
	if input.SchemaText != "" {
		schema = &input.SchemaText
	}

	report := &EvaluationReport{Result: entity.EvaluationResult{DatasetName: input.DatasetName}}
	res := &report.Result

	for i, row := range input.Rows {
		out, err := u.classifier.Classify(ctx, &ClassifyInput{
			DatasetName:           input.DatasetName,
			InputData:             row.InputData(),
			CustomLabels:          labels,
			FewShotExamples:       input.FewShotExamples,
			InputSchemaDefinition: schema,
		})
		if err != nil {
			if u.skippable(err) {
				u.logger.Warn("Rate limited, skipping row", zap.Int("index", i), zap.Error(err))
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("classify row %d: %w", i, err)
		}

		res.Evaluated++
		predicted := out.ModelResponse()
		if strings.EqualFold(predicted, row.Label()) {
			res.Correct++
		} else {
			report.Mismatches = append(report.Mismatches, Mismatch{Index: i, Expected: row.Label(), Predicted: predicted})
		}

		u.logger.Info("Running accuracy",
			zap.Int("index", i),
			zap.Float64("accuracy", float64(res.Correct)/float64(res.Evaluated)),
		)
	}

	if res.Evaluated == 0 {
		return nil, fmt.Errorf("%s: %w", input.DatasetName, ErrNothingEvaluated)
	}

	res.Accuracy = float64(res.Correct) / float64(res.Evaluated)
	res.Error = 1 - res.Accuracy
	res.CompletedAt = u.now()
	u.logger.Info("Classification error",
		zap.String("dataset", input.DatasetName),
		zap.Float64("error", res.Error),
		zap.Int("skipped", res.Skipped),
	)

	if u.repo != nil {
		if err := u.repo.AppendResult(ctx, res); err != nil {
			return nil, fmt.Errorf("append result: %w", err)
		}
	}

	return report, nil
}
