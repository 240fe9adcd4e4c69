// Package prompt assembles the text sent to the completion provider.
package prompt

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// SystemPrompt is the fixed instruction paired with every classification request
const SystemPrompt = `# INSTRUCTIONS
You are a classification model. Your task is to return a JSON array of objects.
Each object has:
- "label_name": the string name of the label
- "value": true or false

# CONSTRAINTS
There can only be ONE true value at MOST.
You will be given an input to classify.
You will be given a set of custom labels to be used as the set of possible values for "label_name".
You MAY be given a set of few-shot examples to help in your classification decision.

# GOAL
Goal is to classify the input into one of the possible labels.`

// DescriptionSystemPrompt is the fixed instruction for column descriptions
const DescriptionSystemPrompt = "You are a helpful assistant."

const (
	headerDataset  = "Dataset Properties:"
	headerLabels   = "The possible labels are:"
	headerExamples = "Here are some few-shot examples:"
	headerSchema   = "Here is the input schema definition:"
)

// Input carries the per-request parts of the user prompt
type Input struct {
	DatasetName     string
	Labels          []entity.Label
	FewShotExamples []entity.FewShotExample
	SchemaText      string
}

// Builder renders user prompts. It holds no per-request state.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a prompt builder
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build renders the user prompt. Sections for empty optional inputs are omitted.
func (b *Builder) Build(in Input) string {
	b.logger.Debug("Building user prompt", zap.String("dataset", in.DatasetName))

	var sb strings.Builder
	sb.WriteString(headerDataset)
	if in.DatasetName != "" {
		sb.WriteString(" " + in.DatasetName)
	}
	sb.WriteString("\n")

	if len(in.Labels) > 0 {
		b.logger.Info("Adding custom labels to the user prompt", zap.Int("count", len(in.Labels)))
		writeSection(&sb, headerLabels, lo.Map(in.Labels, func(l entity.Label, _ int) string {
			return l.String()
		}))
	}

	if len(in.FewShotExamples) > 0 {
		b.logger.Info("Adding few-shot examples to the user prompt", zap.Int("count", len(in.FewShotExamples)))
		writeSection(&sb, headerExamples, lo.Map(in.FewShotExamples, func(ex entity.FewShotExample, _ int) string {
			return "Example: " + ex.String()
		}))
	}

	if in.SchemaText != "" {
		b.logger.Info("Adding input schema definition to the user prompt")
		writeSection(&sb, headerSchema, []string{in.SchemaText})
	}

	return strings.TrimSpace(sb.String())
}

// UserMessage joins the user prompt and the raw input into one message
func UserMessage(userPrompt, inputData string) string {
	return userPrompt + "\n" + inputData
}

// DescriptionRequest is the user text asking for a column description
func DescriptionRequest(columnName string) string {
	return "Generate a description for the column " + columnName + " in under 30 words."
}

func writeSection(sb *strings.Builder, header string, lines []string) {
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n")
}
