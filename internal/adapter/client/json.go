package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// predictionsSchema is the declared output shape for classification
var predictionsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"predictions": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"label_name": map[string]any{
						"type":        "string",
						"description": "Name of the label",
					},
					"value": map[string]any{
						"type":        "boolean",
						"description": "Predicted value for this label (true or false)",
					},
				},
				"required":             []string{"label_name", "value"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"predictions"},
	"additionalProperties": false,
}

// descriptionSchema is the declared output shape for column descriptions
var descriptionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"description": map[string]any{"type": "string"},
	},
	"required":             []string{"description"},
	"additionalProperties": false,
}

type wirePrediction struct {
	LabelName *string `json:"label_name"`
	Value     *bool   `json:"value"`
}

// parsePredictions decodes either {"predictions": [...]} or a bare array
func parsePredictions(content string) ([]entity.Prediction, error) {
	content = cleanJSONResponse(content)

	var items []wirePrediction
	if strings.HasPrefix(content, "[") {
		if err := decodeStrict(content, &items); err != nil {
			return nil, err
		}
	} else {
		var payload struct {
			Predictions *[]wirePrediction `json:"predictions"`
		}
		if err := decodeStrict(content, &payload); err != nil {
			return nil, err
		}
		if payload.Predictions == nil {
			return nil, fmt.Errorf("%w: missing predictions, content: %s", ErrSchemaConformance, content)
		}
		items = *payload.Predictions
	}

	predictions := make([]entity.Prediction, len(items))
	for i, it := range items {
		if it.LabelName == nil || it.Value == nil {
			return nil, fmt.Errorf("%w: prediction %d is missing label_name or value", ErrSchemaConformance, i)
		}
		predictions[i] = entity.Prediction{LabelName: *it.LabelName, Value: *it.Value}
	}
	return predictions, nil
}

func parseDescription(content string) (string, error) {
	content = cleanJSONResponse(content)

	var payload struct {
		Description *string `json:"description"`
	}
	if err := decodeStrict(content, &payload); err != nil {
		return "", err
	}
	if payload.Description == nil {
		return "", fmt.Errorf("%w: missing description, content: %s", ErrSchemaConformance, content)
	}
	return *payload.Description, nil
}

func decodeStrict(content string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v, content: %s", ErrSchemaConformance, err, content)
	}
	return nil
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	closer := "}"
	if content[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(content, closer)
	if end > start {
		content = content[start : end+1]
	}
	return content
}
