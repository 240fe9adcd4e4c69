package handler

import (
	"github.com/samber/lo"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

// Pointer fields with "required" only check that a key is present,
// so "" still binds.

type labelRequest struct {
	Label       *string `json:"label" binding:"required"`
	Description *string `json:"description" binding:"required"`
}

// ClassifyRequest is the POST /classify body
type ClassifyRequest struct {
	DatasetName           *string                 `json:"dataset_name" binding:"required"`
	InputData             *string                 `json:"input_data" binding:"required"`
	CustomLabels          []labelRequest          `json:"custom_labels" binding:"required,dive"`
	FewShotExamples       []entity.FewShotExample `json:"few_shot_examples"`
	InputSchemaDefinition *string                 `json:"input_schema_definition"`
}

func (r *ClassifyRequest) toInput() *usecase.ClassifyInput {
	return &usecase.ClassifyInput{
		DatasetName: lo.FromPtr(r.DatasetName),
		InputData:   lo.FromPtr(r.InputData),
		CustomLabels: lo.Map(r.CustomLabels, func(l labelRequest, _ int) usecase.LabelInput {
			return usecase.LabelInput{Label: lo.FromPtr(l.Label), Description: lo.FromPtr(l.Description)}
		}),
		FewShotExamples:       r.FewShotExamples,
		InputSchemaDefinition: r.InputSchemaDefinition,
	}
}
