package repository

import (
	"context"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// DatasetRepository defines the interface for local dataset files
type DatasetRepository interface {
	// SaveTable writes the table as <name>.csv and returns its path
	SaveTable(ctx context.Context, table *entity.Table) (string, error)

	// LoadTable reads <name>.csv
	LoadTable(ctx context.Context, name string) (*entity.Table, error)

	// SaveLabels writes the label descriptions as <name>_labels.json and returns its path
	SaveLabels(ctx context.Context, name string, descriptions map[string]string) (string, error)

	// LoadLabels reads <name>_labels.json in file order
	LoadLabels(ctx context.Context, name string) ([]entity.Label, error)

	// LoadSchema reads <name>_schema.json as compact JSON text.
	// A missing schema file yields "" and no error.
	LoadSchema(ctx context.Context, name string) (string, error)

	// AppendResult appends an evaluation summary to the results file
	AppendResult(ctx context.Context, result *entity.EvaluationResult) error
}
