package service

import (
	"context"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// DatasetHub defines the interface for a remote dataset catalogue
type DatasetHub interface {
	// ListSplits returns every split of the dataset
	ListSplits(ctx context.Context, dataset string) ([]entity.DatasetSplit, error)

	// FetchRows returns up to length rows of split starting at offset
	FetchRows(ctx context.Context, split entity.DatasetSplit, offset, length int) (*entity.DatasetPage, error)
}
