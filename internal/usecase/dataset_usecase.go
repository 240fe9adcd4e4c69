package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/repository"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
)

// Download errors
var (
	ErrNoSplits  = errors.New("dataset has no splits")
	ErrNoColumns = errors.New("dataset has no columns")
)

const hubPageLength = 100

// DownloadOutput describes the files written for one dataset
type DownloadOutput struct {
	Name       string
	Rows       int
	Labels     []string
	TablePath  string
	LabelsPath string
}

// DatasetUsecase defines dataset acquisition
type DatasetUsecase interface {
	Download(ctx context.Context, hubID string) (*DownloadOutput, error)
}

type datasetUsecase struct {
	hub       service.DatasetHub
	describer service.CompletionClient
	repo      repository.DatasetRepository
	maxRows   int
	logger    *zap.Logger
}

// NewDatasetUsecase creates a new dataset usecase. maxRows <= 0 means no limit.
func NewDatasetUsecase(hub service.DatasetHub, describer service.CompletionClient, repo repository.DatasetRepository, maxRows int, logger *zap.Logger) DatasetUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &datasetUsecase{
		hub:       hub,
		describer: describer,
		repo:      repo,
		maxRows:   maxRows,
		logger:    logger,
	}
}

// Download fetches every split of hubID into one table whose last column is
// renamed to the label column, then asks the model to describe each label value.
func (u *datasetUsecase) Download(ctx context.Context, hubID string) (*DownloadOutput, error) {
	if u.describer == nil {
		return nil, ErrClientNotConfigured
	}

	splits, err := u.hub.ListSplits(ctx, hubID)
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	if len(splits) == 0 {
		return nil, fmt.Errorf("%s: %w", hubID, ErrNoSplits)
	}

	name := path.Base(hubID)
	table := &entity.Table{Name: name}
	var features []entity.DatasetFeature

	for _, split := range splits {
		if u.limitReached(len(table.Rows)) {
			break
		}

		fetched, err := u.fetchSplit(ctx, split, table, &features)
		if err != nil {
			return nil, err
		}
		u.logger.Info("Fetched split",
			zap.String("dataset", hubID),
			zap.String("config", split.Config),
			zap.String("split", split.Split),
			zap.Int("rows", fetched),
		)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%s: %w", hubID, ErrNoColumns)
	}

	tablePath, err := u.repo.SaveTable(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("save table: %w", err)
	}
	u.logger.Info("Downloaded dataset", zap.String("dataset", name), zap.String("path", tablePath))

	labels := lo.Uniq(table.LabelValues())
	descriptions := make(map[string]string, len(labels))
	for _, label := range labels {
		description, err := u.describer.DescribeColumn(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("describe label %q: %w", label, err)
		}
		descriptions[label] = description
	}

	labelsPath, err := u.repo.SaveLabels(ctx, name, descriptions)
	if err != nil {
		return nil, fmt.Errorf("save labels: %w", err)
	}
	u.logger.Info("Saved label descriptions", zap.String("dataset", name), zap.String("path", labelsPath))

	return &DownloadOutput{
		Name:       name,
		Rows:       len(table.Rows),
		Labels:     labels,
		TablePath:  tablePath,
		LabelsPath: labelsPath,
	}, nil
}

func (u *datasetUsecase) limitReached(rows int) bool {
	return u.maxRows > 0 && rows >= u.maxRows
}

// fetchSplit pages through one split and appends its rows to table.
// The first page seen fixes the table's columns.
func (u *datasetUsecase) fetchSplit(ctx context.Context, split entity.DatasetSplit, table *entity.Table, features *[]entity.DatasetFeature) (int, error) {
	fetched, offset := 0, 0
	for {
		length := hubPageLength
		if u.maxRows > 0 {
			length = min(length, u.maxRows-len(table.Rows))
		}
		if length <= 0 {
			return fetched, nil
		}

		page, err := u.hub.FetchRows(ctx, split, offset, length)
		if err != nil {
			return fetched, fmt.Errorf("fetch rows of %s/%s at %d: %w", split.Config, split.Split, offset, err)
		}

		if len(*features) == 0 && len(page.Features) > 0 {
			*features = page.Features
			table.Columns = columnNames(page.Features)
		}
		for _, values := range page.Rows {
			table.Rows = append(table.Rows, entity.Row{
				Columns: table.Columns,
				Values:  rowValues(*features, values),
			})
		}

		fetched += len(page.Rows)
		offset += len(page.Rows)
		if len(page.Rows) == 0 || offset >= page.Total {
			return fetched, nil
		}
	}
}

// columnNames returns the feature names with the last one renamed to the label column
func columnNames(features []entity.DatasetFeature) []string {
	columns := lo.Map(features, func(f entity.DatasetFeature, _ int) string { return f.Name })
	columns[len(columns)-1] = entity.LabelColumn
	return columns
}

func rowValues(features []entity.DatasetFeature, values map[string]any) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = formatCell(values[f.Name], f.ClassNames)
	}
	return out
}

// formatCell renders a hub cell as CSV text. Class indices become class names.
func formatCell(v any, classNames []string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		if len(classNames) > 0 {
			if idx, err := val.Int64(); err == nil && idx >= 0 && int(idx) < len(classNames) {
				return classNames[idx]
			}
		}
		return val.String()
	case float64:
		if len(classNames) > 0 && val >= 0 && int(val) < len(classNames) && val == float64(int(val)) {
			return classNames[int(val)]
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
