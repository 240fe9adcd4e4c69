package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
)

// MockDatasetHub is a mock implementation of DatasetHub
type MockDatasetHub struct {
	mock.Mock
}

func (m *MockDatasetHub) ListSplits(ctx context.Context, dataset string) ([]entity.DatasetSplit, error) {
	args := m.Called(ctx, dataset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DatasetSplit), args.Error(1)
}

func (m *MockDatasetHub) FetchRows(ctx context.Context, split entity.DatasetSplit, offset, length int) (*entity.DatasetPage, error) {
	args := m.Called(ctx, split, offset, length)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DatasetPage), args.Error(1)
}

// MockDatasetRepository is a mock implementation of DatasetRepository
type MockDatasetRepository struct {
	mock.Mock
}

func (m *MockDatasetRepository) SaveTable(ctx context.Context, table *entity.Table) (string, error) {
	args := m.Called(ctx, table)
	return args.String(0), args.Error(1)
}

func (m *MockDatasetRepository) LoadTable(ctx context.Context, name string) (*entity.Table, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Table), args.Error(1)
}

func (m *MockDatasetRepository) SaveLabels(ctx context.Context, name string, descriptions map[string]string) (string, error) {
	args := m.Called(ctx, name, descriptions)
	return args.String(0), args.Error(1)
}

func (m *MockDatasetRepository) LoadLabels(ctx context.Context, name string) ([]entity.Label, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Label), args.Error(1)
}

func (m *MockDatasetRepository) LoadSchema(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockDatasetRepository) AppendResult(ctx context.Context, result *entity.EvaluationResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

var (
	trainSplit = entity.DatasetSplit{Dataset: "scikit-learn/iris", Config: "default", Split: "train"}
	testSplit  = entity.DatasetSplit{Dataset: "scikit-learn/iris", Config: "default", Split: "test"}

	irisFeatures = []entity.DatasetFeature{
		{Name: "SepalLengthCm"},
		{Name: "Species", ClassNames: []string{"setosa", "versicolor", "virginica"}},
	}
)

func irisPage(total int, rows ...map[string]any) *entity.DatasetPage {
	return &entity.DatasetPage{Features: irisFeatures, Rows: rows, Total: total}
}

func irisCells(length string, species int64) map[string]any {
	return map[string]any{"SepalLengthCm": json.Number(length), "Species": json.Number(strconv.FormatInt(species, 10))}
}

func TestDatasetUsecase_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("concatenates splits and describes labels", func(t *testing.T) {
		hub := new(MockDatasetHub)
		client := new(MockCompletionClient)
		repo := new(MockDatasetRepository)
		uc := NewDatasetUsecase(hub, client, repo, 0, nil)

		hub.On("ListSplits", ctx, "scikit-learn/iris").Return([]entity.DatasetSplit{trainSplit, testSplit}, nil)
		hub.On("FetchRows", ctx, trainSplit, 0, 100).Return(irisPage(2, irisCells("5.1", 0), irisCells("7.0", 1)), nil)
		hub.On("FetchRows", ctx, testSplit, 0, 100).Return(irisPage(1, irisCells("4.9", 0)), nil)

		var saved *entity.Table
		repo.On("SaveTable", ctx, mock.AnythingOfType("*entity.Table")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.Table) }).
			Return("datasets/iris.csv", nil)

		client.On("DescribeColumn", ctx, "setosa").Return("Small petals", nil)
		client.On("DescribeColumn", ctx, "versicolor").Return("Medium petals", nil)
		repo.On("SaveLabels", ctx, "iris", map[string]string{
			"setosa":     "Small petals",
			"versicolor": "Medium petals",
		}).Return("datasets/iris_labels.json", nil)

		out, err := uc.Download(ctx, "scikit-learn/iris")

		require.NoError(t, err)
		assert.Equal(t, "iris", out.Name)
		assert.Equal(t, 3, out.Rows)
		assert.Equal(t, []string{"setosa", "versicolor"}, out.Labels)
		assert.Equal(t, "datasets/iris.csv", out.TablePath)
		assert.Equal(t, "datasets/iris_labels.json", out.LabelsPath)

		require.NotNil(t, saved)
		assert.Equal(t, []string{"SepalLengthCm", entity.LabelColumn}, saved.Columns)
		require.Len(t, saved.Rows, 3)
		assert.Equal(t, []string{"7.0", "versicolor"}, saved.Rows[1].Values)

		hub.AssertExpectations(t)
		client.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("pages until the split total", func(t *testing.T) {
		hub := new(MockDatasetHub)
		client := new(MockCompletionClient)
		repo := new(MockDatasetRepository)
		uc := NewDatasetUsecase(hub, client, repo, 0, nil)

		first := make([]map[string]any, 100)
		for i := range first {
			first[i] = irisCells("5.0", 2)
		}

		hub.On("ListSplits", ctx, "scikit-learn/iris").Return([]entity.DatasetSplit{trainSplit}, nil)
		hub.On("FetchRows", ctx, trainSplit, 0, 100).Return(irisPage(101, first...), nil)
		hub.On("FetchRows", ctx, trainSplit, 100, 100).Return(irisPage(101, irisCells("5.0", 2)), nil)
		repo.On("SaveTable", ctx, mock.Anything).Return("datasets/iris.csv", nil)
		client.On("DescribeColumn", ctx, "virginica").Return("Large petals", nil)
		repo.On("SaveLabels", ctx, "iris", mock.Anything).Return("datasets/iris_labels.json", nil)

		out, err := uc.Download(ctx, "scikit-learn/iris")

		require.NoError(t, err)
		assert.Equal(t, 101, out.Rows)
		hub.AssertExpectations(t)
	})

	t.Run("stops at the row limit", func(t *testing.T) {
		hub := new(MockDatasetHub)
		client := new(MockCompletionClient)
		repo := new(MockDatasetRepository)
		uc := NewDatasetUsecase(hub, client, repo, 1, nil)

		hub.On("ListSplits", ctx, "scikit-learn/iris").Return([]entity.DatasetSplit{trainSplit, testSplit}, nil)
		hub.On("FetchRows", ctx, trainSplit, 0, 1).Return(irisPage(2, irisCells("5.1", 0)), nil)
		repo.On("SaveTable", ctx, mock.Anything).Return("datasets/iris.csv", nil)
		client.On("DescribeColumn", ctx, "setosa").Return("Small petals", nil)
		repo.On("SaveLabels", ctx, "iris", mock.Anything).Return("datasets/iris_labels.json", nil)

		out, err := uc.Download(ctx, "scikit-learn/iris")

		require.NoError(t, err)
		assert.Equal(t, 1, out.Rows)
		hub.AssertNotCalled(t, "FetchRows", ctx, testSplit, mock.Anything, mock.Anything)
	})

	t.Run("no splits", func(t *testing.T) {
		hub := new(MockDatasetHub)
		uc := NewDatasetUsecase(hub, new(MockCompletionClient), new(MockDatasetRepository), 0, nil)

		hub.On("ListSplits", ctx, "empty/set").Return([]entity.DatasetSplit{}, nil)

		_, err := uc.Download(ctx, "empty/set")

		assert.ErrorIs(t, err, ErrNoSplits)
	})

	t.Run("description failure aborts", func(t *testing.T) {
		hub := new(MockDatasetHub)
		client := new(MockCompletionClient)
		repo := new(MockDatasetRepository)
		uc := NewDatasetUsecase(hub, client, repo, 0, nil)

		remoteErr := errors.New("openai API error: 401 Unauthorized")
		hub.On("ListSplits", ctx, "scikit-learn/iris").Return([]entity.DatasetSplit{trainSplit}, nil)
		hub.On("FetchRows", ctx, trainSplit, 0, 100).Return(irisPage(1, irisCells("5.1", 0)), nil)
		repo.On("SaveTable", ctx, mock.Anything).Return("datasets/iris.csv", nil)
		client.On("DescribeColumn", ctx, "setosa").Return("", remoteErr)

		_, err := uc.Download(ctx, "scikit-learn/iris")

		assert.ErrorIs(t, err, remoteErr)
		repo.AssertNotCalled(t, "SaveLabels", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requires a completion client", func(t *testing.T) {
		uc := NewDatasetUsecase(new(MockDatasetHub), nil, new(MockDatasetRepository), 0, nil)

		_, err := uc.Download(ctx, "scikit-learn/iris")

		assert.ErrorIs(t, err, ErrClientNotConfigured)
	})
}

func TestFormatCell(t *testing.T) {
	names := []string{"neg", "pos"}

	assert.Equal(t, "", formatCell(nil, nil))
	assert.Equal(t, "text", formatCell("text", nil))
	assert.Equal(t, "true", formatCell(true, nil))
	assert.Equal(t, "5.10", formatCell(json.Number("5.10"), nil))
	assert.Equal(t, "pos", formatCell(json.Number("1"), names))
	assert.Equal(t, "7", formatCell(json.Number("7"), names))
	assert.Equal(t, "neg", formatCell(0.0, names))
	assert.Equal(t, "2.5", formatCell(2.5, nil))
	assert.Equal(t, `["a","b"]`, formatCell([]any{"a", "b"}, nil))
}
