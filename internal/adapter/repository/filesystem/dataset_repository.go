package filesystem

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/samber/lo"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/entity"
	"github.com/akramsystems/llm-n-class-classifier/internal/domain/repository"
)

// ErrMissingLabelColumn is returned when a CSV file has no label column
var ErrMissingLabelColumn = errors.New("dataset has no label column")

const resultSeparator = "----------------------------------"

type datasetRepository struct {
	dir         string
	resultsFile string
}

// NewDatasetRepository creates a repository rooted at dir that appends
// evaluation results to resultsFile
func NewDatasetRepository(dir, resultsFile string) repository.DatasetRepository {
	return &datasetRepository{dir: dir, resultsFile: resultsFile}
}

func (r *datasetRepository) tablePath(name string) string {
	return filepath.Join(r.dir, name+".csv")
}

func (r *datasetRepository) labelsPath(name string) string {
	return filepath.Join(r.dir, name+"_labels.json")
}

func (r *datasetRepository) schemaPath(name string) string {
	return filepath.Join(r.dir, name+"_schema.json")
}

func (r *datasetRepository) SaveTable(ctx context.Context, table *entity.Table) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !slices.Contains(table.Columns, entity.LabelColumn) {
		return "", ErrMissingLabelColumn
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}

	path := r.tablePath(table.Name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row.Values); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	return path, f.Close()
}

func (r *datasetRepository) LoadTable(ctx context.Context, name string) (*entity.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := r.tablePath(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: %w", path, ErrMissingLabelColumn)
	}

	columns := records[0]
	if !slices.Contains(columns, entity.LabelColumn) {
		return nil, fmt.Errorf("read %s: %w", path, ErrMissingLabelColumn)
	}

	table := &entity.Table{
		Name:    name,
		Columns: columns,
		Rows:    make([]entity.Row, 0, len(records)-1),
	}
	for _, rec := range records[1:] {
		table.Rows = append(table.Rows, entity.Row{Columns: columns, Values: rec})
	}
	return table, nil
}

func (r *datasetRepository) SaveLabels(_ context.Context, name string, descriptions map[string]string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create dataset dir: %w", err)
	}

	data, err := json.MarshalIndent(descriptions, "", "    ")
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}

	path := r.labelsPath(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func (r *datasetRepository) LoadLabels(_ context.Context, name string) ([]entity.Label, error) {
	path := r.labelsPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	labels, err := decodeLabels(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return labels, nil
}

// decodeLabels reads a {"label": "description"} object keeping key order.
// A repeated key keeps its first position and takes the last description.
func decodeLabels(data []byte) ([]entity.Label, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	labels := []entity.Label{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := tok.(string)

		var desc string
		if err := dec.Decode(&desc); err != nil {
			return nil, fmt.Errorf("label %q: %w", key, err)
		}

		if _, i, found := lo.FindIndexOf(labels, func(l entity.Label) bool { return l.Name == key }); found {
			labels[i].Description = desc
			continue
		}
		labels = append(labels, entity.Label{Name: key, Description: desc})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *datasetRepository) LoadSchema(_ context.Context, name string) (string, error) {
	path := r.schemaPath(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return buf.String(), nil
}

func (r *datasetRepository) AppendResult(_ context.Context, result *entity.EvaluationResult) error {
	if dir := filepath.Dir(r.resultsFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}

	lock := flock.New(r.resultsFile + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire results lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(r.resultsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.resultsFile, err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s\n%s\nDataset: %s\nAccuracy: %.2f\nError: %.2f\n\n",
		resultSeparator,
		result.CompletedAt.Format("2006-01-02 15:04:05"),
		result.DatasetName,
		result.Accuracy,
		result.Error,
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", r.resultsFile, err)
	}
	return f.Close()
}
