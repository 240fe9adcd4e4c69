package entity

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"strings"
	"time"
)

// LabelColumn holds the ground-truth label of a dataset row
const LabelColumn = "label"

// Table is a tabular dataset with a label column
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Row is one record. Values line up with Columns.
type Row struct {
	Columns []string
	Values  []string
}

// Value returns the cell for column, or "" when the column is absent
func (r Row) Value(column string) string {
	for i, c := range r.Columns {
		if c == column && i < len(r.Values) {
			return r.Values[i]
		}
	}
	return ""
}

// Label returns the ground-truth label of the row
func (r Row) Label() string {
	return r.Value(LabelColumn)
}

// InputData renders every non-label cell as a JSON object in column order.
// Numeric cells are emitted unquoted.
func (r Row) InputData() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i, c := range r.Columns {
		if c == LabelColumn || i >= len(r.Values) {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false

		sb.WriteString(quote(c))
		sb.WriteString(": ")
		if v := r.Values[i]; isNumber(v) {
			sb.WriteString(v)
		} else {
			sb.WriteString(quote(v))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

// Example converts the row, label included, into a few-shot example
func (r Row) Example() FewShotExample {
	ex := make(FewShotExample, len(r.Columns))
	for i, c := range r.Columns {
		if i >= len(r.Values) {
			break
		}
		if v := r.Values[i]; isNumber(v) {
			ex[c] = json.Number(v)
		} else {
			ex[c] = v
		}
	}
	return ex
}

// Sample picks n rows at random. The remaining rows are returned as rest
// so callers can draw few-shot examples that never overlap the sample.
func (t *Table) Sample(n int, rng *rand.Rand) (sample, rest []Row) {
	if n <= 0 {
		return nil, t.Rows
	}

	perm := rng.Perm(len(t.Rows))
	if n > len(perm) {
		n = len(perm)
	}

	sample = make([]Row, 0, n)
	rest = make([]Row, 0, len(perm)-n)
	for i, idx := range perm {
		if i < n {
			sample = append(sample, t.Rows[idx])
		} else {
			rest = append(rest, t.Rows[idx])
		}
	}
	return sample, rest
}

// LabelValues returns the label of every row in order
func (t *Table) LabelValues() []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row.Label())
	}
	return values
}

// DatasetSplit identifies one split of a hub dataset
type DatasetSplit struct {
	Dataset string
	Config  string
	Split   string
}

// DatasetFeature describes one hub column.
// ClassNames is set when the column stores class indices.
type DatasetFeature struct {
	Name       string
	ClassNames []string
}

// DatasetPage is one page of hub rows
type DatasetPage struct {
	Features []DatasetFeature
	Rows     []map[string]any
	Total    int
}

// EvaluationResult summarizes one accuracy run over a dataset sample
type EvaluationResult struct {
	DatasetName string
	Evaluated   int
	Skipped     int
	Correct     int
	Accuracy    float64
	Error       float64
	CompletedAt time.Time
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
