package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NoneLabel is the wire value returned when no label was predicted
const NoneLabel = "None"

// Label is a candidate classification outcome supplied by the caller
type Label struct {
	Name        string `json:"label"`
	Description string `json:"description"`
}

// String renders the label the way it appears in the user prompt
func (l Label) String() string {
	return fmt.Sprintf("Label: %s, Description: %s", l.Name, l.Description)
}

// FewShotExample is an illustrative record included in the prompt.
// Its string form is the canonical JSON encoding (keys sorted, no HTML escaping).
type FewShotExample map[string]any

func (e FewShotExample) String() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(e)); err != nil {
		return fmt.Sprintf("%v", map[string]any(e))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// ClassificationRequest is everything needed to classify one input record
type ClassificationRequest struct {
	DatasetName     string
	InputData       string
	Labels          []Label
	FewShotExamples []FewShotExample
	SchemaText      string
}
