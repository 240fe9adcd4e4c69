package entity

// Prediction is the model's boolean verdict for one label
type Prediction struct {
	LabelName string `json:"label_name"`
	Value     bool   `json:"value"`
}

// SelectLabel returns the name of the first prediction flagged true.
// Later true values are ignored; ok is false when none is true.
func SelectLabel(predictions []Prediction) (name string, ok bool) {
	for _, p := range predictions {
		if p.Value {
			return p.LabelName, true
		}
	}
	return "", false
}
