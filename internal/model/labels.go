package model

import (
	"encoding/json"
	"fmt"
)

// LabelEncoder maps class indices to career names and back. The order of
// Classes is the column order of the classifier's probability output.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// NewLabelEncoder builds an encoder over classes, rejecting duplicates.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate class %q", c)
		}
		index[c] = i
	}
	return &LabelEncoder{Classes: append([]string(nil), classes...), index: index}, nil
}

// ParseLabelEncoder decodes a label encoder artifact.
func ParseLabelEncoder(data []byte) (*LabelEncoder, error) {
	var raw LabelEncoder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse label encoder: %w", err)
	}
	return NewLabelEncoder(raw.Classes)
}

// Len returns the number of trained classes.
func (e *LabelEncoder) Len() int {
	return len(e.Classes)
}

// Decode returns the career name for a class index.
func (e *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(e.Classes) {
		return "", fmt.Errorf("class index %d out of range [0,%d)", i, len(e.Classes))
	}
	return e.Classes[i], nil
}

// Encode returns the class index for a career name.
func (e *LabelEncoder) Encode(name string) (int, error) {
	i, ok := e.index[name]
	if !ok {
		return 0, fmt.Errorf("unknown class %q", name)
	}
	return i, nil
}
