// Package model holds the frozen encoder bundle and classifier used to turn
// raw career inputs into class probabilities.
package model

import (
	"encoding/json"
	"fmt"
)

// DefaultEducationLevel is the level used when an input education string is
// not in the table. The training data is skewed towards bachelor degrees, so
// unknown values are encoded as such instead of being rejected.
const DefaultEducationLevel = "Bachelor"

// EducationMap is the ordinal education encoding used at training time.
type EducationMap struct {
	Levels  map[string]int `json:"levels"`
	Default string         `json:"default"`
}

// DefaultEducationMap returns the four-level table the classifier was fitted on.
func DefaultEducationMap() *EducationMap {
	return &EducationMap{
		Levels: map[string]int{
			"High School": 0,
			"Bachelor":    1,
			"Master":      2,
			"PhD":         3,
		},
		Default: DefaultEducationLevel,
	}
}

// Encode returns the ordinal value for level, falling back to the default
// level's value for anything unknown.
func (m *EducationMap) Encode(level string) int {
	if v, ok := m.Levels[level]; ok {
		return v
	}
	return m.Levels[m.Default]
}

// Known reports whether level is an exact key of the table.
func (m *EducationMap) Known(level string) bool {
	_, ok := m.Levels[level]
	return ok
}

// WithDefault returns a copy of the map using level as the fallback.
func (m *EducationMap) WithDefault(level string) (*EducationMap, error) {
	if !m.Known(level) {
		return nil, fmt.Errorf("default education level %q is not in the table", level)
	}
	levels := make(map[string]int, len(m.Levels))
	for k, v := range m.Levels {
		levels[k] = v
	}
	return &EducationMap{Levels: levels, Default: level}, nil
}

// ParseEducationMap decodes an education table. Both the wrapped form
// ({"levels": {...}, "default": "..."}) and a bare {"level": n} object are
// accepted; the bare form uses DefaultEducationLevel.
func ParseEducationMap(data []byte) (*EducationMap, error) {
	var wrapped EducationMap
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Levels) > 0 {
		if wrapped.Default == "" {
			wrapped.Default = DefaultEducationLevel
		}
		if !wrapped.Known(wrapped.Default) {
			return nil, fmt.Errorf("default education level %q is not in the table", wrapped.Default)
		}
		return &wrapped, nil
	}

	var bare map[string]int
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to parse education map: %w", err)
	}
	if len(bare) == 0 {
		return nil, fmt.Errorf("education map is empty")
	}
	m := &EducationMap{Levels: bare, Default: DefaultEducationLevel}
	if _, ok := bare[m.Default]; !ok {
		return nil, fmt.Errorf("default education level %q is not in the table", m.Default)
	}
	return m, nil
}
