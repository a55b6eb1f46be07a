// Package schemas embeds the JSON Schemas used to validate model artifacts
// and structured LLM responses.
package schemas

import "embed"

// FS holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names.
const (
	Classifier   = "classifier.schema.json"
	Vectorizer   = "vectorizer.schema.json"
	LabelEncoder = "label_encoder.schema.json"
	EducationMap = "education_map.schema.json"
	LearningPath = "learning_path.schema.json"
	Quiz         = "quiz.schema.json"
	Catalog      = "catalog.schema.json"
)
