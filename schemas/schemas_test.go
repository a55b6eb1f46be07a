package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

var allSchemas = []string{
	Classifier,
	Vectorizer,
	LabelEncoder,
	EducationMap,
	LearningPath,
	Quiz,
	Catalog,
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range allSchemas {
		t.Run(name, func(t *testing.T) {
			data, err := FS.ReadFile(name)
			require.NoError(t, err, "schema should be embedded")

			var v interface{}
			assert.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", name)
		})
	}
}

func TestAllSchemaFiles_Compile(t *testing.T) {
	for _, name := range allSchemas {
		t.Run(name, func(t *testing.T) {
			data, err := FS.ReadFile(name)
			require.NoError(t, err)

			_, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			assert.NoError(t, err, "schema should compile: %s", name)
		})
	}
}

func TestClassifierSchema_KindSelectsRequiredFields(t *testing.T) {
	data, err := FS.ReadFile(Classifier)
	require.NoError(t, err)
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	require.NoError(t, err)

	forestWithoutTrees := `{"kind":"random_forest","n_features":3,"n_classes":2}`
	result, err := schema.Validate(gojsonschema.NewStringLoader(forestWithoutTrees))
	require.NoError(t, err)
	assert.False(t, result.Valid())

	logistic := `{"kind":"logistic_regression","n_features":2,"n_classes":2,"coef":[[0.1,0.2]],"intercept":[0]}`
	result, err = schema.Validate(gojsonschema.NewStringLoader(logistic))
	require.NoError(t, err)
	assert.True(t, result.Valid())
}
