package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/storage"
)

const (
	testClassifier = `{"kind":"logistic_regression","n_features":4,"n_classes":2,
		"coef":[[0.1,1.5,1.2,0.8],[0.3,-0.5,-0.4,-0.2]],"intercept":[0,0]}`
	testLabels    = `{"classes":["Data Scientist","Software Developer"]}`
	testSkills    = `{"vocabulary":{"python":0,"sql":1},"idf":[1.0,1.0]}`
	testInterests = `{"vocabulary":{"data":0},"idf":[1.0]}`
)

func writeArtifacts(t *testing.T, files map[string]string) Paths {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return Paths{
		Classifier:          filepath.Join(dir, "classifier.json"),
		LabelEncoder:        filepath.Join(dir, "label_encoder.json"),
		SkillsVectorizer:    filepath.Join(dir, "skills.json"),
		InterestsVectorizer: filepath.Join(dir, "interests.json"),
	}
}

func validArtifacts() map[string]string {
	return map[string]string{
		"classifier.json":    testClassifier,
		"label_encoder.json": testLabels,
		"skills.json":        testSkills,
		"interests.json":     testInterests,
	}
}

func TestLoad_LocalFiles(t *testing.T) {
	paths := writeArtifacts(t, validArtifacts())

	b, err := Load(context.Background(), paths, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, b.FeatureWidth())
	assert.Equal(t, 2, b.Labels.Len())
	assert.Equal(t, 1, b.Education.Encode("Bachelor"))
}

func TestLoad_MissingFile(t *testing.T) {
	files := validArtifacts()
	delete(files, "skills.json")
	paths := writeArtifacts(t, files)

	_, err := Load(context.Background(), paths, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))

	var artifactErr *ArtifactError
	require.True(t, errors.As(err, &artifactErr))
	assert.Equal(t, "skills vectorizer", artifactErr.Artifact)
}

func TestLoad_UnsetPath(t *testing.T) {
	_, err := Load(context.Background(), Paths{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLoad_SchemaViolation(t *testing.T) {
	files := validArtifacts()
	files["label_encoder.json"] = `{"labels":["A"]}`
	paths := writeArtifacts(t, files)

	_, err := Load(context.Background(), paths, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
	assert.Contains(t, err.Error(), "label encoder")
}

func TestLoad_DimensionMismatch(t *testing.T) {
	files := validArtifacts()
	files["interests.json"] = `{"vocabulary":{"data":0,"cloud":1},"idf":[1.0,1.0]}`
	paths := writeArtifacts(t, files)

	_, err := Load(context.Background(), paths, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
	assert.Contains(t, err.Error(), "expects 4 features")
}

func TestLoad_LabelCountMismatch(t *testing.T) {
	files := validArtifacts()
	files["label_encoder.json"] = `{"classes":["A","B","C"]}`
	paths := writeArtifacts(t, files)

	_, err := Load(context.Background(), paths, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLoad_EducationMapAndDefault(t *testing.T) {
	files := validArtifacts()
	files["education.json"] = `{"levels":{"High School":0,"Bachelor":1,"Master":2,"PhD":3},"default":"Bachelor"}`
	paths := writeArtifacts(t, files)
	paths.EducationMap = filepath.Join(filepath.Dir(paths.Classifier), "education.json")
	paths.EducationDefault = "Master"

	b, err := Load(context.Background(), paths, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Education.Encode("Associate"))
}

func TestLoad_FromObjectStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for key, content := range validArtifacts() {
		require.NoError(t, store.Put(ctx, "models", "v1/"+key, "application/json", []byte(content)))
	}

	paths := Paths{
		Classifier:          "s3://models/v1/classifier.json",
		LabelEncoder:        "s3://models/v1/label_encoder.json",
		SkillsVectorizer:    "s3://models/v1/skills.json",
		InterestsVectorizer: "s3://models/v1/interests.json",
	}
	b, err := Load(ctx, paths, store)
	require.NoError(t, err)
	assert.Equal(t, 4, b.FeatureWidth())

	_, err = Load(ctx, paths, nil)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestNewBundle_Incomplete(t *testing.T) {
	_, err := NewBundle(nil, nil, nil, nil, nil)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}
