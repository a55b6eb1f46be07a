package prediction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/types"
)

type fixedClassifier struct {
	probs    []float64
	features int
	lastX    []float64
}

func (f *fixedClassifier) PredictProba(x []float64) ([]float64, error) {
	f.lastX = append([]float64(nil), x...)
	return append([]float64(nil), f.probs...), nil
}
func (f *fixedClassifier) NumFeatures() int { return f.features }
func (f *fixedClassifier) NumClasses() int  { return len(f.probs) }

func newTestBundle(t *testing.T, classes []string, probs []float64) (*model.Bundle, *fixedClassifier) {
	t.Helper()
	skills, err := model.NewVectorizer(map[string]int{"python": 0, "sql": 1, "java": 2}, nil)
	require.NoError(t, err)
	interests, err := model.NewVectorizer(map[string]int{"data": 0, "design": 1}, nil)
	require.NoError(t, err)
	labels, err := model.NewLabelEncoder(classes)
	require.NoError(t, err)

	clf := &fixedClassifier{probs: probs, features: 6}
	b, err := model.NewBundle(model.DefaultEducationMap(), skills, interests, labels, clf)
	require.NoError(t, err)
	return b, clf
}

func TestAssemble_OrderAndWidth(t *testing.T) {
	b, _ := newTestBundle(t, []string{"A", "B"}, []float64{0.5, 0.5})

	x := Assemble(b, &types.CareerInput{
		Education: "Master",
		Skills:    []string{"Java"},
		Interests: []string{"Design"},
	})
	assert.Equal(t, []float64{2, 0, 0, 1, 0, 1}, x)
	assert.Len(t, x, b.FeatureWidth())
}

func TestAssemble_UnknownEducationDefaults(t *testing.T) {
	b, _ := newTestBundle(t, []string{"A", "B"}, []float64{0.5, 0.5})

	x := Assemble(b, &types.CareerInput{Education: "Bootcamp", Skills: []string{}, Interests: []string{}})
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0}, x)
}

func TestAssemble_Deterministic(t *testing.T) {
	b, _ := newTestBundle(t, []string{"A", "B"}, []float64{0.5, 0.5})
	in := &types.CareerInput{Education: "PhD", Skills: []string{"Python", "SQL"}, Interests: []string{"Data"}}

	assert.Equal(t, Assemble(b, in), Assemble(b, in))
}

func TestRank_DescendingWithIndexTieBreak(t *testing.T) {
	labels, err := model.NewLabelEncoder([]string{"A", "B", "C", "D"})
	require.NoError(t, err)

	ranked, err := Rank([]float64{0.2, 0.3, 0.3, 0.2}, labels, 4)
	require.NoError(t, err)
	assert.Equal(t, []types.CareerScore{
		{Career: "B", Confidence: 0.3},
		{Career: "C", Confidence: 0.3},
		{Career: "A", Confidence: 0.2},
		{Career: "D", Confidence: 0.2},
	}, ranked)
}

func TestRank_RoundsAfterOrdering(t *testing.T) {
	labels, err := model.NewLabelEncoder([]string{"A", "B"})
	require.NoError(t, err)

	ranked, err := Rank([]float64{0.50001, 0.50004}, labels, 2)
	require.NoError(t, err)
	assert.Equal(t, "B", ranked[0].Career)
	assert.Equal(t, 0.5, ranked[0].Confidence)
	assert.Equal(t, 0.5, ranked[1].Confidence)
}

func TestRank_KLargerThanClasses(t *testing.T) {
	labels, err := model.NewLabelEncoder([]string{"A", "B"})
	require.NoError(t, err)

	ranked, err := Rank([]float64{0.4, 0.6}, labels, 3)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestRank_DefaultK(t *testing.T) {
	labels, err := model.NewLabelEncoder([]string{"A", "B", "C", "D", "E"})
	require.NoError(t, err)

	ranked, err := Rank([]float64{0.1, 0.2, 0.3, 0.25, 0.15}, labels, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"C", "D", "B"}, []string{ranked[0].Career, ranked[1].Career, ranked[2].Career})
}

func TestRank_UnknownIndex(t *testing.T) {
	labels, err := model.NewLabelEncoder([]string{"A"})
	require.NoError(t, err)

	_, err = Rank([]float64{0.1, 0.9}, labels, 2)
	assert.Error(t, err)
}

func TestSkillsMatch(t *testing.T) {
	tests := []struct {
		n    int
		want float64
	}{
		{0, 0.0},
		{2, 0.2},
		{3, 0.3},
		{7, 0.7},
		{10, 1.0},
		{25, 1.0},
	}
	for _, tt := range tests {
		skills := make([]string, tt.n)
		assert.Equal(t, tt.want, SkillsMatch(skills), "skills=%d", tt.n)
	}
}

func TestRecommendations(t *testing.T) {
	recs := Recommendations("Data Scientist", []string{"Python", "SQL", "R", "Spark"})
	assert.Equal(t, []string{
		"Consider gaining more experience in Data Scientist",
		"Enhance your skills in: Python, SQL, R",
		"Join relevant professional networks",
		"Explore certifications for this domain",
	}, recs)

	recs = Recommendations("X", nil)
	assert.Equal(t, "Enhance your skills in: ", recs[1])
}

func TestPredictor_DataScientistScenario(t *testing.T) {
	b, clf := newTestBundle(t,
		[]string{"Data Scientist", "Software Developer", "UX Designer"},
		[]float64{0.62, 0.25, 0.13},
	)
	p := NewPredictor(b, 3)

	res, err := p.Predict(context.Background(), &types.CareerInput{
		Education: "Bachelor",
		Skills:    []string{"Python", "SQL"},
		Interests: []string{"Data"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Data Scientist", res.PrimaryCareer)
	assert.Equal(t, 0.62, res.Confidence)
	assert.Equal(t, 0.2, res.SkillsMatch)
	assert.False(t, res.Fallback)
	assert.Equal(t, []types.CareerScore{
		{Career: "Software Developer", Confidence: 0.25},
		{Career: "UX Designer", Confidence: 0.13},
	}, res.AlternativeCareers)
	assert.Len(t, clf.lastX, 6)
	assert.Equal(t, 1.0, clf.lastX[0])
}

func TestPredictor_Unavailable(t *testing.T) {
	p := NewPredictor(nil, 3)
	assert.False(t, p.Available())

	res, err := p.Predict(context.Background(), &types.CareerInput{Education: "PhD", Skills: []string{"Go"}, Interests: []string{}})
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, "Software Developer", res.PrimaryCareer)
	assert.Equal(t, 0.85, res.Confidence)
	assert.Equal(t, 0.8, res.SkillsMatch)
	assert.Len(t, res.AlternativeCareers, 2)

	assert.Equal(t, FallbackCareers, p.Careers())
}

func TestPredictor_CareersFromLabels(t *testing.T) {
	b, _ := newTestBundle(t, []string{"A", "B"}, []float64{0.5, 0.5})
	p := NewPredictor(b, 0)
	assert.True(t, p.Available())
	assert.Equal(t, []string{"A", "B"}, p.Careers())
}

func TestPredictor_CanceledContext(t *testing.T) {
	b, _ := newTestBundle(t, []string{"A", "B"}, []float64{0.5, 0.5})
	p := NewPredictor(b, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Predict(ctx, &types.CareerInput{Education: "PhD"})
	assert.ErrorIs(t, err, context.Canceled)
}
