package model

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/career-path/internal/schemas"
	"github.com/jonathan/career-path/internal/storage"
	embedded "github.com/jonathan/career-path/schemas"
)

// ErrModelUnavailable is returned when the artifact set is missing or
// inconsistent. Callers are expected to fall back to a static response.
var ErrModelUnavailable = errors.New("model unavailable")

// ArtifactError identifies which artifact failed to load.
type ArtifactError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrModelUnavailable) match any artifact failure.
func (e *ArtifactError) Is(target error) bool { return target == ErrModelUnavailable }

// Paths locates the four required artifacts and the optional education map.
type Paths struct {
	Classifier          string
	LabelEncoder        string
	SkillsVectorizer    string
	InterestsVectorizer string
	EducationMap        string
	EducationDefault    string
}

// Bundle is the frozen encoder/classifier set. It is never mutated after
// construction and is safe for concurrent use.
type Bundle struct {
	Education  *EducationMap
	Skills     *Vectorizer
	Interests  *Vectorizer
	Labels     *LabelEncoder
	Classifier Classifier
}

// NewBundle assembles a bundle and checks that the parts agree on
// dimensions: the classifier must accept 1+|skills|+|interests| features and
// produce one probability per label.
func NewBundle(edu *EducationMap, skills, interests *Vectorizer, labels *LabelEncoder, clf Classifier) (*Bundle, error) {
	if edu == nil {
		edu = DefaultEducationMap()
	}
	if skills == nil || interests == nil || labels == nil || clf == nil {
		return nil, fmt.Errorf("%w: incomplete artifact set", ErrModelUnavailable)
	}
	b := &Bundle{Education: edu, Skills: skills, Interests: interests, Labels: labels, Classifier: clf}
	if want := b.FeatureWidth(); clf.NumFeatures() != want {
		return nil, fmt.Errorf("%w: classifier expects %d features, encoders produce %d",
			ErrModelUnavailable, clf.NumFeatures(), want)
	}
	if clf.NumClasses() != labels.Len() {
		return nil, fmt.Errorf("%w: classifier has %d classes, label encoder has %d",
			ErrModelUnavailable, clf.NumClasses(), labels.Len())
	}
	return b, nil
}

// FeatureWidth is the length of an assembled feature vector.
func (b *Bundle) FeatureWidth() int {
	return 1 + b.Skills.Width() + b.Interests.Width()
}

// Load reads, validates and decodes every artifact concurrently. Any failure
// is reported as an error matching ErrModelUnavailable.
func Load(ctx context.Context, paths Paths, store storage.ObjectStore) (*Bundle, error) {
	var (
		clf       Classifier
		labels    *LabelEncoder
		skills    *Vectorizer
		interests *Vectorizer
		edu       = DefaultEducationMap()
	)

	g, ctx := errgroup.WithContext(ctx)
	load := func(name, path, schema string, decode func([]byte) error) {
		g.Go(func() error {
			if path == "" {
				return &ArtifactError{Artifact: name, Path: "(unset)", Err: errors.New("path not configured")}
			}
			data, err := readArtifact(ctx, store, path)
			if err != nil {
				return &ArtifactError{Artifact: name, Path: path, Err: err}
			}
			if err := schemas.Validate(schema, data); err != nil {
				return &ArtifactError{Artifact: name, Path: path, Err: err}
			}
			if err := decode(data); err != nil {
				return &ArtifactError{Artifact: name, Path: path, Err: err}
			}
			return nil
		})
	}

	load("classifier", paths.Classifier, embedded.Classifier, func(data []byte) (err error) {
		clf, err = ParseClassifier(data)
		return err
	})
	load("label encoder", paths.LabelEncoder, embedded.LabelEncoder, func(data []byte) (err error) {
		labels, err = ParseLabelEncoder(data)
		return err
	})
	load("skills vectorizer", paths.SkillsVectorizer, embedded.Vectorizer, func(data []byte) (err error) {
		skills, err = ParseVectorizer(data)
		return err
	})
	load("interests vectorizer", paths.InterestsVectorizer, embedded.Vectorizer, func(data []byte) (err error) {
		interests, err = ParseVectorizer(data)
		return err
	})
	if paths.EducationMap != "" {
		load("education map", paths.EducationMap, embedded.EducationMap, func(data []byte) (err error) {
			edu, err = ParseEducationMap(data)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if paths.EducationDefault != "" && paths.EducationDefault != edu.Default {
		withDefault, err := edu.WithDefault(paths.EducationDefault)
		if err != nil {
			return nil, &ArtifactError{Artifact: "education map", Path: paths.EducationMap, Err: err}
		}
		edu = withDefault
	}

	return NewBundle(edu, skills, interests, labels, clf)
}
