package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Classifier is a fitted, read-only multi-class probability model.
type Classifier interface {
	// PredictProba returns one probability per class for a feature vector.
	PredictProba(x []float64) ([]float64, error)
	NumFeatures() int
	NumClasses() int
}

// Classifier kinds understood by ParseClassifier.
const (
	KindRandomForest       = "random_forest"
	KindLogisticRegression = "logistic_regression"
)

type classifierHeader struct {
	Kind       string `json:"kind"`
	NFeatures  int    `json:"n_features"`
	NClasses   int    `json:"n_classes"`
	MultiClass string `json:"multi_class,omitempty"`
}

// ParseClassifier decodes a classifier artifact of any supported kind.
func ParseClassifier(data []byte) (Classifier, error) {
	var hdr classifierHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("failed to parse classifier: %w", err)
	}
	if hdr.NFeatures <= 0 || hdr.NClasses < 2 {
		return nil, fmt.Errorf("classifier declares %d features and %d classes", hdr.NFeatures, hdr.NClasses)
	}

	switch hdr.Kind {
	case KindRandomForest:
		var f Forest
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse random forest: %w", err)
		}
		f.nFeatures, f.nClasses = hdr.NFeatures, hdr.NClasses
		if err := f.check(); err != nil {
			return nil, err
		}
		return &f, nil
	case KindLogisticRegression:
		var l Logistic
		if err := json.Unmarshal(data, &l); err != nil {
			return nil, fmt.Errorf("failed to parse logistic regression: %w", err)
		}
		l.nFeatures, l.nClasses, l.ovr = hdr.NFeatures, hdr.NClasses, hdr.MultiClass == "ovr"
		if err := l.check(); err != nil {
			return nil, err
		}
		return &l, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", hdr.Kind)
	}
}

func checkWidth(x []float64, want int) error {
	if len(x) != want {
		return fmt.Errorf("feature vector has %d elements, classifier expects %d", len(x), want)
	}
	return nil
}

// Tree is one decision tree in array form. A node is a leaf when its
// left child is -1. Value holds the per-class weight at each node.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest averages the normalized leaf distributions of its trees.
type Forest struct {
	Trees []Tree `json:"trees"`

	nFeatures int
	nClasses  int
}

func (f *Forest) check() error {
	if len(f.Trees) == 0 {
		return fmt.Errorf("random forest has no trees")
	}
	for ti, t := range f.Trees {
		n := len(t.ChildrenLeft)
		if n == 0 || len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
			return fmt.Errorf("tree %d: node arrays have inconsistent lengths", ti)
		}
		for node := 0; node < n; node++ {
			left, right := t.ChildrenLeft[node], t.ChildrenRight[node]
			if left == -1 {
				if len(t.Value[node]) != f.nClasses {
					return fmt.Errorf("tree %d node %d: leaf has %d class weights, want %d", ti, node, len(t.Value[node]), f.nClasses)
				}
				continue
			}
			if left <= node || left >= n || right <= node || right >= n {
				return fmt.Errorf("tree %d node %d: child index out of order", ti, node)
			}
			if t.Feature[node] < 0 || t.Feature[node] >= f.nFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, node, t.Feature[node])
			}
		}
	}
	return nil
}

func (f *Forest) NumFeatures() int { return f.nFeatures }
func (f *Forest) NumClasses() int  { return f.nClasses }

// PredictProba walks every tree to a leaf and averages the results.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, f.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, f.nClasses)
	for _, t := range f.Trees {
		node := 0
		for t.ChildrenLeft[node] != -1 {
			if x[t.Feature[node]] <= t.Threshold[node] {
				node = t.ChildrenLeft[node]
			} else {
				node = t.ChildrenRight[node]
			}
		}
		leaf := t.Value[node]
		var total float64
		for _, w := range leaf {
			total += w
		}
		if total == 0 {
			continue
		}
		for c, w := range leaf {
			out[c] += w / total
		}
	}
	for c := range out {
		out[c] /= float64(len(f.Trees))
	}
	return out, nil
}

// Logistic is a linear model. A single coefficient row is a binary model;
// otherwise each row scores one class and the scores are softmaxed (or,
// for one-vs-rest models, passed through a sigmoid and renormalized).
type Logistic struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`

	nFeatures int
	nClasses  int
	ovr       bool
}

func (l *Logistic) check() error {
	rows := len(l.Coef)
	switch {
	case rows == 1 && l.nClasses == 2:
	case rows == l.nClasses:
	default:
		return fmt.Errorf("logistic regression has %d coefficient rows for %d classes", rows, l.nClasses)
	}
	if len(l.Intercept) != rows {
		return fmt.Errorf("logistic regression has %d intercepts for %d rows", len(l.Intercept), rows)
	}
	for i, row := range l.Coef {
		if len(row) != l.nFeatures {
			return fmt.Errorf("coefficient row %d has %d weights, want %d", i, len(row), l.nFeatures)
		}
	}
	return nil
}

func (l *Logistic) NumFeatures() int { return l.nFeatures }
func (l *Logistic) NumClasses() int  { return l.nClasses }

// PredictProba scores x against every coefficient row.
func (l *Logistic) PredictProba(x []float64) ([]float64, error) {
	if err := checkWidth(x, l.nFeatures); err != nil {
		return nil, err
	}
	scores := make([]float64, len(l.Coef))
	for i, row := range l.Coef {
		z := l.Intercept[i]
		for j, w := range row {
			z += w * x[j]
		}
		scores[i] = z
	}

	if len(scores) == 1 {
		p := sigmoid(scores[0])
		return []float64{1 - p, p}, nil
	}
	if l.ovr {
		var total float64
		for i, z := range scores {
			scores[i] = sigmoid(z)
			total += scores[i]
		}
		for i := range scores {
			scores[i] /= total
		}
		return scores, nil
	}
	return softmax(scores), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		maxZ = math.Max(maxZ, v)
	}
	var total float64
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		total += out[i]
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
