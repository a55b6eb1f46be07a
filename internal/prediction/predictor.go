package prediction

import (
	"context"
	"fmt"

	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/types"
)

// Predictor runs the encode, classify, rank and format pipeline over a
// shared read-only bundle. A nil bundle means unavailable mode.
type Predictor struct {
	bundle *model.Bundle
	topK   int
}

// NewPredictor creates a predictor. bundle may be nil.
func NewPredictor(bundle *model.Bundle, topK int) *Predictor {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Predictor{bundle: bundle, topK: topK}
}

// Available reports whether a model bundle is loaded.
func (p *Predictor) Available() bool {
	return p.bundle != nil
}

// Predict returns the ranked prediction for in, or the static result when
// the model is unavailable.
func (p *Predictor) Predict(ctx context.Context, in *types.CareerInput) (*types.PredictionResult, error) {
	if p.bundle == nil {
		return StaticResult(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x := Assemble(p.bundle, in)
	probs, err := p.bundle.Classifier.PredictProba(x)
	if err != nil {
		return nil, fmt.Errorf("failed to classify: %w", err)
	}
	if len(probs) != p.bundle.Labels.Len() {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), p.bundle.Labels.Len())
	}

	ranked, err := Rank(probs, p.bundle.Labels, p.topK)
	if err != nil {
		return nil, err
	}
	return Format(ranked, in), nil
}

// Careers lists the trained career classes, or FallbackCareers in
// unavailable mode.
func (p *Predictor) Careers() []string {
	if p.bundle == nil {
		return append([]string(nil), FallbackCareers...)
	}
	return append([]string(nil), p.bundle.Labels.Classes...)
}
