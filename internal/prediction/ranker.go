package prediction

import (
	"fmt"
	"math"
	"sort"

	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/types"
)

// DefaultTopK is the number of careers returned when no k is configured.
const DefaultTopK = 3

// Rank orders class probabilities descending, breaking ties by the lower
// class index, keeps the first k and maps each index to its career name.
// Confidences are rounded to three decimals only after ordering.
func Rank(probs []float64, labels *model.LabelEncoder, k int) ([]types.CareerScore, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}

	out := make([]types.CareerScore, 0, k)
	for _, idx := range order[:k] {
		name, err := labels.Decode(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to decode class: %w", err)
		}
		out = append(out, types.CareerScore{Career: name, Confidence: round(probs[idx], 3)})
	}
	return out, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
