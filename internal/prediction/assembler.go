// Package prediction turns a CareerInput into a ranked career prediction:
// feature assembly, classification, ranking and result formatting.
package prediction

import (
	"strings"

	"github.com/jonathan/career-path/internal/model"
	"github.com/jonathan/career-path/internal/types"
)

// Assemble builds the classifier input in the order fixed at training time:
// [education, skills..., interests...]. Skills and interests are each joined
// with a single space before vectorization.
func Assemble(b *model.Bundle, in *types.CareerInput) []float64 {
	skills := b.Skills.Transform(strings.Join(in.Skills, " "))
	interests := b.Interests.Transform(strings.Join(in.Interests, " "))

	x := make([]float64, 0, 1+len(skills)+len(interests))
	x = append(x, float64(b.Education.Encode(in.Education)))
	x = append(x, skills...)
	x = append(x, interests...)
	return x
}
