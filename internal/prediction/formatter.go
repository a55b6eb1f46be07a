package prediction

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/career-path/internal/types"
)

// SkillsMatch is a saturating breadth score: the number of listed skills
// over ten, capped at one. It does not measure relevance.
func SkillsMatch(skills []string) float64 {
	return round(math.Min(1, float64(len(skills))/10), 2)
}

// Recommendations returns the fixed advice lines for a primary career.
func Recommendations(primary string, skills []string) []string {
	top := skills
	if len(top) > 3 {
		top = top[:3]
	}
	return []string{
		fmt.Sprintf("Consider gaining more experience in %s", primary),
		fmt.Sprintf("Enhance your skills in: %s", strings.Join(top, ", ")),
		"Join relevant professional networks",
		"Explore certifications for this domain",
	}
}

// Format builds the response from ranked careers. ranked must not be empty.
func Format(ranked []types.CareerScore, in *types.CareerInput) *types.PredictionResult {
	alternatives := append([]types.CareerScore{}, ranked[1:]...)
	return &types.PredictionResult{
		PrimaryCareer:      ranked[0].Career,
		Confidence:         ranked[0].Confidence,
		AlternativeCareers: alternatives,
		SkillsMatch:        SkillsMatch(in.Skills),
		Recommendations:    Recommendations(ranked[0].Career, in.Skills),
	}
}
