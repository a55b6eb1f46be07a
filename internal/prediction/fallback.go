package prediction

import "github.com/jonathan/career-path/internal/types"

// FallbackCareers is listed by GET /careers when no label encoder is loaded.
var FallbackCareers = []string{
	"Software Developer",
	"Data Scientist",
	"Product Manager",
	"UX Designer",
	"DevOps Engineer",
	"Business Analyst",
	"Marketing Manager",
	"Sales Executive",
}

// StaticResult is the canned prediction served in unavailable mode.
func StaticResult() *types.PredictionResult {
	return &types.PredictionResult{
		PrimaryCareer: "Software Developer",
		AlternativeCareers: []types.CareerScore{
			{Career: "Data Scientist", Confidence: 0.75},
			{Career: "DevOps Engineer", Confidence: 0.65},
		},
		Confidence:  0.85,
		SkillsMatch: 0.8,
		Recommendations: []string{
			"Consider gaining more experience in cloud technologies",
			"Enhance your skills in Python and JavaScript",
			"Get AWS or Azure certification",
		},
		Fallback: true,
	}
}
