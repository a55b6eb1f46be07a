package types

import "github.com/go-playground/validator/v10"

// CareerInput is the body of POST /predict.
type CareerInput struct {
	Education         string   `json:"education" validate:"required"`
	YearsExperience   int      `json:"years_experience" validate:"gte=0"`
	Skills            []string `json:"skills" validate:"required,dive,required"`
	Interests         []string `json:"interests" validate:"required,dive,required"`
	Certifications    []string `json:"certifications,omitempty"`
	PreferredIndustry string   `json:"preferred_industry,omitempty"`
}

// Validate validates the CareerInput using the validator.
func (c *CareerInput) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// CareerScore is one ranked career with its display confidence.
type CareerScore struct {
	Career     string  `json:"career"`
	Confidence float64 `json:"confidence"`
}

// PredictionResult is the response of the prediction pipeline.
type PredictionResult struct {
	PrimaryCareer      string        `json:"primary_career"`
	AlternativeCareers []CareerScore `json:"alternative_careers"`
	Confidence         float64       `json:"confidence"`
	SkillsMatch        float64       `json:"skills_match"`
	Recommendations    []string      `json:"recommendations"`

	// Fallback is set when the static response was served because the
	// model is unavailable.
	Fallback bool `json:"-"`
}
