package types

import "github.com/go-playground/validator/v10"

// LearningPathRequest is the body of POST /generate-path.
type LearningPathRequest struct {
	CareerPath      string   `json:"career_path" validate:"required,max=200"`
	CurrentSkills   []string `json:"current_skills,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty" validate:"omitempty,max=50"`
	TimeCommitment  string   `json:"time_commitment,omitempty" validate:"omitempty,max=50"`
	LearningStyle   string   `json:"learning_style,omitempty" validate:"omitempty,max=50"`
}

// Request defaults applied when the caller omits a field.
const (
	DefaultExperienceLevel = "beginner"
	DefaultTimeCommitment  = "3-6 months"
	DefaultLearningStyle   = "mixed"
)

// Validate validates the LearningPathRequest using the validator.
func (r *LearningPathRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ApplyDefaults fills empty optional fields.
func (r *LearningPathRequest) ApplyDefaults() {
	if r.ExperienceLevel == "" {
		r.ExperienceLevel = DefaultExperienceLevel
	}
	if r.TimeCommitment == "" {
		r.TimeCommitment = DefaultTimeCommitment
	}
	if r.LearningStyle == "" {
		r.LearningStyle = DefaultLearningStyle
	}
	if r.CurrentSkills == nil {
		r.CurrentSkills = []string{}
	}
}

// LearningPhase is one stage of a learning path.
type LearningPhase struct {
	Phase     string   `json:"phase"`
	Duration  string   `json:"duration,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Resources []string `json:"resources,omitempty"`
}

// LearningPath is a generated roadmap towards a career.
type LearningPath struct {
	Career               string            `json:"career"`
	Overview             string            `json:"overview"`
	LearningPhases       []LearningPhase   `json:"learning_phases"`
	RecommendedResources []any             `json:"recommended_resources"`
	EstimatedTimeline    string            `json:"estimated_timeline"`
	SkillsToAcquire      []string          `json:"skills_to_acquire"`
	Certifications       []string          `json:"certifications"`
	JobSearchTips        []string          `json:"job_search_tips"`
	SalaryInsights       map[string]string `json:"salary_insights"`
	WebResources         []WebResource     `json:"web_resources"`
	// Source is the provider that produced the path, or "template".
	Source string `json:"source"`
}

// WebResource is one web-search hit.
type WebResource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Quiz difficulty levels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	DefaultQuizQuestions = 10
)

// QuizRequest is the body of POST /generate-quiz.
type QuizRequest struct {
	Topic        string `json:"topic" validate:"required,max=200"`
	Difficulty   string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	NumQuestions int    `json:"num_questions,omitempty" validate:"omitempty,min=1,max=50"`
}

// Validate validates the QuizRequest using the validator.
func (r *QuizRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ApplyDefaults fills empty optional fields.
func (r *QuizRequest) ApplyDefaults() {
	if r.Difficulty == "" {
		r.Difficulty = DifficultyMedium
	}
	if r.NumQuestions == 0 {
		r.NumQuestions = DefaultQuizQuestions
	}
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is the response of POST /generate-quiz.
type Quiz struct {
	Topic      string         `json:"topic"`
	Difficulty string         `json:"difficulty"`
	Questions  []QuizQuestion `json:"questions"`
	Source     string         `json:"source"`
}

// CareerInfo describes a career for GET /career-info/{career}.
type CareerInfo struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	AvgSalary      string   `json:"avg_salary"`
	GrowthRate     string   `json:"growth_rate"`
	RequiredSkills []string `json:"required_skills"`
	Education      string   `json:"education"`
}
