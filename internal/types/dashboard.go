package types

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

// CareerHistoryEntry is one recorded prediction.
type CareerHistoryEntry struct {
	ID           int64         `json:"id"`
	Career       string        `json:"career"`
	Confidence   float64       `json:"confidence"`
	Alternatives []CareerScore `json:"alternatives"`
	Input        *CareerInput  `json:"input,omitempty"`
	Date         time.Time     `json:"date"`
}

// LearningPathEntry is one saved learning path.
type LearningPathEntry struct {
	ID              int64           `json:"id"`
	Career          string          `json:"career"`
	Progress        int             `json:"progress"`
	CompletedPhases []string        `json:"completed_phases"`
	Data            json.RawMessage `json:"learning_path_data,omitempty"`
	Date            time.Time       `json:"date"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// UserStats are the per-user activity counters.
type UserStats struct {
	TotalAssessments            int        `json:"total_assessments"`
	TotalResumesUploaded        int        `json:"total_resumes_uploaded"`
	TotalLearningPathsGenerated int        `json:"total_learning_paths_generated"`
	LastAssessmentDate          *time.Time `json:"last_assessment_date"`
	LastResumeUploadDate        *time.Time `json:"last_resume_upload_date"`
}

// QuizStats is reserved for quiz tracking and is always zero.
type QuizStats struct {
	TotalQuizzesTaken int      `json:"total_quizzes_taken"`
	AverageScore      float64  `json:"average_score"`
	TopicsCovered     []string `json:"topics_covered"`
}

// Dashboard is the response of GET /dashboard.
type Dashboard struct {
	UserInfo         *User                `json:"user_info"`
	CareerHistory    []CareerHistoryEntry `json:"career_history"`
	LearningPaths    []LearningPathEntry  `json:"learning_paths"`
	QuizStats        QuizStats            `json:"quiz_stats"`
	Stats            UserStats            `json:"stats"`
	TotalAssessments int                  `json:"total_assessments"`
	LastActivity     *time.Time           `json:"last_activity"`
}

// SaveLearningPathResponse is the response of POST /save-learning-path.
type SaveLearningPathResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	PathID  int64  `json:"path_id"`
}

// ProgressUpdateRequest is the body of PATCH /learning-paths/{id}/progress.
type ProgressUpdateRequest struct {
	Progress        int      `json:"progress" validate:"gte=0,lte=100"`
	CompletedPhases []string `json:"completed_phases"`
}

// Validate validates the ProgressUpdateRequest using the validator.
func (r *ProgressUpdateRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// ResumeRecord is a stored resume upload.
type ResumeRecord struct {
	ID         int64           `json:"id"`
	FileName   string          `json:"file_name"`
	FilePath   string          `json:"file_path,omitempty"`
	Content    string          `json:"-"`
	ParsedData json.RawMessage `json:"parsed_data"`
	UploadedAt time.Time       `json:"uploaded_at"`
}
