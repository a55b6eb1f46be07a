package learning

import (
	"fmt"

	"github.com/jonathan/career-path/internal/types"
)

// SourceTemplate marks results produced without any provider.
const SourceTemplate = "template"

// TemplatePath is the deterministic learning path served when no provider
// produced a valid one.
func TemplatePath(req types.LearningPathRequest) *types.LearningPath {
	req.ApplyDefaults()
	return &types.LearningPath{
		Career:   req.CareerPath,
		Overview: fmt.Sprintf("A comprehensive path to becoming a successful %s.", req.CareerPath),
		LearningPhases: []types.LearningPhase{
			{
				Phase:     "Foundation",
				Duration:  "2 months",
				Topics:    []string{"Basic concepts", "Core tools", "Industry overview"},
				Resources: []string{"Online tutorials", "Documentation"},
			},
			{
				Phase:     "Intermediate",
				Duration:  "3 months",
				Topics:    []string{"Advanced concepts", "Practical projects", "Best practices"},
				Resources: []string{"Courses", "Books", "Projects"},
			},
			{
				Phase:     "Advanced",
				Duration:  "3 months",
				Topics:    []string{"Specialization", "Real-world applications", "Portfolio building"},
				Resources: []string{"Advanced courses", "Mentorship", "Open source"},
			},
		},
		RecommendedResources: []any{},
		EstimatedTimeline:    req.TimeCommitment,
		SkillsToAcquire:      []string{"Problem Solving", "Technical Skills", "Communication", "Project Management"},
		Certifications:       []string{"Industry-recognized Certifications", "Vendor-specific Certifications"},
		JobSearchTips:        []string{"Network actively", "Build a portfolio", "Join communities", "Practice interviews"},
		SalaryInsights: map[string]string{
			"entry_level":  "$50,000+",
			"mid_level":    "$80,000+",
			"senior_level": "$120,000+",
		},
		WebResources: []types.WebResource{},
		Source:       SourceTemplate,
	}
}

// TemplateQuiz is the placeholder quiz served when no provider produced a
// valid one.
func TemplateQuiz(req types.QuizRequest) *types.Quiz {
	req.ApplyDefaults()
	questions := make([]types.QuizQuestion, req.NumQuestions)
	for i := range questions {
		n := i + 1
		questions[i] = types.QuizQuestion{
			Question:      fmt.Sprintf("Sample question %d about %s?", n, req.Topic),
			Options:       []string{"A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"},
			CorrectAnswer: "A",
			Explanation:   fmt.Sprintf("This is a sample explanation for question %d.", n),
		}
	}
	return &types.Quiz{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  questions,
		Source:     SourceTemplate,
	}
}

// DefaultCareerInfo is the synthesized description for careers missing
// from the catalog.
func DefaultCareerInfo(career string) *types.CareerInfo {
	return &types.CareerInfo{
		Name:           career,
		Description:    fmt.Sprintf("Explore exciting opportunities in %s.", career),
		AvgSalary:      "$60,000 - $120,000",
		GrowthRate:     "10-15% annually",
		RequiredSkills: []string{"Communication", "Problem Solving", "Technical Skills"},
		Education:      "Bachelor's degree preferred",
	}
}
