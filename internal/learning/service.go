package learning

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/prompts"
	"github.com/jonathan/career-path/internal/search"
	"github.com/jonathan/career-path/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	embedded "github.com/jonathan/career-path/schemas"
)

const (
	taskLearningPath = "learning_path"
	taskQuiz         = "quiz"
)

// Options configures a Service. Search, Roadmaps and CareerInfo may be nil.
type Options struct {
	Providers  []llm.Client
	Timeout    time.Duration
	Search     *search.Service
	Roadmaps   *Catalog
	CareerInfo *Catalog
	Logger     *zap.Logger
}

// Service generates learning content. Every method returns a well-formed
// result; provider and search failures are logged and absorbed.
type Service struct {
	chain      *Chain
	search     *search.Service
	roadmaps   *Catalog
	careerInfo *Catalog
}

// NewService creates a learning service.
func NewService(opts Options) *Service {
	return &Service{
		chain:      NewChain(opts.Providers, opts.Timeout, opts.Logger),
		search:     opts.Search,
		roadmaps:   opts.Roadmaps,
		careerInfo: opts.CareerInfo,
	}
}

// Providers returns the configured provider names in attempt order.
func (s *Service) Providers() []string {
	return s.chain.Providers()
}

// GeneratePath builds a learning path for req.CareerPath. Web resources are
// searched while the provider chain runs.
func (s *Service) GeneratePath(ctx context.Context, req types.LearningPathRequest) *types.LearningPath {
	req.ApplyDefaults()

	var resources []types.WebResource
	var g errgroup.Group
	if s.search != nil {
		g.Go(func() error {
			resources = s.search.ForCareer(ctx, req.CareerPath)
			return nil
		})
	}

	doc, provider, ok := run[types.LearningPath](ctx, s.chain, task{
		name:    taskLearningPath,
		schema:  embedded.LearningPath,
		prompt:  pathPrompt(req),
		extract: extractObject,
	})
	_ = g.Wait()

	var path *types.LearningPath
	if ok {
		path = &doc
		completePath(path, req)
		path.Source = provider
	} else {
		path = TemplatePath(req)
	}
	if resources != nil {
		path.WebResources = resources
	}
	return path
}

// GenerateQuiz builds a multiple-choice quiz.
func (s *Service) GenerateQuiz(ctx context.Context, req types.QuizRequest) *types.Quiz {
	req.ApplyDefaults()

	questions, provider, ok := run[[]types.QuizQuestion](ctx, s.chain, task{
		name:    taskQuiz,
		schema:  embedded.Quiz,
		prompt:  quizPrompt(req),
		extract: extractQuestions,
	})
	if !ok {
		return TemplateQuiz(req)
	}
	if len(questions) > req.NumQuestions {
		questions = questions[:req.NumQuestions]
	}
	return &types.Quiz{
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Questions:  questions,
		Source:     provider,
	}
}

// Roadmap returns the catalog roadmap for career, or the template path.
func (s *Service) Roadmap(career string) any {
	if entry, ok := s.roadmaps.Lookup(career); ok {
		return entry
	}
	return TemplatePath(types.LearningPathRequest{CareerPath: career})
}

// CareerInfo returns the catalog description of career, or a default.
func (s *Service) CareerInfo(career string) any {
	if entry, ok := s.careerInfo.Lookup(career); ok {
		return entry
	}
	return DefaultCareerInfo(career)
}

// completePath fills fields a provider may leave out so the response
// always has the full shape.
func completePath(p *types.LearningPath, req types.LearningPathRequest) {
	p.Career = req.CareerPath
	if p.EstimatedTimeline == "" {
		p.EstimatedTimeline = req.TimeCommitment
	}
	if p.RecommendedResources == nil {
		p.RecommendedResources = []any{}
	}
	if p.SkillsToAcquire == nil {
		p.SkillsToAcquire = []string{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	if p.JobSearchTips == nil {
		p.JobSearchTips = []string{}
	}
	if p.SalaryInsights == nil {
		p.SalaryInsights = map[string]string{}
	}
	p.WebResources = []types.WebResource{}
}

var pathSchema = llm.PromptSchema{
	Name: "LearningPath",
	Fields: []llm.SchemaField{
		{Name: "overview", Description: "Brief overview of the career path", Required: true},
		{Name: "learning_phases", Type: `[{"phase": "string", "duration": "string", "topics": ["string"], "resources": ["string"]}]`, Required: true},
		{Name: "recommended_resources", Type: `[{"title": "string", "type": "book|course|video", "url": "string"}]`},
		{Name: "skills_to_acquire", Type: `["string"]`},
		{Name: "certifications", Type: `["string"]`},
		{Name: "job_search_tips", Type: `["string"]`},
		{Name: "salary_insights", Type: `{"entry_level": "string", "mid_level": "string", "senior_level": "string"}`},
		{Name: "estimated_timeline", Type: `"string"`},
	},
}

var quizSchema = llm.PromptSchema{
	Name:    "Quiz",
	ListKey: "questions",
	Fields: []llm.SchemaField{
		{Name: "question", Required: true},
		{Name: "options", Type: `["A) ...", "B) ...", "C) ...", "D) ..."]`, Required: true},
		{Name: "correct_answer", Description: "Letter of the correct option", Required: true},
		{Name: "explanation", Description: "Brief explanation of the answer"},
	},
}

func pathPrompt(req types.LearningPathRequest) string {
	skills := "None"
	if len(req.CurrentSkills) > 0 {
		skills = strings.Join(req.CurrentSkills, ", ")
	}
	schema := pathSchema
	schema.Description = prompts.Format(prompts.MustGet(prompts.Learning, "learning-path"), map[string]string{
		"Career": req.CareerPath,
	})
	return llm.BuildJSONPrompt(schema, prompts.Format(prompts.MustGet(prompts.Learning, "learning-path-context"), map[string]string{
		"Skills": skills,
		"Level":  req.ExperienceLevel,
		"Time":   req.TimeCommitment,
		"Style":  req.LearningStyle,
	}))
}

func quizPrompt(req types.QuizRequest) string {
	schema := quizSchema
	schema.Description = prompts.Format(prompts.MustGet(prompts.Learning, "quiz"), map[string]string{
		"Count": strconv.Itoa(req.NumQuestions),
		"Topic": req.Topic,
	})
	return llm.BuildJSONPrompt(schema, prompts.Format(prompts.MustGet(prompts.Learning, "quiz-context"), map[string]string{
		"Difficulty": req.Difficulty,
	}))
}
