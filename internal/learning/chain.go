// Package learning generates learning paths and quizzes. Generation goes
// through an ordered chain of LLM providers; the first provider whose
// answer passes schema validation wins, and a deterministic template is
// used when every provider fails.
package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/career-path/internal/llm"
	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/schemas"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single provider attempt.
const DefaultTimeout = 30 * time.Second

// errNoDocument is returned when a response holds no JSON document.
var errNoDocument = errors.New("no JSON document in response")

// Chain runs a prompt against providers in order. There are no retries:
// each provider gets exactly one attempt.
type Chain struct {
	providers []llm.Client
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChain creates a chain over providers.
func NewChain(providers []llm.Client, timeout time.Duration, logger *zap.Logger) *Chain {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

// Providers returns the provider names in attempt order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// task is one kind of generation run through the chain.
type task struct {
	name    string
	schema  string
	prompt  string
	extract func(text string) string
}

// run returns the decoded document and the name of the provider that
// produced it. ok is false when every provider failed.
func run[T any](ctx context.Context, c *Chain, t task) (doc T, provider string, ok bool) {
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		out, err := attempt[T](ctx, c.timeout, p, t)
		observability.LLMAttemptDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		if err != nil {
			observability.LLMAttemptsTotal.WithLabelValues(t.name, p.Name(), observability.OutcomeFailure).Inc()
			c.logger.Warn("llm provider failed",
				zap.String("task", t.name),
				zap.String("provider", p.Name()),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			continue
		}
		observability.LLMAttemptsTotal.WithLabelValues(t.name, p.Name(), observability.OutcomeSuccess).Inc()
		return out, p.Name(), true
	}

	observability.TemplateFallbacksTotal.WithLabelValues(t.name).Inc()
	c.logger.Info("serving template", zap.String("task", t.name))
	var zero T
	return zero, "", false
}

func attempt[T any](ctx context.Context, timeout time.Duration, p llm.Client, t task) (T, error) {
	var out T

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := p.GenerateJSON(ctx, t.prompt)
	if err != nil {
		return out, err
	}
	doc := t.extract(text)
	if doc == "" {
		return out, errNoDocument
	}
	if err := schemas.Validate(t.schema, []byte(doc)); err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", t.name, err)
	}
	return out, nil
}

// extractObject pulls the outermost JSON object out of a response.
func extractObject(text string) string {
	return llm.ExtractJSONObject(llm.CleanJSONBlock(text))
}

// extractQuestions accepts either a bare array of questions or an object
// wrapping it under "questions".
func extractQuestions(text string) string {
	cleaned := llm.CleanJSONBlock(text)
	if obj := llm.ExtractJSONObject(cleaned); obj != "" && obj == cleaned {
		var wrapped struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(obj), &wrapped); err == nil && len(wrapped.Questions) > 0 {
			return string(wrapped.Questions)
		}
		return ""
	}
	return llm.ExtractJSONArray(cleaned)
}
