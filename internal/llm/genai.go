package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Client with the unified Google GenAI SDK. An API
// key selects the Gemini API backend; otherwise Vertex AI is used with the
// configured project and location.
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a new GenAI client.
func NewGenAIClient(ctx context.Context, config *Config) (*GenAIClient, error) {
	cfg := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(config.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.APIKey == "" {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = config.Project
		cfg.Location = config.Location
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GenAIClient{client: client, config: config}, nil
}

func (c *GenAIClient) Name() string { return string(ProviderGenAI) }

// GenerateJSON requests an application/json response and returns the text
// of the first candidate.
func (c *GenAIClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	temperature := c.config.Temperature
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.GetModel(), genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	output, err := firstCandidateText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(output), nil
}

// firstCandidateText joins the text parts of the first candidate. Other
// candidates are alternatives, not continuations.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.New("genai returned no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", errors.New("genai returned empty response")
	}

	var builder strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		builder.WriteString(part.Text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("genai returned empty response")
	}
	return output, nil
}

func (c *GenAIClient) Close() error { return nil }
