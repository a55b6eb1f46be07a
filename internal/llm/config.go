// Package llm provides clients for the LLM providers used to generate
// learning paths and quizzes, behind one small interface.
package llm

import "time"

// Provider names a supported LLM provider.
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is the OpenAI chat completions API
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is Google Gemini via the generative-ai-go SDK
	ProviderGemini Provider = "gemini"
	// ProviderGenAI is Gemini via the unified google.golang.org/genai SDK,
	// either the Gemini API or Vertex AI
	ProviderGenAI Provider = "genai"
)

// Default models per provider.
var defaultModels = map[Provider]string{
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.5-flash",
	ProviderGenAI:  "gemini-2.5-flash",
}

// Config holds the settings for one provider client.
type Config struct {
	Provider Provider
	APIKey   string
	Model    string
	// BaseURL overrides the OpenAI endpoint (proxies, compatible servers).
	BaseURL string
	// Project and Location select the Vertex AI backend for ProviderGenAI
	// when APIKey is empty.
	Project  string
	Location string
	// Temperature applies to every request.
	Temperature float32
	Timeout     time.Duration
}

// GetModel returns the configured model or the provider default.
func (c *Config) GetModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// HasCredential reports whether the config carries enough to call the
// provider.
func (c *Config) HasCredential() bool {
	if c.APIKey != "" {
		return true
	}
	return c.Provider == ProviderGenAI && c.Project != "" && c.Location != ""
}
