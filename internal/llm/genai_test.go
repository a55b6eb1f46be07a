package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestFirstCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"overview":`}, {Text: ` "first"}`}}}},
			{Content: &genai.Content{Parts: []*genai.Part{{Text: `{"overview": "second"}`}}}},
		},
	}

	out, err := firstCandidateText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"overview": "first"}`, out)
}

func TestFirstCandidateText_Empty(t *testing.T) {
	tests := map[string]*genai.GenerateContentResponse{
		"nil response":  nil,
		"no candidates": {},
		"no content":    {Candidates: []*genai.Candidate{{}}},
		"blank text":    {Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}}}}},
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := firstCandidateText(resp)
			assert.Error(t, err)
		})
	}
}
