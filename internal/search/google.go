package search

import (
	"context"
	"fmt"

	"github.com/jonathan/career-path/internal/types"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// maxGoogleResults is the per-request cap of the Custom Search API.
const maxGoogleResults = 10

// Google queries the Programmable Search (Custom Search JSON) API.
type Google struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogle creates a Custom Search backend. Extra client options (for
// example option.WithEndpoint) are passed through to the service.
func NewGoogle(ctx context.Context, apiKey, cx string, opts ...option.ClientOption) (*Google, error) {
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("custom search requires both an API key and a search engine id")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Google{svc: svc, cx: cx}, nil
}

// Name returns the backend name used in logs and metrics.
func (g *Google) Name() string { return "google" }

// Search returns up to n results for query.
func (g *Google) Search(ctx context.Context, query string, n int) ([]types.WebResource, error) {
	num := int64(min(n, maxGoogleResults))
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(num).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]types.WebResource, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, types.WebResource{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
			Source:  "Google",
		})
	}
	return results, nil
}
