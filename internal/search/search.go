// Package search finds learning resources on the web. Backends are tried
// in order; a successful but empty answer is replaced by a static list of
// generic resources, and failures degrade to an empty list.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/career-path/internal/observability"
	"github.com/jonathan/career-path/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultTimeout     = 5 * time.Second
	DefaultMaxResults  = 10
	DefaultResourceURL = "https://www.example.com/resources"

	// resultsPerCareerQuery is how many hits each career query contributes
	// to a learning path's web resources.
	resultsPerCareerQuery = 2
)

// Backend is one web-search provider.
type Backend interface {
	Name() string
	Search(ctx context.Context, query string, n int) ([]types.WebResource, error)
}

// Options configures a Service.
type Options struct {
	Timeout     time.Duration
	MaxResults  int
	ResourceURL string
	Logger      *zap.Logger
}

// Service runs queries against an ordered list of backends.
type Service struct {
	backends    []Backend
	timeout     time.Duration
	maxResults  int
	resourceURL string
	logger      *zap.Logger
}

// New creates a Service over backends, tried in the given order.
func New(opts Options, backends ...Backend) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.ResourceURL == "" {
		opts.ResourceURL = DefaultResourceURL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		backends:    backends,
		timeout:     opts.Timeout,
		maxResults:  opts.MaxResults,
		resourceURL: strings.TrimSuffix(opts.ResourceURL, "/"),
		logger:      opts.Logger,
	}
}

// MaxResults is the default result count for Search.
func (s *Service) MaxResults() int { return s.maxResults }

// Search returns at most n results for query; n <= 0 means MaxResults.
// The first backend with a non-empty answer wins. If at least one backend
// answered but none had results, the static substitute list is returned.
// If every backend failed the result is empty. Search never fails.
func (s *Service) Search(ctx context.Context, query string, n int) []types.WebResource {
	if n <= 0 {
		n = s.maxResults
	}

	answered := false
	for _, b := range s.backends {
		results, err := s.query(ctx, b, query, n)
		if err != nil {
			observability.SearchRequestsTotal.WithLabelValues(b.Name(), observability.OutcomeFailure).Inc()
			s.logger.Warn("web search failed",
				zap.String("backend", b.Name()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		answered = true
		if len(results) > 0 {
			observability.SearchRequestsTotal.WithLabelValues(b.Name(), observability.OutcomeSuccess).Inc()
			return capResults(results, n)
		}
		observability.SearchRequestsTotal.WithLabelValues(b.Name(), observability.OutcomeEmpty).Inc()
	}

	if !answered {
		return []types.WebResource{}
	}
	return capResults(s.Substitute(query), n)
}

func (s *Service) query(ctx context.Context, b Backend, query string, n int) ([]types.WebResource, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return b.Search(ctx, query, n)
}

// Substitute is the generic resource list used when a search has no hits.
func (s *Service) Substitute(query string) []types.WebResource {
	return []types.WebResource{
		{
			Title:   fmt.Sprintf("%s - Complete Guide", query),
			URL:     fmt.Sprintf("%s/%s", s.resourceURL, strings.ReplaceAll(query, " ", "-")),
			Snippet: fmt.Sprintf("Comprehensive guide for learning %s", query),
			Source:  "Educational Resource",
		},
		{
			Title:   fmt.Sprintf("Top Courses for %s", query),
			URL:     "https://www.coursera.org",
			Snippet: "Online courses and certifications",
			Source:  "Coursera",
		},
	}
}

// CareerQueries are the searches run for a learning path.
func CareerQueries(career string) []string {
	return []string{
		career + " courses",
		career + " certifications",
		career + " learning resources",
	}
}

// ForCareer runs CareerQueries concurrently, two results each, and returns
// the concatenation in query order capped at MaxResults.
func (s *Service) ForCareer(ctx context.Context, career string) []types.WebResource {
	queries := CareerQueries(career)
	slots := make([][]types.WebResource, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			slots[i] = s.Search(ctx, q, resultsPerCareerQuery)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]types.WebResource, 0, len(queries)*resultsPerCareerQuery)
	for _, r := range slots {
		out = append(out, r...)
	}
	return capResults(out, s.maxResults)
}

func capResults(results []types.WebResource, n int) []types.WebResource {
	if len(results) > n {
		return results[:n]
	}
	return results
}
