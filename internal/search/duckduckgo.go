package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-path/internal/types"
)

// DefaultDuckDuckGoURL is the instant-answer API endpoint.
const DefaultDuckDuckGoURL = "https://api.duckduckgo.com/"

const (
	duckDuckGoSource = "DuckDuckGo"
	maxTitleRunes    = 100
)

// DuckDuckGo queries the DuckDuckGo instant-answer API and reads its
// RelatedTopics list.
type DuckDuckGo struct {
	endpoint string
	client   *http.Client
}

// NewDuckDuckGo creates a backend for endpoint. An empty endpoint uses
// DefaultDuckDuckGoURL; a nil client uses http.DefaultClient.
func NewDuckDuckGo(endpoint string, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = DefaultDuckDuckGoURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{endpoint: endpoint, client: client}
}

// Name returns the backend name used in logs and metrics.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

type ddgResponse struct {
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

type ddgTopic struct {
	Text     string `json:"Text"`
	FirstURL string `json:"FirstURL"`
	Result   string `json:"Result"`
	// Topics is set on category groups, which carry no Text of their own.
	Topics []ddgTopic `json:"Topics"`
}

// Search returns up to n related topics for query.
func (d *DuckDuckGo) Search(ctx context.Context, query string, n int) ([]types.WebResource, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var body ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	topics := body.RelatedTopics
	if len(topics) > n {
		topics = topics[:n]
	}
	results := make([]types.WebResource, 0, len(topics))
	for _, t := range topics {
		text, link := t.Text, t.FirstURL
		if text == "" && t.Result == "" {
			continue
		}
		if text == "" || link == "" {
			htmlText, htmlLink := parseResultHTML(t.Result)
			if text == "" {
				text = htmlText
			}
			if link == "" {
				link = htmlLink
			}
		}
		if text == "" {
			continue
		}
		results = append(results, types.WebResource{
			Title:   truncateRunes(text, maxTitleRunes),
			URL:     link,
			Snippet: text,
			Source:  duckDuckGoSource,
		})
	}
	return results, nil
}

// parseResultHTML reads the text and first link out of a topic's Result
// fragment, e.g. `<a href="https://duckduckgo.com/Go">Go</a> a language`.
func parseResultHTML(fragment string) (text, link string) {
	if fragment == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", ""
	}
	link, _ = doc.Find("a[href]").First().Attr("href")
	text = strings.Join(strings.Fields(doc.Text()), " ")
	return text, link
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
