// Package research implements the market-research collaborator used to
// enrich interview replies with current data.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/founderport/angel/internal/logging"
	"github.com/founderport/angel/internal/metrics"
)

const defaultBaseURL = "https://api.tavily.com/search"

// ErrThrottled is returned when the local rate limiter rejects a query.
// Callers treat it like any research failure and proceed without a
// research section.
var ErrThrottled = errors.New("research: query throttled")

// Client queries an external search API. It implements interview.Researcher.
type Client struct {
	apiKey     string
	baseURL    string
	maxResults int
	limiter    *rate.Limiter
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the search endpoint, used in tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithLimiter substitutes the rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a search client. The default limiter allows one query
// per second with a burst of three, enough for one research call per turn
// across a handful of concurrent sessions.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		maxResults: 3,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search implements interview.Researcher. A throttled or failed query
// returns an error; the interview layer degrades gracefully.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if !c.limiter.Allow() {
		metrics.Get().ResearchTotal.WithLabelValues("throttled").Inc()
		logging.L().Warn("research query throttled", zap.String("query", query))
		return "", ErrThrottled
	}

	body, err := json.Marshal(searchRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.Get().ResearchTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.Get().ResearchTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.Get().ResearchTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(respBody, &sr); err != nil {
		metrics.Get().ResearchTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	metrics.Get().ResearchTotal.WithLabelValues("ok").Inc()
	return formatFindings(&sr), nil
}

// formatFindings condenses the raw search results into the short synthesis
// passed to the generator as context.
func formatFindings(sr *searchResponse) string {
	var b strings.Builder
	if sr.Answer != "" {
		b.WriteString(sr.Answer)
	}
	for i, r := range sr.Results {
		if i >= 3 {
			break
		}
		snippet := r.Content
		if len(snippet) > 300 {
			snippet = snippet[:300] + "..."
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + r.Title + ": " + snippet)
	}
	return strings.TrimSpace(b.String())
}
