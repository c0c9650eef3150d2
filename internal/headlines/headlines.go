// Package headlines fetches the week's top news headlines for the avatar
// pipeline. The source is best-effort by contract: every failure mode
// (missing credentials, transport errors, non-success responses, empty or
// fully redacted results) degrades to a fixed neutral fallback set, never an
// error.
package headlines

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Headline is one news item feeding the avatar mood prompt.
type Headline struct {
	Title       string     `json:"title"`
	Source      string     `json:"source"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// redactedTitle is the placeholder the upstream API substitutes for removed
// articles. A result set made entirely of these is as useless as an empty
// one.
const redactedTitle = "[Removed]"

// Fallback returns the fixed neutral headline set used when the source is
// unavailable or returns nothing usable.
func Fallback() []Headline {
	return []Headline{
		{Title: "Mild weather expected across the region this week", Source: "fallback"},
		{Title: "Local communities gather for seasonal events", Source: "fallback"},
		{Title: "Scientists report steady progress in renewable energy research", Source: "fallback"},
	}
}

// Client queries a NewsAPI-style top-headlines endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	country    string
	logger     *slog.Logger
}

// NewClient creates a headline client. An empty apiKey is allowed; fetches
// then degrade straight to the fallback set.
func NewClient(baseURL, apiKey, country string) *Client {
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2"
	}
	if country == "" {
		country = "us"
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		country:    country,
		logger:     slog.Default().With("component", "headlines"),
	}
}

// TopHeadlines returns up to limit current headlines, or the fallback set when
// the source cannot produce anything usable. It never returns an error.
func (c *Client) TopHeadlines(ctx context.Context, limit int) []Headline {
	if c.apiKey == "" {
		c.logger.WarnContext(ctx, "no headline API key configured, using fallback headlines")
		return Fallback()
	}

	fetched, err := c.fetch(ctx, limit)
	if err != nil {
		c.logger.WarnContext(ctx, "headline fetch failed, using fallback headlines", "error", err)
		return Fallback()
	}

	usable := filterRedacted(fetched)
	if len(usable) == 0 {
		c.logger.WarnContext(ctx, "headline source returned nothing usable, using fallback headlines",
			"fetched", len(fetched))
		return Fallback()
	}

	return usable
}

// apiResponse mirrors the upstream top-headlines payload.
type apiResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt *time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (c *Client) fetch(ctx context.Context, limit int) ([]Headline, error) {
	query := url.Values{}
	query.Set("country", c.country)
	query.Set("pageSize", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/top-headlines?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build headline request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headline request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headline source returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode headline response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("headline source reported status %q", payload.Status)
	}

	results := make([]Headline, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		results = append(results, Headline{
			Title:       article.Title,
			Source:      article.Source.Name,
			URL:         article.URL,
			PublishedAt: article.PublishedAt,
		})
	}
	return results, nil
}

// filterRedacted drops placeholder articles the upstream API has removed.
func filterRedacted(items []Headline) []Headline {
	usable := make([]Headline, 0, len(items))
	for _, h := range items {
		title := strings.TrimSpace(h.Title)
		if title == "" || title == redactedTitle {
			continue
		}
		usable = append(usable, h)
	}
	return usable
}
