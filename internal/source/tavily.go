package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

const tavilyDefaultBaseURL = "https://api.tavily.com"

// TavilyClient performs web searches against the Tavily Search API.
type TavilyClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// TavilyOption configures the client.
type TavilyOption func(*TavilyClient)

// WithTavilyBaseURL overrides the default API base URL.
func WithTavilyBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) {
		c.baseURL = url
	}
}

// WithTavilyHTTPClient overrides the default http.Client.
func WithTavilyHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) {
		c.http = hc
	}
}

// NewTavilyClient creates a Tavily API client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) *TavilyClient {
	c := &TavilyClient{
		apiKey:  apiKey,
		baseURL: tavilyDefaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type tavilySearchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Name identifies this searcher in stored evaluations.
func (c *TavilyClient) Name() string {
	return "tavily_search_api"
}

// Search performs a basic-depth Tavily search. Tavily calls the snippet
// "content"; it is mapped onto the uniform evidence shape here, and its
// relevance score is carried through to storage.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int, domains []string) ([]model.EvidenceItem, error) {
	reqBody := tavilySearchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		SearchDepth:    "basic",
		MaxResults:     maxResults,
		IncludeDomains: domains,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "tavily: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("tavily: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result tavilySearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "tavily: unmarshal response")
	}

	items := make([]model.EvidenceItem, 0, len(result.Results))
	for _, r := range result.Results {
		score := r.Score
		items = append(items, model.EvidenceItem{
			Title:          r.Title,
			URL:            r.URL,
			Snippet:        r.Content,
			RelevanceScore: &score,
		})
	}
	return items, nil
}
