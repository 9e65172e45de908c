package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

const newsAPIDefaultBaseURL = "https://newsapi.org"

// NewsAPIClient searches news articles via the NewsAPI /v2/everything
// endpoint.
type NewsAPIClient struct {
	apiKey   string
	baseURL  string
	language string
	http     *http.Client
	now      func() time.Time
}

// NewsAPIOption configures the client.
type NewsAPIOption func(*NewsAPIClient)

// WithNewsAPIBaseURL overrides the default API base URL.
func WithNewsAPIBaseURL(url string) NewsAPIOption {
	return func(c *NewsAPIClient) {
		c.baseURL = url
	}
}

// WithNewsAPIHTTPClient overrides the default http.Client.
func WithNewsAPIHTTPClient(hc *http.Client) NewsAPIOption {
	return func(c *NewsAPIClient) {
		c.http = hc
	}
}

// NewNewsAPIClient creates a NewsAPI client restricted to the given article
// language.
func NewNewsAPIClient(apiKey, language string, opts ...NewsAPIOption) *NewsAPIClient {
	c := &NewsAPIClient{
		apiKey:   apiKey,
		baseURL:  newsAPIDefaultBaseURL,
		language: language,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type newsAPIResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code,omitempty"`
	Message      string `json:"message,omitempty"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Name identifies this searcher in stored evaluations.
func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

// Search queries the everything endpoint, sorted by relevancy and limited to
// the last seven days to keep results current. The domain allowlist is not
// forwarded: NewsAPI free-tier domain filtering is unreliable, and the
// original integration never used it either.
func (c *NewsAPIClient) Search(ctx context.Context, query string, maxResults int, _ []string) ([]model.EvidenceItem, error) {
	// NewsAPI rejects pageSize outside [1,100].
	pageSize := maxResults
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	fromDate := c.now().UTC().AddDate(0, 0, -7).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", c.language)
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("from", fromDate)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: create request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "newsapi: read response")
	}

	var result newsAPIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrapf(err, "newsapi: unmarshal response (status %d)", resp.StatusCode)
	}

	if result.Status != "ok" {
		return nil, eris.Errorf("newsapi: %s - %s", result.Code, result.Message)
	}

	items := make([]model.EvidenceItem, 0, len(result.Articles))
	for _, a := range result.Articles {
		snippet := a.Description
		if snippet == "" {
			snippet = a.Content
		}
		items = append(items, model.EvidenceItem{
			Title:   a.Title,
			URL:     a.URL,
			Snippet: snippet,
		})
	}
	return items, nil
}
