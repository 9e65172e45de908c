package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

const twitterDefaultBaseURL = "https://api.twitter.com"

// TwitterClient fetches recent tweets via the X API v2 recent search
// endpoint using an app-only bearer token.
type TwitterClient struct {
	bearerToken string
	baseURL     string
	query       string
	maxResults  int
	language    string
	http        *http.Client
}

// TwitterOption configures the client.
type TwitterOption func(*TwitterClient)

// WithTwitterBaseURL overrides the default API base URL.
func WithTwitterBaseURL(url string) TwitterOption {
	return func(c *TwitterClient) {
		c.baseURL = url
	}
}

// WithTwitterHTTPClient overrides the default http.Client.
func WithTwitterHTTPClient(hc *http.Client) TwitterOption {
	return func(c *TwitterClient) {
		c.http = hc
	}
}

// NewTwitterClient creates a Twitter/X client for the given search query.
func NewTwitterClient(bearerToken, query, language string, maxResults int, opts ...TwitterOption) *TwitterClient {
	c := &TwitterClient{
		bearerToken: bearerToken,
		baseURL:     twitterDefaultBaseURL,
		query:       query,
		maxResults:  maxResults,
		language:    language,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type twitterSearchResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Text      string `json:"text"`
		AuthorID  string `json:"author_id"`
		CreatedAt string `json:"created_at"`
	} `json:"data"`
	Meta struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// Fetch returns recent original tweets matching the configured query.
// Retweets and replies are excluded, and results are restricted to the
// configured language.
func (c *TwitterClient) Fetch(ctx context.Context) ([]model.Post, error) {
	// The recent search endpoint only accepts max_results in [10,100].
	maxResults := c.maxResults
	if maxResults < 10 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	fullQuery := fmt.Sprintf("%s -is:retweet -is:reply lang:%s", c.query, c.language)

	params := url.Values{}
	params.Set("query", fullQuery)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "created_at,author_id")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("User-Agent", "v2RecentSearchGo")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("twitter: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result twitterSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "twitter: unmarshal response")
	}

	posts := make([]model.Post, 0, len(result.Data))
	for _, tweet := range result.Data {
		// The recent search endpoint does not resolve usernames without
		// expansions; the canonical x.com URL still routes by status id.
		post := model.Post{
			URL:      fmt.Sprintf("https://x.com/%s/status/%s", "unknown", tweet.ID),
			Text:     tweet.Text,
			Author:   "unknown",
			AuthorID: tweet.AuthorID,
		}
		if tweet.CreatedAt != "" {
			if created, err := time.Parse(time.RFC3339, tweet.CreatedAt); err == nil {
				post.CreatedAt = &created
			}
		}
		posts = append(posts, post)
	}

	return posts, nil
}
