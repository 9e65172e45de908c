package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

const (
	redditAuthURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL  = "https://oauth.reddit.com"
)

// RedditClient fetches recent posts from subreddits using the OAuth2
// client-credentials flow.
type RedditClient struct {
	clientID     string
	clientSecret string
	userAgent    string
	authURL      string
	apiURL       string
	http         *http.Client
	extractor    *ArticleExtractor
	log          *zap.Logger

	token       string
	tokenExpiry time.Time
}

// RedditOption configures the client.
type RedditOption func(*RedditClient)

// WithRedditEndpoints overrides both API endpoints (tests).
func WithRedditEndpoints(authURL, apiURL string) RedditOption {
	return func(c *RedditClient) {
		c.authURL = authURL
		c.apiURL = apiURL
	}
}

// WithRedditHTTPClient overrides the default http.Client.
func WithRedditHTTPClient(hc *http.Client) RedditOption {
	return func(c *RedditClient) {
		c.http = hc
	}
}

// NewRedditClient creates a Reddit API client. The extractor may be nil when
// linked-article extraction is disabled.
func NewRedditClient(clientID, clientSecret, userAgent string, extractor *ArticleExtractor, log *zap.Logger, opts ...RedditOption) *RedditClient {
	if log == nil {
		log = zap.NewNop()
	}
	c := &RedditClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		authURL:      redditAuthURL,
		apiURL:       redditAPIURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		extractor: extractor,
		log:       log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type redditTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Permalink  string  `json:"permalink"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	URL        string  `json:"url"`
	IsSelf     bool    `json:"is_self"`
}

// FetchSubreddit returns up to maxPosts recent posts from the subreddit, no
// older than maxDays. With extractLinks set, external link posts get their
// article content fetched and chunked.
func (c *RedditClient) FetchSubreddit(ctx context.Context, subreddit string, maxPosts, maxDays int, extractLinks bool) ([]model.Post, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	listURL := c.apiURL + "/r/" + url.PathEscape(subreddit) + "/new?limit=" + strconv.Itoa(maxPosts)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("reddit: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, eris.Wrap(err, "reddit: unmarshal listing")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -maxDays)

	var posts []model.Post
	for _, child := range listing.Data.Children {
		p := child.Data
		created := time.Unix(int64(p.CreatedUTC), 0).UTC()
		if maxDays > 0 && created.Before(cutoff) {
			continue
		}

		post := model.Post{
			URL:       "https://www.reddit.com" + p.Permalink,
			Title:     p.Title,
			Text:      p.Selftext,
			Author:    p.Author,
			AuthorID:  p.Author,
			CreatedAt: &created,
		}

		if extractLinks && c.extractor != nil && c.isExternalLink(p) {
			article, err := c.extractor.Extract(ctx, p.URL)
			if err != nil {
				c.log.Warn("article extraction failed",
					zap.String("url", p.URL), zap.Error(err))
			} else {
				post.Link = article
			}
		}

		posts = append(posts, post)
	}

	return posts, nil
}

func (c *RedditClient) isExternalLink(p redditPost) bool {
	return !p.IsSelf && p.URL != "" && !strings.Contains(p.URL, "reddit.com")
}

// ensureToken obtains or refreshes the app-only OAuth2 token.
func (c *RedditClient) ensureToken(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return eris.Wrap(err, "reddit: create token request")
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "reddit: request token")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "reddit: read token response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("reddit: token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token redditTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return eris.Wrap(err, "reddit: unmarshal token")
	}
	if token.AccessToken == "" {
		return eris.New("reddit: empty access token")
	}

	c.token = token.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return nil
}
