package source

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// ArticleExtractor fetches a linked article and extracts its main text in
// claim-sized chunks. Fetches honor the target site's robots.txt.
type ArticleExtractor struct {
	httpClient *http.Client
	robots     *RobotsChecker
	userAgent  string
	maxBytes   int64
}

// NewArticleExtractor creates an article extractor.
func NewArticleExtractor(userAgent string, timeout time.Duration, maxBytes int64) *ArticleExtractor {
	return &ArticleExtractor{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		robots:    NewRobotsChecker(userAgent, timeout),
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Extract downloads the article and returns its title, domain, and body
// text split into chunks no longer than the claim cap.
func (e *ArticleExtractor) Extract(ctx context.Context, rawURL string) (*model.LinkedArticle, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "article: parse URL")
	}

	if !e.robots.IsAllowed(ctx, rawURL) {
		return nil, eris.Errorf("article: disallowed by robots.txt: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "article: create request")
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "article: fetch")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("article: unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	// html.Parse never fails on truncated input, so a body cut off at the
	// byte limit still yields a usable tree.
	node, err := html.Parse(io.LimitReader(resp.Body, e.maxBytes))
	if err != nil {
		return nil, eris.Wrap(err, "article: parse HTML")
	}
	doc := goquery.NewDocumentFromNode(node)

	title := articleTitle(doc)
	text := articleText(doc)
	if strings.TrimSpace(text) == "" {
		return nil, eris.Errorf("article: no extractable text at %s", rawURL)
	}

	return &model.LinkedArticle{
		URL:    rawURL,
		Domain: parsed.Host,
		Title:  title,
		Chunks: chunkText(text, model.MaxClaimRunes),
	}, nil
}

func articleTitle(doc *goquery.Document) string {
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// articleText collects paragraph text, preferring <article> content when the
// page marks it up, and skipping navigation chrome.
func articleText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, aside, form").Remove()

	root := doc.Find("article")
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len([]rune(text)) >= 40 {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n\n")
}

// chunkText splits text into rune-bounded chunks, breaking on paragraph
// boundaries where possible.
func chunkText(text string, maxRunes int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, para := range strings.Split(text, "\n\n") {
		runes := []rune(para)

		// A single oversized paragraph is split hard.
		for len(runes) > maxRunes {
			if currentLen > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
				currentLen = 0
			}
			chunks = append(chunks, string(runes[:maxRunes]))
			runes = runes[maxRunes:]
		}
		if len(runes) == 0 {
			continue
		}

		sep := 0
		if currentLen > 0 {
			sep = 2
		}
		if currentLen+sep+len(runes) > maxRunes {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
			sep = 0
		}
		if sep > 0 {
			current.WriteString("\n\n")
			currentLen += 2
		}
		current.WriteString(string(runes))
		currentLen += len(runes)
	}

	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
