package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lucassvahn/desinformation-agent/internal/config"
	"github.com/lucassvahn/desinformation-agent/internal/evaluate"
	"github.com/lucassvahn/desinformation-agent/internal/model"
	"github.com/lucassvahn/desinformation-agent/internal/source"
	"github.com/lucassvahn/desinformation-agent/internal/store"
)

// fakeStore records every bundle written.
type fakeStore struct {
	bundles []store.Bundle
	err     error
}

func (f *fakeStore) StoreVerification(ctx context.Context, bundle store.Bundle) error {
	if f.err != nil {
		return f.err
	}
	f.bundles = append(f.bundles, bundle)
	return nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Ping(ctx context.Context) error    { return nil }
func (f *fakeStore) Close() error                      { return nil }

// stubSearcher returns fixed evidence under a fixed name.
type stubSearcher struct {
	name  string
	items []model.EvidenceItem
	err   error
	calls int
}

func (s *stubSearcher) Name() string { return s.name }

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int, domains []string) ([]model.EvidenceItem, error) {
	s.calls++
	return s.items, s.err
}

// stubProvider answers every prompt with the same completion.
type stubProvider struct {
	response string
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

// stubPostSource serves a fixed list of posts.
type stubPostSource struct {
	posts []model.Post
}

func (s *stubPostSource) Fetch(ctx context.Context) ([]model.Post, error) {
	return s.posts, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{MaxResults: 5},
		Verify: config.VerifyConfig{
			Language:        "sv",
			PacingPerSecond: 1000, // effectively no pacing in tests
		},
	}
}

func testRunner(st store.Store, searchers []source.EvidenceSearcher, response string, twitter source.PostSource) *Runner {
	provider := &stubProvider{response: response}
	evaluator := evaluate.NewEvaluator(provider, nil)
	normalizer := evaluate.NewNormalizer(nil, nil)
	return NewRunner(testConfig(), st, evaluator, normalizer, searchers, nil, twitter, provider.Model(), nil)
}

const goodResponse = `Claim(s) Detected: Sverige har 10,5 miljoner invånare.
Rating: Likely True
Reasoning: Statistiken bekräftar siffran.
Truthfulness Score: 9`

func TestVerifyManual(t *testing.T) {
	st := &fakeStore{}
	searchers := []source.EvidenceSearcher{
		&stubSearcher{name: "tavily_search_api", items: []model.EvidenceItem{{URL: "https://scb.se/a", Snippet: "10,5 miljoner."}}},
		&stubSearcher{name: "newsapi", items: []model.EvidenceItem{{URL: "https://dn.se/b", Snippet: "Befolkningen ökar."}}},
	}
	runner := testRunner(st, searchers, goodResponse, nil)

	err := runner.VerifyManual(context.Background(), "Sverige har 10,5 miljoner invånare.", "", "testare")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(st.bundles) != 1 {
		t.Fatalf("Expected 1 stored bundle, got %d", len(st.bundles))
	}
	b := st.bundles[0]

	if b.Source.Platform != model.PlatformManual {
		t.Errorf("Expected manual platform, got %q", b.Source.Platform)
	}
	if !strings.HasPrefix(b.Source.SourceURL, "manual://") {
		t.Errorf("Expected synthetic manual URL, got %q", b.Source.SourceURL)
	}
	if b.Source.AuthorUsername != "testare" {
		t.Errorf("Expected author recorded, got %q", b.Source.AuthorUsername)
	}
	if b.Claim.ExtractionMethod != model.ExtractionManual {
		t.Errorf("Expected manual extraction method, got %q", b.Claim.ExtractionMethod)
	}
	if b.Evaluation.SearchAPIUsed != "tavily_search_api,newsapi" {
		t.Errorf("Unexpected search_api_used: %q", b.Evaluation.SearchAPIUsed)
	}
	if b.Evaluation.Verdict.Rating != model.RatingLikelyTrue {
		t.Errorf("Expected rating Likely True, got %q", b.Evaluation.Verdict.Rating)
	}
	if b.Evaluation.Verdict.TruthfulnessScore == nil || *b.Evaluation.Verdict.TruthfulnessScore != 9 {
		t.Errorf("Expected score 9, got %v", b.Evaluation.Verdict.TruthfulnessScore)
	}
	if len(b.Evidence) != 2 {
		t.Errorf("Expected evidence from both searchers, got %d items", len(b.Evidence))
	}
	if b.Evaluation.EvaluationStatus != model.StatusCompleted {
		t.Errorf("Expected status Completed, got %q", b.Evaluation.EvaluationStatus)
	}
}

func TestVerifyManual_EmptyClaim(t *testing.T) {
	runner := testRunner(&fakeStore{}, nil, goodResponse, nil)
	if err := runner.VerifyManual(context.Background(), "   ", "", ""); err == nil {
		t.Fatal("Expected error for empty claim")
	}
}

func TestVerifyManual_SearcherFailureDegrades(t *testing.T) {
	st := &fakeStore{}
	searchers := []source.EvidenceSearcher{
		&stubSearcher{name: "tavily_search_api", err: errors.New("quota exceeded")},
		&stubSearcher{name: "newsapi", items: []model.EvidenceItem{{URL: "https://dn.se/b", Snippet: "relevant."}}},
	}
	runner := testRunner(st, searchers, goodResponse, nil)

	if err := runner.VerifyManual(context.Background(), "ett påstående om Sverige", "", ""); err != nil {
		t.Fatalf("Expected run to survive searcher failure, got %v", err)
	}

	if len(st.bundles) != 1 {
		t.Fatalf("Expected 1 bundle, got %d", len(st.bundles))
	}
	if len(st.bundles[0].Evidence) != 1 {
		t.Errorf("Expected evidence from the surviving searcher only, got %d", len(st.bundles[0].Evidence))
	}
}

func TestVerifyManual_NoEvidenceBecomesCannotVerify(t *testing.T) {
	st := &fakeStore{}
	searchers := []source.EvidenceSearcher{
		&stubSearcher{name: "tavily_search_api"},
		&stubSearcher{name: "newsapi"},
	}
	runner := testRunner(st, searchers, goodResponse, nil)

	if err := runner.VerifyManual(context.Background(), "ett obskyrt påstående", "", ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	b := st.bundles[0]
	if b.Evaluation.Verdict.Rating != model.RatingCannotVerify {
		t.Errorf("Expected Cannot Verify without evidence, got %q", b.Evaluation.Verdict.Rating)
	}
	if len(b.Evidence) != 0 {
		t.Errorf("Expected no evidence rows, got %d", len(b.Evidence))
	}
}

func TestVerifyManual_PacesEachSearchCall(t *testing.T) {
	st := &fakeStore{}
	first := &stubSearcher{name: "tavily_search_api"}
	second := &stubSearcher{name: "newsapi"}
	searchers := []source.EvidenceSearcher{first, second}

	cfg := testConfig()
	cfg.Verify.PacingPerSecond = 50 // 20ms per limiter token

	provider := &stubProvider{response: goodResponse}
	evaluator := evaluate.NewEvaluator(provider, nil)
	normalizer := evaluate.NewNormalizer(nil, nil)
	runner := NewRunner(cfg, st, evaluator, normalizer, searchers, nil, nil, provider.Model(), nil)

	start := time.Now()
	if err := runner.VerifyManual(context.Background(), "ett påstående om Sverige", "", ""); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	elapsed := time.Since(start)

	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("Expected each searcher called once, got %d and %d", first.calls, second.calls)
	}
	// One token for the item plus one per search call makes three waits.
	// With burst 1 the second and third each cost a full interval, so a
	// single per-item wait could never take this long.
	if min := 30 * time.Millisecond; elapsed < min {
		t.Errorf("Expected at least %v of pacing across the search calls, got %v", min, elapsed)
	}
}

func testTime() time.Time {
	return time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
}

func TestRun_TwitterPosts(t *testing.T) {
	st := &fakeStore{}
	created := testTime()
	twitter := &stubPostSource{posts: []model.Post{
		{
			URL:       "https://x.com/unknown/status/123",
			Text:      "Arbetslösheten är 8 procent. #svpol",
			Author:    "unknown",
			AuthorID:  "99",
			CreatedAt: &created,
		},
		{URL: "https://x.com/unknown/status/124", Text: "   "},
	}}
	searchers := []source.EvidenceSearcher{
		&stubSearcher{name: "tavily_search_api", items: []model.EvidenceItem{{URL: "https://scb.se/a", Snippet: "8,2 procent."}}},
		&stubSearcher{name: "newsapi"},
	}
	runner := testRunner(st, searchers, goodResponse, twitter)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The empty tweet is skipped.
	if len(st.bundles) != 1 {
		t.Fatalf("Expected 1 bundle, got %d", len(st.bundles))
	}
	b := st.bundles[0]

	if b.Source.Platform != model.PlatformTwitter {
		t.Errorf("Expected Twitter/X platform, got %q", b.Source.Platform)
	}
	if b.Claim.ExtractionMethod != model.ExtractionTwitterPost {
		t.Errorf("Expected tweet extraction method, got %q", b.Claim.ExtractionMethod)
	}
	if b.Evaluation.SearchAPIUsed != "twitter_post,tavily_search_api,newsapi" {
		t.Errorf("Unexpected search_api_used: %q", b.Evaluation.SearchAPIUsed)
	}
	// Hashtags are stripped from the query but kept in the claim.
	if strings.Contains(b.Evaluation.SearchQueryUsed, "#svpol") {
		t.Errorf("Expected hashtag-free query, got %q", b.Evaluation.SearchQueryUsed)
	}
	if !strings.Contains(b.Claim.Text, "#svpol") {
		t.Errorf("Expected full tweet text as claim, got %q", b.Claim.Text)
	}
}

func TestRun_StoreFailureDoesNotAbort(t *testing.T) {
	st := &fakeStore{err: errors.New("connection lost")}
	twitter := &stubPostSource{posts: []model.Post{
		{URL: "https://x.com/unknown/status/1", Text: "påstående ett"},
		{URL: "https://x.com/unknown/status/2", Text: "påstående två"},
	}}
	searchers := []source.EvidenceSearcher{
		&stubSearcher{name: "tavily_search_api", items: []model.EvidenceItem{{URL: "https://a.se"}}},
	}
	runner := testRunner(st, searchers, goodResponse, twitter)

	// Both posts fail to store; the run itself still completes.
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Expected run to complete despite store failures, got %v", err)
	}
}
