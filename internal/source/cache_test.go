package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// fakeSearcher counts calls and returns canned results.
type fakeSearcher struct {
	items []model.EvidenceItem
	err   error
	calls int
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int, domains []string) ([]model.EvidenceItem, error) {
	f.calls++
	return f.items, f.err
}

func TestCachedSearcher_HitSkipsInner(t *testing.T) {
	inner := &fakeSearcher{items: []model.EvidenceItem{{URL: "https://a.se", Snippet: "x"}}}
	cached := NewCachedSearcher(inner, time.Minute)

	first, err := cached.Search(context.Background(), "query", 5, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := cached.Search(context.Background(), "query", 5, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("Expected one inner call, got %d", inner.calls)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("Expected cached results identical, got %d and %d items", len(first), len(second))
	}
}

func TestCachedSearcher_KeyedByQueryAndLimit(t *testing.T) {
	inner := &fakeSearcher{}
	cached := NewCachedSearcher(inner, time.Minute)

	_, _ = cached.Search(context.Background(), "query", 5, nil)
	_, _ = cached.Search(context.Background(), "query", 10, nil)
	_, _ = cached.Search(context.Background(), "other", 5, nil)

	if inner.calls != 3 {
		t.Errorf("Expected 3 inner calls for distinct keys, got %d", inner.calls)
	}
}

func TestCachedSearcher_ErrorsNotCached(t *testing.T) {
	inner := &fakeSearcher{err: errors.New("rate limited")}
	cached := NewCachedSearcher(inner, time.Minute)

	if _, err := cached.Search(context.Background(), "query", 5, nil); err == nil {
		t.Fatal("Expected error")
	}

	// The failure must not be served from cache.
	inner.err = nil
	inner.items = []model.EvidenceItem{{URL: "https://a.se"}}
	items, err := cached.Search(context.Background(), "query", 5, nil)
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected fresh results after error, got %d items", len(items))
	}
	if inner.calls != 2 {
		t.Errorf("Expected 2 inner calls, got %d", inner.calls)
	}
}

func TestCachedSearcher_Name(t *testing.T) {
	cached := NewCachedSearcher(&fakeSearcher{}, time.Minute)
	if cached.Name() != "fake" {
		t.Errorf("Expected wrapped name, got %q", cached.Name())
	}
}
