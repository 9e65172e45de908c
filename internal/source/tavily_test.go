package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTavilySearch(t *testing.T) {
	var gotReq tavilySearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("Expected path /search, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"title": "Befolkningsstatistik", "url": "https://www.scb.se/a", "content": "10,5 miljoner invånare.", "score": 0.95},
				{"title": "Nyhet", "url": "https://www.svt.se/b", "content": "Befolkningen ökar.", "score": 0.8},
			},
		})
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithTavilyBaseURL(server.URL))

	items, err := client.Search(context.Background(), "Sveriges befolkning", 5, []string{"scb.se", "svt.se"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotReq.APIKey != "test-key" {
		t.Errorf("Expected API key in request body, got %q", gotReq.APIKey)
	}
	if gotReq.SearchDepth != "basic" {
		t.Errorf("Expected basic search depth, got %q", gotReq.SearchDepth)
	}
	if gotReq.MaxResults != 5 {
		t.Errorf("Expected max_results 5, got %d", gotReq.MaxResults)
	}
	if len(gotReq.IncludeDomains) != 2 {
		t.Errorf("Expected 2 include domains, got %d", len(gotReq.IncludeDomains))
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Snippet != "10,5 miljoner invånare." {
		t.Errorf("Expected content mapped to snippet, got %q", items[0].Snippet)
	}
	if items[0].URL != "https://www.scb.se/a" {
		t.Errorf("Unexpected URL: %s", items[0].URL)
	}
	if items[0].RelevanceScore == nil || *items[0].RelevanceScore != 0.95 {
		t.Errorf("Expected relevance score 0.95 carried through, got %v", items[0].RelevanceScore)
	}
	if items[1].RelevanceScore == nil || *items[1].RelevanceScore != 0.8 {
		t.Errorf("Expected relevance score 0.8 carried through, got %v", items[1].RelevanceScore)
	}
}

func TestTavilySearch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTavilyClient("bad-key", WithTavilyBaseURL(server.URL))

	_, err := client.Search(context.Background(), "query", 5, nil)
	if err == nil {
		t.Fatal("Expected error for non-200 response")
	}
}

func TestTavilySearch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", WithTavilyBaseURL(server.URL))

	items, err := client.Search(context.Background(), "obscure query", 5, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty result set, got %d items", len(items))
	}
}
