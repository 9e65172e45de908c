package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTwitterFetch(t *testing.T) {
	var gotQuery, gotMax, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("Expected recent search path, got %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotMax = r.URL.Query().Get("max_results")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "1234567890", "text": "Arbetslösheten är 8 procent. #svpol", "author_id": "99", "created_at": "2026-08-30T10:00:00.000Z"},
				{"id": "1234567891", "text": "En till tweet.", "author_id": "100"}
			],
			"meta": {"result_count": 2}
		}`))
	}))
	defer server.Close()

	client := NewTwitterClient("token", "#svpol", "sv", 10, WithTwitterBaseURL(server.URL))

	posts, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotAuth != "Bearer token" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if !strings.Contains(gotQuery, "#svpol") || !strings.Contains(gotQuery, "-is:retweet") ||
		!strings.Contains(gotQuery, "-is:reply") || !strings.Contains(gotQuery, "lang:sv") {
		t.Errorf("Expected query with exclusions and language filter, got %q", gotQuery)
	}
	if gotMax != "10" {
		t.Errorf("Expected max_results=10, got %s", gotMax)
	}

	if len(posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(posts))
	}
	if posts[0].URL != "https://x.com/unknown/status/1234567890" {
		t.Errorf("Unexpected tweet URL: %s", posts[0].URL)
	}
	if posts[0].AuthorID != "99" {
		t.Errorf("Expected author_id 99, got %q", posts[0].AuthorID)
	}
	if posts[0].CreatedAt == nil {
		t.Error("Expected created_at parsed")
	}
	if posts[1].CreatedAt != nil {
		t.Error("Expected nil created_at when field is absent")
	}
}

func TestTwitterFetch_MaxResultsClamped(t *testing.T) {
	var gotMax string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMax = r.URL.Query().Get("max_results")
		_, _ = w.Write([]byte(`{"data": [], "meta": {"result_count": 0}}`))
	}))
	defer server.Close()

	client := NewTwitterClient("token", "#svpol", "sv", 3, WithTwitterBaseURL(server.URL))
	if _, err := client.Fetch(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotMax != "10" {
		t.Errorf("Expected max_results clamped up to 10, got %s", gotMax)
	}
}

func TestTwitterFetch_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTwitterClient("bad-token", "#svpol", "sv", 10, WithTwitterBaseURL(server.URL))
	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("Expected error for 401 response")
	}
}
