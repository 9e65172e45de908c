package model

import "time"

// EvidenceItem is one search result snippet consulted during an evaluation.
// RelevanceScore is set only by adapters whose API reports one (Tavily);
// elsewhere it stays nil and is stored as NULL.
type EvidenceItem struct {
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Snippet        string   `json:"snippet"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

// Post is a fetched social-media post ready for claim derivation.
type Post struct {
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Text      string         `json:"text,omitempty"`
	Author    string         `json:"author,omitempty"`
	AuthorID  string         `json:"author_id,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	Link      *LinkedArticle `json:"link,omitempty"`
}

// LinkedArticle is the extracted content of an article a post links to.
// Chunks are claim-sized slices of the article body.
type LinkedArticle struct {
	URL    string   `json:"url"`
	Domain string   `json:"domain"`
	Title  string   `json:"title"`
	Chunks []string `json:"chunks,omitempty"`
}
