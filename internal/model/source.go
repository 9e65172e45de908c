package model

import "time"

// Platform identifies where a claim originated
type Platform string

const (
	PlatformReddit        Platform = "Reddit"
	PlatformTwitter       Platform = "Twitter/X"
	PlatformManual        Platform = "Manual Input"
	PlatformArticleReddit Platform = "Article via Reddit"
)

// SourceRecord describes a unique origin of a claim. The source URL is the
// identity key: re-encountering the same URL resolves to the existing row.
type SourceRecord struct {
	Platform       Platform   `json:"platform"`
	SourceURL      string     `json:"source_url"`
	AuthorID       string     `json:"author_id,omitempty"`
	AuthorUsername string     `json:"author_username,omitempty"`
	PostTimestamp  *time.Time `json:"post_timestamp,omitempty"`
	FetchTimestamp time.Time  `json:"fetch_timestamp"`
}
