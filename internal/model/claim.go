package model

import "time"

// MaxClaimRunes caps claim text before evaluation. Longer article chunks and
// post bodies are truncated, never rejected.
const MaxClaimRunes = 2000

// Extraction methods recorded on a claim
const (
	ExtractionManual       = "manual_input"
	ExtractionRedditPost   = "reddit_post_content"
	ExtractionTwitterPost  = "twitter_post_content"
	ExtractionArticleChunk = "linked_article_content_chunk_" // suffixed with 1-based chunk index
)

// ClaimRecord is a unit of text extracted for verification, owned by exactly
// one source. Identity within a source is the SHA-256 hash of Text.
type ClaimRecord struct {
	Text             string    `json:"claim_text"`
	ExtractionMethod string    `json:"extraction_method"`
	DateExtracted    time.Time `json:"date_extracted"`
}

// TruncateClaim enforces the claim length cap. The cap counts runes, not
// bytes, so multi-byte Swedish text is not split mid-character.
func TruncateClaim(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxClaimRunes {
		return text
	}
	return string(runes[:MaxClaimRunes])
}
