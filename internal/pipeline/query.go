package pipeline

import (
	"strings"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// MaxQueryRunes caps the derived search query. Search APIs degrade badly on
// very long queries, so the claim is cut down before searching even though
// the full text still goes to the model.
const MaxQueryRunes = 200

// DeriveQuery turns claim text into a search query: everything before the
// first hashtag, trimmed, capped at MaxQueryRunes.
func DeriveQuery(claimText string) string {
	query := claimText
	if i := strings.Index(query, "#"); i >= 0 {
		query = query[:i]
	}
	query = strings.TrimSpace(query)

	runes := []rune(query)
	if len(runes) > MaxQueryRunes {
		query = strings.TrimSpace(string(runes[:MaxQueryRunes]))
	}
	return query
}

// DeriveArticleQuery builds a search query for an article chunk from the
// article title and the chunk's first sentence. Chunk text alone is a poor
// query: mid-article chunks open mid-topic, while the title anchors them.
func DeriveArticleQuery(article *model.LinkedArticle, chunk string) string {
	first := firstSentence(chunk)
	query := strings.TrimSpace(article.Title)
	if query == "" {
		query = first
	} else if first != "" {
		query = query + ": " + first
	}

	runes := []rune(query)
	if len(runes) > MaxQueryRunes {
		query = strings.TrimSpace(string(runes[:MaxQueryRunes]))
	}
	return query
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			return strings.TrimSpace(text[:i])
		}
	}
	return text
}
