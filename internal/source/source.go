// Package source wraps the external search and fetch APIs behind uniform
// "list of items" contracts. Adapters never propagate failures past this
// boundary as anything the pipeline cannot continue from: a failed search is
// an error the caller logs and treats as zero results.
package source

import (
	"context"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// EvidenceSearcher is the uniform contract for evidence search APIs.
type EvidenceSearcher interface {
	// Name identifies the API in the persisted search_api_used field.
	Name() string

	// Search returns up to maxResults evidence items for the query,
	// optionally restricted to the given domains. An empty slice with a nil
	// error means no results.
	Search(ctx context.Context, query string, maxResults int, domains []string) ([]model.EvidenceItem, error)
}

// PostSource is the contract for social-media post fetchers.
type PostSource interface {
	// Fetch returns a finite list of recent posts. Implementations return
	// an empty list on failure rather than partial garbage.
	Fetch(ctx context.Context) ([]model.Post, error)
}
