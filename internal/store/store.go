package store

import (
	"context"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// Bundle is one complete verification result: the source it came from, the
// claim, the evaluation outcome, and the evidence consulted. It is written
// atomically with insert-if-absent semantics at every level.
type Bundle struct {
	Source     model.SourceRecord
	Claim      model.ClaimRecord
	Evaluation model.EvaluationRecord
	Evidence   []model.EvidenceItem
}

// Store defines the persistence interface for verification results.
type Store interface {
	// StoreVerification writes the bundle in one transaction, deduplicating
	// the source by URL, the claim by (hash, source) and the evaluation by
	// (claim, model). A redundant evaluation is reported as success without
	// writing anything.
	StoreVerification(ctx context.Context, bundle Bundle) error

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
