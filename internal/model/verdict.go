package model

import (
	"strings"
	"time"
)

// Rating categories the LLM is instructed to use. Anything outside this set
// is stored as-is but flagged as unexpected.
const (
	RatingLikelyTrue   = "Likely True"
	RatingLikelyFalse  = "Likely False"
	RatingMisleading   = "Misleading"
	RatingUncertain    = "Uncertain"
	RatingCannotVerify = "Cannot Verify"
	RatingParseError   = "Error Parsing LLM Output"
	RatingLLMError     = "LLM Error"
)

// NoClaimSentinel is the exact phrase the model must emit in the Claim(s)
// Detected and Rating fields when the post contains no verifiable factual
// claim. The dedup and override policy match on this string, so it must
// never be reworded without migrating stored data.
const NoClaimSentinel = "Inga verifierbara påståenden hittades."

// KnownRating reports whether the rating belongs to the controlled vocabulary.
func KnownRating(rating string) bool {
	switch rating {
	case RatingLikelyTrue, RatingLikelyFalse, RatingMisleading,
		RatingUncertain, RatingCannotVerify, RatingParseError, RatingLLMError:
		return true
	}
	return strings.EqualFold(strings.TrimSpace(rating), NoClaimSentinel)
}

// Verdict is a normalized, storage-ready evaluation outcome.
type Verdict struct {
	Rating            string   `json:"rating"`
	Reasoning         string   `json:"reasoning"`
	TruthfulnessScore *float64 `json:"truthfulness_score,omitempty"`
	ClaimsDetected    string   `json:"claims_detected,omitempty"`
}

// IsNoClaim reports whether the verdict is the "no verifiable claim" case.
func (v Verdict) IsNoClaim() bool {
	return strings.EqualFold(strings.TrimSpace(v.Rating), NoClaimSentinel)
}

// Evaluation statuses
const (
	StatusCompleted = "Completed"
)

// EvaluationRecord is the persisted outcome of one evaluator run.
type EvaluationRecord struct {
	EvaluationTimestamp time.Time `json:"evaluation_timestamp"`
	LLMModelUsed        string    `json:"llm_model_used"`
	SearchAPIUsed       string    `json:"search_api_used"`
	SearchQueryUsed     string    `json:"search_query_used"`
	Verdict             Verdict   `json:"verdict"`
	EvaluationStatus    string    `json:"evaluation_status"`
}
