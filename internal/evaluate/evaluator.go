package evaluate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lucassvahn/desinformation-agent/internal/llm"
	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// Placeholder values used when parsing falls short or evidence is absent.
const (
	noEvidenceReasoning = "No search results available to verify the claim."
	noEvidencePlacehold = "No evidence available."
	noReasoningParsed   = "Could not parse the reasoning from the LLM response."
)

// RawVerdict holds the four fields extracted from the model's answer before
// normalization. ScoreText is the verbatim score field; numeric coercion is
// the normalizer's job.
type RawVerdict struct {
	ClaimsDetected string
	Rating         string
	Reasoning      string
	ScoreText      string
}

// Evaluator builds the fact-checking prompt, invokes the model, and parses
// the answer. It always returns a verdict: model and parse failures surface
// as dedicated rating values, never as errors.
type Evaluator struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewEvaluator creates an Evaluator. The provider must already be
// constructed; the evaluator never instantiates clients itself.
func NewEvaluator(provider llm.Provider, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{provider: provider, log: log}
}

// Evaluate rates the claim against the evidence list.
//
// With no evidence the model is never called: evaluating without evidence is
// unreliable, so a fixed "Cannot Verify" verdict is returned instead. The
// full claim text, hashtags included, is what the model sees.
func (e *Evaluator) Evaluate(ctx context.Context, claimText string, evidence []model.EvidenceItem, meta Metadata) RawVerdict {
	if len(evidence) == 0 {
		e.log.Warn("no evidence available, skipping model call",
			zap.String("claim", snippet(claimText)))
		return RawVerdict{
			ClaimsDetected: noEvidencePlacehold,
			Rating:         model.RatingCannotVerify,
			Reasoning:      noEvidenceReasoning,
		}
	}

	prompt := BuildPrompt(claimText, evidence, meta)

	output, err := e.provider.Complete(ctx, prompt)
	if err != nil {
		e.log.Error("LLM completion failed", zap.Error(err),
			zap.String("provider", e.provider.Name()))
		return RawVerdict{
			Rating:    model.RatingLLMError,
			Reasoning: fmt.Sprintf("An error occurred during LLM evaluation: %v", err),
		}
	}

	output = strings.TrimSpace(output)
	if output == "" {
		return RawVerdict{
			Rating:    model.RatingLLMError,
			Reasoning: "The LLM returned an empty response.",
		}
	}

	parsed := parseResponse(output)

	verdict := RawVerdict{
		ClaimsDetected: parsed.claims,
		Rating:         parsed.rating,
		Reasoning:      parsed.reasoning,
		ScoreText:      parsed.score,
	}
	if !parsed.hasRating {
		verdict.Rating = model.RatingParseError
	}
	if !parsed.hasReasoning {
		verdict.Reasoning = noReasoningParsed
	}
	if !parsed.hasRating || !parsed.hasReasoning {
		e.log.Warn("model output missing expected fields",
			zap.Bool("rating", parsed.hasRating),
			zap.Bool("reasoning", parsed.hasReasoning),
			zap.Bool("score", parsed.hasScore))
	}

	return verdict
}

// snippet shortens claim text for log lines.
func snippet(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return string(runes)
}
