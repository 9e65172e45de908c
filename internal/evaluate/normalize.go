package evaluate

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

// Normalizer post-processes a RawVerdict into a storage-ready verdict:
// controlled-vocabulary check, two-stage no-claim detection, and numeric
// score coercion.
type Normalizer struct {
	phrases []string
	log     *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil or empty phrase list falls back
// to the compiled-in defaults.
func NewNormalizer(phrases []string, log *zap.Logger) *Normalizer {
	if len(phrases) == 0 {
		phrases = DefaultNoClaimPhrases
	}
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{phrases: lowered, log: log}
}

// fallbackRatings are the ratings eligible for the stage-two no-claim
// override. A confident rating like "Likely False" is never overridden.
func fallbackEligible(rating string) bool {
	switch rating {
	case model.RatingUncertain, model.RatingCannotVerify, model.RatingParseError:
		return true
	}
	return false
}

// Normalize applies the override policy deterministically. The model is not
// perfectly compliant with the output template, so no-claim detection runs
// in two stages: an exact sentinel match on the claims-detected or rating
// field, then a best-effort phrase scan of the reasoning.
func (n *Normalizer) Normalize(raw RawVerdict) model.Verdict {
	rating := strings.TrimSpace(raw.Rating)
	claims := strings.TrimSpace(raw.ClaimsDetected)
	reasoning := strings.TrimSpace(raw.Reasoning)

	noClaim := isSentinel(claims) || isSentinel(rating)

	if !noClaim && fallbackEligible(rating) && n.reasoningSuggestsNoClaim(reasoning) {
		n.log.Info("recovered no-claim case from reasoning text",
			zap.String("rating", rating))
		noClaim = true
	}

	if noClaim {
		return model.Verdict{
			Rating:         model.NoClaimSentinel,
			Reasoning:      reasoning,
			ClaimsDetected: model.NoClaimSentinel,
		}
	}

	if !model.KnownRating(rating) {
		n.log.Warn("LLM provided an unexpected rating category, storing as is",
			zap.String("rating", rating))
	}

	return model.Verdict{
		Rating:            rating,
		Reasoning:         reasoning,
		TruthfulnessScore: n.coerceScore(raw.ScoreText),
		ClaimsDetected:    claims,
	}
}

func isSentinel(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), model.NoClaimSentinel)
}

func (n *Normalizer) reasoningSuggestsNoClaim(reasoning string) bool {
	lower := strings.ToLower(reasoning)
	for _, phrase := range n.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// leadingNumber matches an integer or decimal at the start of the score
// field, with either decimal separator ("7.5" and "7,5" both occur).
var leadingNumber = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?`)

// notApplicable markers the model uses instead of a number.
var notApplicable = map[string]bool{
	"n/a": true, "na": true, "not applicable": true, "none": true, "-": true,
}

// coerceScore parses the score field. Values in [0,10] are kept; anything
// else degrades to nil. Parsing never raises.
func (n *Normalizer) coerceScore(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" || notApplicable[strings.ToLower(text)] {
		return nil
	}

	token := leadingNumber.FindString(text)
	if token == "" {
		n.log.Debug("score field is not numeric", zap.String("score", text))
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", "."), 64)
	if err != nil {
		return nil
	}
	if value < 0 || value > 10 {
		n.log.Warn("truthfulness score out of range, discarding",
			zap.Float64("score", value))
		return nil
	}
	return &value
}
