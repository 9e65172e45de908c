package evaluate

import (
	"testing"

	"github.com/lucassvahn/desinformation-agent/internal/model"
)

func TestParseResponse_WellFormed(t *testing.T) {
	output := `Claim(s) Detected: Stockholm är Sveriges huvudstad.
Rating: Likely True
Reasoning: Multiple reliable sources confirm this.
Truthfulness Score: 9.5`

	parsed := parseResponse(output)

	if !parsed.hasClaims || parsed.claims != "Stockholm är Sveriges huvudstad." {
		t.Errorf("Expected claims field, got %q (has=%v)", parsed.claims, parsed.hasClaims)
	}
	if !parsed.hasRating || parsed.rating != "Likely True" {
		t.Errorf("Expected rating 'Likely True', got %q", parsed.rating)
	}
	if !parsed.hasReasoning || parsed.reasoning != "Multiple reliable sources confirm this." {
		t.Errorf("Expected reasoning, got %q", parsed.reasoning)
	}
	if !parsed.hasScore || parsed.score != "9.5" {
		t.Errorf("Expected score '9.5', got %q", parsed.score)
	}
}

func TestParseResponse_MarkdownBoldLabels(t *testing.T) {
	output := `**Claim(s) Detected:** Arbetslösheten är 8 procent.
**Rating:** Misleading
**Reasoning:** The figure is outdated.
**Truthfulness Score:** 4`

	parsed := parseResponse(output)

	if parsed.claims != "Arbetslösheten är 8 procent." {
		t.Errorf("Expected claims to survive bold markers, got %q", parsed.claims)
	}
	if parsed.rating != "Misleading" {
		t.Errorf("Expected rating to survive bold markers, got %q", parsed.rating)
	}
	if parsed.score != "4" {
		t.Errorf("Expected score '4', got %q", parsed.score)
	}
}

func TestParseResponse_BoldLabelsKeepSentinelExact(t *testing.T) {
	output := "**Claim(s) Detected:** " + model.NoClaimSentinel + "\n" +
		"**Rating:** " + model.NoClaimSentinel + "\n" +
		"**Reasoning:** Inlägget är en fråga."

	parsed := parseResponse(output)

	// The sentinel must come out byte-exact or the no-claim override
	// downstream never fires.
	if parsed.claims != model.NoClaimSentinel {
		t.Errorf("Expected exact sentinel in claims field, got %q", parsed.claims)
	}
	if parsed.rating != model.NoClaimSentinel {
		t.Errorf("Expected exact sentinel in rating field, got %q", parsed.rating)
	}
}

func TestParseResponse_CaseInsensitiveLabels(t *testing.T) {
	output := `claim(s) detected: Something.
rating: Uncertain
reasoning: Hard to say.
truthfulness score: 5`

	parsed := parseResponse(output)

	if parsed.rating != "Uncertain" {
		t.Errorf("Expected case-insensitive label match, got %q", parsed.rating)
	}
}

func TestParseResponse_BracketedTemplateEcho(t *testing.T) {
	output := `Claim(s) Detected: [No claims here]
Rating: [Cannot Verify]
Reasoning: [The post is a question.]
Truthfulness Score: [N/A]`

	parsed := parseResponse(output)

	if parsed.rating != "Cannot Verify" {
		t.Errorf("Expected brackets stripped, got %q", parsed.rating)
	}
	if parsed.score != "N/A" {
		t.Errorf("Expected score 'N/A', got %q", parsed.score)
	}
}

func TestParseResponse_FirstOccurrenceWins(t *testing.T) {
	output := `Rating: Likely True
Rating: Likely False`

	parsed := parseResponse(output)

	if parsed.rating != "Likely True" {
		t.Errorf("Expected first occurrence to win, got %q", parsed.rating)
	}
}

func TestParseResponse_MissingFields(t *testing.T) {
	parsed := parseResponse("The model rambled and ignored the template entirely.")

	if parsed.hasRating || parsed.hasReasoning || parsed.hasScore || parsed.hasClaims {
		t.Errorf("Expected no fields detected, got %+v", parsed)
	}
}

func TestParseResponse_PreambleBeforeFields(t *testing.T) {
	output := `Here is my analysis of the claim:

Claim(s) Detected: Sverige har vunnit VM i fotboll.
Rating: Likely False
Reasoning: Sweden has never won the World Cup.
Truthfulness Score: 1`

	parsed := parseResponse(output)

	if parsed.rating != "Likely False" {
		t.Errorf("Expected fields found after preamble, got %q", parsed.rating)
	}
}
